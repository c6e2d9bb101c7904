package memberapi

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/liveview/collection"
	"github.com/kbukum/liveview/component"
	"github.com/kbukum/liveview/errors"
	"github.com/kbukum/liveview/logger"
	"github.com/kbukum/liveview/sse"
	"github.com/kbukum/liveview/validation"
)

// View names, also used as SSE topics.
const (
	ViewAll         = "members"
	ViewActive      = "active"
	ViewDepartments = "departments"
)

// Roster owns the member source and its views.
type Roster struct {
	mu     sync.Mutex
	source *collection.Source[*Member]
	log    *logger.Logger

	all         *collection.View[*Member]
	active      *collection.View[*Member]
	departments *collection.GroupedView[*Member, string]
}

var _ component.Component = (*Roster)(nil)

// NewRoster creates an empty roster. opts configure the underlying source;
// the source is always synchronized because HTTP handlers mutate it
// concurrently.
func NewRoster(log *logger.Logger, opts ...collection.Option) (*Roster, error) {
	opts = append(opts, collection.WithName("roster"), collection.WithLogger(log), collection.WithSynchronization())
	r := &Roster{
		source: collection.NewSource[*Member](opts...),
		log:    log.WithComponent("roster"),
	}

	var err error
	if r.all, err = collection.CreateView(r.source, collection.Spec[*Member]{Name: ViewAll, Compare: byName}); err != nil {
		return nil, err
	}
	r.active, err = collection.CreateView(r.source, collection.Spec[*Member]{
		Name:    ViewActive,
		Filter:  func(m *Member) bool { return m.Active },
		Compare: byName,
	})
	if err != nil {
		r.all.Close()
		return nil, err
	}
	r.departments, err = collection.CreateGroupedView(r.source, collection.Spec[*Member]{Name: ViewDepartments, Compare: byName}, department)
	if err != nil {
		r.all.Close()
		r.active.Close()
		return nil, err
	}
	return r, nil
}

// All returns the view of every member sorted by name.
func (r *Roster) All() *collection.View[*Member] { return r.all }

// Active returns the view of active members sorted by name.
func (r *Roster) Active() *collection.View[*Member] { return r.active }

// Departments returns the members grouped by department.
func (r *Roster) Departments() *collection.GroupedView[*Member, string] { return r.departments }

// Publish registers one SSE publisher per view with c.
func (r *Roster) Publish(c *sse.Component) {
	c.Add(sse.PublishView(c.Hub(), ViewAll, r.all))
	c.Add(sse.PublishView(c.Hub(), ViewActive, r.active))
	c.Add(sse.PublishGroups(c.Hub(), ViewDepartments, r.departments))
}

// Get returns the member called name.
func (r *Roster) Get(name string) (*Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, err := r.find(name)
	if err != nil {
		return nil, err
	}
	return r.source.At(i)
}

// Add validates req and appends a new member. Names are unique, ignoring
// case.
func (r *Roster) Add(req MemberRequest) (*Member, error) {
	req = req.normalize()
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(req.Name) >= 0 {
		return nil, errors.AlreadyExists("member").WithDetail("name", req.Name)
	}
	m := &Member{ID: uuid.New(), Name: req.Name, Department: req.Department, Active: req.active(true)}
	if err := r.source.Add(m); err != nil {
		return nil, err
	}
	r.log.Debug("member added", logger.Fields("name", m.Name, "department", m.Department))
	return m, nil
}

// Update replaces the member called name. A rename must not collide with
// another member. Omitted Active keeps the current value.
func (r *Roster) Update(name string, req MemberRequest) (*Member, error) {
	req = req.normalize()
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	i, err := r.find(name)
	if err != nil {
		return nil, err
	}
	if j := r.indexOf(req.Name); j >= 0 && j != i {
		return nil, errors.AlreadyExists("member").WithDetail("name", req.Name)
	}
	old, err := r.source.At(i)
	if err != nil {
		return nil, err
	}
	m := &Member{ID: old.ID, Name: req.Name, Department: req.Department, Active: req.active(old.Active)}
	if err := r.source.Replace(i, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Remove deletes the member called name.
func (r *Roster) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, err := r.find(name)
	if err != nil {
		return err
	}
	_, err = r.source.RemoveAt(i)
	return err
}

// Clear removes every member.
func (r *Roster) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.source.Clear()
}

// Seed adds reqs, skipping invalid or duplicate entries with a warning.
func (r *Roster) Seed(reqs []MemberRequest) int {
	n := 0
	for _, req := range reqs {
		if _, err := r.Add(req); err != nil {
			r.log.Warn("seed member skipped", logger.Fields("name", req.Name, logger.FieldError, err.Error()))
			continue
		}
		n++
	}
	return n
}

// Len returns the number of members.
func (r *Roster) Len() int { return r.source.Len() }

func (r *Roster) find(name string) (int, error) {
	i := r.indexOf(strings.TrimSpace(name))
	if i < 0 {
		return -1, errors.NotFound("member", name)
	}
	return i, nil
}

func (r *Roster) indexOf(name string) int {
	for i, m := range r.source.Snapshot() {
		if strings.EqualFold(m.Name, name) {
			return i
		}
	}
	return -1
}

// Name returns the component name.
func (r *Roster) Name() string { return "roster" }

// Start is a no-op; the roster is usable once created.
func (r *Roster) Start(_ context.Context) error { return nil }

// Stop closes the views. The source itself needs no teardown.
func (r *Roster) Stop(_ context.Context) error {
	r.all.Close()
	r.active.Close()
	r.departments.Close()
	return nil
}

// Health reports the roster size.
func (r *Roster) Health(_ context.Context) component.Health {
	return component.Health{
		Name:    r.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d members, %d active, %d departments", r.source.Len(), r.active.Len(), r.departments.Len()),
	}
}
