package collection

import (
	"github.com/kbukum/liveview/errors"
)

// Spec describes a pipeline for CreateView. Nil callbacks skip their
// stage: a Spec with neither Filter nor Compare views upstream as is.
type Spec[T any] struct {
	// Name names the view.
	Name string
	// Filter keeps the items it returns true for.
	Filter func(T) bool
	// Compare orders the items; it must be a total order.
	Compare func(a, b T) int
	// Descending reverses Compare.
	Descending bool
	// TieBreak orders items that Compare finds equal.
	TieBreak TieBreak
}

// build attaches the Filter and Sort stages of spec to upstream and
// returns the last stage along with the stages it created.
func (spec Spec[T]) build(upstream Stage[T]) (Stage[T], []closer, error) {
	if upstream == nil {
		return nil, nil, errors.InvalidInput("upstream", "upstream stage is required")
	}
	if spec.Compare == nil && (spec.Descending || spec.TieBreak != TieBreakDefault) {
		return nil, nil, errors.InvalidInput("compare", "sort direction and tie-break need a comparator")
	}

	var owned []closer
	stage := upstream
	if spec.Filter != nil {
		f, err := NewFilter(stage, spec.Filter)
		if err != nil {
			return nil, nil, err
		}
		owned = append(owned, f)
		stage = f
	}
	if spec.Compare != nil {
		opts := []SortOption{WithSortTieBreak(spec.TieBreak)}
		if spec.Descending {
			opts = append(opts, Descending())
		}
		s, err := NewSort(stage, spec.Compare, opts...)
		if err != nil {
			closeAll(owned)
			return nil, nil, err
		}
		owned = append(owned, s)
		stage = s
	}
	return stage, owned, nil
}

// CreateView builds the filter and sort stages described by spec on top
// of upstream and returns a view over the result. Closing the view closes
// those stages.
func CreateView[T any](upstream Stage[T], spec Spec[T]) (*View[T], error) {
	stage, owned, err := spec.build(upstream)
	if err != nil {
		return nil, err
	}
	v, err := NewView(stage, spec.Name)
	if err != nil {
		closeAll(owned)
		return nil, err
	}
	v.owned = owned
	return v, nil
}

// CreateGroupedView is CreateView followed by a grouping by keyFn. Members
// of each group follow the filtered and sorted order.
func CreateGroupedView[T any, K comparable](upstream Stage[T], spec Spec[T], keyFn func(T) K) (*GroupedView[T, K], error) {
	stage, owned, err := spec.build(upstream)
	if err != nil {
		return nil, err
	}
	g, err := NewGrouping(stage, keyFn)
	if err != nil {
		closeAll(owned)
		return nil, err
	}
	owned = append(owned, g)
	v, err := NewGroupedView(g, spec.Name)
	if err != nil {
		closeAll(owned)
		return nil, err
	}
	v.owned = owned
	return v, nil
}

func closeAll(cs []closer) {
	for i := len(cs) - 1; i >= 0; i-- {
		cs[i].Close()
	}
}
