package memberapi

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/liveview/change"
	"github.com/kbukum/liveview/errors"
	"github.com/kbukum/liveview/internal/server"
	"github.com/kbukum/liveview/sse"
	"github.com/kbukum/liveview/validation"
)

// Handler exposes a Roster over HTTP.
type Handler struct {
	roster *Roster
	events *sse.Component
	opts   []sse.HandlerOption
}

// NewHandler creates a handler. events may be nil to disable streaming.
func NewHandler(roster *Roster, events *sse.Component, opts ...sse.HandlerOption) *Handler {
	return &Handler{roster: roster, events: events, opts: opts}
}

// Register mounts the member routes on r.
func (h *Handler) Register(r gin.IRouter) {
	members := r.Group("/members")
	members.GET("", h.list)
	members.GET("/active", h.listActive)
	members.GET("/departments", h.listDepartments)
	members.GET("/:name", h.get)
	members.POST("", h.create)
	members.PUT("/:name", h.update)
	members.DELETE("/:name", h.remove)
	members.DELETE("", h.clear)

	if h.events != nil {
		r.GET("/events/:view", h.stream)
	}
}

func (h *Handler) list(c *gin.Context) {
	server.RespondList(c, h.roster.All().Snapshot())
}

func (h *Handler) listActive(c *gin.Context) {
	server.RespondList(c, h.roster.Active().Snapshot())
}

func (h *Handler) listDepartments(c *gin.Context) {
	server.RespondList[change.Group[string, *Member]](c, h.roster.Departments().Snapshot())
}

// nameParam returns the :name path parameter, or responds 400 when it
// cannot name a member.
func nameParam(c *gin.Context) (string, bool) {
	name := c.Param("name")
	if err := validation.New().
		Required("name", name).
		MaxLength("name", name, maxNameLength).
		Validate(); err != nil {
		server.RespondWithError(c, err)
		return "", false
	}
	return name, true
}

func (h *Handler) get(c *gin.Context) {
	name, ok := nameParam(c)
	if !ok {
		return
	}
	m, err := h.roster.Get(name)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, m)
}

func (h *Handler) create(c *gin.Context) {
	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.Validation("request body must be a JSON member").WithCause(err))
		return
	}
	m, err := h.roster.Add(req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, m)
}

func (h *Handler) update(c *gin.Context) {
	name, ok := nameParam(c)
	if !ok {
		return
	}
	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.Validation("request body must be a JSON member").WithCause(err))
		return
	}
	m, err := h.roster.Update(name, req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, m)
}

func (h *Handler) remove(c *gin.Context) {
	name, ok := nameParam(c)
	if !ok {
		return
	}
	if err := h.roster.Remove(name); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondNoContent(c)
}

func (h *Handler) clear(c *gin.Context) {
	if err := h.roster.Clear(); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondNoContent(c)
}

func (h *Handler) stream(c *gin.Context) {
	view := c.Param("view")
	p, ok := h.events.Publisher(view)
	if !ok {
		server.RespondWithError(c, errors.NotFound("view", view))
		return
	}
	sse.ServeSSE(c.Writer, c.Request, p, h.opts...)
}
