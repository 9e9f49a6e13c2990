package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/alem-hub/wellness-hub/internal/application/command"
	"github.com/alem-hub/wellness-hub/internal/application/query"
	"github.com/alem-hub/wellness-hub/internal/application/store"
	"github.com/alem-hub/wellness-hub/internal/domain/notification"
	"github.com/alem-hub/wellness-hub/internal/domain/profile"
	"github.com/alem-hub/wellness-hub/internal/domain/shared"
	"github.com/alem-hub/wellness-hub/internal/interface/http/handlers"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type healthResponse struct {
	handlers.HealthStatus
	Profiles int         `json:"profiles"`
	EventBus interface{} `json:"eventBus,omitempty"`
}

// GET /health
func (s *Server) handleHealth(c *gin.Context) {
	resp := healthResponse{
		HealthStatus: handlers.HealthStatus{Healthy: true, Message: "OK"},
		Profiles:     s.deps.Profiles.Len(),
	}
	if s.deps.Health != nil {
		resp.HealthStatus = s.deps.Health.Check(c.Request.Context())
	}
	if s.deps.BusMetrics != nil {
		resp.EventBus = s.deps.BusMetrics.Snapshot()
	}

	if !resp.Healthy {
		c.JSON(http.StatusServiceUnavailable, handlers.Response{
			Code:    handlers.CodeUnavailable,
			Message: resp.Message,
			Data:    resp,
		})
		return
	}
	handlers.OK(c, resp)
}

// GET /live
func (s *Server) handleLive(c *gin.Context) {
	handlers.OK(c, gin.H{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE QUERIES
// ══════════════════════════════════════════════════════════════════════════════

// POST /api/v1/profiles
func (s *Server) handleCreateProfile(c *gin.Context) {
	var cmd command.CreateProfileCommand
	if !bind(c, &cmd) {
		return
	}

	p, err := s.deps.Profiles.CreateProfile(cmd)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.Header("Location", "/api/v1/profiles/"+p.ID)
	handlers.Created(c, p)
}

// GET /api/v1/profiles
func (s *Server) handleListProfiles(c *gin.Context) {
	handlers.OK(c, gin.H{"ids": s.deps.Profiles.IDs()})
}

// GET /api/v1/profiles/:id
func (s *Server) handleGetProfile(c *gin.Context) {
	st, ok := s.lookup(c)
	if !ok {
		return
	}
	handlers.OK(c, st.Profile())
}

// GET /api/v1/profiles/:id/notifications
func (s *Server) handleGetNotifications(c *gin.Context) {
	st, ok := s.lookup(c)
	if !ok {
		return
	}

	list := st.Notifications()
	if kind := c.Query("type"); kind != "" {
		k := notification.Kind(kind)
		if !k.IsValid() {
			handlers.Fail(c, shared.NewValidationError("type", "must be academic, wellness or career"))
			return
		}
		list = lo.Filter(list, func(n notification.Notification, _ int) bool { return n.Kind == k })
	}
	handlers.OK(c, gin.H{"notifications": list, "total": len(list)})
}

// GET /api/v1/profiles/:id/dashboard?recent=5
func (s *Server) handleGetDashboard(c *gin.Context) {
	recent := 0
	if raw := c.Query("recent"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			handlers.Fail(c, shared.NewValidationError("recent", "must be a non-negative integer"))
			return
		}
		recent = n
	}

	dto, err := s.deps.Dashboard.Handle(query.GetDashboardQuery{
		ProfileID:   c.Param("id"),
		RecentLimit: recent,
	})
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	handlers.OK(c, dto)
}

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

// POST /api/v1/profiles/:id/subjects
func (s *Server) handleAddSubject(c *gin.Context) {
	var cmd command.AddSubjectCommand
	s.runCommand(c, &cmd, func(st *store.Store) (store.Result, error) {
		return st.AddSubject(cmd)
	})
}

// DELETE /api/v1/profiles/:id/subjects/:index
func (s *Server) handleDeleteSubject(c *gin.Context) {
	s.runDelete(c, (*store.Store).DeleteSubject)
}

// PATCH /api/v1/profiles/:id/academic
func (s *Server) handleUpdateAcademic(c *gin.Context) {
	var cmd command.UpdateAcademicMetricsCommand
	s.runCommand(c, &cmd, func(st *store.Store) (store.Result, error) {
		return st.UpdateAcademicMetrics(cmd)
	})
}

// POST /api/v1/profiles/:id/wellness/check-ins
func (s *Server) handleCheckIn(c *gin.Context) {
	var cmd command.RecordWellnessCheckInCommand
	s.runCommand(c, &cmd, func(st *store.Store) (store.Result, error) {
		return st.RecordWellnessCheckIn(cmd)
	})
}

// POST /api/v1/profiles/:id/skills
func (s *Server) handleAddSkill(c *gin.Context) {
	var cmd command.AddSkillCommand
	s.runCommand(c, &cmd, func(st *store.Store) (store.Result, error) {
		return st.AddSkill(cmd)
	})
}

// DELETE /api/v1/profiles/:id/skills/:index
func (s *Server) handleDeleteSkill(c *gin.Context) {
	s.runDelete(c, (*store.Store).DeleteSkill)
}

// POST /api/v1/profiles/:id/interests
func (s *Server) handleAddInterest(c *gin.Context) {
	var cmd command.AddInterestCommand
	s.runCommand(c, &cmd, func(st *store.Store) (store.Result, error) {
		return st.AddInterest(cmd)
	})
}

// DELETE /api/v1/profiles/:id/interests/:index
func (s *Server) handleDeleteInterest(c *gin.Context) {
	s.runDelete(c, (*store.Store).DeleteInterest)
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// commandResult is returned by every mutating route: the committed snapshot
// and the notifications raised by that command, oldest first.
type commandResult struct {
	Profile       *profile.StudentProfile     `json:"profile"`
	Notifications []notification.Notification `json:"notifications"`
}

func (s *Server) lookup(c *gin.Context) (*store.Store, bool) {
	st, err := s.deps.Profiles.Get(c.Param("id"))
	if err != nil {
		handlers.Fail(c, err)
		return nil, false
	}
	return st, true
}

// runCommand binds the body into cmd, then runs exec against the profile.
func (s *Server) runCommand(c *gin.Context, cmd interface{}, exec func(*store.Store) (store.Result, error)) {
	st, ok := s.lookup(c)
	if !ok || !bind(c, cmd) {
		return
	}
	s.respond(c, st, exec)
}

func (s *Server) runDelete(c *gin.Context, del func(*store.Store, command.DeleteEntryCommand) (store.Result, error)) {
	st, ok := s.lookup(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		handlers.Fail(c, shared.NewValidationError("index", "must be an integer"))
		return
	}
	s.respond(c, st, func(st *store.Store) (store.Result, error) {
		return del(st, command.DeleteEntryCommand{Index: index})
	})
}

func (s *Server) respond(c *gin.Context, st *store.Store, exec func(*store.Store) (store.Result, error)) {
	res, err := exec(st)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	raised := res.Raised
	if raised == nil {
		raised = []notification.Notification{}
	}
	handlers.OK(c, commandResult{Profile: res.Profile, Notifications: raised})
}

func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		handlers.BadRequest(c, err.Error())
		return false
	}
	return true
}
