// Package api serves nnkern models over HTTP: feed-forward passes for Dense
// and MLP models and stateful stepping sessions for the recurrent kinds.
package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/nnkern/internal/cpuinfo"
	"github.com/samcharles93/nnkern/internal/logger"
	"github.com/samcharles93/nnkern/internal/model"
	"github.com/samcharles93/nnkern/internal/version"
	"github.com/samcharles93/nnkern/pkg/kernels"
)

// ModelSource resolves and lists models; *model.Registry implements it.
type ModelSource interface {
	Get(name string) (*model.Model, error)
	List() ([]model.Descriptor, error)
}

type Server struct {
	models   ModelSource
	sessions *SessionStore
	log      logger.Logger
	clock    func() time.Time
}

func NewServer(models ModelSource, sessions *SessionStore, log logger.Logger) *Server {
	if sessions == nil {
		sessions = NewSessionStore(0)
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Server{
		models:   models,
		sessions: sessions,
		log:      log,
		clock:    time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/models", s.handleListModels)
	e.GET("/v1/models/:name", s.handleGetModel)
	e.POST("/v1/models/:name/forward", s.handleForward)

	e.POST("/v1/sessions", s.handleCreateSession)
	e.GET("/v1/sessions/:id", s.handleGetSession)
	e.DELETE("/v1/sessions/:id", s.handleDeleteSession)
	e.POST("/v1/sessions/:id/step", s.handleStep)

	e.GET("/v1/system", s.handleSystem)
}

func (s *Server) handleListModels(c *echo.Context) error {
	list, err := s.models.List()
	if err != nil {
		return writeModelError(c, err)
	}
	if list == nil {
		list = []model.Descriptor{}
	}
	return c.JSON(http.StatusOK, ModelList{Object: "list", Data: list})
}

func (s *Server) handleGetModel(c *echo.Context) error {
	m, err := s.models.Get(c.Param("name"))
	if err != nil {
		return writeModelError(c, err)
	}
	return c.JSON(http.StatusOK, ModelInfo{
		Descriptor:  m.Descriptor,
		WeightCount: len(m.Weights),
		Layout:      m.Layout(),
		Stats:       model.WeightStats(m.Weights),
	})
}

func (s *Server) handleForward(c *echo.Context) error {
	req, err := decodeJSON[ForwardRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.OutputStride < 0 {
		return writeBadRequest(c, "output_stride must not be negative")
	}
	m, err := s.models.Get(c.Param("name"))
	if err != nil {
		return writeModelError(c, err)
	}
	in, err := inputBatch(req.Inputs, m.InputWidth())
	if err != nil {
		return writeModelError(c, err)
	}
	out, err := m.Forward(in, req.OutputStride)
	if err != nil {
		return writeModelError(c, err)
	}

	id := "fwd_" + uuid.NewString()
	s.log.Debug("forward", "id", id, "model", m.Name, "rows", in.Rows)
	return c.JSON(http.StatusOK, ForwardResponse{ID: id, Model: m.Name, Outputs: out.Rows2D()})
}

func (s *Server) handleCreateSession(c *echo.Context) error {
	req, err := decodeJSON[CreateSessionRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.Model == "" {
		return writeBadRequest(c, "model is required")
	}
	if req.Batch == 0 {
		req.Batch = 1
	}
	m, err := s.models.Get(req.Model)
	if err != nil {
		return writeModelError(c, err)
	}
	sess, err := s.sessions.Create(m, req.Batch, s.clock())
	if err != nil {
		return writeModelError(c, err)
	}
	s.log.Info("session created", "id", sess.id, "model", m.Name, "batch", req.Batch)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return c.JSON(http.StatusCreated, sess.snapshot())
}

func (s *Server) handleGetSession(c *echo.Context) error {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		return writeModelError(c, err)
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return c.JSON(http.StatusOK, sess.snapshot())
}

func (s *Server) handleDeleteSession(c *echo.Context) error {
	id := c.Param("id")
	if !s.sessions.Delete(id) {
		return writeNotFound(c, "session not found: "+id)
	}
	s.log.Info("session deleted", "id", id)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleStep(c *echo.Context) error {
	req, err := decodeJSON[StepRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		return writeModelError(c, err)
	}
	in, err := inputBatch(req.Inputs, sess.model.InSize)
	if err != nil {
		return writeModelError(c, err)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := c.Request().Context().Err(); err != nil {
		return err
	}
	if err := sess.model.Step(sess.state, in); err != nil {
		return writeModelError(c, err)
	}
	sess.steps++

	st := sess.state
	return c.JSON(http.StatusOK, StepResponse{
		ID:   sess.id,
		Step: sess.steps,
		H:    stateRows(st.H, st.Batch, st.Hidden),
		C:    stateRows(st.C, st.Batch, st.Hidden),
		Z:    stateRows(st.Z, st.Batch, st.Hidden),
		R:    stateRows(st.R, st.Batch, st.Hidden),
	})
}

func (s *Server) handleSystem(c *echo.Context) error {
	return c.JSON(http.StatusOK, SystemResponse{
		Version: version.Resolve(),
		CPU:     cpuinfo.Detect(),
		DotPath: kernels.Path(),
	})
}
