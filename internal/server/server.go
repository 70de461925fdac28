// Package server exposes the coordination engine over HTTP for embedding.
// Registered agents are declarative responders: they answer coordination
// requests on the direct channel with their scripted response (or an echo of
// the input), which is enough to drive every pattern end to end from the
// API.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openmesh-labs/agora/internal/agent"
	"github.com/openmesh-labs/agora/internal/coordination"
	"github.com/openmesh-labs/agora/internal/errors"
	"github.com/openmesh-labs/agora/internal/logging"
	"github.com/openmesh-labs/agora/internal/task"
)

// Server is the HTTP embedding surface over a Coordinator.
type Server struct {
	coordinator *coordination.Coordinator
	logger      *logging.Logger
	engine      *gin.Engine
	addr        string
	stop        chan struct{}
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger attaches a structured logger.
func WithLogger(logger *logging.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// New creates a Server for the given coordinator listening on addr.
func New(c *coordination.Coordinator, addr string, opts ...ServerOption) *Server {
	s := &Server{
		coordinator: c,
		logger:      logging.NopLogger(),
		addr:        addr,
		stop:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.ReleaseMode)
	s.engine = gin.New()
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

// Handler returns the HTTP handler, for embedding and tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until the listener fails.
func (s *Server) Run() error {
	s.logger.Info("http server listening", "addr", s.addr)
	return s.engine.Run(s.addr)
}

// Close stops the responder loops of registered agents.
func (s *Server) Close() {
	close(s.stop)
}

func (s *Server) routes() {
	api := s.engine.Group("/api/v1")
	api.POST("/agents", s.registerAgent)
	api.GET("/agents", s.listAgents)
	api.POST("/tasks", s.createTask)
	api.GET("/tasks/:id", s.getTask)
	api.POST("/tasks/:id/distribute", s.distributeTask)
	api.POST("/tasks/:id/coordinate", s.coordinateTask)
	api.GET("/tasks/:id/result", s.getResult)
}

type registerAgentRequest struct {
	ID           string   `json:"id" binding:"required"`
	Name         string   `json:"name"`
	Capabilities []string `json:"capabilities"`
	// Response is the scripted reply to every coordination request. Empty
	// means echo the input.
	Response string `json:"response"`
	// Bid is the value the agent offers in market-based coordination.
	Bid float64 `json:"bid"`
}

func (s *Server) registerAgent(c *gin.Context) {
	var req registerAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	caps := make([]agent.Capability, 0, len(req.Capabilities))
	for _, raw := range req.Capabilities {
		capability := agent.Capability(raw)
		if !capability.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown capability " + raw})
			return
		}
		caps = append(caps, capability)
	}

	name := req.Name
	if name == "" {
		name = req.ID
	}
	a := agent.NewFuncAgent(
		agent.Info{ID: req.ID, Name: name, Capabilities: caps},
		func(_ context.Context, input any) (any, error) {
			if req.Response != "" {
				return req.Response, nil
			}
			return input, nil
		},
	)
	s.coordinator.Registry().Register(a)
	go RunResponder(s.coordinator, a, req.Bid, s.stop)

	c.JSON(http.StatusCreated, gin.H{"id": req.ID, "name": name, "capabilities": req.Capabilities})
}

func (s *Server) listAgents(c *gin.Context) {
	type agentView struct {
		ID           string   `json:"id"`
		Name         string   `json:"name"`
		Capabilities []string `json:"capabilities"`
		Active       bool     `json:"active"`
		Load         float64  `json:"load"`
	}

	var out []agentView
	for _, h := range s.coordinator.Registry().All() {
		caps := h.Capabilities()
		tags := make([]string, len(caps))
		for i, capability := range caps {
			tags[i] = capability.String()
		}
		out = append(out, agentView{
			ID:           h.ID(),
			Name:         h.Name(),
			Capabilities: tags,
			Active:       h.Active(),
			Load:         h.Load(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"agents": out})
}

type createTaskRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Input       any      `json:"input"`
	Required    []string `json:"required"`
	Tags        []string `json:"tags"`
}

func (s *Server) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var opts []coordination.TaskOption
	if len(req.Required) > 0 {
		caps := make([]agent.Capability, 0, len(req.Required))
		for _, raw := range req.Required {
			capability := agent.Capability(raw)
			if !capability.IsValid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown capability " + raw})
				return
			}
			caps = append(caps, capability)
		}
		opts = append(opts, coordination.WithRequired(caps...))
	}
	if len(req.Tags) > 0 {
		opts = append(opts, coordination.WithTags(req.Tags...))
	}

	t := s.coordinator.CreateTask(req.Name, req.Description, req.Input, opts...)
	c.JSON(http.StatusCreated, taskView(t))
}

func (s *Server) getTask(c *gin.Context) {
	t, err := s.coordinator.GetTask(c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskView(t))
}

type distributeRequest struct {
	Distributor string `json:"distributor"`
}

func (s *Server) distributeTask(c *gin.Context) {
	var req distributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Distributor == "" {
		req.Distributor = coordination.DistributorCapabilityBased
	}

	agentID, err := s.coordinator.DistributeTask(c.Param("id"), req.Distributor)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agent_id": agentID, "assigned": agentID != ""})
}

type coordinateRequest struct {
	Pattern string   `json:"pattern"`
	Channel string   `json:"channel"`
	Agents  []string `json:"agents"`
}

func (s *Server) coordinateTask(c *gin.Context) {
	var req coordinateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Pattern == "" {
		req.Pattern = coordination.PatternHierarchical
	}
	if req.Channel == "" {
		req.Channel = coordination.ChannelDirect
	}

	r, err := s.coordinator.CoordinateTask(c.Param("id"), req.Pattern, req.Channel, req.Agents...)
	if err != nil {
		s.renderError(c, err)
		return
	}

	// A FAILED result is a legitimate terminal outcome, not an HTTP error.
	c.JSON(http.StatusOK, resultView(r))
}

func (s *Server) getResult(c *gin.Context) {
	r, ok := s.coordinator.ResultFor(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no result for task " + c.Param("id")})
		return
	}
	c.JSON(http.StatusOK, resultView(r))
}

// renderError maps engine errors to HTTP statuses: not-found sentinels to
// 404, validation to 400, anything else to 500.
func (s *Server) renderError(c *gin.Context, err error) {
	var nf *errors.NotFoundError
	if errors.As(err, &nf) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, errors.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func taskView(t *task.Task) gin.H {
	return gin.H{
		"id":          t.ID,
		"name":        t.Name,
		"description": t.Description,
		"status":      t.Status.String(),
		"assigned_to": t.AssignedTo,
		"parent_id":   t.ParentID,
		"subtask_ids": t.SubtaskIDs,
		"tags":        t.Tags,
		"created_at":  t.CreatedAt,
		"updated_at":  t.UpdatedAt,
	}
}

func resultView(r *task.Result) gin.H {
	return gin.H{
		"task_id":   r.TaskID,
		"agent_id":  r.AgentID,
		"output":    r.Output,
		"status":    r.Status.String(),
		"error":     r.Error,
		"metadata":  r.Metadata,
		"timestamp": r.Timestamp,
	}
}
