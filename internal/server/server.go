// Package server exposes simulation runs over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"uniswap-sim-lab/internal/domain"
	"uniswap-sim-lab/internal/observability"
	"uniswap-sim-lab/internal/simulation"
	"uniswap-sim-lab/internal/storage"
)

// progressPollInterval is how often the websocket stream re-reads progress.
const progressPollInterval = 250 * time.Millisecond

// Server handles the simulation HTTP API.
type Server struct {
	runner   *simulation.Runner
	results  storage.ResultStore
	progress storage.ProgressStore
	metrics  *observability.Metrics
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	running map[string]bool
}

// Options contains configuration for creating a Server.
// Runner and ResultStore are required.
type Options struct {
	Runner        *simulation.Runner
	ResultStore   storage.ResultStore
	ProgressStore storage.ProgressStore
	Metrics       *observability.Metrics
	Logger        *zap.Logger
}

// New creates an HTTP server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		runner:   opts.Runner,
		results:  opts.ResultStore,
		progress: opts.ProgressStore,
		metrics:  opts.Metrics,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		running: make(map[string]bool),
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := r.Group("/api/v1")
	api.POST("/simulations", s.handleCreate)
	api.GET("/simulations/:id", s.handleGet)
	api.GET("/simulations/:id/progress", s.handleProgress)
	api.GET("/simulations/:id/stream", s.handleStream)

	return r
}

// handleCreate starts a simulation asynchronously and returns its ID.
func (s *Server) handleCreate(c *gin.Context) {
	var params domain.SimulationParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if params.PoolID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "poolId is required"})
		return
	}
	if params.StrategyConfig != nil {
		if err := params.StrategyConfig.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	simulationID := s.runner.NewSimulationID(params)

	s.mu.Lock()
	s.running[simulationID] = true
	s.mu.Unlock()

	go s.execute(simulationID, params)

	c.JSON(http.StatusAccepted, gin.H{
		"simulationId": simulationID,
		"isRunning":    true,
		"progress":     0,
	})
}

// execute runs a simulation in the background and persists its result.
func (s *Server) execute(simulationID string, params domain.SimulationParams) {
	defer func() {
		s.mu.Lock()
		delete(s.running, simulationID)
		s.mu.Unlock()
	}()

	logger := s.logger.With(zap.String("simulationId", simulationID))

	result, err := s.runner.RunWithID(context.Background(), simulationID, params)
	if err != nil {
		logger.Error("simulation failed", zap.Error(err))
		return
	}

	if err := s.results.Insert(context.Background(), result); err != nil {
		logger.Error("failed to persist result", zap.Error(err))
		if s.metrics != nil {
			s.metrics.RecordSinkFailure("results")
		}
	}
}

// handleGet returns a completed result, or the run state while in flight.
func (s *Server) handleGet(c *gin.Context) {
	id := c.Param("id")

	result, err := s.results.GetByID(c.Request.Context(), id)
	if err == nil {
		c.JSON(http.StatusOK, result)
		return
	}
	if !errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if s.isRunning(id) {
		c.JSON(http.StatusOK, gin.H{
			"simulationId": id,
			"isRunning":    true,
			"progress":     s.currentProgress(c.Request.Context(), id),
		})
		return
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "simulation not found"})
}

// handleProgress returns the latest progress checkpoint.
func (s *Server) handleProgress(c *gin.Context) {
	id := c.Param("id")

	if !s.isRunning(id) {
		if _, err := s.results.GetByID(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "simulation not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"simulationId": id, "isRunning": false, "progress": 100})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"simulationId": id,
		"isRunning":    true,
		"progress":     s.currentProgress(c.Request.Context(), id),
	})
}

// handleStream pushes progress updates over a websocket until the run finishes.
func (s *Server) handleStream(c *gin.Context) {
	id := c.Param("id")

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(progressPollInterval)
	defer ticker.Stop()

	last := -1
	for {
		progress := s.currentProgress(c.Request.Context(), id)
		running := s.isRunning(id)

		if progress != last {
			msg := gin.H{"simulationId": id, "progress": progress, "isRunning": running}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
			last = progress
		}
		// A finished run may have stalled short of 100 if a best-effort
		// progress write failed; close after the final state is sent.
		if !running {
			return
		}

		select {
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) isRunning(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running[id]
}

func (s *Server) currentProgress(ctx context.Context, id string) int {
	if s.progress == nil {
		return 0
	}
	progress, err := s.progress.GetProgress(ctx, id)
	if err != nil {
		return 0
	}
	return progress
}
