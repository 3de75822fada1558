// Package status exposes the progress of a training run over http
package status

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zeu5/batch-rl-train/types"
)

// Snapshot of the training progress at a given step
type Snapshot struct {
	RunID      string             `json:"run_id"`
	Step       int                `json:"step"`
	TotalSteps int                `json:"total_steps"`
	Statistics map[string]float64 `json:"statistics"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// Server records a snapshot every Frequency steps and serves the last one
type Server struct {
	Port      int
	Frequency int

	server *http.Server
	router *gin.Engine

	lock     *sync.Mutex
	snapshot Snapshot
}

var _ types.StepHook = &Server{}

func NewServer(runID string, port int, totalSteps int, frequency int) *Server {
	if frequency < 1 {
		frequency = 1
	}
	s := &Server{
		Port:      port,
		Frequency: frequency,
		lock:      new(sync.Mutex),
		snapshot: Snapshot{
			RunID:      runID,
			TotalSteps: totalSteps,
			Statistics: make(map[string]float64),
		},
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/status", s.handleStatus)
	r.GET("/statistics/:name", s.handleStatistic)
	s.router = r
	s.server = &http.Server{
		Addr:    fmt.Sprintf("localhost:%d", port),
		Handler: r,
	}
	return s
}

// Handler serving the status endpoints
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) OnStep(_ types.VectorEnv, agent types.BatchAgent, step int) error {
	if step%s.Frequency != 0 {
		return nil
	}
	stats := make(map[string]float64)
	for _, st := range agent.Statistics() {
		stats[st.Name] = st.Value
	}
	s.lock.Lock()
	s.snapshot.Step = step
	s.snapshot.Statistics = stats
	s.snapshot.UpdatedAt = time.Now()
	s.lock.Unlock()
	return nil
}

// Snapshot returns a copy of the last recorded snapshot
func (s *Server) Snapshot() Snapshot {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := s.snapshot
	out.Statistics = make(map[string]float64, len(s.snapshot.Statistics))
	for k, v := range s.snapshot.Statistics {
		out.Statistics[k] = v
	}
	return out
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.Snapshot())
}

func (s *Server) handleStatistic(c *gin.Context) {
	name := c.Param("name")
	snapshot := s.Snapshot()
	v, ok := snapshot.Statistics[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown statistic " + name})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "step": snapshot.Step, "value": v})
}

// Start serving in the background until ctx is done
func (s *Server) Start(ctx context.Context) {
	go func() {
		s.server.ListenAndServe()
	}()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
