// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the research funnel over HTTP with gin.
//
//	GET  /health          liveness
//	GET  /examples        sample research queries
//	GET  /domains         domain list; ?arxiv=cs.LG resolves an arXiv category
//	GET  /limits          request limits and defaults
//	POST /research        run the funnel (sync 200, async 202 with a task id)
//	GET  /research        recent async jobs, newest first (?limit=n)
//	GET  /research/:id    poll an async job
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/research-funnel/internal/domain"
	"github.com/pdiddy/research-funnel/internal/funnel"
	"github.com/pdiddy/research-funnel/internal/jobs"
	"github.com/pdiddy/research-funnel/pkg/types"
)

const (
	shutdownTimeout = 10 * time.Second

	defaultListLimit = 20
	maxListLimit     = 100
)

// Researcher runs one research request.
type Researcher interface {
	Research(ctx context.Context, req types.ResearchRequest) (*types.ResearchResult, error)
}

// JobStore queues research requests and reports on them.
type JobStore interface {
	Submit(ctx context.Context, req types.ResearchRequest) (jobs.Job, error)
	Get(ctx context.Context, id string) (jobs.Job, error)
	List(ctx context.Context, limit int) ([]jobs.Job, error)
}

// Server holds the HTTP handlers. Jobs may be nil, in which case every
// request runs synchronously and polling is disabled.
type Server struct {
	Funnel Researcher
	Jobs   JobStore
	Config types.PipelineConfig
	Logger *zap.Logger
}

// New creates a server.
func New(f Researcher, js JobStore, cfg types.PipelineConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Funnel: f, Jobs: js, Config: cfg, Logger: logger}
}

var examples = []string{
	"What are the latest breakthroughs in protein folding using AlphaFold?",
	"How do current climate models compare in predicting sea level rise?",
	"What trends are emerging in single-cell RNA sequencing analysis?",
	"How is CRISPR being used in cancer immunotherapy?",
	"What advances have been made in quantum computing algorithms?",
	"How effective are mRNA vaccines against emerging variants?",
	"What role does the gut microbiome play in neurodegenerative diseases?",
	"What recent developments exist in neuromorphic computing architectures?",
	"How do epigenetic modifications influence cancer drug resistance?",
	"What progress has been made in fusion energy reactor designs?",
	"How are organoids being used to model human diseases?",
	"What new insights exist about dark matter detection methods?",
}

// Router builds the gin engine with all routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog(), securityHeaders())

	r.GET("/", s.root)
	r.GET("/health", s.health)
	r.GET("/examples", s.examples)
	r.GET("/domains", s.domains)
	r.GET("/limits", s.limits)
	r.POST("/research", s.research)
	r.GET("/research", s.list)
	r.GET("/research/:id", s.status)
	return r
}

// Run serves on Config.Server.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Config.Server.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", zap.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.Logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errc
	return nil
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		c.Next()
	}
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "research-funnel API",
		"endpoints": []string{"/health", "/examples", "/domains", "/limits", "POST /research", "GET /research", "GET /research/:id"},
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) examples(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"examples": examples})
}

func (s *Server) domains(c *gin.Context) {
	if cat := c.Query("arxiv"); cat != "" {
		d, ok := domain.FromArxivCategory(cat)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown arXiv category: " + cat})
			return
		}
		c.JSON(http.StatusOK, gin.H{"category": cat, "domain": d, "label": d.Label()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"domains": domain.All()})
}

func (s *Server) limits(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"max_results_default": s.Config.Search.MaxResults,
		"max_results_cap":     s.Config.Server.MaxResultsCap,
		"sources":             types.AllSources,
		"default_sources":     s.defaultSources(),
		"max_queries":         s.Config.Expansion.MaxQueries,
		"budget":              s.Config.Budget,
		"async":               s.async(),
	})
}

func (s *Server) defaultSources() []types.Source {
	if len(s.Config.Search.Sources) > 0 {
		return s.Config.Search.Sources
	}
	return types.DefaultSources
}

func (s *Server) async() bool {
	return s.Config.Server.Async && s.Jobs != nil
}

// normalize validates req in place. It returns a client-facing error
// message, or "" when the request can run.
func (s *Server) normalize(req *types.ResearchRequest) string {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return "missing 'query'"
	}

	if len(req.Sources) > 0 {
		var valid []string
		for _, name := range req.Sources {
			if src, err := types.ParseSource(name); err == nil {
				valid = append(valid, string(src))
			}
		}
		if len(valid) == 0 {
			return "at least one valid source must be selected; valid sources: " + joinSources(types.AllSources)
		}
		req.Sources = valid
	}

	if req.MaxResults <= 0 {
		req.MaxResults = s.Config.Search.MaxResults
	}
	if limit := s.Config.Server.MaxResultsCap; limit > 0 && req.MaxResults > limit {
		req.MaxResults = limit
	}
	return ""
}

func joinSources(ss []types.Source) string {
	names := make([]string, len(ss))
	for i, s := range ss {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func (s *Server) research(c *gin.Context) {
	var req types.ResearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if msg := s.normalize(&req); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	if s.async() {
		job, err := s.Jobs.Submit(c.Request.Context(), req)
		if err != nil {
			s.Logger.Error("enqueueing job", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue task"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"task_id": job.ID, "status": job.Status})
		return
	}

	res, err := s.Funnel.Research(c.Request.Context(), req)
	switch {
	case errors.Is(err, funnel.ErrNoSources), errors.Is(err, funnel.ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		s.Logger.Error("research failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, res)
	}
}

// statusResponse is the polling view of a job.
type statusResponse struct {
	TaskID string                `json:"task_id"`
	Status jobs.Status           `json:"status"`
	Result *types.ResearchResult `json:"result,omitempty"`
	Error  string                `json:"error,omitempty"`
}

func (s *Server) status(c *gin.Context) {
	if s.Jobs == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "async jobs disabled"})
		return
	}
	job, err := s.Jobs.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, jobs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown task id"})
	case err != nil:
		s.Logger.Error("reading job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read task"})
	default:
		c.JSON(http.StatusOK, statusResponse{
			TaskID: job.ID,
			Status: job.Status,
			Result: job.Result,
			Error:  job.Error,
		})
	}
}

// jobSummary is one row of the job listing; results are fetched per job.
type jobSummary struct {
	TaskID    string      `json:"task_id"`
	Status    jobs.Status `json:"status"`
	Query     string      `json:"query"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

func (s *Server) list(c *gin.Context) {
	if s.Jobs == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "async jobs disabled"})
		return
	}
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxListLimit)
	}

	list, err := s.Jobs.List(c.Request.Context(), limit)
	if err != nil {
		s.Logger.Error("listing jobs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tasks"})
		return
	}
	out := make([]jobSummary, len(list))
	for i, j := range list {
		out[i] = jobSummary{
			TaskID:    j.ID,
			Status:    j.Status,
			Query:     j.Request.Query,
			Error:     j.Error,
			CreatedAt: j.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"tasks": out})
}
