// Package devserver is a small reference implementation of the todo API,
// used for local development and client integration tests.
package devserver

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
)

// Options configures a Server.
type Options struct {
	DataFile string // JSON file to persist to; empty keeps everything in memory
	Prefix   string // route prefix, default "/api"
	Logger   hclog.Logger
	NewID    func() string
}

// Server serves /todos from an in-memory list, newest first.
type Server struct {
	mu    sync.Mutex
	items []model.Todo

	dataFile string
	newID    func() string
	log      hclog.Logger
	router   *gin.Engine
}

// New builds a server, loading DataFile when set.
func New(opts Options) (*Server, error) {
	log := opts.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	s := &Server{
		items:    []model.Todo{},
		dataFile: opts.DataFile,
		newID:    newID,
		log:      log,
	}
	if s.dataFile != "" {
		items, err := jsonstore.Load(s.dataFile)
		if err != nil {
			return nil, err
		}
		s.items = items
		log.Info("loaded todos", "file", s.dataFile, "count", len(items))
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "/api"
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	api := router.Group(prefix)
	{
		api.GET("/todos", s.handleList)
		api.POST("/todos", s.handleCreate)
		api.PUT("/todos/:id", s.handleUpdate)
		api.DELETE("/todos/:id", s.handleDelete)
	}
	s.router = router
	return s, nil
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Run listens on addr until the listener fails.
func (s *Server) Run(addr string) error {
	s.log.Info("listening", "addr", addr)
	return s.router.Run(addr)
}

// Snapshot returns a copy of the stored list.
func (s *Server) Snapshot() []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Clone(s.items)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"request_id", c.GetHeader("X-Request-ID"),
			"elapsed", time.Since(start),
		)
	}
}

type createRequest struct {
	Title *string `json:"title"`
}

type updateRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

func (s *Server) handleList(c *gin.Context) {
	c.JSON(http.StatusOK, s.Snapshot())
}

func (s *Server) handleCreate(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t := model.Todo{ID: s.newID(), Title: strings.TrimSpace(*req.Title)}
	next := append([]model.Todo{t}, s.items...)
	if err := s.persist(next); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *Server) handleUpdate(c *gin.Context) {
	id := c.Param("id")
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title == nil && req.Completed == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title must not be empty"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := model.IndexOf(s.items, id)
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "todo not found"})
		return
	}
	next := model.Clone(s.items)
	if req.Title != nil {
		next[i].Title = strings.TrimSpace(*req.Title)
	}
	if req.Completed != nil {
		next[i].Completed = *req.Completed
	}
	if err := s.persist(next); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, next[i])
}

func (s *Server) handleDelete(c *gin.Context) {
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	i := model.IndexOf(s.items, id)
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "todo not found"})
		return
	}
	next := make([]model.Todo, 0, len(s.items)-1)
	next = append(next, s.items[:i]...)
	next = append(next, s.items[i+1:]...)
	if err := s.persist(next); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// persist writes next to disk (if configured) and then commits it.
// Caller holds s.mu.
func (s *Server) persist(next []model.Todo) error {
	if s.dataFile != "" {
		if err := jsonstore.Save(s.dataFile, next); err != nil {
			s.log.Error("persist failed", "file", s.dataFile, "error", err)
			return err
		}
	}
	s.items = next
	return nil
}
