package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/zeu5/overcooked-rl/overcooked"
)

var ErrSessionNotFound = errors.New("session not found")

// LayoutLoader resolves a layout name
type LayoutLoader func(name string) (*overcooked.Layout, error)

// session is a running episode driven by a remote client
type session struct {
	id     string
	engine *overcooked.Engine

	lock        *sync.Mutex
	state       overcooked.State
	watchers    map[int]chan frame
	nextWatcher int
}

// Server exposes the engine over HTTP, one session per episode
type Server struct {
	Addr   string
	ctx    context.Context
	server *http.Server
	router *gin.Engine
	logger *log.Logger

	loadLayout    LayoutLoader
	defaultLayout string
	maxSteps      int
	upgrader      websocket.Upgrader

	lock     *sync.Mutex
	sessions map[string]*session
}

type Config struct {
	Addr          string
	DefaultLayout string
	MaxSteps      int
	Layouts       LayoutLoader
	Logger        *log.Logger
}

func NewServer(ctx context.Context, cfg Config) *Server {
	if cfg.Layouts == nil {
		cfg.Layouts = overcooked.LayoutByName
	}
	if cfg.DefaultLayout == "" {
		cfg.DefaultLayout = "cramped_room"
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	s := &Server{
		Addr:          cfg.Addr,
		ctx:           ctx,
		logger:        cfg.Logger,
		loadLayout:    cfg.Layouts,
		defaultLayout: cfg.DefaultLayout,
		maxSteps:      cfg.MaxSteps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		lock:     new(sync.Mutex),
		sessions: make(map[string]*session),
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/layouts", s.handleLayouts)
	r.POST("/episodes", s.handleCreate)
	r.GET("/episodes/:id", s.handleGet)
	r.POST("/episodes/:id/step", s.handleStep)
	r.DELETE("/episodes/:id", s.handleDelete)
	r.GET("/episodes/:id/watch", s.handleWatch)
	s.router = r
	s.server = &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}
	return s
}

// Handler returns the router, used to serve the API without listening
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves in the background until the context is cancelled
func (s *Server) Start() {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("server: %v", err)
		}
	}()

	go func() {
		<-s.ctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.server.Shutdown(ctx)
	}()
}

func (s *Server) getSession(id string) (*session, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// NumSessions returns the number of open sessions
func (s *Server) NumSessions() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.sessions)
}

type createRequest struct {
	Layout   string `json:"layout"`
	MaxSteps int    `json:"max_steps"`
}

type stepRequest struct {
	Actions []interface{} `json:"actions"`
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, overcooked.ErrUnknownLayout):
		return http.StatusNotFound
	case errors.Is(err, overcooked.ErrInvalidAction):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) handleLayouts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"layouts": overcooked.LayoutNames()})
}

func (s *Server) handleCreate(c *gin.Context) {
	req := createRequest{}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to unmarshal request"})
			return
		}
	}
	if req.Layout == "" {
		req.Layout = s.defaultLayout
	}
	if req.MaxSteps == 0 {
		req.MaxSteps = s.maxSteps
	}
	layout, err := s.loadLayout(req.Layout)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	engine := overcooked.New(layout, overcooked.WithMaxSteps(req.MaxSteps), overcooked.WithLogger(s.logger))
	state, obs := engine.Reset()

	sess := &session{
		id:       uuid.NewString(),
		engine:   engine,
		lock:     new(sync.Mutex),
		state:    state,
		watchers: make(map[int]chan frame),
	}
	s.lock.Lock()
	s.sessions[sess.id] = sess
	s.lock.Unlock()

	c.JSON(http.StatusCreated, gin.H{
		"id":           sess.id,
		"layout":       layout.Name,
		"max_steps":    engine.MaxSteps(),
		"state":        state,
		"observations": obs,
		"render":       overcooked.Render(state),
	})
}

func (s *Server) handleGet(c *gin.Context) {
	sess, err := s.getSession(c.Param("id"))
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	sess.lock.Lock()
	state := sess.state
	sess.lock.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"id":     sess.id,
		"layout": sess.engine.Layout().Name,
		"state":  state,
		"render": overcooked.Render(state),
	})
}

func (s *Server) handleStep(c *gin.Context) {
	sess, err := s.getSession(c.Param("id"))
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	req := stepRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to unmarshal request"})
		return
	}
	actions, err := parseActions(req.Actions)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	if err := sess.engine.Validate(actions); err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	sess.lock.Lock()
	result := sess.engine.Step(sess.state, actions)
	sess.state = result.State
	sess.broadcast(newFrame(actions, result))
	sess.lock.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"result": result,
		"render": overcooked.Render(result.State),
	})
}

func (s *Server) handleDelete(c *gin.Context) {
	id := c.Param("id")
	s.lock.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.lock.Unlock()
	if !ok {
		err := fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	sess.closeWatchers()
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// parseActions accepts action names or indices
func parseActions(raw []interface{}) ([overcooked.NumAgents]overcooked.Action, error) {
	var out [overcooked.NumAgents]overcooked.Action
	if len(raw) != overcooked.NumAgents {
		return out, fmt.Errorf("%w: expected %d actions, got %d", overcooked.ErrInvalidAction, overcooked.NumAgents, len(raw))
	}
	for i, r := range raw {
		switch v := r.(type) {
		case string:
			a, err := overcooked.ParseAction(v)
			if err != nil {
				return out, err
			}
			out[i] = a
		case float64:
			if v != float64(int(v)) {
				return out, fmt.Errorf("%w: %v", overcooked.ErrInvalidAction, v)
			}
			out[i] = overcooked.Action(int(v))
		default:
			return out, fmt.Errorf("%w: %v", overcooked.ErrInvalidAction, r)
		}
	}
	return out, nil
}
