// Package server exposes the runner over HTTP: start and stop commands, the
// run status, a server sent event stream of run events and the application
// records.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/goapply/goapply/internal/engine"
	"github.com/goapply/goapply/internal/events"
	"github.com/goapply/goapply/internal/log"
	"github.com/goapply/goapply/internal/output"
	"github.com/goapply/goapply/internal/types"
)

const startAction = "startAutomation"

type Config struct {
	Host string `yaml:"host" env:"GOAPPLY_HOST" env-default:"127.0.0.1"`
	Port int    `yaml:"port" env:"GOAPPLY_PORT" env-default:"8080"`
	// JWTSecret enables HS256 bearer token auth on /api when set.
	JWTSecret      string   `yaml:"jwt_secret" env:"GOAPPLY_JWT_SECRET"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"GOAPPLY_ALLOWED_ORIGINS" env-separator:","`
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Automation is the part of engine.Runner the server drives.
type Automation interface {
	Start(ctx context.Context, cmd engine.StartCommand) (engine.Response, error)
	Stop() engine.Response
	Status() engine.Status
}

type Server struct {
	cfg     Config
	auto    Automation
	events  *events.Broadcaster
	records output.Reader
	router  *gin.Engine
}

// New builds the router. events and records may be nil, in which case the
// matching endpoints answer 501.
func New(cfg Config, auto Automation, b *events.Broadcaster, records output.Reader) *Server {
	s := &Server{
		cfg:     cfg,
		auto:    auto,
		events:  b,
		records: records,
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), cors.New(corsConfig(s.cfg.AllowedOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	if s.cfg.JWTSecret != "" {
		api.Use(AuthMiddleware(s.cfg.JWTSecret))
	}
	api.POST("/automation/start", s.start)
	api.POST("/automation/stop", s.stop)
	api.GET("/automation/status", s.status)
	api.GET("/automation/events", s.stream)
	api.GET("/applications", s.applications)
	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, "Authorization")
	c.MaxAge = 12 * time.Hour
	all := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			all = true
		}
	}
	if all {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

// requestLogger logs every request through the context logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.LoggerFromContext(c.Request.Context()).Debug("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("took", time.Since(start)))
	}
}

// startRequest is the inbound start command as sent by the dashboard.
type startRequest struct {
	Action string    `json:"action"`
	Data   startData `json:"data"`
}

type startData struct {
	Platform string `json:"platform"`
	types.SearchCriteria
}

func (s *Server) start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, engine.Response{Message: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if req.Action != "" && req.Action != startAction {
		c.JSON(http.StatusBadRequest, engine.Response{Message: fmt.Sprintf("unknown action %q", req.Action)})
		return
	}
	p, err := types.ParsePlatform(req.Data.Platform)
	if err != nil {
		c.JSON(http.StatusBadRequest, engine.Response{Message: err.Error()})
		return
	}
	if err := req.Data.SearchCriteria.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, engine.Response{Message: err.Error()})
		return
	}

	log.LoggerFromContext(c.Request.Context()).Info("start requested",
		slog.String("platform", string(p)),
		slog.String("subject", c.GetString(subjectKey)))
	resp, err := s.auto.Start(c.Request.Context(), engine.StartCommand{Platform: p, Criteria: req.Data.SearchCriteria})
	switch {
	case errors.Is(err, engine.ErrAlreadyRunning):
		c.JSON(http.StatusConflict, resp)
	case err != nil:
		log.LoggerFromContext(c.Request.Context()).Error("failed to start automation", slog.String("err", err.Error()))
		c.JSON(http.StatusInternalServerError, resp)
	default:
		c.JSON(http.StatusAccepted, resp)
	}
}

func (s *Server) stop(c *gin.Context) {
	c.JSON(http.StatusOK, s.auto.Stop())
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, s.auto.Status())
}

// stream relays run events until the client goes away.
func (s *Server) stream(c *gin.Context) {
	if s.events == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "event stream disabled"})
		return
	}
	ch, unsubscribe := s.events.Subscribe()
	defer unsubscribe()
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(string(ev.Action), ev)
			return true
		}
	})
}

func (s *Server) applications(c *gin.Context) {
	if s.records == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": output.ErrNotListable.Error()})
		return
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non negative integer"})
			return
		}
		limit = n
	}
	recs, err := s.records.List(c.Request.Context(), limit)
	if err != nil {
		log.LoggerFromContext(c.Request.Context()).Error("failed to list applications", slog.String("err", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if recs == nil {
		recs = []types.ApplicationRecord{}
	}
	c.JSON(http.StatusOK, recs)
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	logger := log.LoggerFromContext(ctx)
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
