// Package rest exposes editor sessions over HTTP.
package rest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/relampo/relampo-yml-editor-sub000/internal/config"
	"github.com/relampo/relampo-yml-editor-sub000/internal/editor"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/logger"
)

// Config holds the configuration for the REST API server.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	EnableCORS   bool
	CORSOrigins  []string
	BodyLimit    int
	MaxSessions  int
	Indent       int
	AppName      string
}

// DefaultConfig returns the server settings of the default configuration.
func DefaultConfig() *Config {
	return ConfigFrom(config.DefaultConfig())
}

// ConfigFrom picks the server settings out of the application config.
func ConfigFrom(c *config.Config) *Config {
	return &Config{
		Address:      c.Server.Address,
		ReadTimeout:  c.Server.ReadTimeout,
		WriteTimeout: c.Server.WriteTimeout,
		EnableCORS:   c.Server.EnableCORS,
		CORSOrigins:  c.Server.CORSOrigins,
		BodyLimit:    c.Server.BodyLimit,
		MaxSessions:  c.Editor.MaxSessions,
		Indent:       c.Editor.Indent,
		AppName:      c.App.Name,
	}
}

// Server represents the REST API server.
type Server struct {
	app      *fiber.App
	config   *Config
	sessions *SessionStore
	log      *zap.Logger
}

// NewServer creates a server. A nil config means DefaultConfig and a nil
// logger means the process logger.
func NewServer(cfg *Config, log *zap.Logger) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logger.Named("rest")
	}

	shellLog := log.Named("editor")
	sessions, err := NewSessionStore(cfg.MaxSessions, func() *editor.Shell {
		return editor.New(editor.WithIndent(cfg.Indent), editor.WithLogger(shellLog))
	}, log)
	if err != nil {
		return nil, fmt.Errorf("create session store: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		BodyLimit:             cfg.BodyLimit,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		ErrorHandler:          errorHandler(log),
		DisableStartupMessage: true,
	})

	s := &Server{
		app:      app,
		config:   cfg,
		sessions: sessions,
		log:      log,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.app.Use(fiberrecover.New(fiberrecover.Config{
		EnableStackTrace: true,
	}))
	s.app.Use(s.requestLogger())

	if s.config.EnableCORS {
		s.app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(s.config.CORSOrigins, ","),
			AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
			AllowHeaders: "Origin,Content-Type,Accept",
			MaxAge:       86400,
		}))
	}
}

// requestLogger logs one line per request through zap.
func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// let the error handler set the status before logging it
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		s.log.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)))
		return nil
	}
}

func (s *Server) setupRoutes() {
	s.app.Get("/health", s.healthCheck)

	api := s.app.Group("/api/v1")
	api.Get("/health", s.healthCheck)
	api.Get("/node-types/:type/addable", s.addableTypes)

	docs := api.Group("/documents")
	docs.Get("/", s.listDocuments)
	docs.Post("/", s.createDocument)
	docs.Get("/:id", s.getDocument)
	docs.Delete("/:id", s.closeDocument)
	docs.Put("/:id/text", s.editText)
	docs.Get("/:id/download", s.download)
	docs.Get("/:id/lint", s.lintDocument)
	docs.Put("/:id/selection", s.selectNode)
	docs.Post("/:id/move", s.moveNode)

	nodes := docs.Group("/:id/nodes/:nodeId")
	nodes.Post("/toggle", s.toggleNode)
	nodes.Post("/enabled", s.setEnabled)
	nodes.Post("/data", s.updateData)
	nodes.Post("/rename", s.renameNode)
	nodes.Post("/children", s.addChild)
	nodes.Delete("/", s.removeNode)

	drag := docs.Group("/:id/drag")
	drag.Post("/start", s.dragStart)
	drag.Post("/over", s.dragOver)
	drag.Post("/end", s.dragEnd)
	docs.Post("/:id/drop", s.drop)
}

// Start starts the REST API server.
func (s *Server) Start() error {
	s.log.Info("listening", zap.String("address", s.config.Address))
	return s.app.Listen(s.config.Address)
}

// StartWithContext serves until ctx is done, then shuts down.
func (s *Server) StartWithContext(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	select {
	case <-ctx.Done():
		return s.ShutdownWithTimeout(10 * time.Second)
	case err := <-errCh:
		return err
	}
}

// ShutdownWithTimeout gracefully shuts down the server.
func (s *Server) ShutdownWithTimeout(timeout time.Duration) error {
	s.log.Info("shutting down", zap.Int("sessions", s.sessions.Len()))
	return s.app.ShutdownWithTimeout(timeout)
}

// App returns the underlying Fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Sessions returns the session store.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// statusOf maps editor errors to HTTP statuses.
func statusOf(err error) int {
	var fe *fiber.Error
	var pe *editor.PlacementError
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, editor.ErrNodeNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, editor.ErrNoTree), errors.Is(err, editor.ErrNotDragging):
		return fiber.StatusConflict
	case errors.As(err, &pe):
		return fiber.StatusUnprocessableEntity
	case editor.IsParseError(err):
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := statusOf(err)
		message := err.Error()
		if code == fiber.StatusInternalServerError {
			log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}
		return c.Status(code).JSON(ErrorResponse{
			Error:   fmt.Sprintf("error_%d", code),
			Message: message,
		})
	}
}
