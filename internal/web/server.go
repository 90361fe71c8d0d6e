// Package web exposes capture sessions over HTTP and streams their
// snapshots to websocket viewers.
package web

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"

	"github.com/CodingBot000/miracle3day-sub001/internal/clock"
	"github.com/CodingBot000/miracle3day-sub001/internal/config"
	"github.com/CodingBot000/miracle3day-sub001/internal/log"
)

// Server is the HTTP front of the capture engine
type Server struct {
	app      *fiber.App
	cfg      *config.Config
	registry *Registry

	// ctx outlives individual requests so sessions keep ticking between them
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates the server and its routes. A nil clock uses the real
// clock.
func NewServer(cfg *config.Config, c clock.Clock) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:      cfg,
		registry: NewRegistry(cfg, c),
		ctx:      ctx,
		cancel:   cancel,
	}

	app := fiber.New(fiber.Config{
		AppName:               "Capture Guidance",
		BodyLimit:             cfg.Server.BodyLimit,
		StrictRouting:         true,
		CaseSensitive:         true,
		DisableStartupMessage: true,
		JSONEncoder:           jsoniter.Marshal,
		JSONDecoder:           jsoniter.Unmarshal,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(requestLogger())

	api := app.Group("/api")
	api.Post("/sessions", s.handleCreateSession)
	api.Get("/sessions/:id", s.handleGetSession)
	api.Delete("/sessions/:id", s.handleDeleteSession)
	api.Post("/sessions/:id/frames", s.handleUploadFrame)
	api.Post("/sessions/:id/analysis", s.handlePushAnalysis)
	api.Get("/sessions/:id/guidance", s.handleGetGuidance)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/sessions/:id", s.lookupSession, websocket.New(s.handleSessionWS))

	s.app = app
	return s
}

// App returns the fiber app, for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Registry returns the session registry
func (s *Server) Registry() *Registry {
	return s.registry
}

// Listen serves on the configured address until Shutdown
func (s *Server) Listen() error {
	log.Infof("Capture API listening on %s", s.cfg.Server.Addr)
	return s.app.Listen(s.cfg.Server.Addr)
}

// Shutdown stops every session and then the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.registry.Close()
	s.cancel()
	return s.app.ShutdownWithContext(ctx)
}

// errorHandler renders every error as {"error": message}
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// requestLogger logs one line per request at a level matching its status
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				return herr
			}
		}

		status := c.Response().StatusCode()
		fields := log.Fields{
			"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.IP(),
		}

		switch {
		case status >= 500:
			log.Error(fields, "Server error")
		case status >= 400:
			log.Warn(fields, "Client error")
		default:
			log.Debug(fields, "Request")
		}
		return nil
	}
}
