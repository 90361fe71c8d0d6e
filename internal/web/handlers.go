package web

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"

	"github.com/CodingBot000/miracle3day-sub001/internal/capture"
	"github.com/CodingBot000/miracle3day-sub001/internal/frame"
	"github.com/CodingBot000/miracle3day-sub001/internal/log"
	"github.com/CodingBot000/miracle3day-sub001/internal/quality"
)

const localEntry = "entry"

// SessionInfo describes a session to API clients
type SessionInfo struct {
	ID             string        `json:"id"`
	Active         bool          `json:"active"`
	Mode           string        `json:"mode"`
	TickIntervalMS int64         `json:"tick_interval_ms"`
	Viewers        int           `json:"viewers"`
	Stats          capture.Stats `json:"stats"`
}

func (s *Server) info(e *Entry) SessionInfo {
	return SessionInfo{
		ID:             e.Session.ID(),
		Active:         e.Session.Active(),
		Mode:           s.cfg.Quality.Mode,
		TickIntervalMS: s.cfg.Capture.TickInterval.Milliseconds(),
		Viewers:        e.Hub.ClientCount(),
		Stats:          e.Session.Stats(),
	}
}

func (s *Server) entry(c *fiber.Ctx) (*Entry, error) {
	e, err := s.registry.Get(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return e, nil
}

// handleCreateSession opens a session and starts its sampling loop
func (s *Server) handleCreateSession(c *fiber.Ctx) error {
	e, err := s.registry.Create(s.ctx)
	if errors.Is(err, ErrTooManySessions) {
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}
	if err != nil {
		return err
	}
	log.Infof("Created session %s", e.Session.ID())
	return c.Status(fiber.StatusCreated).JSON(s.info(e))
}

func (s *Server) handleGetSession(c *fiber.Ctx) error {
	e, err := s.entry(c)
	if err != nil {
		return err
	}
	return c.JSON(s.info(e))
}

func (s *Server) handleDeleteSession(c *fiber.Ctx) error {
	if err := s.registry.Delete(c.Params("id")); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleUploadFrame accepts either an encoded image or raw RGBA bytes with
// width and height query parameters. The frame waits for the next tick.
func (s *Server) handleUploadFrame(c *fiber.Ctx) error {
	e, err := s.entry(c)
	if err != nil {
		return err
	}
	if !e.Limiter.Allow() {
		return fiber.NewError(fiber.StatusTooManyRequests, "too many frames")
	}

	buf, err := s.decodeFrame(c)
	if err != nil {
		return err
	}
	e.Frames.Put(buf)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"width":  buf.Width,
		"height": buf.Height,
	})
}

func (s *Server) decodeFrame(c *fiber.Ctx) (*frame.PixelBuffer, error) {
	body := c.Body()
	if len(body) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "empty frame")
	}

	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEOctetStream) {
		width, werr := strconv.Atoi(c.Query("width"))
		height, herr := strconv.Atoi(c.Query("height"))
		if werr != nil || herr != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "raw frames need width and height")
		}
		// The request body is reused by fasthttp after the handler returns
		buf := &frame.PixelBuffer{Width: width, Height: height, Pix: append([]byte(nil), body...)}
		if err := buf.Validate(); err != nil {
			return nil, fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		return buf, nil
	}

	buf, _, err := frame.DecodeBytes(body, s.cfg.Frame.MaxDimension)
	if errors.Is(err, frame.ErrTooLarge) {
		return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge, err.Error())
	}
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnsupportedMediaType, err.Error())
	}
	return buf, nil
}

// handlePushAnalysis records a result produced by an external detector
func (s *Server) handlePushAnalysis(c *fiber.Ctx) error {
	e, err := s.entry(c)
	if err != nil {
		return err
	}

	var a quality.Analysis
	if err := c.BodyParser(&a); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid analysis: "+err.Error())
	}
	e.External.Push(a)
	return c.SendStatus(fiber.StatusAccepted)
}

// handleGetGuidance returns the last published snapshot, or 204 before the
// first successful tick
func (s *Server) handleGetGuidance(c *fiber.Ctx) error {
	e, err := s.entry(c)
	if err != nil {
		return err
	}
	snap, ok := e.Session.Store().Get()
	if !ok {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(snap)
}

// lookupSession resolves the session before the websocket upgrade so an
// unknown id gets a plain 404
func (s *Server) lookupSession(c *fiber.Ctx) error {
	e, err := s.entry(c)
	if err != nil {
		return err
	}
	c.Locals(localEntry, e)
	return c.Next()
}

// handleSessionWS streams snapshots, starting with the current one
func (s *Server) handleSessionWS(conn *websocket.Conn) {
	e, ok := conn.Locals(localEntry).(*Entry)
	if !ok {
		conn.Close()
		return
	}

	var initial []byte
	if snap, ok := e.Session.Store().Get(); ok {
		data, err := jsoniter.Marshal(snap)
		if err != nil {
			log.Warnf("Failed to encode snapshot for %s: %v", e.Session.ID(), err)
		} else {
			initial = data
		}
	}

	client := NewClient(e.Hub, conn, initial)
	if client == nil {
		conn.Close()
		return
	}
	client.Run()
}
