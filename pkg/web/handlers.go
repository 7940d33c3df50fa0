package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/yukti-live/yukti/pkg/hub"
	"github.com/yukti-live/yukti/pkg/session"
)

func (s *Server) conversation() (Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.conv == nil {
		return nil, errors.New("no conversation bound")
	}
	return s.conv, nil
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.status())
}

func (s *Server) handleTranscript(c *fiber.Ctx) error {
	s.mu.RLock()
	out := make([]TranscriptEntry, len(s.transcript))
	copy(out, s.transcript)
	s.mu.RUnlock()
	return c.JSON(out)
}

func (s *Server) handleConnect(c *fiber.Ctx) error {
	conv, err := s.conversation()
	if err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}

	if err := conv.Connect(c.Context()); err != nil {
		var perr *session.PermissionError
		var serr *session.ConnectionSetupError
		switch {
		case errors.Is(err, session.ErrSessionInProgress):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		case errors.As(err, &perr):
			return fiber.NewError(fiber.StatusForbidden, err.Error())
		case errors.As(err, &serr):
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		default:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(s.status())
}

func (s *Server) handleDisconnect(c *fiber.Ctx) error {
	conv, err := s.conversation()
	if err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}
	if err := conv.Disconnect(); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(s.status())
}

func (s *Server) handleToggleCamera(c *fiber.Ctx) error {
	conv, err := s.conversation()
	if err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}
	on := conv.ToggleCamera()
	return c.JSON(fiber.Map{"camera_on": on})
}

func (s *Server) handleEventsWS(conn *websocket.Conn) {
	client := hub.NewClient(s.eventHub, conn)
	client.Run()
}
