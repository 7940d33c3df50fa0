// Package web serves the dashboard: session controls, live status, and
// transcript streaming over websockets.
package web

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/yukti-live/yukti/pkg/avatar"
	"github.com/yukti-live/yukti/pkg/hub"
	"github.com/yukti-live/yukti/pkg/live"
	"github.com/yukti-live/yukti/pkg/session"
)

// Conversation is the slice of the session controller the dashboard drives.
type Conversation interface {
	Connect(ctx context.Context) error
	Disconnect() error
	ToggleCamera() bool
	State() session.State
	LastError() error
	CameraOn() bool
}

// Status is the dashboard's view of the session.
type Status struct {
	State       session.State     `json:"state"`
	CameraOn    bool              `json:"camera_on"`
	Expression  avatar.Expression `json:"expression"`
	InputLevel  float64           `json:"input_level"`
	OutputLevel float64           `json:"output_level"`
	LastError   string            `json:"last_error,omitempty"`
}

// TranscriptEntry is one line of the conversation.
type TranscriptEntry struct {
	Time string `json:"time"`
	Role string `json:"role"`
	Text string `json:"text"`
}

const maxTranscript = 200

// Server is the dashboard server.
type Server struct {
	app    *fiber.App
	port   string
	logger *slog.Logger

	mu         sync.RWMutex
	conv       Conversation
	expression avatar.Expression
	inLevel    float64
	outLevel   float64
	lastErr    string
	transcript []TranscriptEntry

	eventHub *hub.Hub
}

// NewServer creates the dashboard server. Bind a conversation before
// starting it.
func NewServer(port string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		port:       port,
		logger:     logger,
		expression: avatar.Neutral,
		transcript: make([]TranscriptEntry, 0, maxTranscript),
		eventHub:   hub.New("events", logger),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Yukti Dashboard",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/transcript", s.handleTranscript)
	api.Post("/connect", s.handleConnect)
	api.Post("/disconnect", s.handleDisconnect)
	api.Post("/camera/toggle", s.handleToggleCamera)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// Bind attaches the conversation controller.
func (s *Server) Bind(conv Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conv = conv
}

// Callbacks returns the session callbacks that feed this dashboard. Pass
// them to the controller at construction time.
func (s *Server) Callbacks() session.Callbacks {
	return session.Callbacks{
		OnState: func(st session.State) {
			s.eventHub.BroadcastJSON(map[string]any{"type": "state", "state": st})
		},
		OnTranscript: func(role live.Role, text string) {
			entry := TranscriptEntry{
				Time: time.Now().Format("15:04:05"),
				Role: string(role),
				Text: text,
			}
			s.mu.Lock()
			s.transcript = append(s.transcript, entry)
			if len(s.transcript) > maxTranscript {
				s.transcript = s.transcript[1:]
			}
			s.mu.Unlock()
			s.eventHub.BroadcastJSON(map[string]any{"type": "transcript", "entry": entry})
		},
		OnExpression: func(e avatar.Expression) {
			s.mu.Lock()
			s.expression = e
			s.mu.Unlock()
			s.eventHub.BroadcastJSON(map[string]any{"type": "expression", "expression": e})
		},
		OnLevel: func(in, out float64) {
			s.mu.Lock()
			s.inLevel, s.outLevel = in, out
			s.mu.Unlock()
		},
		OnSnapshot: func(jpeg []byte) {
			// Mirror the ancillary stream to dashboard clients as-is.
			s.eventHub.BroadcastBinary(jpeg)
		},
		OnError: func(err error) {
			s.mu.Lock()
			s.lastErr = err.Error()
			s.mu.Unlock()
			s.eventHub.BroadcastJSON(map[string]any{"type": "error", "error": err.Error()})
		},
	}
}

// Start runs the hubs and listens. Blocks until shutdown.
func (s *Server) Start() error {
	go s.eventHub.Run()
	s.logger.Info("dashboard listening", "addr", "http://localhost:"+s.port)
	return s.app.Listen(":" + s.port)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("dashboard server failed", "err", err)
		}
	}()
}

// Shutdown stops the server and the hubs.
func (s *Server) Shutdown() error {
	s.eventHub.Stop()
	return s.app.Shutdown()
}

func (s *Server) status() Status {
	s.mu.RLock()
	conv := s.conv
	st := Status{
		Expression:  s.expression,
		InputLevel:  s.inLevel,
		OutputLevel: s.outLevel,
		LastError:   s.lastErr,
	}
	s.mu.RUnlock()

	if conv != nil {
		st.State = conv.State()
		st.CameraOn = conv.CameraOn()
		if err := conv.LastError(); err != nil {
			st.LastError = err.Error()
		}
	} else {
		st.State = session.StateIdle
	}
	return st
}
