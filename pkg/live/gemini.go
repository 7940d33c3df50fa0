package live

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yukti-live/yukti/pkg/audioio"
)

const (
	// Gemini Live API websocket endpoint.
	geminiLiveURL = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

	// DefaultModel is the native-audio Live model.
	DefaultModel = "models/gemini-2.5-flash-native-audio-preview-09-2025"

	// DefaultVoice is the prebuilt voice used when none is configured.
	DefaultVoice = "Kore"

	handshakeTimeout = 10 * time.Second
	setupTimeout     = 15 * time.Second
)

// GeminiChannel is a Channel over the Gemini Live websocket API.
type GeminiChannel struct {
	logger *slog.Logger

	ws   *websocket.Conn
	wsMu sync.Mutex

	mu     sync.Mutex
	closed bool

	events chan ServerEvent
}

// Dial opens a Gemini Live session. It sends the setup frame and blocks
// until the server acknowledges with setupComplete, so a returned channel
// is ready for media immediately.
func Dial(ctx context.Context, cfg Config, logger *slog.Logger) (*GeminiChannel, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("live: missing API key")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	voice := cfg.Voice
	if voice == "" {
		voice = DefaultVoice
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	url := fmt.Sprintf("%s?key=%s", geminiLiveURL, cfg.APIKey)

	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("live: failed to connect: %w", err)
	}

	c := &GeminiChannel{
		logger: logger,
		ws:     ws,
		events: make(chan ServerEvent, 64),
	}

	if err := c.sendJSON(setupMessage(model, voice, cfg)); err != nil {
		ws.Close()
		return nil, fmt.Errorf("live: failed to configure session: %w", err)
	}

	// The first server frame must be the setup acknowledgement.
	ws.SetReadDeadline(time.Now().Add(setupTimeout))
	_, raw, err := ws.ReadMessage()
	if err != nil {
		ws.Close()
		return nil, fmt.Errorf("live: waiting for setup ack: %w", err)
	}
	ws.SetReadDeadline(time.Time{})

	var ack struct {
		SetupComplete *struct{} `json:"setupComplete"`
	}
	if err := json.Unmarshal(raw, &ack); err != nil || ack.SetupComplete == nil {
		ws.Close()
		return nil, fmt.Errorf("live: unexpected first frame %q", truncate(raw, 120))
	}

	go c.readLoop()

	logger.Info("live channel open", "model", model, "voice", voice)
	return c, nil
}

func setupMessage(model, voice string, cfg Config) any {
	setup := map[string]any{
		"model": model,
		"generationConfig": map[string]any{
			"responseModalities": []string{"AUDIO"},
			"speechConfig": map[string]any{
				"voiceConfig": map[string]any{
					"prebuiltVoiceConfig": map[string]any{
						"voiceName": voice,
					},
				},
			},
		},
		"outputAudioTranscription": map[string]any{},
		"inputAudioTranscription":  map[string]any{},
	}

	if cfg.SystemInstruction != "" {
		setup["systemInstruction"] = map[string]any{
			"parts": []map[string]any{{"text": cfg.SystemInstruction}},
		}
	}
	if len(cfg.Tools) > 0 {
		setup["tools"] = []map[string]any{
			{"functionDeclarations": cfg.Tools},
		}
	}

	return map[string]any{"setup": setup}
}

// SendAudio transmits one encoded outbound frame.
func (c *GeminiChannel) SendAudio(frame audioio.EncodedFrame) error {
	return c.sendMediaChunk(frame.MimeType(), frame.Data)
}

// SendImage transmits one ancillary JPEG frame.
func (c *GeminiChannel) SendImage(jpeg []byte) error {
	return c.sendMediaChunk("image/jpeg", jpeg)
}

func (c *GeminiChannel) sendMediaChunk(mimeType string, data []byte) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	msg := map[string]any{
		"realtimeInput": map[string]any{
			"mediaChunks": []map[string]any{
				{
					"mimeType": mimeType,
					"data":     base64.StdEncoding.EncodeToString(data),
				},
			},
		},
	}
	return c.sendJSON(msg)
}

// SendToolResponses transmits a complete batch of tool responses.
func (c *GeminiChannel) SendToolResponses(responses []ToolResponse) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	frs := make([]map[string]any, len(responses))
	for i, r := range responses {
		frs[i] = map[string]any{
			"id":       r.ID,
			"name":     r.Name,
			"response": map[string]any{"result": r.Result},
		}
	}

	return c.sendJSON(map[string]any{
		"toolResponse": map[string]any{
			"functionResponses": frs,
		},
	})
}

// Events returns the inbound event stream.
func (c *GeminiChannel) Events() <-chan ServerEvent {
	return c.events
}

// Close tears the channel down. Tolerates repeated calls.
func (c *GeminiChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.wsMu.Lock()
	defer c.wsMu.Unlock()
	c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.ws.Close()
}

func (c *GeminiChannel) readLoop() {
	defer close(c.events)

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed {
				c.events <- ErrorEvent{Err: err}
			}
			c.events <- ClosedEvent{}
			return
		}

		events, perr := parseServerMessage(raw)
		if perr != nil {
			c.logger.Debug("dropping unparseable frame", "err", perr)
			continue
		}
		for _, ev := range events {
			c.events <- ev
		}
	}
}

// serverMessage mirrors the wire shape of one inbound frame.
type serverMessage struct {
	SetupComplete *struct{} `json:"setupComplete"`
	ServerContent *struct {
		TurnComplete bool `json:"turnComplete"`
		Interrupted  bool `json:"interrupted"`
		ModelTurn    *struct {
			Parts []struct {
				InlineData *struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData"`
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"modelTurn"`
		InputTranscription *struct {
			Text string `json:"text"`
		} `json:"inputTranscription"`
		OutputTranscription *struct {
			Text string `json:"text"`
		} `json:"outputTranscription"`
	} `json:"serverContent"`
	ToolCall *struct {
		FunctionCalls []struct {
			ID   string          `json:"id"`
			Name string          `json:"name"`
			Args json.RawMessage `json:"args"`
		} `json:"functionCalls"`
	} `json:"toolCall"`
	ToolCallCancellation *struct{} `json:"toolCallCancellation"`
}

// parseServerMessage converts one wire frame into zero or more events.
// Audio payloads are base64-decoded here; a chunk with broken base64 is
// dropped without affecting the rest of the frame.
func parseServerMessage(raw []byte) ([]ServerEvent, error) {
	var msg serverMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, err
	}

	var events []ServerEvent

	if msg.ToolCall != nil && len(msg.ToolCall.FunctionCalls) > 0 {
		ev := ToolCallEvent{}
		for _, fc := range msg.ToolCall.FunctionCalls {
			ev.Calls = append(ev.Calls, ToolCall{ID: fc.ID, Name: fc.Name, Args: fc.Args})
		}
		events = append(events, ev)
	}

	sc := msg.ServerContent
	if sc == nil {
		return events, nil
	}

	if sc.ModelTurn != nil {
		for _, part := range sc.ModelTurn.Parts {
			if part.InlineData == nil {
				continue
			}
			if !strings.HasPrefix(part.InlineData.MimeType, "audio/pcm") {
				continue
			}
			pcm, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil || len(pcm) == 0 {
				continue
			}
			events = append(events, AudioChunkEvent{
				PCM:      pcm,
				Rate:     audioio.PlaybackRate,
				Channels: 1,
			})
		}
	}

	if sc.InputTranscription != nil && sc.InputTranscription.Text != "" {
		events = append(events, TranscriptEvent{Role: RoleUser, Text: sc.InputTranscription.Text})
	}
	if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" {
		events = append(events, TranscriptEvent{Role: RoleAssistant, Text: sc.OutputTranscription.Text})
	}

	if sc.Interrupted {
		events = append(events, InterruptedEvent{})
	}
	if sc.TurnComplete {
		events = append(events, TurnCompleteEvent{})
	}

	return events, nil
}

func (c *GeminiChannel) sendJSON(v any) error {
	c.wsMu.Lock()
	defer c.wsMu.Unlock()

	if c.ws == nil {
		return ErrNotConnected
	}
	return c.ws.WriteJSON(v)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

var _ Channel = (*GeminiChannel)(nil)
