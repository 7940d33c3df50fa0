package live

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/yukti-live/yukti/pkg/audioio"
)

func TestParseAudioChunk(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	raw := fmt.Sprintf(`{"serverContent":{"modelTurn":{"parts":[{"inlineData":{"mimeType":"audio/pcm;rate=24000","data":"%s"}}]}}}`,
		base64.StdEncoding.EncodeToString(pcm))

	events, err := parseServerMessage([]byte(raw))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	chunk, ok := events[0].(AudioChunkEvent)
	if !ok {
		t.Fatalf("expected AudioChunkEvent, got %T", events[0])
	}
	if string(chunk.PCM) != string(pcm) {
		t.Errorf("payload mismatch: %v", chunk.PCM)
	}
	if chunk.Rate != audioio.PlaybackRate || chunk.Channels != 1 {
		t.Errorf("expected 24000/mono, got %d/%d", chunk.Rate, chunk.Channels)
	}
}

func TestParseSkipsBrokenBase64(t *testing.T) {
	raw := `{"serverContent":{"modelTurn":{"parts":[{"inlineData":{"mimeType":"audio/pcm","data":"!!!not-base64!!!"}}]}}}`

	events, err := parseServerMessage([]byte(raw))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected broken chunk to be dropped, got %d events", len(events))
	}
}

func TestParseToolCallBatch(t *testing.T) {
	raw := `{"toolCall":{"functionCalls":[
		{"id":"a","name":"set_expression","args":{"expression":"smile"}},
		{"id":"b","name":"get_weather","args":{}}
	]}}`

	events, err := parseServerMessage([]byte(raw))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	tc, ok := events[0].(ToolCallEvent)
	if !ok {
		t.Fatalf("expected ToolCallEvent, got %T", events[0])
	}
	if len(tc.Calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(tc.Calls))
	}
	if tc.Calls[0].ID != "a" || tc.Calls[0].Name != "set_expression" {
		t.Errorf("unexpected first call %+v", tc.Calls[0])
	}

	var args struct {
		Expression string `json:"expression"`
	}
	if err := json.Unmarshal(tc.Calls[0].Args, &args); err != nil {
		t.Fatalf("args did not round-trip: %v", err)
	}
	if args.Expression != "smile" {
		t.Errorf("expected smile, got %q", args.Expression)
	}
}

func TestParseTranscriptsAndFlags(t *testing.T) {
	raw := `{"serverContent":{
		"inputTranscription":{"text":"hello"},
		"outputTranscription":{"text":"hi there"},
		"interrupted":true,
		"turnComplete":true
	}}`

	events, err := parseServerMessage([]byte(raw))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}

	in, ok := events[0].(TranscriptEvent)
	if !ok || in.Role != RoleUser || in.Text != "hello" {
		t.Errorf("unexpected input transcript %+v", events[0])
	}
	out, ok := events[1].(TranscriptEvent)
	if !ok || out.Role != RoleAssistant || out.Text != "hi there" {
		t.Errorf("unexpected output transcript %+v", events[1])
	}
	if _, ok := events[2].(InterruptedEvent); !ok {
		t.Errorf("expected InterruptedEvent, got %T", events[2])
	}
	if _, ok := events[3].(TurnCompleteEvent); !ok {
		t.Errorf("expected TurnCompleteEvent, got %T", events[3])
	}
}

func TestParseGarbage(t *testing.T) {
	if _, err := parseServerMessage([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}

	events, err := parseServerMessage([]byte(`{"somethingElse":{}}`))
	if err != nil {
		t.Fatalf("unknown frame should parse cleanly: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}

func TestSetupMessage(t *testing.T) {
	cfg := Config{
		SystemInstruction: "be kind",
		Tools: []FunctionDeclaration{
			{Name: "set_expression", Description: "set it"},
		},
	}

	data, err := json.Marshal(setupMessage("models/test", "Kore", cfg))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var parsed struct {
		Setup struct {
			Model            string `json:"model"`
			GenerationConfig struct {
				ResponseModalities []string `json:"responseModalities"`
				SpeechConfig       struct {
					VoiceConfig struct {
						PrebuiltVoiceConfig struct {
							VoiceName string `json:"voiceName"`
						} `json:"prebuiltVoiceConfig"`
					} `json:"voiceConfig"`
				} `json:"speechConfig"`
			} `json:"generationConfig"`
			SystemInstruction *struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"systemInstruction"`
			Tools []struct {
				FunctionDeclarations []FunctionDeclaration `json:"functionDeclarations"`
			} `json:"tools"`
		} `json:"setup"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if parsed.Setup.Model != "models/test" {
		t.Errorf("unexpected model %q", parsed.Setup.Model)
	}
	if got := parsed.Setup.GenerationConfig.ResponseModalities; len(got) != 1 || got[0] != "AUDIO" {
		t.Errorf("unexpected modalities %v", got)
	}
	if parsed.Setup.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName != "Kore" {
		t.Error("voice not set")
	}
	if parsed.Setup.SystemInstruction == nil || parsed.Setup.SystemInstruction.Parts[0].Text != "be kind" {
		t.Error("system instruction not carried")
	}
	if len(parsed.Setup.Tools) != 1 || len(parsed.Setup.Tools[0].FunctionDeclarations) != 1 {
		t.Error("tool declarations not carried")
	}
}

func TestMockChannelRecordsSends(t *testing.T) {
	m := NewMockChannel()

	if err := m.SendAudio(audioio.EncodedFrame{Data: []byte{1, 2}, Rate: audioio.WireRate}); err != nil {
		t.Fatalf("send audio: %v", err)
	}
	if err := m.SendToolResponses([]ToolResponse{{ID: "a", Name: "x", Result: "ok"}}); err != nil {
		t.Fatalf("send tools: %v", err)
	}
	if err := m.SendImage([]byte{0xFF}); err != nil {
		t.Fatalf("send image: %v", err)
	}

	if len(m.AudioSent()) != 1 || len(m.ToolBatches()) != 1 || len(m.ImagesSent()) != 1 {
		t.Error("sends not recorded")
	}

	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second close should be tolerated: %v", err)
	}
	if m.CloseCalls() != 2 {
		t.Errorf("expected 2 close calls, got %d", m.CloseCalls())
	}
	if err := m.SendAudio(audioio.EncodedFrame{}); err != ErrClosed {
		t.Errorf("expected ErrClosed after close, got %v", err)
	}
}
