package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/yukti-live/yukti/pkg/avatar"
	"github.com/yukti-live/yukti/pkg/live"
)

func TestDispatchExpression(t *testing.T) {
	var calls []avatar.Expression
	d := NewDispatcher(nil)
	d.Register("set_expression", ExpressionHandler(func(e avatar.Expression) {
		calls = append(calls, e)
	}))

	responses := d.Dispatch(context.Background(), []live.ToolCall{
		{ID: "a", Name: "set_expression", Args: json.RawMessage(`{"expression":"smile"}`)},
	})

	if len(calls) != 1 || calls[0] != avatar.Smile {
		t.Fatalf("expected exactly one handler invocation with smile, got %v", calls)
	}
	if len(responses) != 1 {
		t.Fatalf("expected exactly one response, got %d", len(responses))
	}
	r := responses[0]
	if r.ID != "a" || r.Name != "set_expression" {
		t.Errorf("response not correlated: %+v", r)
	}
	if !strings.Contains(r.Result, "smile") {
		t.Errorf("result %q does not confirm the expression", r.Result)
	}
}

func TestDispatchUnknownToolSucceedsGenerically(t *testing.T) {
	d := NewDispatcher(nil)
	d.Register("set_expression", ExpressionHandler(nil))

	responses := d.Dispatch(context.Background(), []live.ToolCall{
		{ID: "a", Name: "set_expression", Args: json.RawMessage(`{"expression":"sad"}`)},
		{ID: "b", Name: "teleport", Args: json.RawMessage(`{}`)},
	})

	// The whole batch still flushes, with the unknown tool answered
	// generically.
	if len(responses) != 2 {
		t.Fatalf("expected full batch of 2, got %d", len(responses))
	}
	if responses[1].ID != "b" || responses[1].Result != "ok" {
		t.Errorf("unknown tool must resolve generically, got %+v", responses[1])
	}
}

func TestDispatchHandlerErrorBecomesResult(t *testing.T) {
	d := NewDispatcher(nil)
	d.Register("get_weather", func(ctx context.Context, args json.RawMessage) (string, error) {
		return "", errors.New("upstream down")
	})

	responses := d.Dispatch(context.Background(), []live.ToolCall{
		{ID: "w1", Name: "get_weather", Args: json.RawMessage(`{}`)},
	})

	if len(responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(responses))
	}
	if !strings.HasPrefix(responses[0].Result, "error:") {
		t.Errorf("handler failure must become a structured error result, got %q", responses[0].Result)
	}
}

func TestDispatchRejectsInvalidExpression(t *testing.T) {
	var invoked bool
	d := NewDispatcher(nil)
	d.Register("set_expression", ExpressionHandler(func(avatar.Expression) { invoked = true }))

	responses := d.Dispatch(context.Background(), []live.ToolCall{
		{ID: "a", Name: "set_expression", Args: json.RawMessage(`{"expression":"grimace"}`)},
	})

	if invoked {
		t.Error("invalid expression must not reach the notifier")
	}
	if !strings.HasPrefix(responses[0].Result, "error:") {
		t.Errorf("expected structured error, got %q", responses[0].Result)
	}
}

func TestWeatherHandlerWithoutFix(t *testing.T) {
	h := WeatherHandler(GeoFix{}, false)
	if _, err := h(context.Background(), json.RawMessage(`{}`)); err == nil {
		t.Error("expected error without a location fix")
	}
}

func TestToolDeclarations(t *testing.T) {
	decls := ToolDeclarations()
	if len(decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(decls))
	}

	byName := map[string]live.FunctionDeclaration{}
	for _, d := range decls {
		byName[d.Name] = d
	}
	if _, ok := byName["set_expression"]; !ok {
		t.Error("set_expression not declared")
	}
	if _, ok := byName["get_weather"]; !ok {
		t.Error("get_weather not declared")
	}
}
