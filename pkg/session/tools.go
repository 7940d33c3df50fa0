package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/yukti-live/yukti/pkg/avatar"
	"github.com/yukti-live/yukti/pkg/live"
)

// ToolHandler resolves one tool call. A returned error becomes a structured
// error result in the tool's response; it never escapes the dispatcher.
type ToolHandler func(ctx context.Context, args json.RawMessage) (string, error)

// Dispatcher routes tool-call batches to named handlers and produces one
// complete, correlated response batch per request batch. Unknown tool names
// resolve to a generic success so a newer model cannot stall the turn.
type Dispatcher struct {
	handlers map[string]ToolHandler
	logger   *slog.Logger
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		handlers: make(map[string]ToolHandler),
		logger:   logger,
	}
}

// Register installs the handler for a tool name, replacing any previous one.
func (d *Dispatcher) Register(name string, h ToolHandler) {
	d.handlers[name] = h
}

// Dispatch resolves every call in the batch and returns the full response
// batch. The caller sends it in one frame: a batch is answered completely
// or not at all.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []live.ToolCall) []live.ToolResponse {
	responses := make([]live.ToolResponse, 0, len(calls))

	for _, call := range calls {
		responses = append(responses, live.ToolResponse{
			ID:     call.ID,
			Name:   call.Name,
			Result: d.resolve(ctx, call),
		})
	}

	return responses
}

func (d *Dispatcher) resolve(ctx context.Context, call live.ToolCall) string {
	handler, ok := d.handlers[call.Name]
	if !ok {
		d.logger.Warn("unknown tool requested", "tool", call.Name)
		return "ok"
	}

	result, err := handler(ctx, call.Args)
	if err != nil {
		herr := &ToolHandlerError{Tool: call.Name, Err: err}
		d.logger.Warn("tool handler failed", "tool", call.Name, "err", err)
		return fmt.Sprintf("error: %v", herr.Err)
	}
	return result
}

// SetExpressionArgs are the validated arguments of the set_expression tool.
type SetExpressionArgs struct {
	Expression avatar.Expression `json:"expression"`
}

func parseSetExpressionArgs(raw json.RawMessage) (SetExpressionArgs, error) {
	var args SetExpressionArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return args, fmt.Errorf("malformed arguments: %w", err)
	}
	if !args.Expression.Valid() {
		return args, fmt.Errorf("unknown expression %q", args.Expression)
	}
	return args, nil
}

// GetWeatherArgs are the arguments of the get_weather tool. The tool takes
// no parameters; the location comes from the session's fix.
type GetWeatherArgs struct{}

// ExpressionHandler builds the set_expression handler. notify is invoked
// synchronously with the validated expression.
func ExpressionHandler(notify func(avatar.Expression)) ToolHandler {
	return func(ctx context.Context, raw json.RawMessage) (string, error) {
		args, err := parseSetExpressionArgs(raw)
		if err != nil {
			return "", err
		}
		if notify != nil {
			notify(args.Expression)
		}
		return fmt.Sprintf("expression set to %s", args.Expression), nil
	}
}

// WeatherHandler builds the get_weather handler over a location fix. Without
// a fix the lookup fails fast with a structured error result.
func WeatherHandler(fix GeoFix, haveFix bool) ToolHandler {
	return func(ctx context.Context, raw json.RawMessage) (string, error) {
		if !haveFix {
			return "", fmt.Errorf("location unavailable")
		}
		return FetchWeather(ctx, fix)
	}
}

// ToolDeclarations returns the tool schema offered to the model at setup.
func ToolDeclarations() []live.FunctionDeclaration {
	return []live.FunctionDeclaration{
		{
			Name:        "set_expression",
			Description: "Set the avatar's facial expression to match the emotional tone of the response.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"expression": map[string]any{
						"type": "string",
						"enum": avatar.Names(),
					},
				},
				"required": []string{"expression"},
			},
		},
		{
			Name:        "get_weather",
			Description: "Get the current weather at the user's location.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}
