package session

import "fmt"

// PermissionError reports a denied local resource (microphone, camera,
// location). It aborts connect but is not fatal to the process.
type PermissionError struct {
	Resource string
	Err      error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("session: %s permission denied: %v", e.Resource, e.Err)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// ConnectionSetupError reports a failure while opening the duplex channel:
// missing credential, rejected handshake, unreachable endpoint.
type ConnectionSetupError struct {
	Err error
}

func (e *ConnectionSetupError) Error() string {
	return fmt.Sprintf("session: connection setup failed: %v", e.Err)
}

func (e *ConnectionSetupError) Unwrap() error { return e.Err }

// RuntimeProtocolError reports a channel failure after the session was open.
// The session is torn down the same way an explicit disconnect would; there
// is no automatic reconnect.
type RuntimeProtocolError struct {
	Err error
}

func (e *RuntimeProtocolError) Error() string {
	return fmt.Sprintf("session: channel failed: %v", e.Err)
}

func (e *RuntimeProtocolError) Unwrap() error { return e.Err }

// ToolHandlerError reports a failure inside a tool handler. It is converted
// to a structured error result in the tool's response and never crosses the
// pipeline boundary.
type ToolHandlerError struct {
	Tool string
	Err  error
}

func (e *ToolHandlerError) Error() string {
	return fmt.Sprintf("session: tool %q failed: %v", e.Tool, e.Err)
}

func (e *ToolHandlerError) Unwrap() error { return e.Err }
