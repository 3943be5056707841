package bridge

// Engine is the sandbox boundary. Implementations deliver commands for the
// same surface in Send order and call the registered ready callback when
// the surface has processed Initialize. Send must not block on the surface
// and has no failure result.
//
// Engines must not hold their own locks while invoking a ready callback.
type Engine interface {
	Open(surface string)
	OnReady(surface string, fn func())
	Send(surface string, cmd Command)
	Close(surface string)
}
