package tools

import "spendtrack/internal/core"

// Result is the structured envelope every tool call returns: status "ok"
// with the payload fields merged in, or status "error" with a display-safe
// message. The envelope is the only protocol-shaped value in the system;
// handlers return plain payloads and errors.
type Result map[string]any

const (
	statusOK    = "ok"
	statusError = "error"
)

func okResult(payload map[string]any) Result {
	result := Result{"status": statusOK}
	for k, v := range payload {
		result[k] = v
	}
	return result
}

func errorResult(err error) Result {
	return Result{"status": statusError, "message": displayMessage(err)}
}

// displayMessage keeps unclassified failures opaque: only errors from the
// core taxonomy carry messages written for display.
func displayMessage(err error) string {
	if core.IsStorageError(err) || core.IsInvalidArgument(err) || core.IsNotFound(err) {
		return err.Error()
	}
	return "internal error"
}
