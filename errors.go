package botgo

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrAbortExecution is the sentinel a dependency or middleware returns to
// stop handler execution silently. The preinstalled exception-router entry
// swallows it.
var ErrAbortExecution = errors.New("handler execution aborted")

// HandlerNotFoundError is raised when a user message matches no registered
// command and no default handler exists.
type HandlerNotFoundError struct {
	Body string
}

func (e *HandlerNotFoundError) Error() string {
	return fmt.Sprintf("no handler for command %q", e.Body)
}

// ServerUnknownError means a command arrived for a bot id that has no
// credentials. It is returned to the ingress caller, not routed through
// exception handlers.
type ServerUnknownError struct {
	BotID uuid.UUID
}

func (e *ServerUnknownError) Error() string {
	return fmt.Sprintf("no credentials for bot %s", e.BotID)
}
