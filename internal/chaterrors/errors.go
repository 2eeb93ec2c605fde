// Package chaterrors defines the error taxonomy shared by the ingestion
// service, the REST handlers and the websocket gateway.
package chaterrors

import "errors"

var (
	// ErrValidation marks missing or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an unknown user, conversation or message.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized marks an action on a conversation the caller is not a member of.
	ErrUnauthorized = errors.New("not a conversation member")
	// ErrConflict marks an explicit receiver that disagrees with the one
	// implied by the conversation id.
	ErrConflict = errors.New("receiver conflicts with conversation")
	// ErrInvalidConversation marks a malformed conversation id.
	ErrInvalidConversation = errors.New("invalid conversation id")
	// ErrNoSupportAvailable marks the absence of any reachable support agent.
	ErrNoSupportAvailable = errors.New("no support agent available")
	// ErrTransient marks a store or directory failure; the caller decides
	// whether to resubmit, the server never retries on its own.
	ErrTransient = errors.New("transient backend failure")
)

// Code maps an error to its stable wire identifier, used in websocket error
// events and REST bodies.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrInvalidConversation):
		return "invalid_conversation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrConflict):
		return "conflict_error"
	case errors.Is(err, ErrNoSupportAvailable):
		return "no_support_available"
	case errors.Is(err, ErrTransient):
		return "transient_error"
	default:
		return "internal_error"
	}
}
