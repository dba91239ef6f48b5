package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound   = errors.New("checkout session not found")
	ErrBusy              = errors.New("another request for this checkout is in progress")
	ErrWrongStep         = errors.New("operation not allowed at the current step")
	ErrAlreadyPaid       = errors.New("payment already captured for this checkout")
	ErrProfileIncomplete = errors.New("phone and address are required before booking")
)

// ValidationError is a guard failure caught before any external call.
type ValidationError struct {
	Step    Step
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CollaboratorError is a failed call to a payment, storage or persistence
// collaborator. Message is safe to show to the user.
type CollaboratorError struct {
	Op      string
	Message string
	Err     error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// userMessenger is implemented by collaborator errors that carry a message
// meant for the end user, such as a card decline reason.
type userMessenger interface {
	UserMessage() string
}

func userMessage(err error, fallback string) string {
	var um userMessenger
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	return fallback
}

// Message returns the text stored as a session's last error.
func Message(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var ce *CollaboratorError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return err.Error()
}
