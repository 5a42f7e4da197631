// Package provider defines the interface of the disposable mail backends.
package provider

import (
	"context"
	"errors"

	"tempmail-otp-bot/internal/models"
)

// ErrNoAddress means the backend answered without a usable address
var ErrNoAddress = errors.New("no usable address in response")

// Provider issues disposable addresses and reads their mail. Every call goes
// to the backend; nothing is cached and nothing is retried.
type Provider interface {
	// CreateAddress issues a new address.
	CreateAddress(ctx context.Context) (string, error)

	// ListMessages returns the messages of address in backend order, or an
	// empty slice when there are none.
	ListMessages(ctx context.Context, address string) ([]models.Message, error)

	// LatestCodeOrLink returns the one-time code or verification link of the
	// latest unread message. Kind is CodeUnknown with an empty value when the
	// backend found neither.
	LatestCodeOrLink(ctx context.Context, address string) (models.CodeResult, error)

	// Name returns the human-readable name of this backend.
	Name() string
}

// Error is returned by every failed provider call
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns nil for a nil err, otherwise err tagged with the operation name
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var perr *Error
	if errors.As(err, &perr) {
		return err
	}
	return &Error{Op: op, Err: err}
}
