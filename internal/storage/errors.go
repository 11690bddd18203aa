package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrBlobNotFound is wrapped by transports when the target blob or its
// container does not exist.
var ErrBlobNotFound = errors.New("blob not found")

// ConfigurationError reports an unusable option at construction time.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("storage: invalid configuration %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// TransferError wraps any failure of the underlying client that is neither a
// timeout nor a missing blob: auth, network, throttling.
type TransferError struct {
	Op      string
	Address string
	Err     error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Address, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// NotFoundError reports that the blob could not be located, either remotely
// or because the stored address does not belong to a known container.
type NotFoundError struct {
	Address string
	Err     error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("storage: blob %s not found: %v", e.Address, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// TimeoutError reports an operation cancelled by its deadline or by the caller.
type TimeoutError struct {
	Op      string
	Address string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("storage: %s %s cancelled after %s: %v", e.Op, e.Address, e.Timeout, e.Err)
	}
	return fmt.Sprintf("storage: %s %s cancelled: %v", e.Op, e.Address, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsTimeout reports whether err is a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsTransfer reports whether err is a TransferError.
func IsTransfer(err error) bool {
	var te *TransferError
	return errors.As(err, &te)
}

// Kind returns a short label for err, used as a metric label.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsNotFound(err):
		return "not_found"
	case IsTimeout(err):
		return "timeout"
	case IsConfiguration(err):
		return "configuration"
	case errors.Is(err, ErrInvalidPath):
		return "invalid_path"
	default:
		return "transfer"
	}
}

// classify gives a transport error its stable shape. The underlying error stays
// reachable through Unwrap.
func classify(op, address string, timeout time.Duration, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &TimeoutError{Op: op, Address: address, Timeout: timeout, Err: err}
	case errors.Is(err, ErrBlobNotFound):
		return &NotFoundError{Address: address, Err: err}
	default:
		return &TransferError{Op: op, Address: address, Err: err}
	}
}
