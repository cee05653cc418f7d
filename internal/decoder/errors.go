// internal/decoder/errors.go
package decoder

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode is wrapped by every structural decode failure.
	ErrDecode = errors.New("decode failed")

	// ErrNoModule is returned by Fetch when the target is running but not in
	// any module. The handle is still valid.
	ErrNoModule = errors.New("no active module")
)

// DecodeError reports which part of the raw blob had an unexpected shape.
type DecodeError struct {
	Part   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoder: %s: %s", e.Part, e.Reason)
}

func (e *DecodeError) Unwrap() error { return ErrDecode }

func decodeErrorf(part, format string, args ...any) error {
	return &DecodeError{Part: part, Reason: fmt.Sprintf(format, args...)}
}
