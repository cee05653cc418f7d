// internal/status/errors.go
package status

import (
	"errors"

	"github.com/tamzrod/ff7-replicator/internal/decoder"
	"github.com/tamzrod/ff7-replicator/internal/memory"
)

// Error codes published in SlotLastErrorCode.
const (
	CodeNone           uint16 = 0
	CodeGeneric        uint16 = 1
	CodeProcessMissing uint16 = 10
	CodeProcessClosed  uint16 = 11
	CodeUnmapped       uint16 = 12
	CodeShortRead      uint16 = 13
	CodeNoModule       uint16 = 20
	CodeDecode         uint16 = 21
)

var codes = []struct {
	err  error
	code uint16
}{
	{memory.ErrProcessNotFound, CodeProcessMissing},
	{memory.ErrProcessNotOpen, CodeProcessClosed},
	{memory.ErrAddressNotMapped, CodeUnmapped},
	{memory.ErrShortRead, CodeShortRead},
	{decoder.ErrNoModule, CodeNoModule},
	{decoder.ErrDecode, CodeDecode},
}

// ErrorCode extracts a best-effort uint16 code from an error.
// Known sentinels map to fixed codes; otherwise an error exposing a code is
// passed through; anything else is CodeGeneric.
func ErrorCode(err error) uint16 {
	if err == nil {
		return CodeNone
	}

	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}

	type coderA interface{ Code() uint16 }
	type coderB interface{ ErrorCode() uint16 }

	var a coderA
	if errors.As(err, &a) {
		return a.Code()
	}
	var b coderB
	if errors.As(err, &b) {
		return b.ErrorCode()
	}

	return CodeGeneric
}
