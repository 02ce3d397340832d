// Package codec turns cached values into bytes and back when they have to leave process
// memory, for example when a backing store keeps them remotely.
//
// Every failure, whatever the format, is reported as a single error kind
// (CodeSerialization). Callers decide whether to retry; codecs never do.
package codec

import (
	"fmt"

	"github.com/jmgilman/go/errors"
)

// CodeSerialization marks encode and decode failures.
const CodeSerialization errors.ErrorCode = "SERIALIZATION_FAILED"

// Codec converts values of type V to and from bytes.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// IsSerializationError reports whether err came from a codec.
func IsSerializationError(err error) bool {
	return errors.GetCode(err) == CodeSerialization
}

func encodeErr(format string, err error) error {
	return errors.WithContext(errors.Wrap(err, CodeSerialization, "encode failed"), "format", format)
}

func decodeErr(format string, err error) error {
	return errors.WithContext(errors.Wrap(err, CodeSerialization, "decode failed"), "format", format)
}

// panicError carries a recovered panic from an encoder.
type panicError struct{ v any }

func (p panicError) Error() string { return fmt.Sprintf("panic: %v", p.v) }
