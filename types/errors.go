package types

import "github.com/jmgilman/go/errors"

// CodeNotLocal marks operations on keys owned by another node.
const CodeNotLocal errors.ErrorCode = "NOT_LOCAL"

var (
	// ErrNotFound is returned when a key is neither cached nor available from the loader.
	ErrNotFound = errors.New(errors.CodeNotFound, "key not found")

	// ErrNotLocal is returned when the ownership collaborator reports the key as remote.
	ErrNotLocal = errors.New(CodeNotLocal, "key is not owned by this node")

	// ErrClosed is returned by writes issued after Close.
	ErrClosed = errors.New(errors.CodeUnavailable, "cache is closed")
)

// IsNotFound reports whether err carries the not-found code anywhere in its chain.
func IsNotFound(err error) bool {
	return errors.GetCode(err) == errors.CodeNotFound
}
