package confdoc

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDocumentNotFound is returned by Load when the document path
	// does not exist.
	ErrDocumentNotFound = errors.New("config document not found")

	// ErrDocumentExists is returned by Generate when the destination
	// exists and overwriting was not permitted.
	ErrDocumentExists = errors.New("config document already exists")

	// ErrUnknownFormat is returned when a document's format cannot be
	// determined from its extension or content.
	ErrUnknownFormat = errors.New("unable to determine config document format")
)

// ScanError reports malformed host-module source text encountered
// during scanning. Scanning does not attempt recovery.
type ScanError struct {
	Line int
	Msg  string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan error on line %d: %s", e.Line, e.Msg)
}

// SerializationError reports a value that cannot be reduced to the
// primitive vocabulary of the document format. Path is the dotted
// variable trace down to the offending value (e.g. "root.fieldA.fieldB").
type SerializationError struct {
	Path   string
	Value  any
	Reason string
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("cannot serialize value of type %T at %s: %s", e.Value, e.Path, e.Reason)
}

// TypeMismatchError reports a document value whose kind disagrees with
// the registered default. Recorded as a per-field diagnostic during
// Load; it never aborts the load of other fields.
type TypeMismatchError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch at %s: expected %s, document holds %s", e.Path, e.Expected, e.Actual)
}

// DeserializationError wraps a failure raised by a Serializable's
// Deserialize implementation, or a default that exposes no capability.
// Recorded per field during Load.
type DeserializationError struct {
	Path string
	Err  error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("deserialization failed at %s: %v", e.Path, e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// DocumentParseError wraps a document reader failure. Load aborts
// before any field is touched when the document cannot be parsed.
type DocumentParseError struct {
	File   string
	Format string
	Err    error
}

func (e *DocumentParseError) Error() string {
	return fmt.Sprintf("failed to parse %s document '%s': %v", e.Format, e.File, e.Err)
}

func (e *DocumentParseError) Unwrap() error { return e.Err }

// joinPath formats a variable trace as a dotted path for diagnostics.
func joinPath(path []string) string {
	return strings.Join(path, ".")
}
