package confdoc

// Options is an opaque bag of caller-supplied options forwarded
// unchanged through every recursive Serialize and Deserialize call.
// The engine never inspects its contents; it exists so capability
// implementations can receive out-of-band parameters.
type Options map[string]any

// CoercionPolicy controls how Load handles document values whose kind
// disagrees with the registered default.
type CoercionPolicy int

const (
	// CoerceReject records a TypeMismatchError diagnostic and leaves
	// the variable at its current value.
	CoerceReject CoercionPolicy = iota

	// CoerceCast attempts a weak conversion to the default's type and
	// falls back to rejection if the conversion fails.
	CoerceCast

	// CoerceKeep accepts the document value unchanged, regardless of
	// the default's kind.
	CoerceKeep
)

// GenerateOptions configures document generation.
type GenerateOptions struct {
	// Source is optional host-module source text. When set, variable
	// order and doc comments are recovered from it by the scanner.
	// Registered variables the scanner does not find keep registration
	// order, after the scanned ones, with no comments.
	Source string

	// RetainComments controls whether recovered comments are written
	// to the document.
	RetainComments bool

	// Overwrite permits replacing an existing file. When false,
	// Generate fails with ErrDocumentExists.
	Overwrite bool

	// Serializer is forwarded to every Serializable.Serialize call.
	Serializer Options
}

// DefaultGenerateOptions returns the standard generation options:
// comments retained, existing files never overwritten.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{RetainComments: true}
}

// LoadOptions configures document loading.
type LoadOptions struct {
	// Coercion selects mismatch handling. The zero value is
	// CoerceReject.
	Coercion CoercionPolicy

	// Format forces the document format: "toml", "json" or "yaml".
	// Empty means detect from the file extension, then from content.
	Format string

	// Deserializer is forwarded to every Serializable.Deserialize call.
	Deserializer Options
}
