package filesync

// defaultInvalidMessage is attached when an invalid result is built with an
// empty message.
const defaultInvalidMessage = "invalid document"

// Origin tells where a raw text revision came from.
type Origin int

const (
	// OriginDisk marks text read from the file by the watcher.
	OriginDisk Origin = iota
	// OriginMemory marks text produced by the serializer.
	OriginMemory
)

// String returns a human-readable representation of the origin.
func (o Origin) String() string {
	switch o {
	case OriginDisk:
		return "disk"
	case OriginMemory:
		return "memory"
	default:
		return "unknown"
	}
}

// RawText is the latest observed or intended content of the file.
type RawText struct {
	Text   string
	Origin Origin
}

// Result is the application's view of the document. It is valid when
// Message is empty. An invalid result still carries the last value that
// parsed successfully, or the zero value if nothing ever did.
type Result[T any] struct {
	Value   T
	Message string
}

// Valid wraps a successfully parsed value.
func Valid[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Invalid wraps the last good value together with a parse failure message.
func Invalid[T any](v T, msg string) Result[T] {
	if msg == "" {
		msg = defaultInvalidMessage
	}

	return Result[T]{Value: v, Message: msg}
}

// IsValid reports whether the latest text parsed successfully.
func (r Result[T]) IsValid() bool {
	return r.Message == ""
}

// Get returns the value regardless of validity.
func (r Result[T]) Get() T {
	return r.Value
}

// Err returns the parse failure as an error, or nil for a valid result.
func (r Result[T]) Err() error {
	if r.IsValid() {
		return nil
	}

	return &ParseError{Message: r.Message}
}

// ParseError describes text that failed to decode into the target type.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return "parsing document: " + e.Message
}
