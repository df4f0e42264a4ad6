package safebuf

import "errors"

var (
	// ErrTruncated means a read asked for more bytes than the cursor holds.
	// The cursor is left where it was.
	ErrTruncated = errors.New("safebuf: object truncated (or not fully present)")
	// ErrExtraneousBytes means bytes were left over once decoding finished.
	ErrExtraneousBytes = errors.New("safebuf: extra bytes at end of object")
)

// DeserializationError reports bytes that were present but not valid.
// Reason should be a fixed string so the error stays comparable and cheap.
type DeserializationError struct {
	Reason string
}

func (e DeserializationError) Error() string {
	return "safebuf: deserialization failed: " + e.Reason
}

// Deserialization returns a DeserializationError for reason.
func Deserialization(reason string) error {
	return DeserializationError{Reason: reason}
}

// Kind classifies a decode failure.
type Kind uint8

const (
	KindOther Kind = iota
	KindTruncated
	KindExtraneousBytes
	KindDeserialization
)

func (k Kind) String() string {
	switch k {
	case KindTruncated:
		return "truncated"
	case KindExtraneousBytes:
		return "extraneous_bytes"
	case KindDeserialization:
		return "deserialization"
	default:
		return "other"
	}
}

// KindOf looks through wrapped errors and reports which kind err is.
// A nil error is KindOther.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindOther
	case errors.Is(err, ErrTruncated):
		return KindTruncated
	case errors.Is(err, ErrExtraneousBytes):
		return KindExtraneousBytes
	}
	var de DeserializationError
	if errors.As(err, &de) {
		return KindDeserialization
	}
	return KindOther
}
