package safebuf

import "github.com/danmuck/safebuf/bytebuf"

// Decodable is implemented by types that read themselves from a cursor.
//
// DecodeFrom must consume exactly the bytes of one encoded value. Truncated
// input should surface as ErrTruncated (the checked reads already return it);
// invalid content should surface as a DeserializationError.
type Decodable interface {
	DecodeFrom(b Buf) error
}

// Pointer constrains PT to *T implementing Decodable, so Extract can build a
// zero T and hand its address to DecodeFrom.
type Pointer[T any] interface {
	*T
	Decodable
}

// Extract decodes one T from b. It adds nothing to T's own decoding: when
// DecodeFrom fails part way, whatever it already consumed stays consumed.
// Use ExtractSized to keep b untouched on failure.
func Extract[T any, PT Pointer[T]](b Buf) (T, error) {
	var v T
	if err := PT(&v).DecodeFrom(b); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// ExtractExact decodes one T and requires b to be empty afterwards.
func ExtractExact[T any, PT Pointer[T]](b Buf) (T, error) {
	v, err := Extract[T, PT](b)
	if err != nil {
		return v, err
	}
	if err := CheckExhausted(b); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// ExtractSized decodes one T from the next n bytes of b, and the T must use all
// of them. b only advances when decoding succeeds.
func ExtractSized[T any, PT Pointer[T]](b Buf, n int) (T, error) {
	var zero T
	if n < 0 || b.Remaining() < n {
		return zero, ErrTruncated
	}
	sub := bytebuf.FromBytes(b.Chunk()[:n:n])
	v, err := ExtractExact[T, PT](sub)
	if err != nil {
		return zero, err
	}
	b.Advance(n)
	return v, nil
}

// Decode decodes one T from data, rejecting trailing bytes.
func Decode[T any, PT Pointer[T]](data []byte) (T, error) {
	return ExtractExact[T, PT](bytebuf.FromBytes(data))
}
