package safebuf

// Buf is the raw cursor the checked functions build on.
//
// Advance may panic when n exceeds Remaining; nothing in this package calls it
// that way. Chunk must return all unread bytes, len(Chunk()) == Remaining().
type Buf interface {
	Remaining() int
	Chunk() []byte
	Advance(n int)
}

// BytesCopier is implemented by cursors that can hand out n bytes sharing
// their own storage. TakeBytes uses it when present and copies otherwise.
type BytesCopier interface {
	CopyToBytes(n int) []byte
}

// Skip advances b by n bytes.
func Skip(b Buf, n int) error {
	if n < 0 || b.Remaining() < n {
		return ErrTruncated
	}
	b.Advance(n)
	return nil
}

// CheckExhausted returns ErrExtraneousBytes if b still has unread bytes.
// It never moves the cursor.
func CheckExhausted(b Buf) error {
	if b.Remaining() > 0 {
		return ErrExtraneousBytes
	}
	return nil
}
