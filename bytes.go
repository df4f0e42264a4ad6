package safebuf

// Array is the set of fixed-size byte arrays PeekArray and TakeArray fill:
// lengths 1 through 8, then 10, 12, 16, 20, 24, 32, 48 and 64. Other lengths
// (e.g. [9]byte) do not satisfy the constraint; read them with TakeSlice or
// PeekSlice into a caller-owned slice.
type Array interface {
	~[1]byte | ~[2]byte | ~[3]byte | ~[4]byte | ~[5]byte | ~[6]byte | ~[7]byte | ~[8]byte |
		~[10]byte | ~[12]byte | ~[16]byte | ~[20]byte | ~[24]byte | ~[32]byte | ~[48]byte | ~[64]byte
}

// PeekArray copies the next len(A) bytes into an array without consuming them.
func PeekArray[A Array](b Buf) (A, error) {
	var out A
	n := len(out)
	if b.Remaining() < n {
		return out, ErrTruncated
	}
	p := b.Chunk()[:n]
	for i := 0; i < n; i++ {
		out[i] = p[i]
	}
	return out, nil
}

// TakeArray is PeekArray followed by an advance of len(A).
func TakeArray[A Array](b Buf) (A, error) {
	out, err := PeekArray[A](b)
	if err != nil {
		return out, err
	}
	b.Advance(len(out))
	return out, nil
}

// PeekBytes returns a copy of the next n bytes without consuming them.
func PeekBytes(b Buf, n int) ([]byte, error) {
	if n < 0 || b.Remaining() < n {
		return nil, ErrTruncated
	}
	out := make([]byte, n)
	copy(out, b.Chunk())
	return out, nil
}

// TakeBytes consumes n bytes and returns them. When b implements BytesCopier
// the result shares b's storage; otherwise it is a fresh copy.
func TakeBytes(b Buf, n int) ([]byte, error) {
	if n < 0 || b.Remaining() < n {
		return nil, ErrTruncated
	}
	if c, ok := b.(BytesCopier); ok {
		return c.CopyToBytes(n), nil
	}
	out, err := PeekBytes(b, n)
	if err != nil {
		return nil, err
	}
	b.Advance(n)
	return out, nil
}

// PeekSlice fills dst from the cursor without consuming anything.
func PeekSlice(b Buf, dst []byte) error {
	if b.Remaining() < len(dst) {
		return ErrTruncated
	}
	copy(dst, b.Chunk())
	return nil
}

// TakeSlice fills dst from the cursor and consumes len(dst) bytes.
func TakeSlice(b Buf, dst []byte) error {
	if err := PeekSlice(b, dst); err != nil {
		return err
	}
	b.Advance(len(dst))
	return nil
}
