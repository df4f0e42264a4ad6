// Package bytebuf is a growable byte buffer with a read cursor.
//
// Every method here is unchecked: reading or advancing past the end panics.
// Callers that cannot prove the length up front should go through the checked
// functions in package safebuf instead.
package bytebuf

import (
	"fmt"

	"github.com/valyala/bytebufferpool"
)

// Buffer is a pooled byte slice plus a read offset.
// A Buffer is owned by one goroutine at a time.
type Buffer struct {
	buf    *bytebufferpool.ByteBuffer
	offset int
	pooled bool
}

// New returns an empty Buffer backed by pooled storage.
// Call Release when the buffer and every slice taken from it are no longer used.
func New() *Buffer {
	return &Buffer{buf: bytebufferpool.Get(), pooled: true}
}

// FromBytes wraps p without copying. The buffer reads p from the start.
func FromBytes(p []byte) *Buffer {
	return &Buffer{buf: &bytebufferpool.ByteBuffer{B: p}}
}

// Release returns pooled storage. The Buffer must not be used afterwards.
func (b *Buffer) Release() {
	if b == nil || b.buf == nil {
		return
	}
	if b.pooled {
		bytebufferpool.Put(b.buf)
	}
	b.buf = nil
	b.offset = 0
}

// Remaining reports the number of unread bytes.
func (b *Buffer) Remaining() int {
	if b == nil || b.buf == nil {
		return 0
	}
	return len(b.buf.B) - b.offset
}

// Len is the total number of bytes written, read or not.
func (b *Buffer) Len() int {
	if b == nil || b.buf == nil {
		return 0
	}
	return len(b.buf.B)
}

// Chunk returns the unread bytes without consuming them.
func (b *Buffer) Chunk() []byte {
	if b == nil || b.buf == nil {
		return nil
	}
	return b.buf.B[b.offset:]
}

// Bytes returns everything written, including bytes already read.
func (b *Buffer) Bytes() []byte {
	if b == nil || b.buf == nil {
		return nil
	}
	return b.buf.B
}

// Advance consumes n bytes.
func (b *Buffer) Advance(n int) {
	if n < 0 || n > b.Remaining() {
		panic(fmt.Sprintf("bytebuf: advance %d out of range (remaining %d)", n, b.Remaining()))
	}
	b.offset += n
}

// CopyToSlice fills dst from the cursor and consumes len(dst) bytes.
func (b *Buffer) CopyToSlice(dst []byte) {
	n := len(dst)
	if n > b.Remaining() {
		panic(fmt.Sprintf("bytebuf: copy %d out of range (remaining %d)", n, b.Remaining()))
	}
	copy(dst, b.buf.B[b.offset:b.offset+n])
	b.offset += n
}

// CopyToBytes consumes n bytes and returns them as a slice of the underlying
// storage. The returned slice has its capacity capped, so appending to it never
// writes into the buffer.
func (b *Buffer) CopyToBytes(n int) []byte {
	if n < 0 || n > b.Remaining() {
		panic(fmt.Sprintf("bytebuf: copy %d out of range (remaining %d)", n, b.Remaining()))
	}
	out := b.buf.B[b.offset : b.offset+n : b.offset+n]
	b.offset += n
	return out
}

// Write appends p. It never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	b.Extend(p)
	return len(p), nil
}

func (b *Buffer) ensure() {
	if b.buf == nil {
		b.buf = bytebufferpool.Get()
		b.pooled = true
	}
}

// Extend appends p to the end of the buffer.
func (b *Buffer) Extend(p []byte) {
	b.ensure()
	b.buf.B = append(b.buf.B, p...)
}

// Clone returns a cursor over the same storage with its own position.
// The clone is never returned to the pool.
func (b *Buffer) Clone() *Buffer {
	if b == nil {
		return &Buffer{}
	}
	c := &Buffer{offset: b.offset}
	if b.buf != nil {
		c.buf = &bytebufferpool.ByteBuffer{B: b.buf.B}
	}
	return c
}

// Reset discards all bytes and rewinds the cursor, keeping capacity.
func (b *Buffer) Reset() {
	if b == nil {
		return
	}
	if b.buf != nil {
		b.buf.Reset()
	}
	b.offset = 0
}
