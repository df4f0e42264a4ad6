package bytebuf

import "encoding/binary"

// Uint128 is an unsigned 128-bit integer split into halves.
type Uint128 struct {
	Hi uint64
	Lo uint64
}

// Int128 is a two's-complement 128-bit integer. The sign lives in Hi.
type Int128 struct {
	Hi int64
	Lo uint64
}

// littleEndian reports whether order puts the least significant byte first.
// It decodes a probe rather than comparing against binary.LittleEndian, so
// binary.NativeEndian resolves too.
func littleEndian(order binary.ByteOrder) bool {
	return order.Uint16([]byte{1, 0}) == 1
}

func appendsLittleEndian(order binary.AppendByteOrder) bool {
	return order.AppendUint16(nil, 1)[0] == 1
}

// Uint128From splits the 16 bytes in p according to order.
func Uint128From(p []byte, order binary.ByteOrder) Uint128 {
	_ = p[15]
	if littleEndian(order) {
		return Uint128{Lo: order.Uint64(p[0:8]), Hi: order.Uint64(p[8:16])}
	}
	return Uint128{Hi: order.Uint64(p[0:8]), Lo: order.Uint64(p[8:16])}
}

// AppendUint128 appends v to dst in the given byte order.
func AppendUint128(dst []byte, order binary.AppendByteOrder, v Uint128) []byte {
	if appendsLittleEndian(order) {
		dst = order.AppendUint64(dst, v.Lo)
		return order.AppendUint64(dst, v.Hi)
	}
	dst = order.AppendUint64(dst, v.Hi)
	return order.AppendUint64(dst, v.Lo)
}

func (b *Buffer) next(n int) []byte {
	p := b.Chunk()
	b.Advance(n)
	return p[:n]
}

func (b *Buffer) Uint8() uint8 { return b.next(1)[0] }

func (b *Buffer) Int8() int8 { return int8(b.next(1)[0]) }

func (b *Buffer) Uint16(order binary.ByteOrder) uint16 { return order.Uint16(b.next(2)) }

func (b *Buffer) Int16(order binary.ByteOrder) int16 { return int16(order.Uint16(b.next(2))) }

func (b *Buffer) Uint32(order binary.ByteOrder) uint32 { return order.Uint32(b.next(4)) }

func (b *Buffer) Int32(order binary.ByteOrder) int32 { return int32(order.Uint32(b.next(4))) }

func (b *Buffer) Uint64(order binary.ByteOrder) uint64 { return order.Uint64(b.next(8)) }

func (b *Buffer) Int64(order binary.ByteOrder) int64 { return int64(order.Uint64(b.next(8))) }

func (b *Buffer) Uint128(order binary.ByteOrder) Uint128 { return Uint128From(b.next(16), order) }

func (b *Buffer) Int128(order binary.ByteOrder) Int128 {
	u := Uint128From(b.next(16), order)
	return Int128{Hi: int64(u.Hi), Lo: u.Lo}
}

// PutUint8 and the rest of the Put family append to the end of the buffer;
// they never move the read cursor.
func (b *Buffer) PutUint8(v uint8) { b.Extend([]byte{v}) }

func (b *Buffer) PutInt8(v int8) { b.PutUint8(uint8(v)) }

func (b *Buffer) PutUint16(order binary.AppendByteOrder, v uint16) {
	b.ensure()
	b.buf.B = order.AppendUint16(b.buf.B, v)
}

func (b *Buffer) PutInt16(order binary.AppendByteOrder, v int16) { b.PutUint16(order, uint16(v)) }

func (b *Buffer) PutUint32(order binary.AppendByteOrder, v uint32) {
	b.ensure()
	b.buf.B = order.AppendUint32(b.buf.B, v)
}

func (b *Buffer) PutInt32(order binary.AppendByteOrder, v int32) { b.PutUint32(order, uint32(v)) }

func (b *Buffer) PutUint64(order binary.AppendByteOrder, v uint64) {
	b.ensure()
	b.buf.B = order.AppendUint64(b.buf.B, v)
}

func (b *Buffer) PutInt64(order binary.AppendByteOrder, v int64) { b.PutUint64(order, uint64(v)) }

func (b *Buffer) PutUint128(order binary.AppendByteOrder, v Uint128) {
	b.ensure()
	b.buf.B = AppendUint128(b.buf.B, order, v)
}

func (b *Buffer) PutInt128(order binary.AppendByteOrder, v Int128) {
	b.PutUint128(order, Uint128{Hi: uint64(v.Hi), Lo: v.Lo})
}
