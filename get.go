package safebuf

import (
	"encoding/binary"
	"unsafe"

	"github.com/danmuck/safebuf/bytebuf"
)

// Integer is every fixed-width integer Get can decode.
type Integer interface {
	~uint8 | ~int8 | ~uint16 | ~int16 | ~uint32 | ~int32 | ~uint64 | ~int64
}

// widthOf is the encoded size of T in bytes, the same as binary.Size for
// every member of Integer.
func widthOf[T Integer]() int {
	var v T
	return int(unsafe.Sizeof(v))
}

func decodeInt[T Integer](p []byte, order binary.ByteOrder) T {
	switch len(p) {
	case 1:
		return T(p[0])
	case 2:
		return T(order.Uint16(p))
	case 4:
		return T(order.Uint32(p))
	default:
		return T(order.Uint64(p))
	}
}

// Peek decodes a T at the cursor without consuming it.
// order is ignored for single-byte types. A nil order means big-endian.
func Peek[T Integer](b Buf, order binary.ByteOrder) (T, error) {
	if order == nil {
		order = binary.BigEndian
	}
	w := widthOf[T]()
	if b.Remaining() < w {
		return 0, ErrTruncated
	}
	return decodeInt[T](b.Chunk()[:w], order), nil
}

// Get decodes a T at the cursor and advances past it.
func Get[T Integer](b Buf, order binary.ByteOrder) (T, error) {
	v, err := Peek[T](b, order)
	if err != nil {
		return 0, err
	}
	b.Advance(widthOf[T]())
	return v, nil
}

func GetUint8(b Buf) (uint8, error) { return Get[uint8](b, nil) }
func GetInt8(b Buf) (int8, error)   { return Get[int8](b, nil) }

func GetUint16BE(b Buf) (uint16, error) { return Get[uint16](b, binary.BigEndian) }
func GetUint16LE(b Buf) (uint16, error) { return Get[uint16](b, binary.LittleEndian) }
func GetInt16BE(b Buf) (int16, error)   { return Get[int16](b, binary.BigEndian) }
func GetInt16LE(b Buf) (int16, error)   { return Get[int16](b, binary.LittleEndian) }

func GetUint32BE(b Buf) (uint32, error) { return Get[uint32](b, binary.BigEndian) }
func GetUint32LE(b Buf) (uint32, error) { return Get[uint32](b, binary.LittleEndian) }
func GetInt32BE(b Buf) (int32, error)   { return Get[int32](b, binary.BigEndian) }
func GetInt32LE(b Buf) (int32, error)   { return Get[int32](b, binary.LittleEndian) }

func GetUint64BE(b Buf) (uint64, error) { return Get[uint64](b, binary.BigEndian) }
func GetUint64LE(b Buf) (uint64, error) { return Get[uint64](b, binary.LittleEndian) }
func GetInt64BE(b Buf) (int64, error)   { return Get[int64](b, binary.BigEndian) }
func GetInt64LE(b Buf) (int64, error)   { return Get[int64](b, binary.LittleEndian) }

const width128 = 16

// GetUint128 decodes a 16-byte unsigned integer in the given order.
func GetUint128(b Buf, order binary.ByteOrder) (bytebuf.Uint128, error) {
	if b.Remaining() < width128 {
		return bytebuf.Uint128{}, ErrTruncated
	}
	v := bytebuf.Uint128From(b.Chunk()[:width128], order)
	b.Advance(width128)
	return v, nil
}

// GetInt128 decodes a 16-byte two's-complement integer in the given order.
func GetInt128(b Buf, order binary.ByteOrder) (bytebuf.Int128, error) {
	u, err := GetUint128(b, order)
	if err != nil {
		return bytebuf.Int128{}, err
	}
	return bytebuf.Int128{Hi: int64(u.Hi), Lo: u.Lo}, nil
}

func GetUint128BE(b Buf) (bytebuf.Uint128, error) { return GetUint128(b, binary.BigEndian) }
func GetUint128LE(b Buf) (bytebuf.Uint128, error) { return GetUint128(b, binary.LittleEndian) }
func GetInt128BE(b Buf) (bytebuf.Int128, error)   { return GetInt128(b, binary.BigEndian) }
func GetInt128LE(b Buf) (bytebuf.Int128, error)   { return GetInt128(b, binary.LittleEndian) }
