package bytebuf

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferAppendAndRead(t *testing.T) {
	b := New()
	defer b.Release()

	n, err := b.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	b.PutUint16(binary.BigEndian, 0x0405)

	assert.Equal(t, 5, b.Remaining())
	assert.Equal(t, uint8(1), b.Uint8())
	assert.Equal(t, []byte{2, 3, 4, 5}, b.Chunk())
	assert.Equal(t, 4, b.Remaining())

	dst := make([]byte, 2)
	b.CopyToSlice(dst)
	assert.Equal(t, []byte{2, 3}, dst)
	assert.Equal(t, uint16(0x0405), b.Uint16(binary.BigEndian))
	assert.Equal(t, 0, b.Remaining())
	assert.Equal(t, 5, b.Len())
}

func TestBufferPanicsPastEnd(t *testing.T) {
	b := FromBytes([]byte{1, 2})
	assert.Panics(t, func() { b.Advance(3) })
	assert.Panics(t, func() { b.CopyToBytes(3) })
	assert.Panics(t, func() { b.CopyToSlice(make([]byte, 3)) })
	assert.Panics(t, func() { b.Uint32(binary.LittleEndian) })
	assert.Equal(t, 2, b.Remaining())
}

func TestCopyToBytesCapsCapacity(t *testing.T) {
	b := FromBytes([]byte{1, 2, 3, 4})
	out := b.CopyToBytes(2)
	assert.Equal(t, 2, cap(out))
	out = append(out, 9)
	assert.Equal(t, []byte{3, 4}, b.Chunk())
	assert.Equal(t, []byte{1, 2, 9}, out)
}

func TestCloneHasIndependentPosition(t *testing.T) {
	b := FromBytes([]byte{1, 2, 3})
	b.Advance(1)
	c := b.Clone()
	c.Advance(2)
	assert.Equal(t, 2, b.Remaining())
	assert.Equal(t, 0, c.Remaining())
}

func TestSignedAndWideRoundTrip(t *testing.T) {
	for _, order := range []binary.AppendByteOrder{binary.BigEndian, binary.LittleEndian} {
		bo := order.(binary.ByteOrder)
		b := New()
		b.PutInt8(-1)
		b.PutInt16(order, -2)
		b.PutInt32(order, -3)
		b.PutInt64(order, -4)
		b.PutInt128(order, Int128{Hi: -5, Lo: 6})
		assert.Equal(t, int8(-1), b.Int8())
		assert.Equal(t, int16(-2), b.Int16(bo))
		assert.Equal(t, int32(-3), b.Int32(bo))
		assert.Equal(t, int64(-4), b.Int64(bo))
		assert.Equal(t, Int128{Hi: -5, Lo: 6}, b.Int128(bo))
		assert.Equal(t, 0, b.Remaining())
		b.Release()
	}
}

func TestUint128Layout(t *testing.T) {
	v := Uint128{Hi: 0x0102030405060708, Lo: 0x090a0b0c0d0e0f10}
	be := AppendUint128(nil, binary.BigEndian, v)
	le := AppendUint128(nil, binary.LittleEndian, v)
	assert.Equal(t, byte(0x01), be[0])
	assert.Equal(t, byte(0x10), be[15])
	assert.Equal(t, byte(0x10), le[0])
	assert.Equal(t, byte(0x01), le[15])
	assert.Equal(t, v, Uint128From(be, binary.BigEndian))
	assert.Equal(t, v, Uint128From(le, binary.LittleEndian))
}

func TestResetAndRelease(t *testing.T) {
	b := New()
	b.Extend([]byte{1, 2, 3})
	b.Advance(2)
	b.Reset()
	assert.Equal(t, 0, b.Remaining())
	assert.Equal(t, 0, b.Len())
	b.Release()
	assert.Equal(t, 0, b.Remaining())
	b.Release()
}

func TestUint128NativeEndianMatchesHostOrder(t *testing.T) {
	v := Uint128{Hi: 0x0102030405060708, Lo: 0x090a0b0c0d0e0f10}
	host := binary.ByteOrder(binary.BigEndian)
	if binary.NativeEndian.Uint16([]byte{1, 0}) == 1 {
		host = binary.LittleEndian
	}
	native := AppendUint128(nil, binary.NativeEndian, v)
	assert.Equal(t, AppendUint128(nil, host.(binary.AppendByteOrder), v), native)
	assert.Equal(t, v, Uint128From(native, binary.NativeEndian))
	assert.Equal(t, Uint128From(native, host), Uint128From(native, binary.NativeEndian))
}

func TestNilBufferIsEmpty(t *testing.T) {
	var b *Buffer
	assert.Equal(t, 0, b.Remaining())
	assert.Equal(t, 0, b.Len())
	assert.Nil(t, b.Chunk())
	assert.Nil(t, b.Bytes())
	assert.Equal(t, 0, b.Clone().Remaining())
	assert.NotPanics(t, func() {
		b.Reset()
		b.Release()
	})
}

func TestZeroValueBufferGrowsOnPut(t *testing.T) {
	var b Buffer
	defer b.Release()
	b.PutUint32(binary.LittleEndian, 0x01020304)
	assert.Equal(t, []byte{4, 3, 2, 1}, b.Chunk())
	assert.Equal(t, uint32(0x01020304), b.Uint32(binary.LittleEndian))
}
