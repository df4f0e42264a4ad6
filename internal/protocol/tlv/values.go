package tlv

import (
	"encoding/binary"

	"github.com/danmuck/safebuf"
	"github.com/danmuck/safebuf/bytebuf"
)

func NewU8(id uint16, v uint8) Field {
	return Field{ID: id, Type: TypeU8, Value: []byte{v}}
}

func NewU16(id uint16, v uint16) Field {
	return Field{ID: id, Type: TypeU16, Value: binary.BigEndian.AppendUint16(nil, v)}
}

func NewU32(id uint16, v uint32) Field {
	return Field{ID: id, Type: TypeU32, Value: binary.BigEndian.AppendUint32(nil, v)}
}

func NewU64(id uint16, v uint64) Field {
	return Field{ID: id, Type: TypeU64, Value: binary.BigEndian.AppendUint64(nil, v)}
}

func NewBool(id uint16, v bool) Field {
	b := byte(0)
	if v {
		b = 1
	}
	return Field{ID: id, Type: TypeBool, Value: []byte{b}}
}

func NewString(id uint16, v string) Field {
	return Field{ID: id, Type: TypeString, Value: []byte(v)}
}

func NewBytes(id uint16, v []byte) Field {
	return Field{ID: id, Type: TypeBytes, Value: append([]byte(nil), v...)}
}

// scalar decodes the whole value as one T; a short value is truncated and a
// long one has extraneous bytes.
func scalar[T safebuf.Integer](f Field, want uint8) (T, error) {
	if err := MustType(f, want); err != nil {
		return 0, err
	}
	b := bytebuf.FromBytes(f.Value)
	v, err := safebuf.Get[T](b, binary.BigEndian)
	if err != nil {
		return 0, err
	}
	if err := safebuf.CheckExhausted(b); err != nil {
		return 0, err
	}
	return v, nil
}

func (f Field) Uint8() (uint8, error)   { return scalar[uint8](f, TypeU8) }
func (f Field) Uint16() (uint16, error) { return scalar[uint16](f, TypeU16) }
func (f Field) Uint32() (uint32, error) { return scalar[uint32](f, TypeU32) }
func (f Field) Uint64() (uint64, error) { return scalar[uint64](f, TypeU64) }

func (f Field) Bool() (bool, error) {
	v, err := scalar[uint8](f, TypeBool)
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, safebuf.Deserialization("tlv: invalid bool value")
	}
}

func (f Field) String() (string, error) {
	if err := MustType(f, TypeString); err != nil {
		return "", err
	}
	return string(f.Value), nil
}

// Bytes returns a copy of the value.
func (f Field) Bytes() ([]byte, error) {
	if err := MustType(f, TypeBytes); err != nil {
		return nil, err
	}
	return append([]byte(nil), f.Value...), nil
}
