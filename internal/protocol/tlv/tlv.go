package tlv

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/danmuck/safebuf"
	"github.com/danmuck/safebuf/bytebuf"
)

const HeaderLen = 7

var (
	ErrShortFieldHeader = fmt.Errorf("tlv: short field header: %w", safebuf.ErrTruncated)
	ErrShortFieldValue  = fmt.Errorf("tlv: short field value: %w", safebuf.ErrTruncated)
	ErrTypeMismatch     = errors.New("tlv: field type mismatch")
)

// Type IDs from tlv contract.
const (
	TypeU8     uint8 = 1
	TypeU16    uint8 = 2
	TypeU32    uint8 = 3
	TypeU64    uint8 = 4
	TypeBool   uint8 = 5
	TypeString uint8 = 6
	TypeBytes  uint8 = 7
)

// Field is one decoded TLV field.
type Field struct {
	ID    uint16
	Type  uint8
	Value []byte
}

// DecodeFrom reads id (u16), type (u8), length (u32) and the value, all
// big-endian. A short field leaves b untouched.
func (f *Field) DecodeFrom(b safebuf.Buf) error {
	head, err := safebuf.PeekArray[[HeaderLen]byte](b)
	if err != nil {
		return ErrShortFieldHeader
	}
	l := binary.BigEndian.Uint32(head[3:7])
	if uint64(b.Remaining()-HeaderLen) < uint64(l) {
		return ErrShortFieldValue
	}
	b.Advance(HeaderLen)
	val, err := safebuf.TakeBytes(b, int(l))
	if err != nil {
		return err
	}
	f.ID = binary.BigEndian.Uint16(head[0:2])
	f.Type = head[2]
	f.Value = val
	return nil
}

func EncodeField(f Field) []byte {
	return appendField(make([]byte, 0, HeaderLen+len(f.Value)), f)
}

func appendField(dst []byte, f Field) []byte {
	dst = binary.BigEndian.AppendUint16(dst, f.ID)
	dst = append(dst, f.Type)
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(f.Value)))
	return append(dst, f.Value...)
}

// DecodeFields decodes a whole payload. Values share payload's storage.
func DecodeFields(payload []byte) ([]Field, error) {
	b := bytebuf.FromBytes(payload)
	fields := make([]Field, 0, 4)
	for b.Remaining() > 0 {
		f, err := safebuf.Extract[Field](b)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func EncodeFields(fields []Field) []byte {
	n := 0
	for _, f := range fields {
		n += HeaderLen + len(f.Value)
	}
	out := make([]byte, 0, n)
	for _, f := range fields {
		out = appendField(out, f)
	}
	return out
}

func GetField(fields []Field, id uint16) (Field, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

func MustType(f Field, expected uint8) error {
	if f.Type != expected {
		return fmt.Errorf("tlv: field %d type mismatch: got %d want %d: %w", f.ID, f.Type, expected, ErrTypeMismatch)
	}
	return nil
}

var typeNames = map[uint8]string{
	TypeU8:     "u8",
	TypeU16:    "u16",
	TypeU32:    "u32",
	TypeU64:    "u64",
	TypeBool:   "bool",
	TypeString: "string",
	TypeBytes:  "bytes",
}

// TypeName is the short name of a known type id, or "" if unknown.
func TypeName(t uint8) string {
	return typeNames[t]
}

func TypeByName(name string) (uint8, bool) {
	for t, n := range typeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}
