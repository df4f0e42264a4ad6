package main

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/danmuck/safebuf/internal/protocol/frame"
	"github.com/danmuck/safebuf/internal/protocol/schema"
	"github.com/danmuck/safebuf/internal/protocol/tlv"
)

// messageDoc is the YAML shape of one frame, used for both encode input and
// decode output. Fields is empty when the payload is left compressed.
type messageDoc struct {
	ID         uint64     `yaml:"id"`
	Type       string     `yaml:"type"`
	Response   bool       `yaml:"response,omitempty"`
	Error      bool       `yaml:"error,omitempty"`
	Compressed bool       `yaml:"compressed,omitempty"`
	Auth       string     `yaml:"auth,omitempty"`
	Fields     []fieldDoc `yaml:"fields,omitempty"`
	Payload    string     `yaml:"payload,omitempty"`
	Invalid    string     `yaml:"invalid,omitempty"`
}

// fieldDoc carries every value as a string: decimal for integers, hex for bytes.
type fieldDoc struct {
	ID    uint16 `yaml:"id"`
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

func messageTypeName(t uint32) string {
	if name := schema.Name(t); name != "" {
		return name
	}
	return strconv.FormatUint(uint64(t), 10)
}

func parseMessageType(raw string) (uint32, error) {
	if t, ok := schema.TypeByName(raw); ok {
		return t, nil
	}
	v, err := strconv.ParseUint(raw, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown message type %q", raw)
	}
	return uint32(v), nil
}

func fieldTypeName(t uint8) string {
	if name := tlv.TypeName(t); name != "" {
		return name
	}
	return strconv.Itoa(int(t))
}

func docFromField(f tlv.Field) (fieldDoc, error) {
	doc := fieldDoc{ID: f.ID, Type: fieldTypeName(f.Type)}
	var err error
	switch f.Type {
	case tlv.TypeU8:
		var v uint8
		v, err = f.Uint8()
		doc.Value = strconv.FormatUint(uint64(v), 10)
	case tlv.TypeU16:
		var v uint16
		v, err = f.Uint16()
		doc.Value = strconv.FormatUint(uint64(v), 10)
	case tlv.TypeU32:
		var v uint32
		v, err = f.Uint32()
		doc.Value = strconv.FormatUint(uint64(v), 10)
	case tlv.TypeU64:
		var v uint64
		v, err = f.Uint64()
		doc.Value = strconv.FormatUint(v, 10)
	case tlv.TypeBool:
		var v bool
		v, err = f.Bool()
		doc.Value = strconv.FormatBool(v)
	case tlv.TypeString:
		doc.Value, err = f.String()
	default:
		doc.Value = hex.EncodeToString(f.Value)
	}
	if err != nil {
		return fieldDoc{}, fmt.Errorf("field %d: %w", f.ID, err)
	}
	return doc, nil
}

func fieldFromDoc(doc fieldDoc) (tlv.Field, error) {
	typ, ok := tlv.TypeByName(doc.Type)
	if !ok {
		v, err := strconv.ParseUint(doc.Type, 0, 8)
		if err != nil {
			return tlv.Field{}, fmt.Errorf("field %d: unknown type %q", doc.ID, doc.Type)
		}
		typ = uint8(v)
	}
	bits := map[uint8]int{tlv.TypeU8: 8, tlv.TypeU16: 16, tlv.TypeU32: 32, tlv.TypeU64: 64}
	switch typ {
	case tlv.TypeU8, tlv.TypeU16, tlv.TypeU32, tlv.TypeU64:
		v, err := strconv.ParseUint(doc.Value, 0, bits[typ])
		if err != nil {
			return tlv.Field{}, fmt.Errorf("field %d: %w", doc.ID, err)
		}
		switch typ {
		case tlv.TypeU8:
			return tlv.NewU8(doc.ID, uint8(v)), nil
		case tlv.TypeU16:
			return tlv.NewU16(doc.ID, uint16(v)), nil
		case tlv.TypeU32:
			return tlv.NewU32(doc.ID, uint32(v)), nil
		default:
			return tlv.NewU64(doc.ID, v), nil
		}
	case tlv.TypeBool:
		v, err := strconv.ParseBool(doc.Value)
		if err != nil {
			return tlv.Field{}, fmt.Errorf("field %d: %w", doc.ID, err)
		}
		return tlv.NewBool(doc.ID, v), nil
	case tlv.TypeString:
		return tlv.NewString(doc.ID, doc.Value), nil
	default:
		raw, err := hex.DecodeString(doc.Value)
		if err != nil {
			return tlv.Field{}, fmt.Errorf("field %d: %w", doc.ID, err)
		}
		return tlv.Field{ID: doc.ID, Type: typ, Value: raw}, nil
	}
}

// docFromFrame renders a frame whose payload is already decompressed unless
// the caller kept it packed, in which case the payload is shown as hex.
func docFromFrame(f frame.Frame, packed bool) (messageDoc, error) {
	doc := messageDoc{
		ID:         f.Header.MessageID,
		Type:       messageTypeName(f.Header.MessageType),
		Response:   f.Header.Flags&frame.FlagIsResponse != 0,
		Error:      f.Header.Flags&frame.FlagIsError != 0,
		Compressed: packed,
		Auth:       string(f.Auth),
	}
	if f.Header.Flags&frame.FlagCompressed != 0 {
		doc.Payload = hex.EncodeToString(f.Payload)
		return doc, nil
	}
	fields, err := tlv.DecodeFields(f.Payload)
	if err != nil {
		return doc, err
	}
	for _, field := range fields {
		fd, err := docFromField(field)
		if err != nil {
			return doc, err
		}
		doc.Fields = append(doc.Fields, fd)
	}
	if schema.Name(f.Header.MessageType) != "" {
		if err := schema.Validate(f.Header.MessageType, fields); err != nil {
			doc.Invalid = err.Error()
		}
	}
	return doc, nil
}

func frameFromDoc(doc messageDoc) (frame.Frame, error) {
	mt, err := parseMessageType(doc.Type)
	if err != nil {
		return frame.Frame{}, fmt.Errorf("message %d: %w", doc.ID, err)
	}
	fields := make([]tlv.Field, 0, len(doc.Fields))
	for _, fd := range doc.Fields {
		field, err := fieldFromDoc(fd)
		if err != nil {
			return frame.Frame{}, fmt.Errorf("message %d: %w", doc.ID, err)
		}
		fields = append(fields, field)
	}
	var flags uint32
	if doc.Response {
		flags |= frame.FlagIsResponse
	}
	if doc.Error {
		flags |= frame.FlagIsError
	}
	f := frame.Frame{
		Header:  frame.Header{MessageID: doc.ID, MessageType: mt, Flags: flags},
		Payload: tlv.EncodeFields(fields),
	}
	if doc.Auth != "" {
		f.Auth = []byte(doc.Auth)
	}
	return f, nil
}
