package protocol

import (
	"errors"
	"fmt"

	"github.com/danmuck/safebuf/internal/protocol/frame"
	"github.com/danmuck/safebuf/internal/protocol/schema"
	"github.com/danmuck/safebuf/internal/protocol/tlv"
)

var ErrMessageTypeMismatch = errors.New("protocol: message type mismatch")

// Body is a typed message payload.
type Body interface {
	MessageType() uint32
	Fields() []tlv.Field
}

type Hello struct {
	PeerID   string
	Version  uint16
	Features []byte
}

type Data struct {
	StreamID uint32
	Sequence uint64
	Body     []byte
	Final    bool
}

type Ack struct {
	StreamID uint32
	Sequence uint64
	Status   uint8
}

type Error struct {
	Code   uint32
	Reason string
}

func (Hello) MessageType() uint32 { return schema.MsgHello }
func (Data) MessageType() uint32  { return schema.MsgData }
func (Ack) MessageType() uint32   { return schema.MsgAck }
func (Error) MessageType() uint32 { return schema.MsgError }

func (h Hello) Fields() []tlv.Field {
	fields := []tlv.Field{
		tlv.NewString(schema.FieldPeerID, h.PeerID),
		tlv.NewU16(schema.FieldVersion, h.Version),
	}
	if len(h.Features) > 0 {
		fields = append(fields, tlv.NewBytes(schema.FieldFeatures, h.Features))
	}
	return fields
}

func (d Data) Fields() []tlv.Field {
	fields := []tlv.Field{
		tlv.NewU32(schema.FieldStreamID, d.StreamID),
		tlv.NewU64(schema.FieldSequence, d.Sequence),
		tlv.NewBytes(schema.FieldBody, d.Body),
	}
	if d.Final {
		fields = append(fields, tlv.NewBool(schema.FieldFinal, true))
	}
	return fields
}

func (a Ack) Fields() []tlv.Field {
	return []tlv.Field{
		tlv.NewU32(schema.FieldStreamID, a.StreamID),
		tlv.NewU64(schema.FieldSequence, a.Sequence),
		tlv.NewU8(schema.FieldStatus, a.Status),
	}
}

func (e Error) Fields() []tlv.Field {
	return []tlv.Field{
		tlv.NewU32(schema.FieldCode, e.Code),
		tlv.NewString(schema.FieldReason, e.Reason),
	}
}

// NewMessage wraps body in a Message with the given id. Error bodies set
// FlagIsError.
func NewMessage(id uint64, body Body) *Message {
	h := frame.Header{MessageID: id, MessageType: body.MessageType()}
	if _, ok := body.(Error); ok {
		h.Flags |= frame.FlagIsError
	}
	return &Message{Header: h, Fields: body.Fields()}
}

// ParseBody validates msg against its schema and returns the typed body.
// Unknown fields are ignored.
func ParseBody(msg *Message) (Body, error) {
	if msg == nil {
		return nil, ErrNilMessage
	}
	mt := msg.Header.MessageType
	if err := schema.Validate(mt, msg.Fields); err != nil {
		return nil, err
	}
	p := fieldReader{fields: msg.Fields}
	switch mt {
	case schema.MsgHello:
		var h Hello
		h.PeerID = p.str(schema.FieldPeerID)
		h.Version = p.u16(schema.FieldVersion)
		h.Features = p.raw(schema.FieldFeatures)
		return h, p.err
	case schema.MsgData:
		var d Data
		d.StreamID = p.u32(schema.FieldStreamID)
		d.Sequence = p.u64(schema.FieldSequence)
		d.Body = p.raw(schema.FieldBody)
		d.Final = p.flag(schema.FieldFinal)
		return d, p.err
	case schema.MsgAck:
		var a Ack
		a.StreamID = p.u32(schema.FieldStreamID)
		a.Sequence = p.u64(schema.FieldSequence)
		a.Status = p.u8(schema.FieldStatus)
		return a, p.err
	case schema.MsgError:
		var e Error
		e.Code = p.u32(schema.FieldCode)
		e.Reason = p.str(schema.FieldReason)
		return e, p.err
	default:
		return nil, fmt.Errorf("%w: %d", ErrMessageTypeMismatch, mt)
	}
}

// ParseAs is ParseBody narrowed to one body type.
func ParseAs[T Body](msg *Message) (T, error) {
	var zero T
	body, err := ParseBody(msg)
	if err != nil {
		return zero, err
	}
	out, ok := body.(T)
	if !ok {
		return zero, fmt.Errorf("%w: got %d want %d", ErrMessageTypeMismatch, body.MessageType(), zero.MessageType())
	}
	return out, nil
}

// fieldReader keeps the first accessor error so ParseBody reads straight through.
type fieldReader struct {
	fields []tlv.Field
	err    error
}

func (p *fieldReader) field(id uint16) (tlv.Field, bool) {
	if p.err != nil {
		return tlv.Field{}, false
	}
	return tlv.GetField(p.fields, id)
}

func (p *fieldReader) keep(err error) {
	if err != nil && p.err == nil {
		p.err = err
	}
}

func (p *fieldReader) u8(id uint16) uint8 {
	f, ok := p.field(id)
	if !ok {
		return 0
	}
	v, err := f.Uint8()
	p.keep(err)
	return v
}

func (p *fieldReader) u16(id uint16) uint16 {
	f, ok := p.field(id)
	if !ok {
		return 0
	}
	v, err := f.Uint16()
	p.keep(err)
	return v
}

func (p *fieldReader) u32(id uint16) uint32 {
	f, ok := p.field(id)
	if !ok {
		return 0
	}
	v, err := f.Uint32()
	p.keep(err)
	return v
}

func (p *fieldReader) u64(id uint16) uint64 {
	f, ok := p.field(id)
	if !ok {
		return 0
	}
	v, err := f.Uint64()
	p.keep(err)
	return v
}

func (p *fieldReader) str(id uint16) string {
	f, ok := p.field(id)
	if !ok {
		return ""
	}
	v, err := f.String()
	p.keep(err)
	return v
}

func (p *fieldReader) raw(id uint16) []byte {
	f, ok := p.field(id)
	if !ok {
		return nil
	}
	v, err := f.Bytes()
	p.keep(err)
	return v
}

func (p *fieldReader) flag(id uint16) bool {
	f, ok := p.field(id)
	if !ok {
		return false
	}
	v, err := f.Bool()
	p.keep(err)
	return v
}
