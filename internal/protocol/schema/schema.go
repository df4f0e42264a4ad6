package schema

import (
	"fmt"

	"github.com/danmuck/safebuf/internal/protocol/tlv"
	"github.com/rs/zerolog/log"
)

// Message type IDs from tlv contract.
const (
	MsgHello uint32 = 1
	MsgData  uint32 = 2
	MsgAck   uint32 = 3
	MsgError uint32 = 4
)

// Field IDs from tlv contract.
const (
	FieldPeerID   uint16 = 1
	FieldVersion  uint16 = 2
	FieldFeatures uint16 = 3

	FieldStreamID uint16 = 100
	FieldSequence uint16 = 101
	FieldBody     uint16 = 102
	FieldFinal    uint16 = 103

	FieldStatus uint16 = 200

	FieldCode   uint16 = 300
	FieldReason uint16 = 301
)

type Requirement struct {
	ID   uint16
	Type uint8
}

type ValidationError struct {
	MessageType uint32
	FieldID     uint16
	Reason      string
}

func (e ValidationError) Error() string {
	if e.FieldID == 0 {
		return fmt.Sprintf("schema: message_type=%d: %s", e.MessageType, e.Reason)
	}
	return fmt.Sprintf("schema: message_type=%d field=%d: %s", e.MessageType, e.FieldID, e.Reason)
}

var requirements = map[uint32][]Requirement{
	MsgHello: {
		{FieldPeerID, tlv.TypeString},
		{FieldVersion, tlv.TypeU16},
	},
	MsgData: {
		{FieldStreamID, tlv.TypeU32},
		{FieldSequence, tlv.TypeU64},
		{FieldBody, tlv.TypeBytes},
	},
	MsgAck: {
		{FieldStreamID, tlv.TypeU32},
		{FieldSequence, tlv.TypeU64},
		{FieldStatus, tlv.TypeU8},
	},
	MsgError: {
		{FieldCode, tlv.TypeU32},
		{FieldReason, tlv.TypeString},
	},
}

// Name is the lower-case name of a known message type, or "" if unknown.
func Name(messageType uint32) string {
	switch messageType {
	case MsgHello:
		return "hello"
	case MsgData:
		return "data"
	case MsgAck:
		return "ack"
	case MsgError:
		return "error"
	default:
		return ""
	}
}

// TypeByName is the inverse of Name.
func TypeByName(name string) (uint32, bool) {
	for id := range requirements {
		if Name(id) == name {
			return id, true
		}
	}
	return 0, false
}

// Validate enforces required fields and required field types for a message type.
// Unknown fields are ignored.
func Validate(messageType uint32, fields []tlv.Field) error {
	log.Debug().Uint32("message_type", messageType).Int("fields", len(fields)).Msg("schema.Validate")
	reqs, ok := requirements[messageType]
	if !ok {
		log.Error().Uint32("message_type", messageType).Msg("schema.Validate unknown message_type")
		return ValidationError{MessageType: messageType, Reason: "unknown message_type"}
	}
	for _, req := range reqs {
		f, found := tlv.GetField(fields, req.ID)
		if !found {
			log.Error().
				Uint32("message_type", messageType).
				Uint16("field_id", req.ID).
				Msg("schema.Validate missing field")
			return ValidationError{MessageType: messageType, FieldID: req.ID, Reason: "missing required field"}
		}
		if f.Type != req.Type {
			log.Error().
				Uint32("message_type", messageType).
				Uint16("field_id", req.ID).
				Uint8("got", f.Type).
				Uint8("want", req.Type).
				Msg("schema.Validate type mismatch")
			return ValidationError{MessageType: messageType, FieldID: req.ID, Reason: "type mismatch"}
		}
	}
	log.Debug().Uint32("message_type", messageType).Msg("schema.Validate ok")
	return nil
}
