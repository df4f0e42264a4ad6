package protocol

import (
	"errors"
	"io"

	"github.com/danmuck/safebuf"
	"github.com/danmuck/safebuf/bytebuf"
	"github.com/danmuck/safebuf/internal/auth"
	"github.com/danmuck/safebuf/internal/protocol/compress"
	"github.com/danmuck/safebuf/internal/protocol/frame"
	"github.com/danmuck/safebuf/internal/protocol/tlv"
	"github.com/rs/zerolog/log"
)

var ErrNilMessage = errors.New("protocol: nil message")

// Message is a frame with its payload split into fields.
// Compressed reports whether the payload arrived zstd-packed.
type Message struct {
	Header     frame.Header
	Auth       []byte
	Fields     []tlv.Field
	Compressed bool
}

// Decode reads one message from r.
func Decode(r io.Reader, limits frame.Limits) (*Message, error) {
	f, err := frame.ReadFrame(r, limits)
	if err != nil {
		return nil, err
	}
	return fromFrame(f, limits)
}

// Next decodes one message from b. Framing errors leave b untouched; once the
// frame is consumed, payload errors are returned with b past the frame.
func Next(b safebuf.Buf, limits frame.Limits) (*Message, error) {
	f, err := frame.Next(b, limits)
	if err != nil {
		return nil, err
	}
	return fromFrame(f, limits)
}

// DecodeAll decodes every message in data, which must hold whole frames only.
func DecodeAll(data []byte, limits frame.Limits) ([]*Message, error) {
	msgs := make([]*Message, 0, 4)
	err := Walk(data, limits, func(m *Message) error {
		msgs = append(msgs, m)
		return nil
	})
	return msgs, err
}

// Walk calls fn for each message in data and stops at the first error.
func Walk(data []byte, limits frame.Limits, fn func(*Message) error) error {
	b := bytebuf.FromBytes(data)
	for b.Remaining() > 0 {
		m, err := Next(b, limits)
		if err != nil {
			return err
		}
		if err := fn(m); err != nil {
			return err
		}
	}
	return nil
}

func fromFrame(f frame.Frame, limits frame.Limits) (*Message, error) {
	if err := f.Header.Check(); err != nil {
		return nil, err
	}
	packed := f.Header.Flags&frame.FlagCompressed != 0
	if packed {
		var err error
		if f, err = compress.Open(f, limits); err != nil {
			return nil, err
		}
	}
	fields, err := tlv.DecodeFields(f.Payload)
	if err != nil {
		log.Error().Err(err).Uint64("message_id", f.Header.MessageID).Msg("protocol.Decode bad payload")
		return nil, err
	}
	return &Message{Header: f.Header, Auth: f.Auth, Fields: fields, Compressed: packed}, nil
}

// Encode writes msg as one frame, packing the payload when msg.Compressed is set.
func Encode(w io.Writer, msg *Message, limits frame.Limits) error {
	if msg == nil {
		return ErrNilMessage
	}
	h := msg.Header
	h.Flags &^= frame.FlagCompressed
	f := frame.Frame{Header: h, Auth: msg.Auth, Payload: tlv.EncodeFields(msg.Fields)}
	if msg.Compressed {
		var err error
		if f, err = compress.Seal(f); err != nil {
			return err
		}
	}
	return frame.WriteFrame(w, f, limits)
}

// Authenticate runs v over the message auth block.
func Authenticate(msg *Message, v auth.Validator) error {
	if msg == nil {
		return ErrNilMessage
	}
	if err := v.Validate(msg.Auth); err != nil {
		log.Error().Err(err).Uint64("message_id", msg.Header.MessageID).Msg("protocol.Authenticate rejected")
		return err
	}
	return nil
}
