package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/danmuck/safebuf"
	"github.com/danmuck/safebuf/bytebuf"
	"github.com/rs/zerolog/log"
)

const (
	Magic          uint32 = 0x5AFEB0F1
	Version        uint16 = 1
	FixedHeaderLen uint16 = 32

	FlagHasAuth    uint32 = 0x01
	FlagIsResponse uint32 = 0x02
	FlagIsError    uint32 = 0x04
	FlagCompressed uint32 = 0x08
)

var (
	ErrShortHeader       = fmt.Errorf("frame: short fixed header: %w", safebuf.ErrTruncated)
	ErrShortBody         = fmt.Errorf("frame: short auth or payload: %w", safebuf.ErrTruncated)
	ErrHeaderLenTooSmall = errors.New("frame: header_len smaller than fixed header")
	ErrHeaderLenMismatch = errors.New("frame: auth present but header_len has no auth bytes")
	ErrPayloadTooLarge   = errors.New("frame: payload too large")
	ErrAuthTooLarge      = errors.New("frame: auth too large")
	ErrInvalidMagic      = errors.New("frame: invalid magic")
	ErrUnsupportedVer    = errors.New("frame: unsupported version")
)

// Header is the fixed wire header. All fields are big-endian.
type Header struct {
	Magic       uint32
	Version     uint16
	HeaderLen   uint16
	MessageID   uint64
	MessageType uint32
	Flags       uint32
	PayloadLen  uint64
}

// DecodeFrom reads the 32 fixed header bytes. It checks the length once up
// front so a short header never consumes anything.
func (h *Header) DecodeFrom(b safebuf.Buf) error {
	if b.Remaining() < int(FixedHeaderLen) {
		return ErrShortHeader
	}
	var err error
	if h.Magic, err = safebuf.GetUint32BE(b); err != nil {
		return err
	}
	if h.Version, err = safebuf.GetUint16BE(b); err != nil {
		return err
	}
	if h.HeaderLen, err = safebuf.GetUint16BE(b); err != nil {
		return err
	}
	if h.MessageID, err = safebuf.GetUint64BE(b); err != nil {
		return err
	}
	if h.MessageType, err = safebuf.GetUint32BE(b); err != nil {
		return err
	}
	if h.Flags, err = safebuf.GetUint32BE(b); err != nil {
		return err
	}
	h.PayloadLen, err = safebuf.GetUint64BE(b)
	return err
}

// Check validates the identity fields that DecodeFrom does not interpret.
func (h Header) Check() error {
	if h.Magic != Magic {
		return ErrInvalidMagic
	}
	if h.Version != Version {
		return ErrUnsupportedVer
	}
	return nil
}

// Frame is one complete wire message.
type Frame struct {
	Header  Header
	Auth    []byte
	Payload []byte
}

// Limits constrains frame decode/encode memory use.
type Limits struct {
	MaxAuthBytes    uint64
	MaxPayloadBytes uint64
}

func DefaultLimits() Limits {
	return Limits{
		MaxAuthBytes:    64 * 1024,
		MaxPayloadBytes: 8 * 1024 * 1024,
	}
}

func (l Limits) check(h Header) (uint64, error) {
	if h.HeaderLen < FixedHeaderLen {
		return 0, ErrHeaderLenTooSmall
	}
	authLen := uint64(h.HeaderLen - FixedHeaderLen)
	if h.Flags&FlagHasAuth != 0 && authLen == 0 {
		return 0, ErrHeaderLenMismatch
	}
	if authLen > l.MaxAuthBytes {
		return 0, ErrAuthTooLarge
	}
	if h.PayloadLen > l.MaxPayloadBytes || h.PayloadLen > uint64(math.MaxInt)-authLen {
		return 0, ErrPayloadTooLarge
	}
	return authLen, nil
}

const readChunk = 64 << 10

// ReadFrame reads one frame from a stream.
func ReadFrame(r io.Reader, limits Limits) (Frame, error) {
	var fixed [FixedHeaderLen]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return Frame{}, ErrShortHeader
		}
		return Frame{}, err
	}

	h, err := DecodeHeader(fixed[:])
	if err != nil {
		return Frame{}, err
	}
	authLen, err := limits.check(h)
	if err != nil {
		log.Debug().Err(err).Uint64("message_id", h.MessageID).Msg("frame.ReadFrame rejected header")
		return Frame{}, err
	}

	// The declared length is only trusted as far as the stream backs it.
	want := authLen + h.PayloadLen
	var body bytes.Buffer
	body.Grow(int(min(want, readChunk)))
	got, err := body.ReadFrom(io.LimitReader(r, int64(want)))
	if err != nil {
		return Frame{}, err
	}
	if uint64(got) < want {
		return Frame{}, ErrShortBody
	}
	p := body.Bytes()
	return Frame{Header: h, Auth: p[:authLen:authLen], Payload: p[authLen:]}, nil
}

// Next decodes one frame from the front of b and leaves b positioned after it.
// On error b is not advanced.
func Next(b safebuf.Buf, limits Limits) (Frame, error) {
	h, err := safebuf.PeekArray[[FixedHeaderLen]byte](b)
	if err != nil {
		return Frame{}, ErrShortHeader
	}
	head, err := DecodeHeader(h[:])
	if err != nil {
		return Frame{}, err
	}
	authLen, err := limits.check(head)
	if err != nil {
		return Frame{}, err
	}
	rem := uint64(b.Remaining()) - uint64(FixedHeaderLen)
	if rem < authLen || rem-authLen < head.PayloadLen {
		return Frame{}, ErrShortBody
	}
	b.Advance(int(FixedHeaderLen))
	auth, err := safebuf.TakeBytes(b, int(authLen))
	if err != nil {
		return Frame{}, err
	}
	payload, err := safebuf.TakeBytes(b, int(head.PayloadLen))
	if err != nil {
		return Frame{}, err
	}
	return Frame{Header: head, Auth: auth, Payload: payload}, nil
}

// DecodeFrame decodes data as exactly one frame. Trailing bytes are rejected
// with safebuf.ErrExtraneousBytes.
func DecodeFrame(data []byte, limits Limits) (Frame, error) {
	b := bytebuf.FromBytes(data)
	f, err := Next(b, limits)
	if err != nil {
		return Frame{}, err
	}
	if err := safebuf.CheckExhausted(b); err != nil {
		log.Debug().Int("trailing", b.Remaining()).Msg("frame.DecodeFrame trailing bytes")
		return Frame{}, err
	}
	return f, nil
}

func WriteFrame(w io.Writer, f Frame, limits Limits) error {
	authLen := uint64(len(f.Auth))
	payloadLen := uint64(len(f.Payload))
	if authLen > limits.MaxAuthBytes || authLen > uint64(^uint16(0)-FixedHeaderLen) {
		return ErrAuthTooLarge
	}
	if payloadLen > limits.MaxPayloadBytes {
		return ErrPayloadTooLarge
	}

	h := f.Header
	if h.Magic == 0 {
		h.Magic = Magic
	}
	if h.Version == 0 {
		h.Version = Version
	}
	h.HeaderLen = FixedHeaderLen + uint16(authLen)
	h.PayloadLen = payloadLen
	if authLen > 0 {
		h.Flags |= FlagHasAuth
	} else {
		h.Flags &^= FlagHasAuth
	}

	if _, err := w.Write(EncodeHeader(h)); err != nil {
		return err
	}
	if authLen > 0 {
		if _, err := w.Write(f.Auth); err != nil {
			return err
		}
	}
	if payloadLen > 0 {
		if _, err := w.Write(f.Payload); err != nil {
			return err
		}
	}
	return nil
}

// EncodeFrame is WriteFrame into a fresh byte slice.
func EncodeFrame(f Frame, limits Limits) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, f, limits); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func EncodeHeader(h Header) []byte {
	b := bytebuf.FromBytes(make([]byte, 0, FixedHeaderLen))
	b.PutUint32(binary.BigEndian, h.Magic)
	b.PutUint16(binary.BigEndian, h.Version)
	b.PutUint16(binary.BigEndian, h.HeaderLen)
	b.PutUint64(binary.BigEndian, h.MessageID)
	b.PutUint32(binary.BigEndian, h.MessageType)
	b.PutUint32(binary.BigEndian, h.Flags)
	b.PutUint64(binary.BigEndian, h.PayloadLen)
	return b.Bytes()
}

func DecodeHeader(p []byte) (Header, error) {
	if len(p) != int(FixedHeaderLen) {
		return Header{}, fmt.Errorf("frame: invalid fixed header length: %d", len(p))
	}
	return safebuf.Decode[Header](p)
}
