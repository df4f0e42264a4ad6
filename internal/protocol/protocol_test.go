package protocol

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/danmuck/safebuf"
	"github.com/danmuck/safebuf/bytebuf"
	"github.com/danmuck/safebuf/internal/auth"
	"github.com/danmuck/safebuf/internal/protocol/frame"
	"github.com/danmuck/safebuf/internal/protocol/schema"
	"github.com/danmuck/safebuf/internal/protocol/tlv"
	"github.com/danmuck/safebuf/internal/testutil/testlog"
)

func TestRoundTripEncodeDecode(t *testing.T) {
	testlog.Start(t)
	msg := NewMessage(42, Hello{PeerID: "peer.a", Version: 1, Features: []byte{0x01}})
	msg.Auth = []byte{0xaa, 0xbb}
	msg.Fields = append(msg.Fields, tlv.NewBytes(999, []byte{0x01, 0x02}))

	var buf bytes.Buffer
	if err := Encode(&buf, msg, frame.DefaultLimits()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(bytes.NewReader(buf.Bytes()), frame.DefaultLimits())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	var buf2 bytes.Buffer
	if err := Encode(&buf2, decoded, frame.DefaultLimits()); err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), buf2.Bytes()) {
		t.Fatalf("round-trip mismatch")
	}

	hello, err := ParseAs[Hello](decoded)
	if err != nil {
		t.Fatalf("parse hello: %v", err)
	}
	if hello.PeerID != "peer.a" || hello.Version != 1 || !bytes.Equal(hello.Features, []byte{0x01}) {
		t.Fatalf("unexpected hello: %+v", hello)
	}
}

func TestCompressedRoundTrip(t *testing.T) {
	testlog.Start(t)
	body := bytes.Repeat([]byte("chunk"), 200)
	msg := NewMessage(7, Data{StreamID: 3, Sequence: 9, Body: body, Final: true})
	msg.Compressed = true

	var buf bytes.Buffer
	if err := Encode(&buf, msg, frame.DefaultLimits()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if buf.Len() >= len(body) {
		t.Fatalf("expected compressed frame to be smaller than body: %d", buf.Len())
	}
	decoded, err := Decode(&buf, frame.DefaultLimits())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decoded.Compressed {
		t.Fatalf("expected Compressed to be reported")
	}
	data, err := ParseAs[Data](decoded)
	if err != nil {
		t.Fatalf("parse data: %v", err)
	}
	want := Data{StreamID: 3, Sequence: 9, Body: body, Final: true}
	if !reflect.DeepEqual(data, want) {
		t.Fatalf("data mismatch: got=%+v", data)
	}
}

func TestDecodeInvalidMagic(t *testing.T) {
	testlog.Start(t)
	raw, err := frame.EncodeFrame(frame.Frame{
		Header:  frame.Header{Magic: 1, MessageType: schema.MsgAck},
		Payload: tlv.EncodeFields(Ack{StreamID: 1}.Fields()),
	}, frame.DefaultLimits())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, err = Decode(bytes.NewReader(raw), frame.DefaultLimits())
	if !errors.Is(err, frame.ErrInvalidMagic) {
		t.Fatalf("expected ErrInvalidMagic, got %v", err)
	}
}

func TestDecodeTruncatedPayload(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	if err := Encode(&buf, NewMessage(1, Error{Code: 5, Reason: "abc"}), frame.DefaultLimits()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	b := buf.Bytes()
	_, err := Decode(bytes.NewReader(b[:len(b)-2]), frame.DefaultLimits())
	if !errors.Is(err, safebuf.ErrTruncated) {
		t.Fatalf("expected truncation, got %v", err)
	}
}

func TestDecodeAllWalksStream(t *testing.T) {
	testlog.Start(t)
	bodies := []Body{
		Hello{PeerID: "a", Version: 1},
		Data{StreamID: 1, Sequence: 1, Body: []byte("x")},
		Ack{StreamID: 1, Sequence: 1, Status: 0},
		Error{Code: 2, Reason: "late"},
	}
	var buf bytes.Buffer
	for i, body := range bodies {
		if err := Encode(&buf, NewMessage(uint64(i+1), body), frame.DefaultLimits()); err != nil {
			t.Fatalf("encode %d: %v", i, err)
		}
	}
	msgs, err := DecodeAll(buf.Bytes(), frame.DefaultLimits())
	if err != nil {
		t.Fatalf("decode all: %v", err)
	}
	if len(msgs) != len(bodies) {
		t.Fatalf("expected %d messages, got %d", len(bodies), len(msgs))
	}
	for i, m := range msgs {
		got, err := ParseBody(m)
		if err != nil {
			t.Fatalf("parse %d: %v", i, err)
		}
		if !reflect.DeepEqual(got, bodies[i]) {
			t.Fatalf("body %d mismatch: got=%+v want=%+v", i, got, bodies[i])
		}
	}
	if msgs[3].Header.Flags&frame.FlagIsError == 0 {
		t.Fatalf("expected error flag on error message")
	}

	_, err = DecodeAll(append(buf.Bytes(), 0x5A), frame.DefaultLimits())
	if !errors.Is(err, safebuf.ErrTruncated) {
		t.Fatalf("expected trailing partial frame to truncate, got %v", err)
	}
}

func TestNextLeavesCursorOnShortFrame(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	if err := Encode(&buf, NewMessage(1, Ack{StreamID: 1, Sequence: 2, Status: 1}), frame.DefaultLimits()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	raw := buf.Bytes()
	b := bytebuf.FromBytes(raw[:len(raw)-1])
	if _, err := Next(b, frame.DefaultLimits()); !errors.Is(err, safebuf.ErrTruncated) {
		t.Fatalf("expected truncation, got %v", err)
	}
	if b.Remaining() != len(raw)-1 {
		t.Fatalf("cursor moved: %d", b.Remaining())
	}
}

func TestParseBodyErrors(t *testing.T) {
	testlog.Start(t)
	if _, err := ParseBody(nil); !errors.Is(err, ErrNilMessage) {
		t.Fatalf("expected ErrNilMessage, got %v", err)
	}

	missing := &Message{Header: frame.Header{MessageType: schema.MsgAck}, Fields: Ack{}.Fields()[:2]}
	var ve schema.ValidationError
	if _, err := ParseBody(missing); !errors.As(err, &ve) || ve.FieldID != schema.FieldStatus {
		t.Fatalf("expected missing status, got %v", err)
	}

	badBool := NewMessage(1, Data{StreamID: 1, Sequence: 1, Body: []byte("x")})
	badBool.Fields = append(badBool.Fields, tlv.Field{ID: schema.FieldFinal, Type: tlv.TypeBool, Value: []byte{7}})
	if _, err := ParseBody(badBool); safebuf.KindOf(err) != safebuf.KindDeserialization {
		t.Fatalf("expected deserialization error, got %v", err)
	}

	if _, err := ParseAs[Ack](NewMessage(1, Hello{PeerID: "a", Version: 1})); !errors.Is(err, ErrMessageTypeMismatch) {
		t.Fatalf("expected ErrMessageTypeMismatch, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	testlog.Start(t)
	msg := NewMessage(1, Hello{PeerID: "a", Version: 1})
	msg.Auth = []byte("secret")
	var buf bytes.Buffer
	if err := Encode(&buf, msg, frame.DefaultLimits()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(&buf, frame.DefaultLimits())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := Authenticate(decoded, auth.StaticToken{Token: "secret"}); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if err := Authenticate(decoded, auth.StaticToken{Token: "other"}); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := Authenticate(NewMessage(2, Ack{}), auth.StaticToken{Token: "secret"}); !errors.Is(err, auth.ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
}
