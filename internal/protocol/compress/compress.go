// Package compress carries zstd payloads for frames flagged FlagCompressed.
package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/danmuck/safebuf/internal/protocol/frame"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

var (
	ErrTooLarge = errors.New("compress: decompressed payload exceeds limit")
	ErrCorrupt  = errors.New("compress: corrupt zstd payload")
)

var (
	encOnce sync.Once
	enc     *zstd.Encoder
	encErr  error
)

func encoder() (*zstd.Encoder, error) {
	encOnce.Do(func() {
		enc, encErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	})
	return enc, encErr
}

// Compress returns the zstd encoding of raw.
func Compress(raw []byte) ([]byte, error) {
	e, err := encoder()
	if err != nil {
		return nil, err
	}
	return e.EncodeAll(raw, make([]byte, 0, len(raw)/2+16)), nil
}

// Decompress decodes a zstd payload, refusing output larger than max bytes.
// The limit applies to the decoded bytes, not to the window the encoder chose.
func Decompress(data []byte, max uint64) ([]byte, error) {
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
	)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	if err := dec.Reset(bytes.NewReader(data)); err != nil {
		log.Error().Err(err).Msg("compress.Decompress failed")
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	limit := int64(math.MaxInt64)
	if max < math.MaxInt64 {
		limit = int64(max) + 1
	}
	out, err := io.ReadAll(io.LimitReader(dec, limit))
	switch {
	case errors.Is(err, zstd.ErrDecoderSizeExceeded), errors.Is(err, zstd.ErrWindowSizeExceeded):
		log.Error().Uint64("max", max).Msg("compress.Decompress limit exceeded")
		return nil, ErrTooLarge
	case err != nil:
		log.Error().Err(err).Msg("compress.Decompress failed")
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if uint64(len(out)) > max {
		log.Error().Uint64("max", max).Msg("compress.Decompress limit exceeded")
		return nil, ErrTooLarge
	}
	return out, nil
}

// Seal compresses f.Payload in place and sets FlagCompressed.
// A frame already flagged is returned unchanged.
func Seal(f frame.Frame) (frame.Frame, error) {
	if f.Header.Flags&frame.FlagCompressed != 0 {
		return f, nil
	}
	p, err := Compress(f.Payload)
	if err != nil {
		return f, err
	}
	f.Payload = p
	f.Header.Flags |= frame.FlagCompressed
	f.Header.PayloadLen = uint64(len(p))
	return f, nil
}

// Open reverses Seal, bounded by limits.MaxPayloadBytes.
func Open(f frame.Frame, limits frame.Limits) (frame.Frame, error) {
	if f.Header.Flags&frame.FlagCompressed == 0 {
		return f, nil
	}
	p, err := Decompress(f.Payload, limits.MaxPayloadBytes)
	if err != nil {
		return f, err
	}
	f.Payload = p
	f.Header.Flags &^= frame.FlagCompressed
	f.Header.PayloadLen = uint64(len(p))
	return f, nil
}
