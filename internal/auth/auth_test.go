package auth

import (
	"errors"
	"testing"

	"github.com/danmuck/safebuf/internal/testutil/testlog"
	"github.com/rs/zerolog/log"
)

func TestStaticTokenValidate(t *testing.T) {
	testlog.Start(t)
	tests := []struct {
		name    string
		stored  string
		input   []byte
		wantErr error
	}{
		{name: "empty token denied", stored: "", input: []byte("abc"), wantErr: ErrUnauthorized},
		{name: "missing block denied", stored: "abc", input: nil, wantErr: ErrMissing},
		{name: "mismatched token denied", stored: "abc", input: []byte("xyz"), wantErr: ErrUnauthorized},
		{name: "prefix denied", stored: "abc", input: []byte("ab"), wantErr: ErrUnauthorized},
		{name: "matching token accepted", stored: "abc", input: []byte("abc"), wantErr: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := (StaticToken{Token: tc.stored}).Validate(tc.input)
			log.Debug().Str("stored", tc.stored).Bytes("input", tc.input).AnErr("err", err).Msg("auth/static-token")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected err %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestFuncValidator(t *testing.T) {
	testlog.Start(t)
	validator := FuncValidator(func(block []byte) error {
		if string(block) != "ok" {
			return ErrUnauthorized
		}
		return nil
	})

	if err := validator.Validate([]byte("bad")); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for bad block, got %v", err)
	}
	if err := validator.Validate([]byte("ok")); err != nil {
		t.Fatalf("expected success for ok block, got %v", err)
	}
}
