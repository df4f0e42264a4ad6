// Package auth checks the auth block carried by frames flagged FlagHasAuth.
package auth

import (
	"crypto/subtle"
	"errors"
)

var (
	ErrUnauthorized = errors.New("auth: unauthorized")
	ErrMissing      = errors.New("auth: frame carries no auth block")
)

// Validator validates a frame auth block.
type Validator interface {
	Validate(block []byte) error
}

// StaticToken accepts exactly one shared token. An empty token accepts nothing.
type StaticToken struct {
	Token string
}

func (s StaticToken) Validate(block []byte) error {
	if s.Token == "" {
		return ErrUnauthorized
	}
	if len(block) == 0 {
		return ErrMissing
	}
	if subtle.ConstantTimeCompare([]byte(s.Token), block) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// FuncValidator adapts a function into a Validator.
type FuncValidator func(block []byte) error

func (f FuncValidator) Validate(block []byte) error {
	return f(block)
}
