// Package domain contains entities without logic, just meta-data
package domain

import (
	"errors"
	"strings"
)

const (
	MaxUserIDLen   = 64
	MaxUsernameLen = 36
)

var (
	ErrUserIDEmpty     = errors.New("user id empty")
	ErrUserIDTooLong   = errors.New("user id too long")
	ErrUsernameTooLong = errors.New("username too long")
)

type UserID string

func (id UserID) String() string { return string(id) }

// Identity is an already authenticated caller. The service never issues
// identities, it only authorizes them.
type Identity struct {
	ID   UserID `json:"id"`
	Name string `json:"name"`
}

// NewIdentity trims and validates what an identity provider handed over.
// An empty name falls back to the id.
func NewIdentity(id, name string) (Identity, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Identity{}, ErrUserIDEmpty
	}
	if len(id) > MaxUserIDLen {
		return Identity{}, ErrUserIDTooLong
	}
	name = strings.TrimSpace(name)
	if len(name) > MaxUsernameLen {
		return Identity{}, ErrUsernameTooLong
	}
	if name == "" {
		name = id
	}
	return Identity{ID: UserID(id), Name: name}, nil
}
