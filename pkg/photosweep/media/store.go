package media

import (
	"context"
	"errors"
	"strings"
)

// AuthorizationState is the access level a Store grants.
type AuthorizationState int

const (
	// NotDetermined means access has not been requested or resolved.
	NotDetermined AuthorizationState = iota
	// Authorized grants full read and delete access.
	Authorized
	// Limited grants read access to a subset or without write permission.
	Limited
	// Denied means access was refused.
	Denied
	// Restricted means access cannot be granted.
	Restricted
)

// String returns the string representation of the state.
func (s AuthorizationState) String() string {
	switch s {
	case NotDetermined:
		return "not_determined"
	case Authorized:
		return "authorized"
	case Limited:
		return "limited"
	case Denied:
		return "denied"
	case Restricted:
		return "restricted"
	default:
		return "unknown"
	}
}

// CanRead reports whether FetchAll may be called in this state.
func (s AuthorizationState) CanRead() bool {
	return s == Authorized || s == Limited
}

// ParseAuthorizationState parses the String form of a state.
func ParseAuthorizationState(s string) (AuthorizationState, error) {
	switch strings.ToLower(s) {
	case "not_determined", "notdetermined":
		return NotDetermined, nil
	case "authorized":
		return Authorized, nil
	case "limited":
		return Limited, nil
	case "denied":
		return Denied, nil
	case "restricted":
		return Restricted, nil
	default:
		return NotDetermined, errors.New("unknown authorization state: " + s)
	}
}

// ErrNotAuthorized is returned when a store does not grant read access.
var ErrNotAuthorized = errors.New("media store access not granted")

// Store is the external system of record for media assets.
//
// FetchAll may be slow and is called once per load cycle. Delete is
// all-or-nothing from the caller's point of view: on error no item is
// assumed removed.
type Store interface {
	FetchAll(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, ids []string) error
	AuthorizationState(ctx context.Context) AuthorizationState
}
