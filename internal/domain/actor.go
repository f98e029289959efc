package domain

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Role is the capability class of an actor. Every usecase entry point
// checks it explicitly.
type Role string

const (
	RoleCompany   Role = "company"
	RoleCandidate Role = "candidate"
	RoleDoctor    Role = "doctor"
	RoleAdmin     Role = "admin"
	RoleUnknown   Role = "unknown"
)

// ParseRole maps a stored role string to a Role; anything unrecognised is
// RoleUnknown.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleCompany:
		return RoleCompany
	case RoleCandidate:
		return RoleCandidate
	case RoleDoctor:
		return RoleDoctor
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUnknown
	}
}

// Actor is the authenticated identity a request acts as. CategoryIDs is
// only populated for candidates (declared disability categories).
type Actor struct {
	ID          uuid.UUID `json:"id"`
	Role        Role      `json:"role"`
	Email       string    `json:"email,omitempty"`
	CategoryIDs []int64   `json:"category_ids,omitempty"`
}

func (a Actor) Is(role Role) bool {
	return a.Role == role
}

// ActorRepository loads actors from the identity store.
type ActorRepository interface {
	GetActor(ctx context.Context, id uuid.UUID) (*Actor, error)
}
