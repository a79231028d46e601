// Package store defines the persistence contract for saved automata and the
// accounts that own them, plus the errors common to every backend.
//
// Grounded on server/dao's Store/repository split (one interface per
// resource, a top-level Store aggregating them): generalized from the
// teacher's game/session/user resource set down to the two resources this
// domain actually has.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/brannigan/finautomata/internal/automaton"
)

var (
	ErrNotFound            = errors.New("the requested resource was not found")
	ErrConstraintViolation = errors.New("a uniqueness constraint was violated")
	ErrDecodingFailure     = errors.New("stored data could not be decoded")
)

// Machine is a saved automaton: its structured form plus the bookkeeping a
// store needs to list, own, and version it.
type Machine struct {
	ID       uuid.UUID
	OwnerID  uuid.UUID
	Name     string
	Kind     automaton.Kind
	Data     automaton.StructuredAutomaton
	Created  time.Time
	Modified time.Time
}

// User is an account that can own saved machines via the HTTP API.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Created      time.Time

	// LastLogoutTime is folded into the HMAC signing key for JWTs issued to
	// this user (internal/httpapi/auth), so logging out invalidates every
	// token issued before that moment without needing a server-side
	// revocation list.
	LastLogoutTime time.Time
}

// MachineRepository persists Machine records.
type MachineRepository interface {
	Create(ctx context.Context, m Machine) (Machine, error)
	GetByID(ctx context.Context, id uuid.UUID) (Machine, error)
	GetAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]Machine, error)
	Update(ctx context.Context, id uuid.UUID, m Machine) (Machine, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Close() error
}

// UserRepository persists User accounts.
type UserRepository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	Update(ctx context.Context, id uuid.UUID, u User) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Close() error
}

// Store aggregates every repository the HTTP API and CLI need.
type Store interface {
	Machines() MachineRepository
	Users() UserRepository
	Close() error
}
