// Package store holds the persistence logic: the access-control predicate,
// activity mutations with their audit history, subtask ordering, invitation
// issuance and redemption, and webhook subscriptions. Handlers stay thin and
// map the errors below onto HTTP statuses.
package store

import (
	"errors"

	"github.com/trackline-dev/trackline/internal/types"
)

var (
	// ErrNotFound covers both true absence and access denial; callers must
	// not be able to tell them apart.
	ErrNotFound = errors.New("not found")

	// ErrConflict signals a duplicate username, or an invitation redeemed
	// with the wrong password for an existing account.
	ErrConflict = errors.New("conflict")

	// ErrValidation signals malformed input (short username/password, bad
	// character set).
	ErrValidation = errors.New("validation failed")
)

// Principal identifies the acting user for access checks and audit rows.
type Principal struct {
	ID       uint
	Username string
	Role     string
}

func (p Principal) IsAdmin() bool {
	return p.Role == types.RoleAdmin
}
