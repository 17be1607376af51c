package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrSelfRelationship    = errors.New("cannot target yourself")
	ErrDuplicateEdge       = errors.New("already following this user")
	ErrDuplicatePending    = errors.New("a pending buddy request to this user already exists")
	ErrDuplicateMembership = errors.New("user is already a member of this circle")
	ErrAlreadyBuddies      = errors.New("already accountability buddies")
	ErrAlreadyResponded    = errors.New("buddy request has already been responded to")
	ErrNotBuddy            = errors.New("not accountability buddies with this user")
	ErrEdgeNotFound        = errors.New("follow relationship does not exist")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidScope        = errors.New("invalid feed scope")
	ErrInvalidRole         = errors.New("invalid circle role")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrPersistence         = errors.New("persistence failure")
	ErrBusy                = errors.New("resource is busy, retry later")
)

// persistenceError tags a store failure so callers can match ErrPersistence
// while the driver error stays reachable through errors.Is/As.
func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

func notFound(what string, id uint) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
}

// isDuplicateKey detects a unique-constraint violation, the signal that a
// concurrent writer created the same row first.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
