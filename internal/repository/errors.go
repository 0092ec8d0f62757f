// Package repository implements the SQL persistence layer.  This file
// defines sentinel errors shared across repositories so that handlers
// can map failures to HTTP statuses without inspecting driver errors:
// ErrNotFound becomes 404, the conflict family becomes 409,
// ErrForbidden becomes 403 and ErrSelfFriend becomes 400.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a referenced entity does not exist or
// is not owned by the caller.  Ownership misses are deliberately
// indistinguishable from absence.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they may not access, such as viewing habits of a non-friend.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is the generic uniqueness-violation error.  More specific
// sentinels below wrap common cases; all of them unwrap to ErrConflict
// so handlers can match the whole family with errors.Is.
var ErrConflict = errors.New("conflict")

// ErrEmailExists signals a duplicate users.email on registration.
var ErrEmailExists = wrapConflict("email already exists")

// ErrCheckExists signals a duplicate (habit_id, date_checked) pair:
// the habit was already checked that day.
var ErrCheckExists = wrapConflict("habit already checked today")

// ErrFriendshipExists signals that an edge between the two users
// already exists in either direction.
var ErrFriendshipExists = wrapConflict("friendship already exists")

// ErrSelfFriend is returned when a user tries to befriend themselves.
var ErrSelfFriend = errors.New("cannot add yourself as friend")

func wrapConflict(msg string) error {
	return &conflictError{msg: msg}
}

type conflictError struct{ msg string }

func (e *conflictError) Error() string { return e.msg }
func (e *conflictError) Unwrap() error { return ErrConflict }

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (code 1062).  The unique constraints in the schema are the authority
// for conflict detection; application-level pre-checks are advisory.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "1062")
}
