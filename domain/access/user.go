// Package access defines principals, permissions, and access entries. An
// access entry grants one permission to one user, either globally or scoped
// to a single object.
package access

import (
	"fmt"
	"strings"
	"time"

	"github.com/pagekeep/doclink/internal/domain"
)

// MaxUsernameLength bounds a username.
const MaxUsernameLength = 150

// SystemUsername is the reserved username the scheduler and other internal
// callers act as. The system principal bypasses access checks.
const SystemUsername = "system"

// User is an acting principal. Superusers bypass all access checks;
// inactive users are denied everything.
type User struct {
	id          int64
	username    string
	isSuperuser bool
	isActive    bool
	dateJoined  time.Time
}

// NewUser creates an active, non-privileged user.
func NewUser(username string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if len(username) > MaxUsernameLength {
		return User{}, fmt.Errorf(
			"%w: username exceeds %d characters", domain.ErrValidation, MaxUsernameLength,
		)
	}
	if strings.ContainsAny(username, " \t\n") {
		return User{}, fmt.Errorf("%w: username must not contain whitespace", domain.ErrValidation)
	}
	return User{
		username:   username,
		isActive:   true,
		dateJoined: time.Now().UTC(),
	}, nil
}

// ReconstructUser creates a User from persisted state.
func ReconstructUser(id int64, username string, isSuperuser, isActive bool, dateJoined time.Time) User {
	return User{
		id:          id,
		username:    username,
		isSuperuser: isSuperuser,
		isActive:    isActive,
		dateJoined:  dateJoined,
	}
}

// System returns the internal system principal.
func System() User {
	return User{username: SystemUsername, isSuperuser: true, isActive: true}
}

// ID returns the user ID.
func (u User) ID() int64 { return u.id }

// Username returns the username.
func (u User) Username() string { return u.username }

// IsSuperuser returns true for principals that bypass access checks.
func (u User) IsSuperuser() bool { return u.isSuperuser }

// IsActive returns false for disabled accounts.
func (u User) IsActive() bool { return u.isActive }

// DateJoined returns when the account was created.
func (u User) DateJoined() time.Time { return u.dateJoined }

// WithID returns a copy with the given ID set.
func (u User) WithID(id int64) User {
	u.id = id
	return u
}

// WithSuperuser returns a copy with the superuser flag set.
func (u User) WithSuperuser(isSuperuser bool) User {
	u.isSuperuser = isSuperuser
	return u
}

// WithActive returns a copy with the active flag set.
func (u User) WithActive(isActive bool) User {
	u.isActive = isActive
	return u
}
