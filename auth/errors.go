package auth

import (
	"errors"
	"fmt"
)

// Kind classifies why a login could not be authenticated.
type Kind int

const (
	// Unavailable means the session service could not be reached in time.
	Unavailable Kind = iota + 1
	// InvalidCredentials means the session or the verify token was rejected.
	InvalidCredentials
	// UserMigrated means the account has to log in with its e-mail address.
	UserMigrated
)

func (k Kind) String() string {
	switch k {
	case Unavailable:
		return "Unavailable"
	case InvalidCredentials:
		return "InvalidCredentials"
	case UserMigrated:
		return "UserMigrated"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Reason is the text shown to the player when a login fails with this kind.
func (k Kind) Reason() string {
	switch k {
	case Unavailable:
		return "authentication service unavailable, try again later"
	case UserMigrated:
		return "account migrated, use e-mail to login"
	}
	return "invalid session"
}

type AuthenticationError struct {
	Kind Kind
	Err  error
}

func (e *AuthenticationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("authentication failed: %s", e.Kind)
	}
	return fmt.Sprintf("authentication failed: %s: %v", e.Kind, e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

func newError(kind Kind, err error) *AuthenticationError {
	return &AuthenticationError{Kind: kind, Err: err}
}

// KindOf extracts the Kind of an AuthenticationError anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var aerr *AuthenticationError
	if errors.As(err, &aerr) {
		return aerr.Kind, true
	}
	return 0, false
}
