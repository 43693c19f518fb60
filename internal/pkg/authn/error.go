package authn

import (
	"errors"
	"fmt"
)

// Kind tags the reason an authentication step failed.
type Kind int

const (
	// KindUnknown is reported for errors not produced by this package.
	KindUnknown Kind = iota
	// KindAuthenticationRequired means no credential was presented.
	KindAuthenticationRequired
	// KindAuthenticationInvalid means a credential was presented but is malformed or fails verification.
	KindAuthenticationInvalid
	// KindTokenExpired means a presented token is past its expiry.
	KindTokenExpired
)

func (k Kind) String() string {
	switch k {
	case KindAuthenticationRequired:
		return "authentication_required"
	case KindAuthenticationInvalid:
		return "authentication_invalid"
	case KindTokenExpired:
		return "token_expired"
	default:
		return "unknown"
	}
}

// Error is the tagged failure of an authentication step.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "authn: " + e.Kind.String()
	}
	return fmt.Sprintf("authn: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the Kind carried anywhere in err's chain.
func KindOf(err error) Kind {
	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr.Kind
	}
	return KindUnknown
}
