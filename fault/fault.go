// Package fault defines the error taxonomy shared by every transport and driver.
//
// Errors carry a Kind. Kinds form a shallow hierarchy: a CommitError is also an
// RPCError, and a NetconfSessionLimitExceeded is also a ConnectionError, so
//
//	errors.Is(err, fault.ErrRPC)
//
// holds for commit failures.
package fault

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure.
type Kind int

// Failure kinds.
const (
	Unknown Kind = iota
	Timeout
	Connection
	SessionLimit
	Auth
	RPC
	Commit
	UnsupportedVendor
	Configuration
)

var kindNames = map[Kind]string{
	Unknown:           "UnknownError",
	Timeout:           "Timeout",
	Connection:        "ConnectionError",
	SessionLimit:      "NetconfSessionLimitExceeded",
	Auth:              "AuthError",
	RPC:               "RPCError",
	Commit:            "CommitError",
	UnsupportedVendor: "UnsupportedVendor",
	Configuration:     "ConfigurationError",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) parent() Kind {
	switch k {
	case Commit:
		return RPC
	case SessionLimit:
		return Connection
	default:
		return Unknown
	}
}

// IsA reports whether k is target or one of its specialisations.
func (k Kind) IsA(target Kind) bool {
	for ; k != Unknown; k = k.parent() {
		if k == target {
			return true
		}
	}
	return false
}

// Error is a classified failure.
type Error struct {
	Kind Kind
	// Message is the human readable text surfaced to callers.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

// New returns a classified error with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err, keeping it as the cause.
func Wrap(err error, kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels (ErrRPC, ErrTimeout ...) by kind, and any
// other *Error by identity.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message != "" || t.Err != nil {
		return e == t
	}
	return e.Kind.IsA(t.Kind)
}

// Format prints the cause chain with %+v.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') && e.Err != nil {
			fmt.Fprintf(s, "%s: %+v", e.Error(), e.Err)
			return
		}
		fallthrough
	case 's':
		fmt.Fprint(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

// Sentinels usable with errors.Is.
var (
	ErrTimeout           = &Error{Kind: Timeout}
	ErrConnection        = &Error{Kind: Connection}
	ErrSessionLimit      = &Error{Kind: SessionLimit}
	ErrAuth              = &Error{Kind: Auth}
	ErrRPC               = &Error{Kind: RPC}
	ErrCommit            = &Error{Kind: Commit}
	ErrUnsupportedVendor = &Error{Kind: UnsupportedVendor}
	ErrConfiguration     = &Error{Kind: Configuration}
)

// KindOf returns the kind of the first classified error in err's chain, or
// Unknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Unknown
}

// Classified reports whether err carries a kind.
func Classified(err error) bool {
	return KindOf(err) != Unknown
}
