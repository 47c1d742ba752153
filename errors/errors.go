package errors

import (
	// Go internal packages
	"encoding/json"
	"errors"
	"strings"
)

// Error defines a standard application error.
type Error struct {
	Kind    Kind   `json:"kind"`
	Op      string `json:"op,omitempty"`
	Message string `json:"message"`
	// Wrapped underlying error.
	WrappedErr error `json:"-"`
}

// Error renders "op: message: wrapped", skipping empty parts.
func (e *Error) Error() string {
	parts := make([]string, 0, 3)
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	} else {
		parts = append(parts, e.Kind.String())
	}
	if e.WrappedErr != nil {
		parts = append(parts, e.WrappedErr.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.WrappedErr
}

// Is reports whether target is an *Error of the same kind. This lets callers
// write errors.Is(err, errors.E(errors.DataUnavailable)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Op == ""
}

// Op names the operation that produced an error.
type Op string

// Kind defines the kind or class of an error.
type Kind uint8

// Transport agnostic error "kinds"
const (
	Other                     Kind = iota // Unclassified error
	Internal                              // Internal error
	Conflict                              // Conflict when an entity already exists
	Invalid                               // Invalid input, validation error etc
	NotFound                              // Entity does not exist
	Unauthorized                          // Unauthorized access
	Forbidden                             // Forbidden access
	DataUnavailable                       // A required data source could not be read
	ClassificationUnavailable             // The text classifier gave no usable answer
)

func (k Kind) String() string {
	switch k {
	case Other:
		return "unclassified error"
	case Internal:
		return "internal error"
	case Conflict:
		return "conflict"
	case Invalid:
		return "invalid input"
	case NotFound:
		return "entity not found"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case DataUnavailable:
		return "data unavailable"
	case ClassificationUnavailable:
		return "classification unavailable"
	default:
		return "unknown error kind"
	}
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// E builds an *Error from its arguments. Kind, Op, string (message) and
// error (wrapped) are recognised; other types are ignored.
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch arg := arg.(type) {
		case Kind:
			e.Kind = arg
		case Op:
			e.Op = string(arg)
		case error:
			e.WrappedErr = arg
		case string:
			e.Message = arg
		}
	}
	// Inherit the kind of a wrapped application error when none was given.
	if e.Kind == Other {
		var inner *Error
		if errors.As(e.WrappedErr, &inner) {
			e.Kind = inner.Kind
		}
	}
	return e
}

// KindOf returns the Kind of the first *Error in err's chain, or Other.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Other
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// NewInternalServerError creates a new internal server error
func NewInternalServerError(msg string) error {
	return E(Internal, msg)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(msg string) error {
	return E(NotFound, msg)
}

// NewInvalidParamsError creates a new invalid parameters error
func NewInvalidParamsError(msg string) error {
	return E(Invalid, msg)
}

// NewConflictError creates a new conflict error
func NewConflictError(msg string) error {
	return E(Conflict, msg)
}

// NewDataUnavailableError wraps a failed read of a required data source.
func NewDataUnavailableError(msg string, err error) error {
	return E(DataUnavailable, msg, err)
}

var (
	As  = errors.As
	Is  = errors.Is
	New = errors.New
)
