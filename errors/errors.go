package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Root errors shared by all extensions. Codes below 100 are reserved for
// this package; extensions register their own ranges.
var (
	// ErrUnauthorized: a required signature is missing or invalid.
	ErrUnauthorized = Register(2, "unauthorized")

	ErrNotFound = Register(3, "not found")

	// ErrInvalidMsg: a message that cannot be routed or decoded.
	ErrInvalidMsg = Register(4, "invalid message")

	// ErrInvalidModel: a stored value of an unexpected type.
	ErrInvalidModel = Register(5, "invalid model")

	// ErrDuplicate: a primary or unique key is already taken.
	ErrDuplicate = Register(6, "duplicate")

	// ErrHuman marks a code path that is unreachable in a correct program.
	ErrHuman = Register(7, "coding error")

	ErrEmpty = Register(9, "value is empty")

	ErrInvalidState = Register(10, "invalid state")

	ErrInvalidType = Register(11, "invalid type")

	// ErrInsufficientAmount: a balance is too low for a transfer.
	ErrInsufficientAmount = Register(12, "insufficient amount")

	ErrInvalidAmount = Register(13, "invalid amount")

	ErrInvalidInput = Register(14, "invalid input")

	// ErrOverflow: checked arithmetic exceeded the range of its type.
	ErrOverflow = Register(16, "an operation cannot be completed due to value overflow")

	// ErrDatabase: the underlying store failed.
	ErrDatabase = Register(17, "database")

	// ErrPanic wraps a recovered panic. It is always redacted.
	ErrPanic = Register(111222, "panic")
)

// Register declares a root error with a unique ABCI code. It panics when
// the code is taken, so call it only from package level variables.
func Register(code uint32, description string) *Error {
	if e, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	err := &Error{code: code, desc: description}
	usedCodes[code] = err
	return err
}

// usedCodes holds every registered code. Code 1 is the internal error
// reported for anything that is not registered.
var usedCodes = map[uint32]*Error{
	1: nil,
}

// Error is a root error. Errors created at runtime wrap a root error so
// callers can test them with Is and clients receive its code.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// ABCICode is the code reported in ABCI responses.
func (e Error) ABCICode() uint32 {
	return e.code
}

// New is Wrap(e, description).
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is New with a formatted description.
func (e *Error) Newf(description string, args ...interface{}) error {
	return e.New(fmt.Sprintf(description, args...))
}

// Is reports whether err is kind or wraps it. Grouped errors match when
// any member matches. A nil kind matches only a nil error.
func (kind *Error) Is(err error) bool {
	if kind == nil {
		return errIsNil(err)
	}
	for !errIsNil(err) {
		if err == kind {
			return true
		}
		switch e := err.(type) {
		case unpacker:
			for _, member := range e.Unpack() {
				if kind.Is(member) {
					return true
				}
			}
			return false
		case causer:
			err = e.Cause()
		default:
			return false
		}
	}
	return false
}

// Wrap annotates err with description and returns nil for a nil err.
// A stack trace is attached by the innermost wrap. Errors without a
// registered root are reported as internal errors.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &wrappedError{parent: err, msg: description}
}

// Wrapf is Wrap with a formatted description.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

type wrappedError struct {
	msg    string
	parent error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Recover turns a panic into an ErrPanic assigned to *err. It must be
// deferred.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// WithType annotates err with the type of obj.
func WithType(err error, obj interface{}) error {
	return Wrap(err, fmt.Sprintf("%T", obj))
}

// causer is implemented by wrapping errors.
type causer interface {
	Cause() error
}

// unpacker is implemented by errors that group several errors together.
type unpacker interface {
	Unpack() []error
}
