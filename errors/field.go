package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field attributes err to a field of a model or message. It returns nil
// when err is nil, so validations can wrap every check unconditionally.
//
// Field names use Go naming. Nested fields are joined with a dot and
// list elements use their index, for example Escrow.Prizes.2.
func Field(fieldName string, err error, description string, args ...interface{}) error {
	if errIsNil(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{parent: err, field: fieldName, desc: description}
}

// AppendField appends the field error, if any, to errs.
func AppendField(errs error, fieldName string, fieldErr error) error {
	return Append(errs, Field(fieldName, fieldErr, ""))
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (err *fieldError) Error() string {
	if err.desc == "" {
		return fmt.Sprintf("field %q: %s", err.field, err.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", err.field, err.desc, err.parent)
}

func (err *fieldError) Cause() error  { return err.parent }
func (err *fieldError) Field() string { return err.field }

type fielder interface {
	Field() string
}

// FieldErrors walks the error tree of err and returns every error that
// was created for fieldName. The search does not descend into a matching
// field error, so a field wrapped into itself is returned once.
func FieldErrors(err error, fieldName string) []error {
	var found []error
	for !errIsNil(err) {
		if f, ok := err.(fielder); ok && f.Field() == fieldName {
			return append(found, err)
		}
		switch e := err.(type) {
		case unpacker:
			// children of a group cover everything its cause could
			for _, child := range e.Unpack() {
				found = append(found, FieldErrors(child, fieldName)...)
			}
			return found
		case causer:
			err = e.Cause()
		default:
			return found
		}
	}
	return found
}
