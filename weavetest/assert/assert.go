// Package assert is a small set of test helpers that fail the test right
// away, printing errors with their stack trace.
package assert

import (
	"reflect"

	"github.com/iov-one/dispenser/errors"
)

// Tester is the part of testing.TB the helpers need.
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
	Logf(string, ...interface{})
}

// Nil fails the test if value is not nil. A typed nil counts as nil.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if !isNil(value) {
		t.Fatalf("want a nil value, got %+v", value)
	}
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	}
	return false
}

// Equal fails the test unless want and got are deeply equal.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("values not equal\nwant %T %v\n got %T %v", want, want, got, got)
	}
}

// Panics fails the test if fn returns without panicking.
func Panics(t Tester, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("panic expected")
		}
	}()
	fn()
}

// FieldError fails the test unless err holds exactly one error for the
// field and that error is of kind want. A nil want asserts the field has
// no error at all.
func FieldError(t Tester, err error, field string, want *errors.Error) {
	t.Helper()

	found := errors.FieldErrors(err, field)
	for i, e := range found {
		t.Logf("field %q error %d: %v", field, i, e)
	}
	switch {
	case want == nil && len(found) != 0:
		t.Fatalf("want no %q error, got %d", field, len(found))
	case want == nil:
	case len(found) != 1:
		t.Fatalf("want one %q error, got %d", field, len(found))
	case !want.Is(found[0]):
		t.Fatalf("want %q error of kind %q, got %+v", field, want, found[0])
	}
}
