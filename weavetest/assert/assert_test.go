package assert

import (
	"fmt"
	"testing"

	"github.com/iov-one/dispenser/errors"
)

func TestFieldError(t *testing.T) {
	badHost := errors.Field("Host", errors.ErrInvalidInput, "wrong length")

	cases := map[string]struct {
		err      error
		field    string
		want     *errors.Error
		wantFail bool
	}{
		"single matching error": {
			err:   badHost,
			field: "Host",
			want:  errors.ErrInvalidInput,
		},
		"error of another kind": {
			err:      badHost,
			field:    "Host",
			want:     errors.ErrEmpty,
			wantFail: true,
		},
		"no error expected for another field": {
			err:   badHost,
			field: "Prizes",
		},
		"no error expected but one found": {
			err:      badHost,
			field:    "Host",
			wantFail: true,
		},
		"two errors for one field": {
			err: errors.Append(
				badHost,
				errors.Field("Host", errors.ErrInvalidInput, "not a signer"),
			),
			field:    "Host",
			want:     errors.ErrInvalidInput,
			wantFail: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			rec := &recorder{}
			FieldError(rec, tc.err, tc.field, tc.want)
			if failed := len(rec.failures) > 0; failed != tc.wantFail {
				t.Fatalf("want failure %v, got %q", tc.wantFail, rec.failures)
			}
		})
	}
}

func TestNil(t *testing.T) {
	var typed *errors.Error
	for _, v := range []interface{}{nil, typed, []byte(nil), map[string]int(nil)} {
		rec := &recorder{}
		Nil(rec, v)
		if len(rec.failures) != 0 {
			t.Fatalf("%#v must be nil", v)
		}
	}
	for _, v := range []interface{}{0, "", errors.ErrEmpty, []byte{}} {
		rec := &recorder{}
		Nil(rec, v)
		if len(rec.failures) != 1 {
			t.Fatalf("%#v must not be nil", v)
		}
	}
}

// recorder collects failures instead of stopping the test.
type recorder struct {
	failures []string
}

func (*recorder) Helper()                         {}
func (*recorder) Logf(string, ...interface{})     {}
func (r *recorder) Fatal(args ...interface{})     { r.failures = append(r.failures, fmt.Sprint(args...)) }
func (r *recorder) Fatalf(s string, args ...interface{}) {
	r.failures = append(r.failures, fmt.Sprintf(s, args...))
}
