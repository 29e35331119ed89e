package errors

import (
	"io"
	"strings"
	"testing"
)

func TestABCInfo(t *testing.T) {
	cases := map[string]struct {
		err      error
		debug    bool
		wantCode uint32
		wantLog  string
	}{
		"plain registered error": {
			err:      ErrNotFound,
			wantLog:  "not found",
			wantCode: ErrNotFound.code,
		},
		"wrapped registered error": {
			err:      Wrap(Wrap(ErrNotFound, "foo"), "bar"),
			wantLog:  "bar: foo: not found",
			wantCode: ErrNotFound.code,
		},
		"nil is empty message": {
			err:      nil,
			wantLog:  "",
			wantCode: 0,
		},
		"nil registered error is not an error": {
			err:      (*Error)(nil),
			wantLog:  "",
			wantCode: 0,
		},
		"stdlib is generic message": {
			err:      io.EOF,
			wantLog:  "internal error",
			wantCode: 1,
		},
		"stdlib returns error message in debug mode": {
			err:      io.EOF,
			debug:    true,
			wantLog:  "EOF",
			wantCode: 1,
		},
		"wrapped stdlib is only a generic message": {
			err:      Wrap(io.EOF, "cannot read file"),
			wantLog:  "internal error",
			wantCode: 1,
		},
		"grouped errors report the first code": {
			err:      Append(ErrOverflow, ErrNotFound),
			wantLog:  "2 errors occurred: an operation cannot be completed due to value overflow; not found",
			wantCode: ErrOverflow.code,
		},
		"custom error": {
			err:      customErr{},
			wantLog:  "custom",
			wantCode: 999,
		},
		"custom error in debug mode": {
			err:      customErr{},
			debug:    true,
			wantLog:  "custom",
			wantCode: 999,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			code, log := ABCIInfo(tc.err, tc.debug)
			if code != tc.wantCode {
				t.Errorf("want %d code, got %d", tc.wantCode, code)
			}
			if log != tc.wantLog {
				t.Errorf("want %q log, got %q", tc.wantLog, log)
			}
		})
	}
}

func TestABCIInfoDebugContainsStack(t *testing.T) {
	code, log := ABCIInfo(Wrap(io.EOF, "cannot read file"), true)
	if code != 1 {
		t.Fatalf("want internal code, got %d", code)
	}
	if !strings.HasSuffix(log, "cannot read file: EOF") {
		t.Fatalf("unexpected log: %q", log)
	}
	if !strings.Contains(log, "abci_test.go") {
		t.Fatalf("stack trace not present: %q", log)
	}
}

func TestRedact(t *testing.T) {
	if err := Redact(Wrap(ErrPanic, "boom"), false); err.Error() != "internal error" {
		t.Fatalf("panic must be redacted, got %q", err)
	}
	if err := Redact(io.EOF, false); err.Error() != "internal error" {
		t.Fatalf("stdlib error must be redacted, got %q", err)
	}
	if err := Redact(io.EOF, true); err != io.EOF {
		t.Fatalf("debug mode must not redact, got %q", err)
	}
	notFound := ErrNotFound.New("escrow")
	if err := Redact(notFound, false); err != notFound {
		t.Fatalf("registered error must not be redacted, got %q", err)
	}
}

// customErr is a custom implementation of an error that provides an ABCICode
// method.
type customErr struct{}

func (customErr) ABCICode() uint32 { return 999 }

func (customErr) Error() string { return "custom" }

func TestABCIError(t *testing.T) {
	if err := ABCIError(SuccessABCICode, ""); err != nil {
		t.Fatalf("success code is not an error: %v", err)
	}
	if err := ABCIError(ErrNotFound.code, "escrow"); !ErrNotFound.Is(err) {
		t.Fatalf("want not found error, got %v", err)
	}
	err := ABCIError(4321, "unknown")
	if code, _ := ABCIInfo(err, false); code != 4321 {
		t.Fatalf("unregistered code must be preserved, got %d", code)
	}
}
