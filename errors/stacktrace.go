package errors

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// stackTrace returns the first found stack trace frame carried by given error
// or any wrapped error. It returns nil if no stack trace is found.
func stackTrace(err error) errors.StackTrace {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}

	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}

func matchesFunc(f errors.Frame, prefixes ...string) bool {
	fn := funcName(f)
	for _, prefix := range prefixes {
		if strings.HasPrefix(fn, prefix) {
			return true
		}
	}
	return false
}

// funcName returns the name of the function of the frame, if known.
func funcName(f errors.Frame) string {
	// Frame is a program counter plus one, see pkg/errors stack.go.
	pc := uintptr(f) - 1
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown"
	}
	return fn.Name()
}

func fileLine(f errors.Frame) (string, int) {
	pc := uintptr(f) - 1
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown", 0
	}
	return fn.FileLine(pc)
}

// trimInternal removes the frames of this package and of the runtime from
// both ends of the stack.
func trimInternal(st errors.StackTrace) errors.StackTrace {
	for len(st) > 0 && matchesFunc(st[0],
		"github.com/iov-one/dispenser/errors.Wrap",
		"github.com/iov-one/dispenser/errors.Wrapf",
		"github.com/iov-one/dispenser/errors.WithType",
		"github.com/iov-one/dispenser/errors.Field",
		"github.com/iov-one/dispenser/errors.(*Error).New",
		"runtime.",
	) {
		st = st[1:]
	}
	for l := len(st) - 1; l > 0 && matchesFunc(st[l], "runtime.", "testing."); l-- {
		st = st[:l]
	}
	return st
}

func writeSimpleFrame(s io.Writer, f errors.Frame) {
	file, line := fileLine(f)
	chunks := strings.SplitN(file, "github.com/", 2)
	if len(chunks) == 2 {
		file = chunks[1]
	}
	fmt.Fprintf(s, " [%s:%d]", file, line)
}

// Format works like pkg/errors, with additions.
//   %s is just the error message
//   %+v is the full stack trace
//   %v appends a compressed [filename:line] where the error was created
func (e *wrappedError) Format(s fmt.State, verb rune) {
	formatStack(s, verb, e)
}

func (err *fieldError) Format(s fmt.State, verb rune) {
	formatStack(s, verb, err)
}

func formatStack(s fmt.State, verb rune, err error) {
	if verb != 'v' {
		io.WriteString(s, err.Error())
		return
	}
	stack := trimInternal(stackTrace(err))
	if s.Flag('+') {
		fmt.Fprintf(s, "%+v\n", stack)
		io.WriteString(s, err.Error())
		return
	}
	io.WriteString(s, err.Error())
	if len(stack) > 0 {
		writeSimpleFrame(s, stack[0])
	}
}
