package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored. The
// result is nil when no error was provided.
//
// The ABCI code of the result is the code of the first error, which makes a
// validation that collects all problems still report the most relevant one.
func Append(errs ...error) error {
	var res multiErr
	for _, e := range errs {
		if errIsNil(e) {
			continue
		}
		if m, ok := e.(multiErr); ok {
			res = append(res, m...)
		} else {
			res = append(res, e)
		}
	}
	if len(res) == 0 {
		return nil
	}
	return res
}

type multiErr []error

func (m multiErr) Error() string {
	if len(m) == 1 {
		return m[0].Error()
	}
	msgs := make([]string, len(m))
	for i, e := range m {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d errors occurred: %s", len(m), strings.Join(msgs, "; "))
}

// Unpack implements the unpacker interface.
func (m multiErr) Unpack() []error {
	return []error(m)
}

// ABCICode returns the code of the first grouped error.
func (m multiErr) ABCICode() uint32 {
	return abciCode(m[0])
}
