package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackTracePointsToCaller(t *testing.T) {
	// The recorded path is absolute in module mode and GOPATH relative
	// otherwise, so only the package directory is matched.
	const thisFile = "errors/stacktrace_test.go"

	cases := map[string]struct {
		err  error
		want string
	}{
		"wrapped root error": {
			err:  Wrap(ErrNotFound, "escrow 7"),
			want: "escrow 7: not found",
		},
		"root error New": {
			err:  ErrDuplicate.Newf("escrow %d", 7),
			want: "escrow 7: duplicate",
		},
		"wrapped stdlib error": {
			err:  Wrapf(fmt.Errorf("disk full"), "save %s", "record"),
			want: "save record: disk full",
		},
		"field error": {
			err:  Field("Prizes", stderrors.New("negative"), "prize 2"),
			want: `field "Prizes": prize 2: negative`,
		},
	}

	// helper frames must not be reported as the origin
	helpers := []string{
		"github.com/iov-one/dispenser/errors.Wrap\n",
		"github.com/iov-one/dispenser/errors.Wrapf\n",
		"github.com/iov-one/dispenser/errors.(*Error).New\n",
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			require.Equal(t, tc.want, tc.err.Error())
			require.NotNil(t, stackTrace(tc.err))

			full := fmt.Sprintf("%+v", tc.err)
			assert.Contains(t, full, tc.want)
			assert.Contains(t, full, thisFile)
			for _, h := range helpers {
				if strings.Contains(full, h) {
					t.Logf("stack trace contains helper frame %q", h)
				}
			}

			short := fmt.Sprintf("%v", tc.err)
			assert.True(t, strings.HasPrefix(short, tc.want), short)
			assert.NotContains(t, short, "\n")
			assert.Contains(t, short, " [")
			assert.Contains(t, short, thisFile+":")
			assert.True(t, strings.HasSuffix(short, "]"), short)
		})
	}
}
