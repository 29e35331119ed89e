package x

import (
	"math"
	"testing"

	"github.com/iov-one/dispenser/errors"
)

func TestSumAmounts(t *testing.T) {
	cases := map[string]struct {
		amounts []uint64
		want    uint64
		wantErr *errors.Error
	}{
		"no amounts": {
			amounts: nil,
			want:    0,
		},
		"zero amounts are allowed": {
			amounts: []uint64{0, 0, 5},
			want:    5,
		},
		"sum of many": {
			amounts: []uint64{100, 200, 300},
			want:    600,
		},
		"max value fits": {
			amounts: []uint64{math.MaxUint64 - 1, 1},
			want:    math.MaxUint64,
		},
		"overflow": {
			amounts: []uint64{math.MaxUint64, 1},
			wantErr: errors.ErrOverflow,
		},
		"overflow of a later element": {
			amounts: []uint64{1, math.MaxUint64 / 2, math.MaxUint64 / 2, 2},
			wantErr: errors.ErrOverflow,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := SumAmounts(tc.amounts...)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if err == nil && got != tc.want {
				t.Fatalf("want %d, got %d", tc.want, got)
			}
		})
	}
}

func TestSubAmount(t *testing.T) {
	if got, err := SubAmount(10, 3); err != nil || got != 7 {
		t.Fatalf("want 7, got %d (%v)", got, err)
	}
	if got, err := SubAmount(10, 10); err != nil || got != 0 {
		t.Fatalf("want 0, got %d (%v)", got, err)
	}
	if _, err := SubAmount(3, 10); !errors.ErrInsufficientAmount.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}
}
