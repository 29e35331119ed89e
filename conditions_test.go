package dispenser_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ed25519"
)

func TestAddressPrinting(t *testing.T) {
	Convey("test hexadecimal address printing", t, func() {
		b := bytes.Repeat([]byte{0xab}, dispenser.AddressLength)
		addr := dispenser.Address(b)

		So(addr.String(), ShouldEqual, fmt.Sprintf("%X", []byte(addr)))
		So(dispenser.Address(nil).String(), ShouldEqual, "(nil)")
	})

	Convey("test hexadecimal condition printing", t, func() {
		cond := dispenser.NewCondition("escrow", "vault", []byte("ABCD123456LHB"))

		So(cond.String(), ShouldNotEqual, fmt.Sprintf("%X", []byte(cond)))
		So(cond.String(), ShouldStartWith, "escrow/vault/")
	})
}

func TestConditionDerivation(t *testing.T) {
	Convey("Given an escrow condition", t, func() {
		cond := dispenser.NewCondition("escrow", "vault", []byte("host-and-id"))

		Convey("derivation is deterministic", func() {
			a1, b1, err := cond.Derive()
			So(err, ShouldBeNil)
			a2, b2, err := cond.Derive()
			So(err, ShouldBeNil)
			So(a1, ShouldResemble, a2)
			So(b1, ShouldEqual, b2)
			So(cond.Address(), ShouldResemble, a1)
		})

		Convey("derived address is off the curve and valid", func() {
			addr, bump, err := cond.Derive()
			So(err, ShouldBeNil)
			So(addr.Validate(), ShouldBeNil)
			So(addr.IsOnCurve(), ShouldBeFalse)

			again, err := cond.DeriveWithBump(bump)
			So(err, ShouldBeNil)
			So(again, ShouldResemble, addr)
		})

		Convey("bump search starts at 255 and stops at the first off curve candidate", func() {
			_, bump, err := cond.Derive()
			So(err, ShouldBeNil)
			for b := 255; b > int(bump); b-- {
				_, err := cond.DeriveWithBump(uint8(b))
				So(errors.ErrInvalidInput.Is(err), ShouldBeTrue)
			}
		})

		Convey("different conditions derive different addresses", func() {
			other := dispenser.NewCondition("escrow", "record", []byte("host-and-id"))
			So(other.Address(), ShouldNotResemble, cond.Address())
		})

		Convey("derivation preimage follows the documented layout", func() {
			addr, bump, err := cond.Derive()
			So(err, ShouldBeNil)
			pre := append(append([]byte(cond), bump), []byte("ProgramDerivedAddress")...)
			sum := sha256.Sum256(pre)
			So([]byte(addr), ShouldResemble, sum[:])
		})
	})

	Convey("public keys are on the curve", t, func() {
		pub, _, err := ed25519.GenerateKey(nil)
		So(err, ShouldBeNil)
		So(dispenser.Address(pub).IsOnCurve(), ShouldBeTrue)
		So(dispenser.Address([]byte{1, 2, 3}).IsOnCurve(), ShouldBeFalse)
	})
}

func TestAddressUnmarshalJSON(t *testing.T) {
	raw := bytes.Repeat([]byte{0x42}, dispenser.AddressLength)
	rawHex := hex.EncodeToString(raw)
	bech, err := dispenser.Address(raw).Bech32("disp")
	require.NoError(t, err)

	cases := map[string]struct {
		json     string
		wantErr  *errors.Error
		wantAddr dispenser.Address
	}{
		"default decoding": {
			json:     `"` + rawHex + `"`,
			wantAddr: dispenser.Address(raw),
		},
		"hex decoding": {
			json:     `"hex:` + rawHex + `"`,
			wantAddr: dispenser.Address(raw),
		},
		"bech32 decoding": {
			json:     `"bech32:` + bech + `"`,
			wantAddr: dispenser.Address(raw),
		},
		"cond decoding": {
			json:     `"cond:foo/bar/636f6e646974696f6e64617461"`,
			wantAddr: dispenser.NewCondition("foo", "bar", []byte("conditiondata")).Address(),
		},
		"too short address": {
			json:    `"6865782d61646472"`,
			wantErr: errors.ErrInvalidInput,
		},
		"invalid condition format": {
			json:    `"cond:foo/636f6e646974696f6e64617461"`,
			wantErr: errors.ErrInvalidInput,
		},
		"invalid condition data": {
			json:    `"cond:foo/bar/zzzzz"`,
			wantErr: errors.ErrInvalidInput,
		},
		"unknown format": {
			json:    `"foobar:xxx"`,
			wantErr: errors.ErrInvalidType,
		},
		"zero address": {
			json:     `""`,
			wantAddr: nil,
		},
		"zero hex address": {
			json:     `"hex:"`,
			wantAddr: nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var a dispenser.Address
			err := json.Unmarshal([]byte(tc.json), &a)
			if !tc.wantErr.Is(err) {
				t.Fatalf("got error: %+v", err)
			}
			if err == nil && !reflect.DeepEqual(a, tc.wantAddr) {
				t.Fatalf("got address: %q", a)
			}
		})
	}
}

func TestAddressMarshalJSON(t *testing.T) {
	addr := dispenser.Address(bytes.Repeat([]byte{0x0f}, dispenser.AddressLength))
	got, err := json.Marshal(addr)
	require.NoError(t, err)

	var back dispenser.Address
	require.NoError(t, json.Unmarshal(got, &back))
	assert.Equal(t, addr, back)
}

func TestConditionUnmarshalJSON(t *testing.T) {
	cases := map[string]struct {
		json          string
		wantErr       *errors.Error
		wantCondition dispenser.Condition
	}{
		"default decoding": {
			json:          `"foo/bar/636f6e646974696f6e64617461"`,
			wantCondition: dispenser.NewCondition("foo", "bar", []byte("conditiondata")),
		},
		"invalid condition format": {
			json:    `"foo/636f6e646974696f6e64617461"`,
			wantErr: errors.ErrInvalidInput,
		},
		"invalid condition data": {
			json:    `"foo/bar/zzzzz"`,
			wantErr: errors.ErrInvalidInput,
		},
		"zero address": {
			json:          `""`,
			wantCondition: nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got dispenser.Condition
			err := json.Unmarshal([]byte(tc.json), &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("got error: %+v", err)
			}
			if err == nil && !got.Equals(tc.wantCondition) {
				t.Fatalf("expected %q but got condition: %q", tc.wantCondition, got)
			}
		})
	}
}

func TestConditionMarshalJSON(t *testing.T) {
	cases := map[string]struct {
		source   dispenser.Condition
		wantJSON string
	}{
		"cond encoding": {
			source:   dispenser.NewCondition("foo", "bar", []byte("conditiondata")),
			wantJSON: `"foo/bar/636F6E646974696F6E64617461"`,
		},
		"nil encoding": {
			source:   nil,
			wantJSON: `""`,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := json.Marshal(tc.source)
			require.NoError(t, err)
			assert.Equal(t, tc.wantJSON, string(got))
		})
	}
}
