package dispenser

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/agl/ed25519/edwards25519"
	"github.com/iov-one/dispenser/crypto/bech32"
	"github.com/iov-one/dispenser/errors"
)

const (
	// AddressLength is the length of all addresses. A signer address is
	// its ed25519 public key, a derived address is a sha256 digest.
	AddressLength = 32

	// derivationMarker is appended to every derivation preimage so that
	// derived addresses can never collide with other sha256 usages.
	derivationMarker = "ProgramDerivedAddress"
)

// it must have (?s) flags, otherwise it errors when last section contains 0x20 (newline)
var perm = regexp.MustCompile(`(?s)^([a-zA-Z0-9_\-]{3,8})/([a-zA-Z0-9_\-]{3,8})/(.+)$`)

// Condition is a specially formatted array, containing
// information on who can authorize an action.
// It is of the format:
//
//   sprintf("%s/%s/%s", extension, type, data)
//
// A condition is the seed of a derived address. Nobody holds a private key
// for a derived address, only the extension named by the condition can act
// on its behalf.
type Condition []byte

// NewCondition builds a condition from its parts.
func NewCondition(ext, typ string, data []byte) Condition {
	pre := fmt.Sprintf("%s/%s/", ext, typ)
	return append([]byte(pre), data...)
}

// Parse will extract the sections from the Condition bytes
// and verify it is properly formatted.
func (c Condition) Parse() (string, string, []byte, error) {
	chunks := perm.FindSubmatch(c)
	if len(chunks) == 0 {
		return "", "", nil, errors.ErrInvalidInput.Newf("condition: %X", []byte(c))
	}
	// returns [all, match1, match2, match3]
	return string(chunks[1]), string(chunks[2]), chunks[3], nil
}

// Derive searches for the address of this condition. Candidates are computed
// for bump values from 255 down to 0 and the first candidate that is not a
// valid ed25519 point is returned, together with the bump that produced it.
func (c Condition) Derive() (Address, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		addr, err := c.DeriveWithBump(uint8(bump))
		if err == nil {
			return addr, uint8(bump), nil
		}
	}
	return nil, 0, errors.ErrInvalidState.Newf("no address for condition %s", c)
}

// DeriveWithBump computes the address of this condition for a known bump. It
// fails if the candidate lies on the ed25519 curve.
func (c Condition) DeriveWithBump(bump uint8) (Address, error) {
	h := sha256.New()
	h.Write(c)
	h.Write([]byte{bump})
	h.Write([]byte(derivationMarker))
	addr := Address(h.Sum(nil))
	if addr.IsOnCurve() {
		return nil, errors.ErrInvalidInput.Newf("bump %d gives an address on the curve", bump)
	}
	return addr, nil
}

// Address returns the derived address of this condition.
func (c Condition) Address() Address {
	addr, _, err := c.Derive()
	if err != nil {
		// Probability of 256 consecutive on curve digests is negligible.
		panic(err)
	}
	return addr
}

// Equals checks if two conditions are the same.
func (c Condition) Equals(b Condition) bool {
	return bytes.Equal(c, b)
}

// String returns a human readable string.
// We keep the extension and type in ascii and
// hex-encode the binary data.
func (c Condition) String() string {
	ext, typ, data, err := c.Parse()
	if err != nil {
		return fmt.Sprintf("Invalid Condition: %X", []byte(c))
	}
	return fmt.Sprintf("%s/%s/%X", ext, typ, data)
}

// Validate returns an error if the Condition is not the proper format.
func (c Condition) Validate() error {
	if !perm.Match(c) {
		return errors.ErrInvalidInput.Newf("condition: %X", []byte(c))
	}
	return nil
}

// MarshalJSON uses the human readable representation.
func (c Condition) MarshalJSON() ([]byte, error) {
	var serialized string
	if c != nil {
		serialized = c.String()
	}
	return json.Marshal(serialized)
}

// UnmarshalJSON parses the human readable representation.
func (c *Condition) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(err, "cannot decode json")
	}
	return c.deserialize(enc)
}

func (c *Condition) deserialize(source string) error {
	if len(source) == 0 {
		*c = nil
		return nil
	}

	args := strings.Split(source, "/")
	if len(args) != 3 {
		return errors.ErrInvalidInput.New("invalid condition format")
	}
	data, err := hex.DecodeString(args[2])
	if err != nil {
		return errors.ErrInvalidInput.Newf("malformed condition data: %s", err)
	}
	*c = NewCondition(args[0], args[1], data)
	return nil
}

// Address identifies an account. It is either the public key of a signer or
// the derived address of a Condition.
//
// It will be of size AddressLength.
type Address []byte

// Equals checks if two addresses are the same.
func (a Address) Equals(b Address) bool {
	return bytes.Equal(a, b)
}

// IsOnCurve returns true if the address is a valid ed25519 point, meaning
// it can be a public key with a private counterpart.
func (a Address) IsOnCurve() bool {
	if len(a) != AddressLength {
		return false
	}
	var raw [AddressLength]byte
	copy(raw[:], a)
	var p edwards25519.ExtendedGroupElement
	return p.FromBytes(&raw)
}

// Bech32 returns the address encoded with the given human readable part.
func (a Address) Bech32(hrp string) (string, error) {
	return bech32.Encode(hrp, a)
}

// MarshalJSON provides a hex representation for JSON,
// to override the standard base64 []byte encoding.
func (a Address) MarshalJSON() ([]byte, error) {
	s := strings.ToUpper(hex.EncodeToString(a))
	return json.Marshal(s)
}

// UnmarshalJSON accepts a hex representation. A "hex:", "cond:" or
// "bech32:" prefix selects the decoding explicitly.
func (a *Address) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(err, "cannot decode json")
	}
	addr, err := ParseAddress(enc)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// ParseAddress decodes a textual address. See Address.UnmarshalJSON for
// supported formats. An empty value is a nil address.
func ParseAddress(enc string) (Address, error) {
	chunks := strings.SplitN(enc, ":", 2)
	format := chunks[0]
	if len(chunks) == 1 {
		format = "hex"
	} else {
		enc = chunks[1]
	}

	if len(enc) == 0 {
		return nil, nil
	}

	switch format {
	case "hex":
		val, err := hex.DecodeString(enc)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInvalidInput, "cannot decode hex")
		}
		addr := Address(val)
		if err := addr.Validate(); err != nil {
			return nil, err
		}
		return addr, nil
	case "cond":
		var c Condition
		if err := c.deserialize(enc); err != nil {
			return nil, err
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return c.Address(), nil
	case "bech32":
		_, payload, err := bech32.Decode(enc)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "deserialize bech32: %s", err)
		}
		addr := Address(payload)
		if err := addr.Validate(); err != nil {
			return nil, err
		}
		return addr, nil
	default:
		return nil, errors.ErrInvalidType.Newf("unknown format %q", chunks[0])
	}
}

// String returns a human readable string.
func (a Address) String() string {
	if len(a) == 0 {
		return "(nil)"
	}
	return strings.ToUpper(hex.EncodeToString(a))
}

// Validate returns an error if the address is not the valid size.
func (a Address) Validate() error {
	if len(a) != AddressLength {
		return errors.ErrInvalidInput.Newf("address: %v", a)
	}
	return nil
}
