package weavetest

import (
	"testing"

	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/crypto"
)

// NewKey returns a new random signing key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewAddress returns the address of a new random signing key. It is a point
// on the curve, so it never collides with a derived address.
func NewAddress() dispenser.Address {
	return NewKey().PublicKey().Address()
}

// ParseAddress is dispenser.ParseAddress that fails the test on error.
func ParseAddress(t testing.TB, enc string) dispenser.Address {
	t.Helper()
	addr, err := dispenser.ParseAddress(enc)
	if err != nil {
		t.Fatalf("address %q: %s", enc, err)
	}
	return addr
}
