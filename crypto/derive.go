package crypto

import (
	"github.com/iov-one/dispenser/errors"
	"github.com/stellar/go/exp/crypto/derivation"
)

// DefaultPath is the SLIP-0010 derivation path of the first account.
const DefaultPath = "m/44'/234'/0'"

// DeriveKey derives an ed25519 private key from a master seed following
// SLIP-0010. Only hardened path segments are supported.
func DeriveKey(seed []byte, path string) (*PrivateKey, error) {
	if len(seed) < 16 {
		return nil, errors.ErrInvalidInput.New("seed too short")
	}
	k, err := derivation.DeriveForPath(path, seed)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "derive %q: %s", path, err)
	}
	return PrivKeyEd25519FromSeed(k.Key), nil
}
