package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/iov-one/dispenser/weavetest/assert"
)

func TestEd25519Signing(t *testing.T) {
	private := GenPrivKeyEd25519()
	public := private.PublicKey()

	msg := []byte("foobar")
	msg2 := []byte("dingbooms")

	sig, err := private.Sign(msg)
	assert.Nil(t, err)
	sig2, err := private.Sign(msg2)
	assert.Nil(t, err)

	bz, err := sig.Marshal()
	assert.Nil(t, err)
	bz2, err := sig2.Marshal()
	assert.Nil(t, err)

	if bytes.Equal(bz, bz2) {
		t.Fatal("marshaling different signatures produce the same binary representation")
	}

	if !public.Verify(msg, sig) {
		t.Fatal("cannot verify a message signed with this public key")
	}
	if !public.Verify(msg2, sig2) {
		t.Fatal("cannot verify a message signed with this public key")
	}

	if public.Verify(msg, sig2) {
		t.Fatal("verified message signature of the wrong message")
	}
	if public.Verify(msg, &Signature{}) {
		t.Fatal("verified an empty signature of a message")
	}
	if public.Verify(msg, nil) {
		t.Fatal("verified a nil signature of a message")
	}

	var decoded Signature
	assert.Nil(t, decoded.Unmarshal(bz))
	if !public.Verify(msg, &decoded) {
		t.Fatal("decoded signature must verify")
	}
}

func TestEd25519Address(t *testing.T) {
	pub := GenPrivKeyEd25519().PublicKey()
	pub2 := GenPrivKeyEd25519().PublicKey()

	assert.Nil(t, pub.Validate())
	assert.Nil(t, pub.Address().Validate())
	if pub.Address().Equals(pub2.Address()) {
		t.Fatal("two different keys have the same address")
	}
	if !pub.Address().IsOnCurve() {
		t.Fatal("signer address must be on the curve")
	}

	var empty *PublicKey
	assert.Nil(t, empty.Address())
	if empty.Validate() == nil {
		t.Fatal("empty key must not validate")
	}
}

func TestPrivateKeyFromSeed(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)
	a := PrivKeyEd25519FromSeed(seed)
	b := PrivKeyEd25519FromSeed(seed)
	assert.Equal(t, a.PublicKey(), b.PublicKey())

	bz, err := a.Marshal()
	assert.Nil(t, err)
	var back PrivateKey
	assert.Nil(t, back.Unmarshal(bz))
	assert.Equal(t, a.Ed25519, back.Ed25519)
}

func TestDeriveKey(t *testing.T) {
	// SLIP-0010 ed25519 test vector 1.
	seed, err := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	assert.Nil(t, err)

	key, err := DeriveKey(seed, "m/0'")
	assert.Nil(t, err)
	assert.Equal(t,
		"8c8a13df77a28f3445213a0f432fde644acaa215fc72dcdf300d5efaa85d350c",
		hex.EncodeToString(key.PublicKey().Ed25519))

	again, err := DeriveKey(seed, "m/0'")
	assert.Nil(t, err)
	assert.Equal(t, key.Ed25519, again.Ed25519)

	other, err := DeriveKey(seed, DefaultPath)
	assert.Nil(t, err)
	if bytes.Equal(key.Ed25519, other.Ed25519) {
		t.Fatal("different paths must derive different keys")
	}

	if _, err := DeriveKey(seed, "m/0"); err == nil {
		t.Fatal("non hardened path must fail")
	}
	if _, err := DeriveKey([]byte{1}, DefaultPath); err == nil {
		t.Fatal("short seed must fail")
	}
}
