/*
Package crypto holds the ed25519 keys used to sign transactions. The public key
of a signer is its address.
*/
package crypto

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
	"golang.org/x/crypto/ed25519"
)

// Signer is the functionality we use from a private key.
// No serializing to support hardware devices as well.
type Signer interface {
	Sign(message []byte) (*Signature, error)
	PublicKey() *PublicKey
}

// PublicKey is an ed25519 public key.
type PublicKey struct {
	Ed25519 []byte `protobuf:"bytes,1,opt,name=ed25519,proto3" json:"ed25519,omitempty"`
}

// PrivateKey is an ed25519 private key, including the public part.
type PrivateKey struct {
	Ed25519 []byte `protobuf:"bytes,1,opt,name=ed25519,proto3" json:"ed25519,omitempty"`
}

// Signature is an ed25519 signature.
type Signature struct {
	Ed25519 []byte `protobuf:"bytes,1,opt,name=ed25519,proto3" json:"ed25519,omitempty"`
}

// Verify verifies the signature was created with this message and public key.
func (p *PublicKey) Verify(message []byte, sig *Signature) bool {
	if p == nil || sig == nil || len(p.Ed25519) != ed25519.PublicKeySize {
		return false
	}
	if len(sig.Ed25519) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(p.Ed25519), message, sig.Ed25519)
}

// Address returns the address of the signer, which is the key itself.
func (p *PublicKey) Address() dispenser.Address {
	if p == nil {
		return nil
	}
	return append(dispenser.Address(nil), p.Ed25519...)
}

// Validate makes sure the key is a valid ed25519 public key.
func (p *PublicKey) Validate() error {
	if p == nil || len(p.Ed25519) != ed25519.PublicKeySize {
		return errors.ErrInvalidInput.New("public key size")
	}
	if !dispenser.Address(p.Ed25519).IsOnCurve() {
		return errors.ErrInvalidInput.New("public key is not a curve point")
	}
	return nil
}

var _ Signer = (*PrivateKey)(nil)

// Sign returns a matching signature for this private key.
func (p *PrivateKey) Sign(message []byte) (*Signature, error) {
	if len(p.Ed25519) != ed25519.PrivateKeySize {
		return nil, errors.ErrInvalidState.New("private key size")
	}
	bz := ed25519.Sign(ed25519.PrivateKey(p.Ed25519), message)
	return &Signature{Ed25519: bz}, nil
}

// PublicKey returns the corresponding PublicKey.
func (p *PrivateKey) PublicKey() *PublicKey {
	pub := ed25519.PrivateKey(p.Ed25519).Public().(ed25519.PublicKey)
	return &PublicKey{Ed25519: pub}
}

// GenPrivKeyEd25519 returns a random new private key.
func GenPrivKeyEd25519() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{Ed25519: priv}
}

// PrivKeyEd25519FromSeed will deterministically generate a private key from
// a given 32 byte seed. Use if you have a strong source of external
// randomness, or for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) *PrivateKey {
	return &PrivateKey{Ed25519: ed25519.NewKeyFromSeed(seed)}
}

type publicKeyPB PublicKey

func (m *publicKeyPB) Reset()         { *m = publicKeyPB{} }
func (m *publicKeyPB) String() string { return proto.CompactTextString(m) }
func (*publicKeyPB) ProtoMessage()    {}

// Marshal encodes the key with protobuf.
func (p *PublicKey) Marshal() ([]byte, error) { return proto.Marshal((*publicKeyPB)(p)) }

// Unmarshal decodes a protobuf encoded key.
func (p *PublicKey) Unmarshal(bz []byte) error { return proto.Unmarshal(bz, (*publicKeyPB)(p)) }

type privateKeyPB PrivateKey

func (m *privateKeyPB) Reset()         { *m = privateKeyPB{} }
func (m *privateKeyPB) String() string { return proto.CompactTextString(m) }
func (*privateKeyPB) ProtoMessage()    {}

// Marshal encodes the key with protobuf.
func (p *PrivateKey) Marshal() ([]byte, error) { return proto.Marshal((*privateKeyPB)(p)) }

// Unmarshal decodes a protobuf encoded key.
func (p *PrivateKey) Unmarshal(bz []byte) error { return proto.Unmarshal(bz, (*privateKeyPB)(p)) }

type signaturePB Signature

func (m *signaturePB) Reset()         { *m = signaturePB{} }
func (m *signaturePB) String() string { return proto.CompactTextString(m) }
func (*signaturePB) ProtoMessage()    {}

// Marshal encodes the signature with protobuf.
func (s *Signature) Marshal() ([]byte, error) { return proto.Marshal((*signaturePB)(s)) }

// Unmarshal decodes a protobuf encoded signature.
func (s *Signature) Unmarshal(bz []byte) error { return proto.Unmarshal(bz, (*signaturePB)(s)) }
