package sigs

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/dispenser/crypto"
	"github.com/iov-one/dispenser/errors"
)

// SignedTx represents a transaction that contains signatures,
// which can be verified by the sigs.Decorator
type SignedTx interface {
	// GetSignBytes returns the canonical byte representation of the Msg.
	//
	// Helpful to store original, unparsed bytes here, just in case.
	GetSignBytes() ([]byte, error)

	// Signatures returns the signature of signers who signed the Msg.
	GetSignatures() []*StdSignature
}

// StdSignature represents the signature, the identity of the signer
// (the Pubkey), and a sequence number to prevent replay attacks.
type StdSignature struct {
	Sequence  int64             `protobuf:"varint,1,opt,name=sequence,proto3" json:"sequence,omitempty"`
	Pubkey    *crypto.PublicKey `protobuf:"bytes,2,opt,name=pubkey,proto3" json:"pubkey,omitempty"`
	Signature *crypto.Signature `protobuf:"bytes,3,opt,name=signature,proto3" json:"signature,omitempty"`
}

// GetSequence is nil safe.
func (s *StdSignature) GetSequence() int64 {
	if s == nil {
		return 0
	}
	return s.Sequence
}

// Validate ensures the StdSignature meets basic standards
func (s *StdSignature) Validate() error {
	if s.GetSequence() < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	if s.Pubkey == nil {
		return errors.Wrap(errors.ErrUnauthorized, "missing public key")
	}
	if s.Signature == nil {
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return nil
}

type stdSignaturePB StdSignature

func (m *stdSignaturePB) Reset()         { *m = stdSignaturePB{} }
func (m *stdSignaturePB) String() string { return proto.CompactTextString(m) }
func (*stdSignaturePB) ProtoMessage()    {}

func (s *StdSignature) Marshal() ([]byte, error) {
	return proto.Marshal((*stdSignaturePB)(s))
}

func (s *StdSignature) Unmarshal(bz []byte) error {
	return proto.Unmarshal(bz, (*stdSignaturePB)(s))
}
