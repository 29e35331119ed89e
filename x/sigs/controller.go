package sigs

import (
	"crypto/sha512"
	"encoding/binary"

	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/crypto"
	"github.com/iov-one/dispenser/errors"
)

// SignCodeV1 prefixes every signed message, versioning the layout built
// by BuildSignBytes.
var SignCodeV1 = []byte{0, 0xCA, 0xFE, 0}

// VerifyTxSignatures verifies every signature of tx and returns the signer
// addresses in signature order. The result is empty, not nil, for a tx
// without signatures. The first invalid signature fails the whole tx.
func VerifyTxSignatures(db dispenser.KVStore, tx SignedTx, chainID string) ([]dispenser.Address, error) {
	payload, err := tx.GetSignBytes()
	if err != nil {
		return nil, errors.Wrap(err, "sign bytes")
	}
	list := tx.GetSignatures()
	signers := make([]dispenser.Address, 0, len(list))
	for i, sig := range list {
		addr, err := VerifySignature(db, sig, payload, chainID)
		if err != nil {
			return nil, errors.Wrapf(err, "signature %d", i)
		}
		signers = append(signers, addr)
	}
	return signers, nil
}

// VerifySignature checks a single signature over payload and consumes the
// sequence it was made for. The signer account is created on first use.
func VerifySignature(db dispenser.KVStore, sig *StdSignature, payload []byte, chainID string) (dispenser.Address, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	digest, err := BuildSignBytes(payload, chainID, sig.Sequence)
	if err != nil {
		return nil, err
	}

	b := NewBucket()
	obj, err := b.GetOrCreate(db, sig.Pubkey)
	if err != nil {
		return nil, err
	}
	user := AsUser(obj)
	if !user.Pubkey.Verify(digest, sig.Signature) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid signature")
	}
	if err := user.CheckAndIncrementSequence(sig.Sequence); err != nil {
		return nil, err
	}
	if err := b.Save(db, obj); err != nil {
		return nil, errors.Wrap(err, "save signer")
	}
	return user.Pubkey.Address(), nil
}

// BuildSignBytes returns the sha512 digest that is signed for a
// transaction. The digest input is
//
//	SignCodeV1 | uint8 len(chainID) | chainID | uint64 big endian seq | payload
//
// so a signature is bound to one chain and one sequence of its signer.
func BuildSignBytes(payload []byte, chainID string, seq int64) ([]byte, error) {
	if seq < 0 {
		return nil, errors.Wrap(ErrInvalidSequence, "negative")
	}
	if !dispenser.IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "chain id: %v", chainID)
	}

	var seqBytes [8]byte
	binary.BigEndian.PutUint64(seqBytes[:], uint64(seq))

	h := sha512.New()
	h.Write(SignCodeV1)
	h.Write([]byte{uint8(len(chainID))})
	h.Write([]byte(chainID))
	h.Write(seqBytes[:])
	h.Write(payload)
	return h.Sum(nil), nil
}

// SignTx signs tx for the given chain with the signer's sequence seq.
func SignTx(signer crypto.Signer, tx SignedTx, chainID string, seq int64) (*StdSignature, error) {
	payload, err := tx.GetSignBytes()
	if err != nil {
		return nil, errors.Wrap(err, "sign bytes")
	}
	digest, err := BuildSignBytes(payload, chainID, seq)
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(digest)
	if err != nil {
		return nil, errors.Wrap(err, "sign")
	}
	return &StdSignature{
		Pubkey:    signer.PublicKey(),
		Signature: sig,
		Sequence:  seq,
	}, nil
}
