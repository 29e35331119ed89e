package sigs

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/crypto"
	"github.com/iov-one/dispenser/errors"
	"github.com/iov-one/dispenser/orm"
)

// BucketName is the bucket of signer accounts, keyed by address.
const BucketName = "sigs"

// maxSequence is the largest sequence a javascript client can still
// represent exactly (Number.MAX_SAFE_INTEGER).
const maxSequence = 1<<53 - 1

// UserData is the state of a signer: the public key revealed with the
// first signature and the sequence expected for the next one.
type UserData struct {
	Pubkey   *crypto.PublicKey `protobuf:"bytes,1,opt,name=pubkey,proto3" json:"pubkey,omitempty"`
	Sequence int64             `protobuf:"varint,2,opt,name=sequence,proto3" json:"sequence,omitempty"`
}

var _ orm.Model = (*UserData)(nil)

func (u *UserData) Validate() error {
	switch {
	case u.Sequence < 0:
		return errors.Field("Sequence", ErrInvalidSequence, "negative")
	case u.Sequence > 0 && u.Pubkey == nil:
		return errors.Field("Sequence", ErrInvalidSequence, "used without a public key")
	}
	return nil
}

func (u *UserData) Copy() orm.Model {
	cp := *u
	return &cp
}

// CheckAndIncrementSequence consumes the sequence expected. It fails
// without modifying u when expected is not the current sequence.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", expected, u.Sequence)
	}
	if u.Sequence >= maxSequence {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence++
	return nil
}

type userDataPB UserData

func (m *userDataPB) Reset()         { *m = userDataPB{} }
func (m *userDataPB) String() string { return proto.CompactTextString(m) }
func (*userDataPB) ProtoMessage()    {}

func (u *UserData) Marshal() ([]byte, error) {
	return proto.Marshal((*userDataPB)(u))
}

func (u *UserData) Unmarshal(bz []byte) error {
	return proto.Unmarshal(bz, (*userDataPB)(u))
}

// AsUser returns the UserData held by obj, or nil.
func AsUser(obj orm.Object) *UserData {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*UserData)
}

// NewUser returns an account object for the given key, stored under its
// address. A nil key gives the template object of the bucket.
func NewUser(pubkey *crypto.PublicKey) orm.Object {
	var key dispenser.Address
	if pubkey != nil {
		key = pubkey.Address()
	}
	return orm.NewSimpleObj(key, &UserData{Pubkey: pubkey})
}

// Bucket holds the signer accounts.
type Bucket struct {
	orm.Bucket
}

func NewBucket() Bucket {
	return Bucket{Bucket: orm.NewBucket(BucketName, NewUser(nil))}
}

// GetOrCreate loads the account of pubkey, or returns a fresh one with
// sequence 0 that is not yet saved.
func (b Bucket) GetOrCreate(db dispenser.KVStore, pubkey *crypto.PublicKey) (orm.Object, error) {
	obj, err := b.Get(db, pubkey.Address())
	if err != nil {
		return nil, err
	}
	if obj == nil {
		obj = NewUser(pubkey)
	}
	return obj, nil
}

// NextNonce returns the sequence the signer must use for its next
// signature. Unknown signers start at zero.
func NextNonce(db dispenser.ReadOnlyKVStore, signer dispenser.Address) (int64, error) {
	obj, err := NewBucket().Get(db, signer)
	if err != nil {
		return 0, errors.Wrap(err, "load signer")
	}
	if u := AsUser(obj); u != nil {
		return u.Sequence, nil
	}
	return 0, nil
}
