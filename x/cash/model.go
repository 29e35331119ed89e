package cash

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/dispenser/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

// Wallet holds the balance of a single address. The address is the key
// under which the wallet is stored.
type Wallet struct {
	Balance uint64 `protobuf:"varint,1,opt,name=balance,proto3" json:"balance,omitempty"`
}

var _ orm.Model = (*Wallet)(nil)

// Validate is a no-op. Any uint64 is a valid balance.
func (w *Wallet) Validate() error {
	return nil
}

func (w *Wallet) Copy() orm.Model {
	return &Wallet{Balance: w.Balance}
}

type walletPB Wallet

func (m *walletPB) Reset()         { *m = walletPB{} }
func (m *walletPB) String() string { return proto.CompactTextString(m) }
func (*walletPB) ProtoMessage()    {}

func (w *Wallet) Marshal() ([]byte, error) {
	return proto.Marshal((*walletPB)(w))
}

func (w *Wallet) Unmarshal(bz []byte) error {
	return proto.Unmarshal(bz, (*walletPB)(w))
}

// NewBucket returns a bucket for managing wallets.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Wallet{})
}
