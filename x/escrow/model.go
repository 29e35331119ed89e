package escrow

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
	"github.com/iov-one/dispenser/orm"
	"github.com/iov-one/dispenser/x"
)

const (
	// BucketName is where we store the escrow records.
	BucketName = "escrow"

	// MaxWinners is the capacity of a single escrow.
	MaxWinners = 5

	// CommitmentLength is the size of a hashed winner.
	CommitmentLength = sha256.Size
)

// Escrow is the ledger record of a prize pool. It is stored under the
// address derived from RecordCondition(host, escrow id).
type Escrow struct {
	// Host funded the escrow.
	Host dispenser.Address `protobuf:"bytes,1,opt,name=host,proto3" json:"host"`
	// VaultAddress holds the funds that are not claimed yet.
	VaultAddress dispenser.Address `protobuf:"bytes,2,opt,name=vault_address,json=vaultAddress,proto3" json:"vault_address"`
	EscrowID     uint64            `protobuf:"varint,3,opt,name=escrow_id,json=escrowId,proto3" json:"escrow_id"`
	// HashedWinners are sha256 digests of winner addresses. The position
	// of a digest is the index of the prize it is entitled to.
	HashedWinners [][]byte `protobuf:"bytes,4,rep,name=hashed_winners,json=hashedWinners,proto3" json:"hashed_winners"`
	// Prizes are set to zero once claimed.
	Prizes      []uint64 `protobuf:"varint,5,rep,packed,name=prizes,proto3" json:"prizes"`
	TotalAmount uint64   `protobuf:"varint,6,opt,name=total_amount,json=totalAmount,proto3" json:"total_amount"`
	RecordBump  uint32   `protobuf:"varint,7,opt,name=record_bump,json=recordBump,proto3" json:"record_bump"`
	VaultBump   uint32   `protobuf:"varint,8,opt,name=vault_bump,json=vaultBump,proto3" json:"vault_bump"`
}

var _ orm.Model = (*Escrow)(nil)

// Validate ensures the escrow is well formed. Because prizes are paid out
// over time only an upper bound on their sum can be checked.
func (e *Escrow) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Host", e.Host.Validate())
	errs = errors.AppendField(errs, "VaultAddress", e.VaultAddress.Validate())

	switch n := len(e.HashedWinners); {
	case n != len(e.Prizes):
		errs = errors.AppendField(errs, "Prizes", ErrMismatchedPrizesAndWinners)
	case n > MaxWinners:
		errs = errors.AppendField(errs, "HashedWinners", ErrTooManyWinners)
	}
	for i, h := range e.HashedWinners {
		if len(h) != CommitmentLength {
			errs = errors.Append(errs, errors.Field("HashedWinners", errors.ErrInvalidInput,
				"commitment %d must be %d bytes", i, CommitmentLength))
		}
	}

	if sum, err := e.Outstanding(); err != nil {
		errs = errors.AppendField(errs, "Prizes", err)
	} else if sum > e.TotalAmount {
		errs = errors.Append(errs, errors.Field("TotalAmount", errors.ErrInvalidState,
			"outstanding prizes %d exceed total %d", sum, e.TotalAmount))
	}

	if e.RecordBump > 255 {
		errs = errors.AppendField(errs, "RecordBump", errors.ErrInvalidInput)
	}
	if e.VaultBump > 255 {
		errs = errors.AppendField(errs, "VaultBump", errors.ErrInvalidInput)
	}
	return errs
}

// Copy returns a deep copy.
func (e *Escrow) Copy() orm.Model {
	hashed := make([][]byte, len(e.HashedWinners))
	for i, h := range e.HashedWinners {
		hashed[i] = append([]byte(nil), h...)
	}
	return &Escrow{
		Host:          append(dispenser.Address(nil), e.Host...),
		VaultAddress:  append(dispenser.Address(nil), e.VaultAddress...),
		EscrowID:      e.EscrowID,
		HashedWinners: hashed,
		Prizes:        append([]uint64(nil), e.Prizes...),
		TotalAmount:   e.TotalAmount,
		RecordBump:    e.RecordBump,
		VaultBump:     e.VaultBump,
	}
}

// Outstanding returns the sum of all prizes that are not claimed yet. The
// vault must hold at least that much.
func (e *Escrow) Outstanding() (uint64, error) {
	return x.SumAmounts(e.Prizes...)
}

type escrowPB Escrow

func (m *escrowPB) Reset()         { *m = escrowPB{} }
func (m *escrowPB) String() string { return proto.CompactTextString(m) }
func (*escrowPB) ProtoMessage()    {}

func (e *Escrow) Marshal() ([]byte, error) {
	return proto.Marshal((*escrowPB)(e))
}

func (e *Escrow) Unmarshal(bz []byte) error {
	return proto.Unmarshal(bz, (*escrowPB)(e))
}

// NewBucket returns a bucket for managing escrows, indexed by the host.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Escrow{},
		orm.WithIndex("host", hostIndexer, false))
}

func hostIndexer(obj orm.Object) ([]byte, error) {
	if obj == nil || obj.Value() == nil {
		return nil, nil
	}
	e, ok := obj.Value().(*Escrow)
	if !ok {
		return nil, errors.WithType(errors.ErrInvalidModel, obj.Value())
	}
	return e.Host, nil
}

// seed is the derivation seed shared by the record and the vault of an
// escrow: host || little endian escrow id.
func seed(host dispenser.Address, escrowID uint64) []byte {
	bz := make([]byte, len(host)+8)
	copy(bz, host)
	binary.LittleEndian.PutUint64(bz[len(host):], escrowID)
	return bz
}

// RecordCondition is the seed of the address the escrow record is stored at.
func RecordCondition(host dispenser.Address, escrowID uint64) dispenser.Condition {
	return dispenser.NewCondition("escrow", "record", seed(host, escrowID))
}

// VaultCondition is the seed of the address holding the escrow funds.
func VaultCondition(host dispenser.Address, escrowID uint64) dispenser.Condition {
	return dispenser.NewCondition("escrow", "vault", seed(host, escrowID))
}

// RecordAddress returns the key of the escrow record for given host and id.
func RecordAddress(host dispenser.Address, escrowID uint64) (dispenser.Address, uint8, error) {
	return RecordCondition(host, escrowID).Derive()
}

// VaultAddress returns the custody address for given host and id.
func VaultAddress(host dispenser.Address, escrowID uint64) (dispenser.Address, uint8, error) {
	return VaultCondition(host, escrowID).Derive()
}

// HashWinner returns the commitment stored for a winner address.
func HashWinner(winner dispenser.Address) []byte {
	h := sha256.Sum256(winner)
	return h[:]
}
