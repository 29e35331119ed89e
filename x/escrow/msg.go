package escrow

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
	"github.com/iov-one/dispenser/x"
)

const (
	pathInitializeEscrowMsg = "escrow/initialize"
	pathWithdrawPrizeMsg    = "escrow/withdraw"
)

// InitializeEscrowMsg locks the sum of prizes from the host wallet in a
// new escrow vault.
//
// Besides the count checks, every winner must be a valid address and no
// winner may be listed twice. Only the first slot of a repeated winner could
// ever be claimed, so the funds of the others would stay locked.
type InitializeEscrowMsg struct {
	// Host is optional and defaults to the main signer.
	Host     dispenser.Address   `protobuf:"bytes,1,opt,name=host,proto3" json:"host,omitempty"`
	EscrowID uint64              `protobuf:"varint,2,opt,name=escrow_id,json=escrowId,proto3" json:"escrow_id"`
	Winners  []dispenser.Address `protobuf:"bytes,3,rep,name=winners,proto3" json:"winners"`
	Prizes   []uint64            `protobuf:"varint,4,rep,packed,name=prizes,proto3" json:"prizes"`
}

var _ dispenser.Msg = (*InitializeEscrowMsg)(nil)

func (InitializeEscrowMsg) Path() string {
	return pathInitializeEscrowMsg
}

// Validate checks the shape of the message in the same order the
// controller does, so the first failure reported is the same.
func (m *InitializeEscrowMsg) Validate() error {
	if m.Host != nil {
		if err := m.Host.Validate(); err != nil {
			return errors.Field("Host", err, "invalid host")
		}
	}
	return validateWinners(m.Winners, m.Prizes)
}

func validateWinners(winners []dispenser.Address, prizes []uint64) error {
	if len(winners) != len(prizes) {
		return errors.Wrapf(ErrMismatchedPrizesAndWinners, "%d winners, %d prizes", len(winners), len(prizes))
	}
	if len(winners) > MaxWinners {
		return errors.Wrapf(ErrTooManyWinners, "%d > %d", len(winners), MaxWinners)
	}
	for i, w := range winners {
		if err := w.Validate(); err != nil {
			return errors.Field("Winners", err, "winner %d", i)
		}
		for _, prev := range winners[:i] {
			if prev.Equals(w) {
				return errors.Field("Winners", errors.ErrDuplicate, "winner %d is listed twice", i)
			}
		}
	}
	if _, err := x.SumAmounts(prizes...); err != nil {
		return errors.Field("Prizes", err, "sum of prizes")
	}
	return nil
}

type initializeEscrowMsgPB InitializeEscrowMsg

func (m *initializeEscrowMsgPB) Reset()         { *m = initializeEscrowMsgPB{} }
func (m *initializeEscrowMsgPB) String() string { return proto.CompactTextString(m) }
func (*initializeEscrowMsgPB) ProtoMessage()    {}

func (m *InitializeEscrowMsg) Marshal() ([]byte, error) {
	return proto.Marshal((*initializeEscrowMsgPB)(m))
}

func (m *InitializeEscrowMsg) Unmarshal(bz []byte) error {
	return proto.Unmarshal(bz, (*initializeEscrowMsgPB)(m))
}

// WithdrawPrizeMsg pays out the prize of a winner. The winner must sign
// the transaction.
type WithdrawPrizeMsg struct {
	Host     dispenser.Address `protobuf:"bytes,1,opt,name=host,proto3" json:"host"`
	EscrowID uint64            `protobuf:"varint,2,opt,name=escrow_id,json=escrowId,proto3" json:"escrow_id"`
	Winner   dispenser.Address `protobuf:"bytes,3,opt,name=winner,proto3" json:"winner"`
}

var _ dispenser.Msg = (*WithdrawPrizeMsg)(nil)

func (WithdrawPrizeMsg) Path() string {
	return pathWithdrawPrizeMsg
}

func (m *WithdrawPrizeMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Host", m.Host.Validate())
	errs = errors.AppendField(errs, "Winner", m.Winner.Validate())
	return errs
}

type withdrawPrizeMsgPB WithdrawPrizeMsg

func (m *withdrawPrizeMsgPB) Reset()         { *m = withdrawPrizeMsgPB{} }
func (m *withdrawPrizeMsgPB) String() string { return proto.CompactTextString(m) }
func (*withdrawPrizeMsgPB) ProtoMessage()    {}

func (m *WithdrawPrizeMsg) Marshal() ([]byte, error) {
	return proto.Marshal((*withdrawPrizeMsgPB)(m))
}

func (m *WithdrawPrizeMsg) Unmarshal(bz []byte) error {
	return proto.Unmarshal(bz, (*withdrawPrizeMsgPB)(m))
}

// InitializeResult is returned as the data of a delivered initialize
// transaction.
type InitializeResult struct {
	Record     dispenser.Address `protobuf:"bytes,1,opt,name=record,proto3" json:"record"`
	RecordBump uint32            `protobuf:"varint,2,opt,name=record_bump,json=recordBump,proto3" json:"record_bump"`
	Vault      dispenser.Address `protobuf:"bytes,3,opt,name=vault,proto3" json:"vault"`
	VaultBump  uint32            `protobuf:"varint,4,opt,name=vault_bump,json=vaultBump,proto3" json:"vault_bump"`
}

type initializeResultPB InitializeResult

func (m *initializeResultPB) Reset()         { *m = initializeResultPB{} }
func (m *initializeResultPB) String() string { return proto.CompactTextString(m) }
func (*initializeResultPB) ProtoMessage()    {}

func (m *InitializeResult) Marshal() ([]byte, error) {
	return proto.Marshal((*initializeResultPB)(m))
}

func (m *InitializeResult) Unmarshal(bz []byte) error {
	return proto.Unmarshal(bz, (*initializeResultPB)(m))
}

// Receipt describes a paid out prize. It is returned as the data of a
// delivered withdraw transaction.
type Receipt struct {
	Host     dispenser.Address `protobuf:"bytes,1,opt,name=host,proto3" json:"host"`
	EscrowID uint64            `protobuf:"varint,2,opt,name=escrow_id,json=escrowId,proto3" json:"escrow_id"`
	Winner   dispenser.Address `protobuf:"bytes,3,opt,name=winner,proto3" json:"winner"`
	Index    uint32            `protobuf:"varint,4,opt,name=index,proto3" json:"index"`
	Amount   uint64            `protobuf:"varint,5,opt,name=amount,proto3" json:"amount"`
	Vault    dispenser.Address `protobuf:"bytes,6,opt,name=vault,proto3" json:"vault"`
}

type receiptPB Receipt

func (m *receiptPB) Reset()         { *m = receiptPB{} }
func (m *receiptPB) String() string { return proto.CompactTextString(m) }
func (*receiptPB) ProtoMessage()    {}

func (m *Receipt) Marshal() ([]byte, error) {
	return proto.Marshal((*receiptPB)(m))
}

func (m *Receipt) Unmarshal(bz []byte) error {
	return proto.Unmarshal(bz, (*receiptPB)(m))
}
