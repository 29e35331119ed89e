package app

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
	"github.com/iov-one/dispenser/x/escrow"
	"github.com/iov-one/dispenser/x/sigs"
)

// Tx is the transaction envelope of the dispenser chain. Exactly one of
// the message fields is set.
type Tx struct {
	Signatures          []*sigs.StdSignature        `protobuf:"bytes,1,rep,name=signatures,proto3" json:"signatures,omitempty"`
	InitializeEscrowMsg *escrow.InitializeEscrowMsg `protobuf:"bytes,2,opt,name=initialize_escrow_msg,json=initializeEscrowMsg,proto3" json:"initialize_escrow_msg,omitempty"`
	WithdrawPrizeMsg    *escrow.WithdrawPrizeMsg    `protobuf:"bytes,3,opt,name=withdraw_prize_msg,json=withdrawPrizeMsg,proto3" json:"withdraw_prize_msg,omitempty"`
}

// make sure tx fulfills all interfaces
var _ dispenser.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (dispenser.Tx, error) {
	tx := new(Tx)
	if err := tx.Unmarshal(bz); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return tx, nil
}

// NewTx wraps given message into an unsigned transaction.
func NewTx(msg dispenser.Msg) (*Tx, error) {
	var tx Tx
	switch m := msg.(type) {
	case *escrow.InitializeEscrowMsg:
		tx.InitializeEscrowMsg = m
	case *escrow.WithdrawPrizeMsg:
		tx.WithdrawPrizeMsg = m
	default:
		return nil, errors.Wrapf(errors.ErrInvalidMsg, "unsupported message %T", msg)
	}
	return &tx, nil
}

// GetMsg returns the single message carried by the transaction.
func (tx *Tx) GetMsg() (dispenser.Msg, error) {
	var msgs []dispenser.Msg
	if tx.InitializeEscrowMsg != nil {
		msgs = append(msgs, tx.InitializeEscrowMsg)
	}
	if tx.WithdrawPrizeMsg != nil {
		msgs = append(msgs, tx.WithdrawPrizeMsg)
	}

	switch len(msgs) {
	case 0:
		return nil, errors.Wrap(errors.ErrInvalidMsg, "no message")
	case 1:
		return msgs[0], nil
	default:
		return nil, errors.Wrap(errors.ErrInvalidMsg, "more than one message")
	}
}

// GetSignatures returns the signatures of the transaction.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the bytes to sign...
func (tx *Tx) GetSignBytes() ([]byte, error) {
	// temporarily unset the signatures, as the sign bytes
	// should only come from the data itself, not previous signatures
	sigs := tx.Signatures
	tx.Signatures = nil

	bz, err := tx.Marshal()

	// reset the signatures after calculating the bytes
	tx.Signatures = sigs
	return bz, err
}

type txPB Tx

func (m *txPB) Reset()         { *m = txPB{} }
func (m *txPB) String() string { return proto.CompactTextString(m) }
func (*txPB) ProtoMessage()    {}

func (tx *Tx) Marshal() ([]byte, error) {
	return proto.Marshal((*txPB)(tx))
}

func (tx *Tx) Unmarshal(bz []byte) error {
	return proto.Unmarshal(bz, (*txPB)(tx))
}
