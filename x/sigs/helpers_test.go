package sigs

import (
	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/weavetest"
)

// StdTx is a minimal signed transaction.
type StdTx struct {
	weavetest.Tx
	Signatures []*StdSignature
}

var _ SignedTx = (*StdTx)(nil)
var _ dispenser.Tx = (*StdTx)(nil)

func NewStdTx(payload []byte) *StdTx {
	msg := &weavetest.Msg{RoutePath: "mock", Serialized: payload}
	return &StdTx{Tx: weavetest.Tx{Msg: msg}}
}

func (tx *StdTx) GetSignatures() []*StdSignature {
	return tx.Signatures
}

func (tx *StdTx) GetSignBytes() ([]byte, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	return msg.Marshal()
}

// SigCheckHandler stores the seen signers on each call
type SigCheckHandler struct {
	Signers []dispenser.Address
}

var _ dispenser.Handler = (*SigCheckHandler)(nil)

func (s *SigCheckHandler) Check(ctx dispenser.Context, store dispenser.KVStore, tx dispenser.Tx) (*dispenser.CheckResult, error) {
	s.Signers = Authenticate{}.GetSigners(ctx)
	return &dispenser.CheckResult{}, nil
}

func (s *SigCheckHandler) Deliver(ctx dispenser.Context, store dispenser.KVStore, tx dispenser.Tx) (*dispenser.DeliverResult, error) {
	s.Signers = Authenticate{}.GetSigners(ctx)
	return &dispenser.DeliverResult{}, nil
}
