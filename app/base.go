package app

import (
	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp is the ABCI application: StoreApp for state and queries, plus
// CheckTx and DeliverTx executed one at a time by the ledger.
type BaseApp struct {
	*StoreApp
	decoder dispenser.TxDecoder
	debug   bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp returns an application decoding transactions with decoder.
// In debug mode internal error messages are returned to clients.
func NewBaseApp(store *StoreApp, decoder dispenser.TxDecoder, debug bool) BaseApp {
	return BaseApp{StoreApp: store, decoder: decoder, debug: debug}
}

func (b BaseApp) DeliverTx(txBytes []byte) abci.ResponseDeliverTx {
	tx, err := b.decode(txBytes)
	if err != nil {
		return dispenser.DeliverTxError(err, b.debug)
	}
	ctx := b.txContext("deliver_tx", tx)
	res, err := b.ledger.Deliver(ctx, tx)
	return dispenser.DeliverOrError(res, err, b.debug)
}

func (b BaseApp) CheckTx(txBytes []byte) abci.ResponseCheckTx {
	tx, err := b.decode(txBytes)
	if err != nil {
		return dispenser.CheckTxError(err, b.debug)
	}
	ctx := b.txContext("check_tx", tx)
	res, err := b.ledger.Check(ctx, tx)
	return dispenser.CheckOrError(res, err, b.debug)
}

func (b BaseApp) txContext(call string, tx dispenser.Tx) dispenser.Context {
	return dispenser.WithLogInfo(b.BlockContext(), "call", call, "path", dispenser.GetPath(tx))
}

// decode runs the decoder, turning a panic on malformed input into an
// error.
func (b BaseApp) decode(txBytes []byte) (tx dispenser.Tx, err error) {
	defer errors.Recover(&err)
	return b.decoder(txBytes)
}
