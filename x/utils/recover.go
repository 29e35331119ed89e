package utils

import (
	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
)

// Recovery converts a panic raised by any inner handler into an
// errors.ErrPanic so a single broken transaction cannot halt the ledger.
type Recovery struct{}

var _ dispenser.Decorator = Recovery{}

func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx dispenser.Context, store dispenser.KVStore, tx dispenser.Tx, next dispenser.Checker) (_ *dispenser.CheckResult, err error) {
	defer errors.Recover(&err)
	return next.Check(ctx, store, tx)
}

func (Recovery) Deliver(ctx dispenser.Context, store dispenser.KVStore, tx dispenser.Tx, next dispenser.Deliverer) (_ *dispenser.DeliverResult, err error) {
	defer errors.Recover(&err)
	return next.Deliver(ctx, store, tx)
}
