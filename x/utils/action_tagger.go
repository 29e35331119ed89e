package utils

import (
	"github.com/iov-one/dispenser"
	"github.com/tendermint/tendermint/libs/common"
)

// ActionKey is the tag key under which the message path is recorded.
const ActionKey = "action"

// ActionTagger adds an `action = msg.Path()` tag to every successfully
// delivered transaction, so clients can subscribe to escrow creation or
// prize withdrawals.
type ActionTagger struct{}

var _ dispenser.Decorator = ActionTagger{}

func NewActionTagger() ActionTagger {
	return ActionTagger{}
}

// Check passes the request along.
func (ActionTagger) Check(ctx dispenser.Context, db dispenser.KVStore, tx dispenser.Tx, next dispenser.Checker) (*dispenser.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

// Deliver appends the action tag on success.
func (ActionTagger) Deliver(ctx dispenser.Context, db dispenser.KVStore, tx dispenser.Tx, next dispenser.Deliverer) (*dispenser.DeliverResult, error) {
	// Fail before dispatching if the message cannot be read.
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	res, err := next.Deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res.Tags = append(res.Tags, common.KVPair{
		Key:   []byte(ActionKey),
		Value: []byte(msg.Path()),
	})
	return res, nil
}
