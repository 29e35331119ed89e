package escrow

import (
	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
	"github.com/iov-one/dispenser/x"
)

const (
	initializeEscrowCost int64 = 300
	withdrawPrizeCost    int64 = 50
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r dispenser.Registry, auth x.Authenticator, ctrl Controller) {
	r.Handle(pathInitializeEscrowMsg, InitializeEscrowHandler{auth: auth, ctrl: ctrl})
	r.Handle(pathWithdrawPrizeMsg, WithdrawPrizeHandler{auth: auth, ctrl: ctrl})
}

// RegisterQuery will register the escrow bucket as "/escrows" and the host
// index as "/escrows/host".
func RegisterQuery(qr dispenser.QueryRouter) {
	NewBucket().Register("escrows", qr)
}

// InitializeEscrowHandler creates escrows.
type InitializeEscrowHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ dispenser.Handler = InitializeEscrowHandler{}

func (h InitializeEscrowHandler) Check(ctx dispenser.Context, db dispenser.KVStore, tx dispenser.Tx) (*dispenser.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &dispenser.CheckResult{GasAllocated: initializeEscrowCost}, nil
}

func (h InitializeEscrowHandler) Deliver(ctx dispenser.Context, db dispenser.KVStore, tx dispenser.Tx) (*dispenser.DeliverResult, error) {
	msg, host, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}

	e, err := h.ctrl.Initialize(db, host, msg.EscrowID, msg.Winners, msg.Prizes)
	if err != nil {
		return nil, err
	}
	record, _, err := RecordAddress(e.Host, e.EscrowID)
	if err != nil {
		return nil, err
	}
	res := InitializeResult{
		Record:     record,
		RecordBump: e.RecordBump,
		Vault:      e.VaultAddress,
		VaultBump:  e.VaultBump,
	}
	data, err := res.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "cannot serialize result")
	}

	dispenser.GetLogger(ctx).Debug("escrow initialized",
		"host", e.Host, "escrow", e.EscrowID, "total", e.TotalAmount)
	return &dispenser.DeliverResult{Data: data}, nil
}

// validate returns the message and the host that funds the escrow. The
// host must have signed the transaction.
func (h InitializeEscrowHandler) validate(ctx dispenser.Context, tx dispenser.Tx) (*InitializeEscrowMsg, dispenser.Address, error) {
	var msg InitializeEscrowMsg
	if err := dispenser.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	host := msg.Host
	if host == nil {
		host = x.MainSigner(ctx, h.auth)
		if host == nil {
			return nil, nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
		}
	} else if !h.auth.HasAddress(ctx, host) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "host signature missing")
	}
	return &msg, host, nil
}

// WithdrawPrizeHandler pays out prizes.
type WithdrawPrizeHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ dispenser.Handler = WithdrawPrizeHandler{}

func (h WithdrawPrizeHandler) Check(ctx dispenser.Context, db dispenser.KVStore, tx dispenser.Tx) (*dispenser.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &dispenser.CheckResult{GasAllocated: withdrawPrizeCost}, nil
}

func (h WithdrawPrizeHandler) Deliver(ctx dispenser.Context, db dispenser.KVStore, tx dispenser.Tx) (*dispenser.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	receipt, err := h.ctrl.Claim(db, msg.Host, msg.EscrowID, msg.Winner)
	if err != nil {
		return nil, err
	}
	data, err := receipt.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "cannot serialize receipt")
	}

	dispenser.GetLogger(ctx).Debug("prize withdrawn",
		"host", receipt.Host, "escrow", receipt.EscrowID, "index", receipt.Index, "amount", receipt.Amount)
	return &dispenser.DeliverResult{Data: data}, nil
}

func (h WithdrawPrizeHandler) validate(ctx dispenser.Context, tx dispenser.Tx) (*WithdrawPrizeMsg, error) {
	var msg WithdrawPrizeMsg
	if err := dispenser.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Winner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "winner signature missing")
	}
	return &msg, nil
}
