package cash

import (
	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
	"github.com/iov-one/dispenser/orm"
	"github.com/iov-one/dispenser/x"
)

// CoinMover is what escrow needs from the cash extension: moving funds
// and checking what a vault holds.
type CoinMover interface {
	MoveCoins(db dispenser.KVStore, src, dest dispenser.Address, amount uint64) error

	// Balance returns the funds held at given address. ErrEmpty is
	// returned when no wallet exists.
	Balance(db dispenser.ReadOnlyKVStore, addr dispenser.Address) (uint64, error)
}

// Controller is the functionality needed by handlers and other extensions
// that want to inspect or change balances.
type Controller interface {
	CoinMover

	// IssueCoins creates new funds at given address.
	IssueCoins(db dispenser.KVStore, dest dispenser.Address, amount uint64) error
}

// BaseController is a simple implementation of Controller backed by a
// wallet bucket.
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller using given bucket.
func NewController(bucket orm.ModelBucket) BaseController {
	return BaseController{bucket: bucket}
}

func (c BaseController) Balance(db dispenser.ReadOnlyKVStore, addr dispenser.Address) (uint64, error) {
	var w Wallet
	switch err := c.bucket.One(db, addr, &w); {
	case err == nil:
		return w.Balance, nil
	case errors.ErrNotFound.Is(err):
		return 0, errors.Wrapf(errors.ErrEmpty, "no wallet for %s", addr)
	default:
		return 0, errors.Wrap(err, "cannot load wallet")
	}
}

// MoveCoins moves the given amount from src to dest. If src doesn't exist
// or doesn't have sufficient funds, it fails and nothing changes.
func (c BaseController) MoveCoins(db dispenser.KVStore, src, dest dispenser.Address, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrInvalidAmount, "non-positive amount")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if src.Equals(dest) {
		return errors.Wrap(errors.ErrInvalidInput, "source and destination are the same")
	}

	var sender Wallet
	switch err := c.bucket.One(db, src, &sender); {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		return errors.Wrapf(errors.ErrEmpty, "empty account %s", src)
	default:
		return errors.Wrap(err, "cannot load sender")
	}

	recipient, err := c.loadOrCreate(db, dest)
	if err != nil {
		return err
	}

	if sender.Balance, err = x.SubAmount(sender.Balance, amount); err != nil {
		return errors.Wrap(err, "sender balance")
	}
	if recipient.Balance, err = x.AddAmount(recipient.Balance, amount); err != nil {
		return errors.Wrap(err, "recipient balance")
	}

	if err := c.bucket.Put(db, src, &sender); err != nil {
		return errors.Wrap(err, "cannot save sender")
	}
	if err := c.bucket.Put(db, dest, recipient); err != nil {
		return errors.Wrap(err, "cannot save recipient")
	}
	return nil
}

// IssueCoins adds the given amount to the destination address. Fails if
// it overflows the wallet.
func (c BaseController) IssueCoins(db dispenser.KVStore, dest dispenser.Address, amount uint64) error {
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	w, err := c.loadOrCreate(db, dest)
	if err != nil {
		return err
	}
	if w.Balance, err = x.AddAmount(w.Balance, amount); err != nil {
		return err
	}
	return c.bucket.Put(db, dest, w)
}

func (c BaseController) loadOrCreate(db dispenser.ReadOnlyKVStore, addr dispenser.Address) (*Wallet, error) {
	var w Wallet
	switch err := c.bucket.One(db, addr, &w); {
	case err == nil:
		return &w, nil
	case errors.ErrNotFound.Is(err):
		return &Wallet{}, nil
	default:
		return nil, errors.Wrap(err, "cannot load wallet")
	}
}
