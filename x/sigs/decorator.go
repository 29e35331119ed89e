/*
Package sigs authenticates transactions.

Every signature carries the public key of the signer and a sequence number.
The Decorator checks each signature against the chain id and the expected
sequence of that key, bumps the sequence so the transaction cannot be
replayed, and stores the resulting signer addresses in the context where
handlers read them through Authenticate.
*/
package sigs

import (
	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
)

// RegisterQuery exposes the signer accounts under /auth.
func RegisterQuery(qr dispenser.QueryRouter) {
	NewBucket().Register("auth", qr)
}

// Decorator verifies the signatures of a SignedTx and passes the signers
// down the stack.
type Decorator struct {
	optional bool
}

var _ dispenser.Decorator = Decorator{}

// NewDecorator returns a decorator that rejects transactions without at
// least one valid signature.
func NewDecorator() Decorator {
	return Decorator{}
}

// AllowMissingSigs returns a copy of the decorator that lets unsigned
// transactions through with an empty signer list. Signatures that are
// present must still be valid.
func (d Decorator) AllowMissingSigs() Decorator {
	return Decorator{optional: true}
}

func (d Decorator) Check(ctx dispenser.Context, db dispenser.KVStore, tx dispenser.Tx, next dispenser.Checker) (*dispenser.CheckResult, error) {
	signers, err := d.signers(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return next.Check(withSigners(ctx, signers), db, tx)
}

func (d Decorator) Deliver(ctx dispenser.Context, db dispenser.KVStore, tx dispenser.Tx, next dispenser.Deliverer) (*dispenser.DeliverResult, error) {
	signers, err := d.signers(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(withSigners(ctx, signers), db, tx)
}

// signers returns the verified addresses. Sequences of all signers are
// incremented in db.
func (d Decorator) signers(ctx dispenser.Context, db dispenser.KVStore, tx dispenser.Tx) ([]dispenser.Address, error) {
	stx, ok := tx.(SignedTx)
	switch {
	case !ok && d.optional:
		return nil, nil
	case !ok:
		return nil, errors.Wrapf(errors.ErrUnauthorized, "%T carries no signatures", tx)
	}

	signers, err := VerifyTxSignatures(db, stx, dispenser.GetChainID(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "signature verification")
	}
	if len(signers) == 0 && !d.optional {
		return nil, errors.Wrap(errors.ErrUnauthorized, "unsigned transaction")
	}
	return signers, nil
}
