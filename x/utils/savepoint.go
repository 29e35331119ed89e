package utils

import (
	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
)

// Savepoint runs the wrapped handler against a cache wrapped store. All
// writes are flushed to the parent store only when the handler succeeds.
//
// A zero Savepoint is a no-op. Enable it with OnCheck and OnDeliver.
type Savepoint struct {
	onCheck   bool
	onDeliver bool
}

var _ dispenser.Decorator = Savepoint{}

// NewSavepoint returns a disabled Savepoint decorator.
func NewSavepoint() Savepoint {
	return Savepoint{}
}

// OnCheck returns a copy that isolates CheckTx writes.
func (s Savepoint) OnCheck() Savepoint {
	s.onCheck = true
	return s
}

// OnDeliver returns a copy that isolates DeliverTx writes.
func (s Savepoint) OnDeliver() Savepoint {
	s.onDeliver = true
	return s
}

func (s Savepoint) Check(ctx dispenser.Context, store dispenser.KVStore, tx dispenser.Tx, next dispenser.Checker) (*dispenser.CheckResult, error) {
	if !s.onCheck {
		return next.Check(ctx, store, tx)
	}
	var res *dispenser.CheckResult
	err := isolate(store, func(db dispenser.KVStore) (err error) {
		res, err = next.Check(ctx, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s Savepoint) Deliver(ctx dispenser.Context, store dispenser.KVStore, tx dispenser.Tx, next dispenser.Deliverer) (*dispenser.DeliverResult, error) {
	if !s.onDeliver {
		return next.Deliver(ctx, store, tx)
	}
	var res *dispenser.DeliverResult
	err := isolate(store, func(db dispenser.KVStore) (err error) {
		res, err = next.Deliver(ctx, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// isolate calls fn with a cache wrap of the store. The cache is written
// back only if fn returns no error. Stores that cannot be cache wrapped
// are passed through unchanged.
func isolate(store dispenser.KVStore, fn func(dispenser.KVStore) error) error {
	cstore, ok := store.(dispenser.CacheableKVStore)
	if !ok {
		return fn(store)
	}
	cache := cstore.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "writing savepoint")
	}
	return nil
}
