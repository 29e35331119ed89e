package app

import (
	"sync"

	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
)

// Ledger executes state transitions one at a time. Each transaction runs
// against a cache wrap of the current state that is written back only if
// the handler succeeds, so every operation either fully commits or leaves
// no trace.
//
// Ledger is safe for concurrent use. Two racing withdrawals of the same
// prize are executed one after the other and the second one observes the
// first one's write.
type Ledger struct {
	mu      sync.Mutex
	store   *CommitStore
	handler dispenser.Handler
}

// NewLedger loads the latest version of the store and returns a ledger
// dispatching transactions to given handler.
func NewLedger(store dispenser.CommitKVStore, handler dispenser.Handler) (*Ledger, error) {
	cs, err := NewCommitStore(store)
	if err != nil {
		return nil, err
	}
	return &Ledger{store: cs, handler: handler}, nil
}

// Deliver executes the transaction against the deliver state.
func (l *Ledger) Deliver(ctx dispenser.Context, tx dispenser.Tx) (*dispenser.DeliverResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var res *dispenser.DeliverResult
	err := atomically(l.store.DeliverStore(), func(db dispenser.KVStore) (err error) {
		res, err = l.handler.Deliver(ctx, db, tx)
		return err
	})
	return res, err
}

// Check validates the transaction against the check state. The check state
// is updated on success, so that consecutive checks of transactions from
// the same signer see increasing sequences.
func (l *Ledger) Check(ctx dispenser.Context, tx dispenser.Tx) (*dispenser.CheckResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var res *dispenser.CheckResult
	err := atomically(l.store.CheckStore(), func(db dispenser.KVStore) (err error) {
		res, err = l.handler.Check(ctx, db, tx)
		return err
	})
	return res, err
}

// Update runs fn against the deliver state outside of the handler stack.
// Writes are kept only if fn returns no error.
func (l *Ledger) Update(fn func(dispenser.KVStore) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return atomically(l.store.DeliverStore(), fn)
}

// View runs fn against the uncommitted deliver state.
func (l *Ledger) View(fn func(dispenser.ReadOnlyKVStore) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.store.DeliverStore())
}

// Query runs the query handler against the last committed state.
func (l *Ledger) Query(qh dispenser.QueryHandler, mod string, data []byte) ([]dispenser.Model, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, err := l.store.CommitInfo()
	if err != nil {
		return nil, 0, err
	}
	db := l.store.committed.CacheWrap()
	defer db.Discard()
	models, err := qh.Query(db, mod, data)
	return models, info.Version, err
}

// Commit persists the deliver state and starts a new block.
func (l *Ledger) Commit() (dispenser.CommitID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Commit()
}

// CommitInfo returns the last committed version.
func (l *Ledger) CommitInfo() (dispenser.CommitID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.CommitInfo()
}

func atomically(store dispenser.CacheableKVStore, fn func(dispenser.KVStore) error) error {
	cache := store.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "cannot write cache")
	}
	return nil
}
