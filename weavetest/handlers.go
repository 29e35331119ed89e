package weavetest

import "github.com/iov-one/dispenser"

// Handler is a mock implementation of the dispenser.Handler interface.
//
// Every call is counted, including the failing ones. When Write is set the
// pair is stored before the handler returns, which lets tests find out
// whether a failed operation left anything behind.
type Handler struct {
	checkCall   int
	CheckResult dispenser.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult dispenser.DeliverResult
	DeliverErr    error

	// Write is stored in the database on every call.
	Write *dispenser.Model
	// Panic, if not nil, is the value both methods panic with.
	Panic interface{}
}

var _ dispenser.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx dispenser.Context, db dispenser.KVStore, tx dispenser.Tx) (*dispenser.CheckResult, error) {
	h.checkCall++
	if err := h.run(db); err != nil {
		return nil, err
	}
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx dispenser.Context, db dispenser.KVStore, tx dispenser.Tx) (*dispenser.DeliverResult, error) {
	h.deliverCall++
	if err := h.run(db); err != nil {
		return nil, err
	}
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) run(db dispenser.KVStore) error {
	if h.Panic != nil {
		panic(h.Panic)
	}
	if h.Write == nil {
		return nil
	}
	return db.Set(h.Write.Key, h.Write.Value)
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}
