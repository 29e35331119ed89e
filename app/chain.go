package app

import (
	"github.com/iov-one/dispenser"
)

// Decorators is an ordered list of decorators waiting for the handler
// they wrap. The first decorator is the outermost one.
type Decorators struct {
	chain []dispenser.Decorator
}

// ChainDecorators starts a decorator list. The dispenserd stack reads
//
//	app.ChainDecorators(
//		utils.NewLogging(),
//		utils.NewRecovery(),
//		sigs.NewDecorator(),
//		utils.NewActionTagger(),
//		utils.NewSavepoint().OnDeliver(),
//	).WithHandler(router)
func ChainDecorators(chain ...dispenser.Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain returns a new list with chain appended. Nil decorators are
// dropped so optional decorators can be passed unconditionally.
func (d Decorators) Chain(chain ...dispenser.Decorator) Decorators {
	all := make([]dispenser.Decorator, 0, len(d.chain)+len(chain))
	all = append(all, d.chain...)
	for _, dec := range chain {
		if dec != nil {
			all = append(all, dec)
		}
	}
	return Decorators{chain: all}
}

// WithHandler wraps h with every decorator of the list.
func (d Decorators) WithHandler(h dispenser.Handler) dispenser.Handler {
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = wrapped{dec: d.chain[i], next: h}
	}
	return h
}

// wrapped is a handler calling dec around next.
type wrapped struct {
	dec  dispenser.Decorator
	next dispenser.Handler
}

var _ dispenser.Handler = wrapped{}

func (w wrapped) Check(ctx dispenser.Context, db dispenser.KVStore, tx dispenser.Tx) (*dispenser.CheckResult, error) {
	return w.dec.Check(ctx, db, tx, w.next)
}

func (w wrapped) Deliver(ctx dispenser.Context, db dispenser.KVStore, tx dispenser.Tx) (*dispenser.DeliverResult, error) {
	return w.dec.Deliver(ctx, db, tx, w.next)
}
