package weavetest

import "github.com/iov-one/dispenser"

// Decorator is a mock implementation of the dispenser.Decorator interface.
//
// CheckErr and DeliverErr short circuit the call; the wrapped handler is
// not executed then. Write is stored before the next handler is called, or
// after it returned when WriteAfter is set. Calls are counted regardless of
// their result.
type Decorator struct {
	checkCall int
	CheckErr  error

	deliverCall int
	DeliverErr  error

	Write      *dispenser.Model
	WriteAfter bool
}

var _ dispenser.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx dispenser.Context, db dispenser.KVStore, tx dispenser.Tx, next dispenser.Checker) (*dispenser.CheckResult, error) {
	d.checkCall++
	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	if err := d.write(db, false); err != nil {
		return nil, err
	}
	res, err := next.Check(ctx, db, tx)
	if werr := d.write(db, true); werr != nil {
		return nil, werr
	}
	return res, err
}

func (d *Decorator) Deliver(ctx dispenser.Context, db dispenser.KVStore, tx dispenser.Tx, next dispenser.Deliverer) (*dispenser.DeliverResult, error) {
	d.deliverCall++
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	if err := d.write(db, false); err != nil {
		return nil, err
	}
	res, err := next.Deliver(ctx, db, tx)
	if werr := d.write(db, true); werr != nil {
		return nil, werr
	}
	return res, err
}

func (d *Decorator) write(db dispenser.KVStore, after bool) error {
	if d.Write == nil || d.WriteAfter != after {
		return nil
	}
	return db.Set(d.Write.Key, d.Write.Value)
}

func (d *Decorator) CheckCallCount() int {
	return d.checkCall
}

func (d *Decorator) DeliverCallCount() int {
	return d.deliverCall
}

func (d *Decorator) CallCount() int {
	return d.checkCall + d.deliverCall
}

// Decorate returns a handler that calls h through d.
func Decorate(h dispenser.Handler, d dispenser.Decorator) dispenser.Handler {
	return &decoratedHandler{hn: h, dc: d}
}

type decoratedHandler struct {
	hn dispenser.Handler
	dc dispenser.Decorator
}

var _ dispenser.Handler = (*decoratedHandler)(nil)

func (d *decoratedHandler) Check(ctx dispenser.Context, db dispenser.KVStore, tx dispenser.Tx) (*dispenser.CheckResult, error) {
	return d.dc.Check(ctx, db, tx, d.hn)
}

func (d *decoratedHandler) Deliver(ctx dispenser.Context, db dispenser.KVStore, tx dispenser.Tx) (*dispenser.DeliverResult, error) {
	return d.dc.Deliver(ctx, db, tx, d.hn)
}
