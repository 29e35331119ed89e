package utils

import (
	"time"

	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
)

// Logging writes one log entry per processed transaction with its path,
// duration and outcome. Failures carry the ABCI code returned to the
// client.
type Logging struct{}

var _ dispenser.Decorator = Logging{}

func NewLogging() Logging {
	return Logging{}
}

// Check logs successes at debug level, as every transaction is checked
// at least once before it is delivered.
func (Logging) Check(ctx dispenser.Context, db dispenser.KVStore, tx dispenser.Tx, next dispenser.Checker) (*dispenser.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, db, tx)
	var msg string
	if err == nil {
		msg = res.Log
	}
	logResult(ctx, tx, time.Since(start), msg, err, true)
	return res, err
}

func (Logging) Deliver(ctx dispenser.Context, db dispenser.KVStore, tx dispenser.Tx, next dispenser.Deliverer) (*dispenser.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	var msg string
	if err == nil {
		msg = res.Log
	}
	logResult(ctx, tx, time.Since(start), msg, err, false)
	return res, err
}

func logResult(ctx dispenser.Context, tx dispenser.Tx, took time.Duration, msg string, err error, check bool) {
	logger := dispenser.GetLogger(ctx).With(
		"path", dispenser.GetPath(tx),
		"duration", took/time.Microsecond,
	)
	if err != nil {
		code, _ := errors.ABCIInfo(err, false)
		logger.Error(msg, "code", code, "err", err)
		return
	}
	// an empty message is still logged for the path and duration
	if check {
		logger.Debug(msg)
	} else {
		logger.Info(msg)
	}
}
