package escrow

import (
	"github.com/iov-one/dispenser/errors"
)

// x/escrow reserves 1100 ~ 1109.
var (
	ErrMismatchedPrizesAndWinners = errors.Register(1100, "Mismatched number of prizes and winners.")
	ErrTooManyWinners             = errors.Register(1101, "Too many winners exceeding the maximum limit.")
	// ErrUnauthorized is returned when the claimant matches none of the
	// winner commitments. A missing signature is errors.ErrUnauthorized.
	ErrUnauthorized        = errors.Register(1102, "Caller is not one of the selected winners.")
	ErrPrizeAlreadyClaimed = errors.Register(1103, "The prize has already been claimed.")
)
