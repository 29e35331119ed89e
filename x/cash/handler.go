package cash

import (
	"github.com/iov-one/dispenser"
)

// RegisterQuery will register the wallets bucket as "/wallets"
func RegisterQuery(qr dispenser.QueryRouter) {
	NewBucket().Register("wallets", qr)
}
