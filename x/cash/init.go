package cash

import (
	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file.
// The address is hex encoded unless prefixed, see dispenser.ParseAddress.
type GenesisAccount struct {
	Address dispenser.Address `json:"address"`
	Balance uint64            `json:"balance"`
}

// Initializer fulfils the Initializer interface to load starting balances
// from the genesis file.
type Initializer struct{}

var _ dispenser.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (Initializer) FromGenesis(opts dispenser.Options, kv dispenser.KVStore) error {
	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	ctrl := NewController(NewBucket())
	for i, acct := range accts {
		if err := acct.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		if err := ctrl.IssueCoins(kv, acct.Address, acct.Balance); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
	}
	return nil
}
