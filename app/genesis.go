package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
)

// Genesis file format, designed to be overlayed with tendermint genesis
type Genesis struct {
	ChainID  string            `json:"chain_id"`
	AppState dispenser.Options `json:"app_state"`
}

// loadGenesis tries to load a given file into a Genesis struct
func loadGenesis(filePath string) (Genesis, error) {
	var gen Genesis

	bytes, err := ioutil.ReadFile(filePath)
	if err != nil {
		return gen, errors.Wrap(err, "loading genesis file")
	}
	if err := json.Unmarshal(bytes, &gen); err != nil {
		return gen, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return gen, nil
}

// ChainInitializers lets you initialize many extensions with one function
func ChainInitializers(inits ...dispenser.Initializer) dispenser.Initializer {
	return chainInitializer{inits}
}

type chainInitializer struct {
	inits []dispenser.Initializer
}

// FromGenesis will pass opts to all Initializers in the list,
// aborting at the first error.
func (c chainInitializer) FromGenesis(opts dispenser.Options, kv dispenser.KVStore) error {
	for _, i := range c.inits {
		if err := i.FromGenesis(opts, kv); err != nil {
			return err
		}
	}
	return nil
}
