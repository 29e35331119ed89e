package app

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/commands/server"
	"github.com/iov-one/dispenser/errors"
	"github.com/iov-one/dispenser/x/cash"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// DefaultBalance is the balance of the account created by GenInitOptions.
const DefaultBalance = 123456789

// GenInitOptions will produce some basic options for one rich
// account, to use for dev mode.
//
// Arguments are an optional address and an optional balance. When no
// address is given a new key is generated and printed out.
func GenInitOptions(args []string) (json.RawMessage, error) {
	var addr dispenser.Address
	if len(args) > 0 {
		a, err := dispenser.ParseAddress(args[0])
		if err != nil {
			return nil, err
		}
		addr = a
	} else {
		a, keys, err := server.GenerateCoinKey()
		if err != nil {
			return nil, err
		}
		addr = a
		fmt.Println(keys)
	}

	balance := uint64(DefaultBalance)
	if len(args) > 1 {
		b, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "balance %q", args[1])
		}
		balance = b
	}

	state := map[string]interface{}{
		"cash": []cash.GenesisAccount{
			{Address: addr, Balance: balance},
		},
	}
	return json.MarshalIndent(state, "", "  ")
}

// GenerateApp is used to create a stub for server/start.go command
func GenerateApp(options *server.Options) (abci.Application, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if options.Home != "" {
		dbPath = filepath.Join(options.Home, "dispenser.db")
	}
	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return nil, err
	}
	return InlineApp(kv, options.Logger, options.Debug)
}

// InlineApp builds the application on top of an opened store. Used to
// replay blocks.
func InlineApp(kv dispenser.CommitKVStore, logger log.Logger, debug bool) (abci.Application, error) {
	application, err := Application("dispenser", Stack(), TxDecoder, kv, debug)
	if err != nil {
		return nil, err
	}
	application.WithLogger(logger)
	return application, nil
}
