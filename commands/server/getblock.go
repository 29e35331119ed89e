package server

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iov-one/dispenser/errors"
	amino "github.com/tendermint/go-amino"
	"github.com/tendermint/tendermint/blockchain"
	dbm "github.com/tendermint/tendermint/libs/db"
	"github.com/tendermint/tendermint/libs/log"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
)

var cdc = amino.NewCodec()

func init() {
	ctypes.RegisterAmino(cdc)
}

func parseGetBlockArgs(args []string) (string, int64, error) {
	if len(args) == 0 {
		return "", 0, errors.Wrap(errors.ErrInvalidInput,
			"usage: cmd getblock <path to blockstore.db> [-height=H]")
	}
	var height int64
	getBlockFlags := flag.NewFlagSet("getblock", flag.ContinueOnError)
	getBlockFlags.Int64Var(&height, flagHeight, 0, "height of the block to extract (default latest)")
	err := getBlockFlags.Parse(args[1:])
	return args[0], height, err
}

// GetBlockCmd extracts a block from a blockstore.db and outputs as json
// It takes the last block unless -height is explicitly specified
// It writes the json to stdout
func GetBlockCmd(logger log.Logger, home string, args []string) error {
	dbPath, height, err := parseGetBlockArgs(args)
	if err != nil {
		return err
	}
	db, err := openDb(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	store := blockchain.NewBlockStore(db)
	if height == 0 {
		height = store.Height()
	}
	logger.Debug("Loading block", "height", height)
	return printBlock(os.Stdout, store, height)
}

// openDb opens a goleveldb database given the path of its directory,
// which must carry the .db suffix.
func openDb(dir string) (dbm.DB, error) {
	dir = strings.TrimSuffix(dir, "/")
	if !strings.HasSuffix(dir, ".db") {
		return nil, errors.Wrap(errors.ErrInvalidInput, "database directory must end with .db")
	}
	dir = strings.TrimSuffix(dir, ".db")
	name := filepath.Base(dir)
	if name == "." || name == string(filepath.Separator) {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "cannot cut path %s", dir)
	}
	db, err := dbm.NewGoLevelDB(name, filepath.Dir(dir))
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return db, nil
}

func printBlock(w io.Writer, store *blockchain.BlockStore, height int64) error {
	block := store.LoadBlock(height)
	if block == nil {
		return errors.Wrapf(errors.ErrNotFound, "no block for height: %d", height)
	}
	js, err := cdc.MarshalJSONIndent(block, "", "  ")
	if err != nil {
		return errors.Wrap(err, "cannot serialize block")
	}
	_, err = fmt.Fprintln(w, string(js))
	return err
}
