package server

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
	"github.com/iov-one/dispenser/store/iavl"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/types"
)

const (
	flagUntilError = "error"
	flagMaxTries   = "max"
)

// InlineAppGenerator builds an application on top of an already opened
// store.
type InlineAppGenerator func(dispenser.CommitKVStore, log.Logger, bool) (abci.Application, error)

type retryArgs struct {
	dbPath     string
	blockPath  string
	debug      bool
	untilError bool
	maxTries   int
}

func parseRetryArgs(args []string) (retryArgs, error) {
	if len(args) < 2 {
		return retryArgs{}, errors.Wrap(errors.ErrInvalidInput,
			"usage: retry <path to abci.db> <path to block.json> [-debug] [-error] [-max=N]")
	}
	res := retryArgs{dbPath: args[0], blockPath: args[1]}
	fs := flag.NewFlagSet("retry", flag.ContinueOnError)
	fs.BoolVar(&res.debug, flagDebug, false, "print out debug info")
	fs.BoolVar(&res.untilError, flagUntilError, false, "replay until the app hash differs")
	fs.IntVar(&res.maxTries, flagMaxTries, 10, "replay at most that many extra times with -error")
	if err := fs.Parse(args[2:]); err != nil {
		return retryArgs{}, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return res, nil
}

// RetryCmd loads the application state and the block that produced it,
// rolls the state back by one version and delivers the block again. Every
// transaction is printed with its message path and result code, followed by
// the recomputed app hash. A differing hash means the escrow state
// transitions are not deterministic.
//
// With -error the block is replayed up to -max more times until the hash
// differs.
func RetryCmd(makeApp InlineAppGenerator, decode dispenser.TxDecoder, logger log.Logger, home string, args []string) error {
	opts, err := parseRetryArgs(args)
	if err != nil {
		return err
	}

	raw, err := ioutil.ReadFile(opts.blockPath)
	if err != nil {
		return errors.Wrap(err, "cannot read block")
	}
	var block *types.Block
	if err := cdc.UnmarshalJSON(raw, &block); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}

	dir, name := filepath.Split(filepath.Clean(opts.dbPath))
	kv, err := iavl.NewCommitStore(dir, name)
	if err != nil {
		return err
	}
	defer kv.Close()
	if err := kv.LoadLatestVersion(); err != nil {
		return err
	}

	r := replayer{
		out:    os.Stdout,
		kv:     kv,
		decode: decode,
		build: func(kv dispenser.CommitKVStore) (abci.Application, error) {
			return makeApp(kv, logger, opts.debug)
		},
	}
	tries := 0
	if opts.untilError {
		tries = opts.maxTries
	}
	_, err = r.run(block, tries)
	return err
}

type rollbackStore interface {
	dispenser.CommitKVStore
	Rollback(version int64) error
}

// replayer delivers a committed block again on top of its parent state.
type replayer struct {
	out    io.Writer
	kv     rollbackStore
	build  func(dispenser.CommitKVStore) (abci.Application, error)
	decode dispenser.TxDecoder
}

// run replays the block once and then up to extra more times while the
// recomputed hash matches the stored one. It returns whether the last
// replay matched.
func (r replayer) run(block *types.Block, extra int) (bool, error) {
	latest, err := r.kv.LatestVersion()
	if err != nil {
		return false, err
	}
	switch {
	case latest.Version == 0:
		return false, errors.Wrap(errors.ErrInvalidState, "state is empty")
	case latest.Version != block.Height:
		return false, errors.Wrapf(errors.ErrInvalidState,
			"block is at height %d, state at %d", block.Height, latest.Version)
	}
	fmt.Fprintf(r.out, "Height %d, stored hash %X\n", block.Height, latest.Hash)

	for {
		hash, err := r.replay(block)
		if err != nil {
			return false, err
		}
		same := bytes.Equal(latest.Hash, hash)
		fmt.Fprintf(r.out, "Recomputed hash %X, match=%t\n", hash, same)
		if !same || extra <= 0 {
			return same, nil
		}
		extra--
	}
}

func (r replayer) replay(block *types.Block) ([]byte, error) {
	if err := r.kv.Rollback(block.Height - 1); err != nil {
		return nil, err
	}
	app, err := r.build(r.kv)
	if err != nil {
		return nil, err
	}

	app.BeginBlock(abci.RequestBeginBlock{Hash: block.Hash(), Header: abciHeader(block.Header)})
	var failed int
	for i, tx := range block.Txs {
		res := app.DeliverTx(tx)
		if res.Code != abci.CodeTypeOK {
			failed++
		}
		fmt.Fprintf(r.out, "  tx %d %s: code=%d log=%q\n", i, r.describe(tx), res.Code, res.Log)
	}
	app.EndBlock(abci.RequestEndBlock{Height: block.Height})
	fmt.Fprintf(r.out, "  %d of %d transactions failed\n", failed, len(block.Txs))
	return app.Commit().Data, nil
}

// describe returns the message path carried by raw transaction bytes.
func (r replayer) describe(raw []byte) string {
	if r.decode == nil {
		return "(unknown)"
	}
	tx, err := r.decode(raw)
	if err != nil {
		return "(undecodable)"
	}
	return dispenser.GetPath(tx)
}

// abciHeader copies the header fields the application reads into the block
// context.
func abciHeader(h types.Header) abci.Header {
	return abci.Header{
		ChainID:         h.ChainID,
		Height:          h.Height,
		Time:            h.Time,
		NumTxs:          h.NumTxs,
		TotalTxs:        h.TotalTxs,
		AppHash:         h.AppHash,
		ProposerAddress: h.ProposerAddress,
		LastBlockId: abci.BlockID{
			Hash: h.LastBlockID.Hash,
		},
	}
}
