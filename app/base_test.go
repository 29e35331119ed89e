package app

import (
	"context"
	"testing"

	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
	"github.com/iov-one/dispenser/store/iavl"
	"github.com/iov-one/dispenser/weavetest"
	"github.com/iov-one/dispenser/weavetest/assert"
	abci "github.com/tendermint/tendermint/abci/types"
)

// writeHandler stores the path of every delivered message under the
// "written" key.
type writeHandler struct{}

func (writeHandler) Check(ctx dispenser.Context, db dispenser.KVStore, tx dispenser.Tx) (*dispenser.CheckResult, error) {
	if _, err := tx.GetMsg(); err != nil {
		return nil, err
	}
	return &dispenser.CheckResult{GasAllocated: 10}, nil
}

func (writeHandler) Deliver(ctx dispenser.Context, db dispenser.KVStore, tx dispenser.Tx) (*dispenser.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	if err := db.Set([]byte("written"), []byte(msg.Path())); err != nil {
		return nil, err
	}
	return &dispenser.DeliverResult{Data: []byte("ok")}, nil
}

type rawQuery struct{}

func (rawQuery) Query(db dispenser.ReadOnlyKVStore, mod string, data []byte) ([]dispenser.Model, error) {
	v, err := db.Get(data)
	if err != nil || v == nil {
		return nil, err
	}
	return []dispenser.Model{dispenser.Pair(data, v)}, nil
}

func pathDecoder(bz []byte) (dispenser.Tx, error) {
	if len(bz) == 0 {
		panic("empty transaction")
	}
	if string(bz) == "bad" {
		return &weavetest.Tx{Err: errors.ErrInvalidMsg}, nil
	}
	return &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: string(bz)}}, nil
}

func TestBaseAppFlow(t *testing.T) {
	ledger, err := NewLedger(iavl.MockCommitStore(), writeHandler{})
	assert.Nil(t, err)

	qr := dispenser.NewQueryRouter()
	qr.Register("/raw", rawQuery{})
	store, err := NewStoreApp("dispenser", ledger, qr, context.Background())
	assert.Nil(t, err)
	app := NewBaseApp(store, pathDecoder, false)

	app.InitChain(abci.RequestInitChain{
		ChainId:       "test-chain-67",
		AppStateBytes: []byte(`{}`),
	})
	assert.Equal(t, "test-chain-67", app.GetChainID())
	assert.Equal(t, "test-chain-67", dispenser.GetChainID(app.BlockContext()))

	// genesis cannot be loaded twice
	assert.Panics(t, func() {
		app.InitChain(abci.RequestInitChain{
			ChainId:       "other-chain-1",
			AppStateBytes: []byte(`{}`),
		})
	})

	app.BeginBlock(abci.RequestBeginBlock{})

	check := app.CheckTx([]byte("escrow/withdraw"))
	assert.Equal(t, uint32(0), check.Code)
	assert.Equal(t, int64(10), check.GasWanted)

	check = app.CheckTx(nil)
	assert.Equal(t, errors.ErrPanic.ABCICode(), check.Code)

	deliver := app.DeliverTx([]byte("bad"))
	assert.Equal(t, errors.ErrInvalidMsg.ABCICode(), deliver.Code)

	deliver = app.DeliverTx([]byte("escrow/withdraw"))
	assert.Equal(t, uint32(0), deliver.Code)
	assert.Equal(t, []byte("ok"), deliver.Data)

	// not committed yet
	q := app.Query(abci.RequestQuery{Path: "/raw", Data: []byte("written")})
	assert.Equal(t, uint32(0), q.Code)
	var res ResultSet
	assert.Nil(t, res.Unmarshal(q.Value))
	assert.Equal(t, 0, len(res.Results))

	app.EndBlock(abci.RequestEndBlock{})
	commit := app.Commit()
	if len(commit.Data) == 0 {
		t.Fatal("commit must return the app hash")
	}

	info := app.Info(abci.RequestInfo{})
	assert.Equal(t, int64(1), info.LastBlockHeight)
	assert.Equal(t, commit.Data, info.LastBlockAppHash)
	assert.Equal(t, "dispenser", info.Data)
	assert.Equal(t, dispenser.Version, info.Version)

	q = app.Query(abci.RequestQuery{Path: "/raw", Data: []byte("written")})
	assert.Equal(t, uint32(0), q.Code)
	assert.Equal(t, int64(1), q.Height)
	assert.Nil(t, res.Unmarshal(q.Value))
	assert.Equal(t, [][]byte{[]byte("escrow/withdraw")}, res.Results)

	q = app.Query(abci.RequestQuery{Path: "/unknown", Data: []byte("written")})
	assert.Equal(t, errors.ErrNotFound.ABCICode(), q.Code)
}

func TestStoreAppRestart(t *testing.T) {
	db := iavl.MockCommitStore()
	ledger, err := NewLedger(db, writeHandler{})
	assert.Nil(t, err)
	store, err := NewStoreApp("dispenser", ledger, dispenser.NewQueryRouter(), context.Background())
	assert.Nil(t, err)
	assert.Nil(t, store.parseAppState([]byte(`{}`), "restart-chain", nil))
	store.Commit()

	// A new application over the same database remembers the chain.
	ledger, err = NewLedger(db, writeHandler{})
	assert.Nil(t, err)
	again, err := NewStoreApp("dispenser", ledger, dispenser.NewQueryRouter(), context.Background())
	assert.Nil(t, err)
	assert.Equal(t, "restart-chain", again.GetChainID())
	assert.Equal(t, "restart-chain", dispenser.GetChainID(again.BlockContext()))

	err = again.parseAppState([]byte(`{}`), "restart-chain", nil)
	if !errors.ErrInvalidState.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}
}
