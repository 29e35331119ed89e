package sigs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/crypto"
	"github.com/iov-one/dispenser/errors"
	"github.com/iov-one/dispenser/store"
	"github.com/iov-one/dispenser/weavetest"
)

func TestDecoratorSequences(t *testing.T) {
	const chainID = "dispenser-sigs"
	ctx := dispenser.WithChainID(context.Background(), chainID)

	winner := crypto.GenPrivKeyEd25519()
	winnerAddr := winner.PublicKey().Address()
	host := crypto.GenPrivKeyEd25519()

	tx := NewStdTx([]byte("withdraw"))
	sign := func(key *crypto.PrivateKey, seq int64) *StdSignature {
		sig, err := SignTx(key, tx, chainID, seq)
		require.NoError(t, err)
		return sig
	}

	type step struct {
		sigs        []*StdSignature
		optional    bool
		wantErr     *errors.Error
		wantSigners []dispenser.Address
	}
	steps := []step{
		{sigs: nil, wantErr: errors.ErrUnauthorized},
		{sigs: []*StdSignature{sign(winner, 0)}, wantSigners: []dispenser.Address{winnerAddr}},
		{sigs: []*StdSignature{sign(winner, 0)}, wantErr: ErrInvalidSequence},
		{sigs: nil, optional: true, wantSigners: []dispenser.Address{}},
		{sigs: []*StdSignature{sign(winner, 1)}, optional: true, wantSigners: []dispenser.Address{winnerAddr}},
		// one bad signature fails the whole transaction
		{sigs: []*StdSignature{sign(host, 0), sign(winner, 7)}, wantErr: ErrInvalidSequence},
		{
			sigs:        []*StdSignature{sign(host, 0), sign(winner, 2)},
			wantSigners: []dispenser.Address{host.PublicKey().Address(), winnerAddr},
		},
	}

	run := map[string]func(dispenser.Decorator, dispenser.KVStore, *SigCheckHandler) error{
		"check": func(d dispenser.Decorator, db dispenser.KVStore, h *SigCheckHandler) error {
			_, err := d.Check(ctx, db, tx, h)
			return err
		},
		"deliver": func(d dispenser.Decorator, db dispenser.KVStore, h *SigCheckHandler) error {
			_, err := d.Deliver(ctx, db, tx, h)
			return err
		},
	}

	for name, call := range run {
		t.Run(name, func(t *testing.T) {
			// every run has its own store, failed steps are discarded
			// by the caller in production
			db := store.MemStore()
			for i, s := range steps {
				d := NewDecorator()
				if s.optional {
					d = d.AllowMissingSigs()
				}
				tx.Signatures = s.sigs
				h := new(SigCheckHandler)

				cache := db.CacheWrap()
				err := call(d, cache, h)
				if !s.wantErr.Is(err) {
					t.Fatalf("step %d: unexpected error: %v", i, err)
				}
				if err != nil {
					cache.Discard()
					continue
				}
				require.NoError(t, cache.Write())
				assert.Equal(t, s.wantSigners, h.Signers, "step %d", i)
			}
		})
	}
}

func TestDecoratorRejectsUnsignableTx(t *testing.T) {
	ctx := dispenser.WithChainID(context.Background(), "dispenser-sigs")
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "escrow/withdraw"}}

	h := &weavetest.Handler{}
	_, err := NewDecorator().Deliver(ctx, store.MemStore(), tx, h)
	if !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, 0, h.DeliverCallCount())

	_, err = NewDecorator().AllowMissingSigs().Deliver(ctx, store.MemStore(), tx, h)
	require.NoError(t, err)
	assert.Equal(t, 1, h.DeliverCallCount())
}
