package app

import (
	"context"
	"testing"

	"github.com/iov-one/dispenser/errors"
	"github.com/iov-one/dispenser/store"
	"github.com/iov-one/dispenser/weavetest"
	"github.com/iov-one/dispenser/weavetest/assert"
	"github.com/iov-one/dispenser/x/utils"
)

func TestChain(t *testing.T) {
	c1 := &weavetest.Decorator{}
	c2 := &weavetest.Decorator{}
	c3 := &weavetest.Decorator{}
	h := &weavetest.Handler{}

	stack := ChainDecorators(
		c1,
		utils.NewLogging(),
		nil,
		utils.NewRecovery(),
		c2,
	).Chain(c3).WithHandler(h)

	ctx := context.Background()
	db := store.MemStore()
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "escrow/withdraw"}}

	_, err := stack.Check(ctx, db, tx)
	assert.Nil(t, err)
	_, err = stack.Deliver(ctx, db, tx)
	assert.Nil(t, err)

	assert.Equal(t, 2, c1.CallCount())
	assert.Equal(t, 2, c2.CallCount())
	assert.Equal(t, 2, c3.CallCount())
	assert.Equal(t, 2, h.CallCount())

	// c2 rejects, so c3 and the handler are never called
	c2.DeliverErr = errors.ErrUnauthorized
	_, err = stack.Deliver(ctx, db, tx)
	if !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, 3, c1.CallCount())
	assert.Equal(t, 3, c2.CallCount())
	assert.Equal(t, 2, c3.CallCount())
	assert.Equal(t, 2, h.CallCount())
}

func TestChainRecoversPanic(t *testing.T) {
	stack := ChainDecorators(utils.NewRecovery()).WithHandler(&weavetest.Handler{Panic: "corrupted escrow"})
	ctx := context.Background()

	_, err := stack.Check(ctx, store.MemStore(), nil)
	if !errors.ErrPanic.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = stack.Deliver(ctx, store.MemStore(), nil)
	if !errors.ErrPanic.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}
}
