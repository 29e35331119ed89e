package utils

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
	"github.com/iov-one/dispenser/store"
	"github.com/iov-one/dispenser/weavetest"
	"github.com/tendermint/tendermint/libs/log"
)

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewTMLogger(log.NewSyncWriter(&buf))
	ctx := dispenser.WithLogger(context.Background(), logger)
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "escrow/withdraw"}}

	h := &weavetest.Handler{DeliverErr: errors.ErrNotFound}
	if _, err := NewLogging().Deliver(ctx, store.MemStore(), tx, h); !errors.ErrNotFound.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "path=escrow/withdraw") {
		t.Fatalf("path not logged: %q", out)
	}
	if !strings.Contains(out, "err=") {
		t.Fatalf("error not logged: %q", out)
	}
	if !strings.Contains(out, "code=3") {
		t.Fatalf("error code not logged: %q", out)
	}
}

func TestLoggingCheckSuccessIsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewFilter(log.NewTMLogger(log.NewSyncWriter(&buf)), log.AllowInfo())
	ctx := dispenser.WithLogger(context.Background(), logger)
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "escrow/initialize"}}
	h := &weavetest.Handler{}

	if _, err := NewLogging().Check(ctx, store.MemStore(), tx, h); err != nil {
		t.Fatalf("check: %s", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("check success must be filtered at info level: %q", buf.String())
	}

	if _, err := NewLogging().Deliver(ctx, store.MemStore(), tx, h); err != nil {
		t.Fatalf("deliver: %s", err)
	}
	if !strings.Contains(buf.String(), "path=escrow/initialize") {
		t.Fatalf("deliver success not logged: %q", buf.String())
	}
}
