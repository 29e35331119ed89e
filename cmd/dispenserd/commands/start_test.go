package commands

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/app"
	dispenserd "github.com/iov-one/dispenser/cmd/dispenserd/app"
	"github.com/iov-one/dispenser/cmd/dispenserd/client"
	"github.com/iov-one/dispenser/commands/server"
	"github.com/iov-one/dispenser/tmtest"
	"github.com/iov-one/dispenser/x/cash"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

const hostHex = "6a6f7921bf2bd9e54c6f41c4b1ad7c2a01c4a3b8d2e5f6071829304a5b6c7d8e"

// initHome prepares a home directory with a funded host account in the
// genesis file.
func initHome(t *testing.T, logger log.Logger) (string, func()) {
	t.Helper()

	home, cleanup := tmtest.SetupConfig(t, "testdata")
	err := server.InitCmd(dispenserd.GenInitOptions, logger, home, []string{hostHex, "750000"})
	if err != nil {
		cleanup()
		t.Fatalf("cannot initialize application: %s", err)
	}
	return home, cleanup
}

func TestInitWritesValidGenesis(t *testing.T) {
	home, cleanup := initHome(t, log.NewNopLogger())
	defer cleanup()

	genFile := filepath.Join(home, "config", "genesis.json")
	raw, err := ioutil.ReadFile(genFile)
	require.NoError(t, err)

	var genesis struct {
		AppState struct {
			Cash []cash.GenesisAccount `json:"cash"`
		} `json:"app_state"`
	}
	require.NoError(t, json.Unmarshal(raw, &genesis))
	require.Len(t, genesis.AppState.Cash, 1)
	require.Equal(t, hostHex, strings.ToLower(genesis.AppState.Cash[0].Address.String()))
	require.EqualValues(t, 750000, genesis.AppState.Cash[0].Balance)

	ini := app.ChainInitializers(cash.Initializer{})
	require.NoError(t, server.ValidateGenesis(ini, []string{genFile}))
}

func TestStartStandAlone(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping ABCI stand-alone test")
	}

	logger := log.NewNopLogger()
	home, cleanup := initHome(t, logger)
	defer cleanup()

	// start blocks until the process is stopped, so surviving the
	// timeout is a success
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- server.StartCmd(dispenserd.GenerateApp, logger, home, []string{"-bind", "localhost:11122"})
	}()

	select {
	case err := <-done:
		t.Fatalf("server stopped early: %v", err)
	case <-ctx.Done():
	}
}

func TestStartWithTendermint(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Tendermint integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout)).With("module", "dispenserd-test")
	home, cleanup := initHome(t, logger)
	defer cleanup()

	tmtest.AddValidator(t, home)

	// tendermint connects to the application on start
	done := make(chan error, 1)
	go func() {
		done <- server.StartCmd(dispenserd.GenerateApp, logger, home, []string{"-bind", "localhost:26658"})
	}()
	time.Sleep(500 * time.Millisecond)
	select {
	case err := <-done:
		t.Fatalf("application stopped early: %v", err)
	default:
	}

	node := tmtest.RunTendermint(ctx, t, home)
	defer node.Stop()
	require.NoError(t, node.WaitForHeight(ctx, 2))

	host, err := dispenser.ParseAddress(hostHex)
	require.NoError(t, err)
	balance, err := client.NewClient(node.Client()).Balance(host)
	require.NoError(t, err)
	require.EqualValues(t, 750000, balance)
}
