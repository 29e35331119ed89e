/*
Package tmtest runs a tendermint node next to the dispenser application in
integration tests.

The application must already listen on the proxy address when the node is
started, as tendermint refuses to start without it.
*/
package tmtest

import (
	"context"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/iov-one/dispenser/errors"
	"github.com/iov-one/dispenser/weavetest/assert"
	"github.com/tendermint/tendermint/privval"
	"github.com/tendermint/tendermint/rpc/client"
	"github.com/tendermint/tendermint/types"
)

// DefaultRPC is where a node started with a default configuration serves
// rpc requests.
const DefaultRPC = "tcp://localhost:26657"

// TestReporter is the minimal subset of testing.TB needed to run these test helpers
type TestReporter interface {
	assert.Tester
	Skipf(string, ...interface{})
}

// Node is a tendermint process started for a single test.
type Node struct {
	// RPC is the address the node serves rpc requests on.
	RPC string

	cmd  *exec.Cmd
	once sync.Once
	done chan struct{}
}

// RunTendermint starts a tendermint node using given home directory and
// waits until its rpc endpoint answers. The node is stopped when ctx is
// done or Stop is called.
//
// The test is skipped if the tendermint binary is not available, unless
// FORCE_TM_TEST=1 environment variable is set.
//
// Set TM_DEBUG=1 environment variable to output all tendermint logs.
func RunTendermint(ctx context.Context, t TestReporter, home string) *Node {
	t.Helper()

	bin, err := exec.LookPath("tendermint")
	if err != nil {
		if os.Getenv("FORCE_TM_TEST") == "1" {
			t.Fatalf("Tendermint binary not found. Do not set FORCE_TM_TEST=1 to skip this test.")
		}
		t.Skipf("Tendermint binary not found. Set FORCE_TM_TEST=1 to fail this test.")
	}

	n := &Node{
		RPC:  DefaultRPC,
		cmd:  exec.CommandContext(ctx, bin, "node", "--home", home),
		done: make(chan struct{}),
	}
	if os.Getenv("TM_DEBUG") != "" {
		n.cmd.Stdout = os.Stderr
		n.cmd.Stderr = os.Stderr
	}
	if err := n.cmd.Start(); err != nil {
		t.Fatalf("Tendermint process failed: %s", err)
	}
	t.Logf("Running %s pid=%d", bin, n.cmd.Process.Pid)

	go func() {
		select {
		case <-ctx.Done():
			n.Stop()
		case <-n.done:
		}
	}()

	if err := n.WaitForHeight(ctx, 1); err != nil {
		n.Stop()
		t.Fatalf("Tendermint node not ready: %+v", err)
	}
	return n
}

// Client returns an rpc client connected to the node.
func (n *Node) Client() client.Client {
	return client.NewHTTP(n.RPC, "/websocket")
}

// WaitForHeight polls the node until it has committed a block at given
// height.
func (n *Node) WaitForHeight(ctx context.Context, height int64) error {
	c := n.Client()
	for {
		status, err := c.Status()
		if err == nil && status.SyncInfo.LatestBlockHeight >= height {
			return nil
		}
		select {
		case <-ctx.Done():
			if err == nil {
				err = errors.Wrapf(errors.ErrInvalidState, "stuck at height %d", status.SyncInfo.LatestBlockHeight)
			}
			return errors.Wrapf(err, "waiting for height %d", height)
		case <-n.done:
			return errors.Wrap(errors.ErrInvalidState, "node stopped")
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// Stop kills the process and blocks until it is gone. It is safe to call
// more than once.
func (n *Node) Stop() {
	n.once.Do(func() {
		_ = n.cmd.Process.Kill()
		_ = n.cmd.Wait()
		close(n.done)
	})
}

// SetupConfig creates a home directory holding a copy of sourceDir/config
// and an empty data directory. The genesis file found there is what the
// dispenser init command later extends with the app state.
//
// The second result removes the directory.
func SetupConfig(t assert.Tester, sourceDir string) (string, func()) {
	t.Helper()

	home, err := ioutil.TempDir("", "dispenser-home")
	assert.Nil(t, err)
	cleanup := func() { os.RemoveAll(home) }

	if err := copyConfig(filepath.Join(sourceDir, "config"), filepath.Join(home, "config")); err != nil {
		cleanup()
		t.Fatalf("Cannot copy config files: %+v", err)
	}
	if err := os.Mkdir(filepath.Join(home, "data"), 0755); err != nil {
		cleanup()
		t.Fatalf("Cannot create data directory: %+v", err)
	}
	return home, cleanup
}

// AddValidator creates a validator key in home and makes it the only
// validator of the chain, so that a single node produces blocks.
func AddValidator(t assert.Tester, home string) {
	t.Helper()

	pv := privval.GenFilePV(
		filepath.Join(home, "config", "priv_validator_key.json"),
		filepath.Join(home, "data", "priv_validator_state.json"))
	pv.Save()

	genFile := filepath.Join(home, "config", "genesis.json")
	gen, err := types.GenesisDocFromFile(genFile)
	assert.Nil(t, err)
	pub := pv.GetPubKey()
	gen.Validators = []types.GenesisValidator{
		{Address: pub.Address(), PubKey: pub, Power: 10, Name: "dispenser-test"},
	}
	assert.Nil(t, gen.SaveAs(genFile))
}

// copyConfig copies the regular files of src into a new dst directory.
// Nested directories are ignored.
func copyConfig(src, dst string) error {
	if err := os.Mkdir(dst, 0755); err != nil {
		return errors.Wrap(err, "create config directory")
	}
	entries, err := ioutil.ReadDir(src)
	if err != nil {
		return errors.Wrap(err, "read config directory")
	}
	for _, e := range entries {
		if !e.Mode().IsRegular() {
			continue
		}
		raw, err := ioutil.ReadFile(filepath.Join(src, e.Name()))
		if err != nil {
			return errors.Wrapf(err, "read %s", e.Name())
		}
		if err := ioutil.WriteFile(filepath.Join(dst, e.Name()), raw, e.Mode().Perm()); err != nil {
			return errors.Wrapf(err, "write %s", e.Name())
		}
	}
	return nil
}
