/*
Package app links together all the various components
to construct the dispenser application.
*/
package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/app"
	"github.com/iov-one/dispenser/errors"
	"github.com/iov-one/dispenser/store/iavl"
	"github.com/iov-one/dispenser/x"
	"github.com/iov-one/dispenser/x/cash"
	"github.com/iov-one/dispenser/x/escrow"
	"github.com/iov-one/dispenser/x/sigs"
	"github.com/iov-one/dispenser/x/utils"
)

// Authenticator returns the typical authentication,
// just using public key signatures
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Chain returns a chain of decorators, to handle authentication,
// logging, and recovery
func Chain() app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		sigs.NewDecorator(),
		utils.NewActionTagger(),
		utils.NewSavepoint().OnDeliver(),
	)
}

// Router returns a default router, dispatching to the escrow handlers.
func Router(authFn x.Authenticator) *app.Router {
	r := app.NewRouter()
	ctrl := escrow.NewController(escrow.NewBucket(), cash.NewController(cash.NewBucket()))
	escrow.RegisterRoutes(r, authFn, ctrl)
	return r
}

// QueryRouter returns a default query router,
// allowing access to "/wallets", "/auth" and "/escrows"
func QueryRouter() dispenser.QueryRouter {
	r := dispenser.NewQueryRouter()
	r.RegisterAll(
		cash.RegisterQuery,
		escrow.RegisterQuery,
		sigs.RegisterQuery,
	)
	return r
}

// Stack wires up a standard router with a standard decorator
// chain. This can be passed into BaseApp.
func Stack() dispenser.Handler {
	authFn := Authenticator()
	return Chain().WithHandler(Router(authFn))
}

// Application constructs a basic ABCI application with
// the given arguments. If you are not sure what to use
// for the Handler, just use Stack().
func Application(name string, h dispenser.Handler, tx dispenser.TxDecoder, kv dispenser.CommitKVStore, debug bool) (app.BaseApp, error) {
	ledger, err := app.NewLedger(kv, h)
	if err != nil {
		return app.BaseApp{}, err
	}
	store, err := app.NewStoreApp(name, ledger, QueryRouter(), context.Background())
	if err != nil {
		return app.BaseApp{}, err
	}
	store.WithInit(app.ChainInitializers(cash.Initializer{}))
	return app.NewBaseApp(store, tx, debug), nil
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path.
func CommitKVStore(dbPath string) (dispenser.CommitKVStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return iavl.MockCommitStore(), nil
	}

	// Expand the path fully
	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "invalid database name: %s", dbPath)
	}

	// Some external calls accidently add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	// Split the database name into it's components (dir, name)
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return iavl.NewCommitStore(dir, name)
}
