package server

import (
	"encoding/json"
	"flag"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/crypto"
	"github.com/iov-one/dispenser/errors"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	appStateKey = "app_state"
	dirConfig   = "config"
	genesisFile = "genesis.json"

	flagIgnore = "i"
)

// GenOptions can parse command-line and flag to
// generate default app_state for the genesis file.
// This is application-specific
type GenOptions func(args []string) (json.RawMessage, error)

// GenesisDoc involves some tendermint-specific structures we don't
// want to parse, so we just grab it into a raw object format,
// so we can add one line.
type GenesisDoc map[string]json.RawMessage

func parseInitFlags(args []string) (bool, []string, error) {
	var ignore bool
	initFlags := flag.NewFlagSet("init", flag.ContinueOnError)
	initFlags.BoolVar(&ignore, flagIgnore, false, "ignore an existing app_state and overwrite it")
	err := initFlags.Parse(args)
	return ignore, initFlags.Args(), err
}

// InitCmd adds the app_state generated by gen to the genesis file that
// `tendermint init` created under <home>/config.
func InitCmd(gen GenOptions, logger log.Logger, home string, args []string) error {
	ignore, rest, err := parseInitFlags(args)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}

	genFile := filepath.Join(home, dirConfig, genesisFile)
	if _, err := os.Stat(genFile); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(errors.ErrNotFound, "%s, run `tendermint init` first", genFile)
		}
		return errors.Wrap(err, "cannot access genesis file")
	}

	options, err := gen(rest)
	if err != nil {
		return err
	}

	if err := addGenesisOptions(genFile, options, ignore); err != nil {
		return err
	}
	logger.Info("App initialized", "path", genFile)
	return nil
}

func addGenesisOptions(filename string, options json.RawMessage, ignore bool) error {
	bz, err := ioutil.ReadFile(filename)
	if err != nil {
		return errors.Wrap(err, "cannot read genesis file")
	}

	var doc GenesisDoc
	if err := json.Unmarshal(bz, &doc); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}

	if state, ok := doc[appStateKey]; ok && len(state) > 0 && string(state) != "null" && !ignore {
		return errors.Wrap(errors.ErrDuplicate, "app_state already set, use -i to overwrite it")
	}

	doc[appStateKey] = options
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "cannot serialize genesis")
	}
	return ioutil.WriteFile(filename, out, 0600)
}

// GenerateCoinKey returns the address of a freshly generated key, along
// with a json representation of the key pair. You can give coins to this
// address and use the keys to sign transactions.
func GenerateCoinKey() (dispenser.Address, string, error) {
	privKey := crypto.GenPrivKeyEd25519()
	pubKey := privKey.PublicKey()

	out := struct {
		Pubkey *crypto.PublicKey  `json:"pub_key"`
		Secret *crypto.PrivateKey `json:"secret"`
	}{Pubkey: pubKey, Secret: privKey}
	keys, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, "", errors.Wrap(err, "cannot serialize keys")
	}
	return pubKey.Address(), string(keys), nil
}
