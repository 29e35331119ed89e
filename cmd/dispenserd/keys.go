package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"io"

	"github.com/iov-one/dispenser/crypto"
	"github.com/iov-one/dispenser/errors"
)

// bech32Prefix is the human readable part of bech32 encoded addresses.
const bech32Prefix = "disp"

type keyOutput struct {
	Address string             `json:"address"`
	Bech32  string             `json:"bech32"`
	Pubkey  *crypto.PublicKey  `json:"pub_key"`
	Secret  *crypto.PrivateKey `json:"secret"`
	Path    string             `json:"path,omitempty"`
}

// keysCmd prints a new key pair. With -seed, the key is derived from the
// hex encoded seed using the -path SLIP-0010 derivation path.
func keysCmd(w io.Writer, args []string) error {
	fl := flag.NewFlagSet("keys", flag.ContinueOnError)
	var (
		seedFl = fl.String("seed", "", "hex encoded seed to derive the key from")
		pathFl = fl.String("path", crypto.DefaultPath, "SLIP-0010 derivation path, used with -seed")
	)
	if err := fl.Parse(args); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}

	var out keyOutput
	if *seedFl == "" {
		out.Secret = crypto.GenPrivKeyEd25519()
	} else {
		seed, err := hex.DecodeString(*seedFl)
		if err != nil {
			return errors.Wrap(errors.ErrInvalidInput, "seed must be hex encoded")
		}
		key, err := crypto.DeriveKey(seed, *pathFl)
		if err != nil {
			return err
		}
		out.Secret = key
		out.Path = *pathFl
	}

	out.Pubkey = out.Secret.PublicKey()
	addr := out.Pubkey.Address()
	out.Address = addr.String()
	b32, err := addr.Bech32(bech32Prefix)
	if err != nil {
		return errors.Wrap(err, "cannot encode address")
	}
	out.Bech32 = b32

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
