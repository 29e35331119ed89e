// Package bech32 encodes addresses for display. Payloads are regrouped
// between 8 bit bytes and the 5 bit words the checksum works on.
package bech32

import (
	"github.com/btcsuite/btcutil/bech32"
	"github.com/iov-one/dispenser/errors"
)

// Decode returns the human readable part and the payload of raw.
func Decode(raw string) (string, []byte, error) {
	hrp, words, err := bech32.Decode(raw)
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	payload, err := bech32.ConvertBits(words, 5, 8, false)
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return hrp, payload, nil
}

// Encode returns the bech32 string of payload under the given human
// readable part.
func Encode(hrp string, payload []byte) (string, error) {
	words, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	raw, err := bech32.Encode(hrp, words)
	if err != nil {
		return "", errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return raw, nil
}
