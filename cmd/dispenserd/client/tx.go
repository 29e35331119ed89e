package client

import (
	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/cmd/dispenserd/app"
	"github.com/iov-one/dispenser/crypto"
	"github.com/iov-one/dispenser/x/escrow"
	"github.com/iov-one/dispenser/x/sigs"
)

// BuildInitializeEscrowTx will create an unsigned tx locking the sum of
// prizes from the host wallet.
func BuildInitializeEscrowTx(host dispenser.Address, escrowID uint64, winners []dispenser.Address, prizes []uint64) *app.Tx {
	return &app.Tx{
		InitializeEscrowMsg: &escrow.InitializeEscrowMsg{
			Host:     host,
			EscrowID: escrowID,
			Winners:  winners,
			Prizes:   prizes,
		},
	}
}

// BuildWithdrawPrizeTx will create an unsigned tx paying out the prize of
// the winner. It must be signed by the winner.
func BuildWithdrawPrizeTx(host dispenser.Address, escrowID uint64, winner dispenser.Address) *app.Tx {
	return &app.Tx{
		WithdrawPrizeMsg: &escrow.WithdrawPrizeMsg{
			Host:     host,
			EscrowID: escrowID,
			Winner:   winner,
		},
	}
}

// SignTx modifies the tx in-place, adding signatures
func SignTx(tx *app.Tx, signer crypto.Signer, chainID string, nonce int64) error {
	sig, err := sigs.SignTx(signer, tx, chainID, nonce)
	if err != nil {
		return err
	}
	tx.Signatures = append(tx.Signatures, sig)
	return nil
}

// ParseTx will load a serialized tx into a format we can read
func ParseTx(data []byte) (*app.Tx, error) {
	var tx app.Tx
	if err := tx.Unmarshal(data); err != nil {
		return nil, err
	}
	return &tx, nil
}
