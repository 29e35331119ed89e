package app

import (
	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/commands"
	"github.com/iov-one/dispenser/crypto"
	"github.com/iov-one/dispenser/x/cash"
	"github.com/iov-one/dispenser/x/escrow"
	"github.com/iov-one/dispenser/x/sigs"
)

// Examples generates some example structs to dump out with testgen
func Examples() []commands.Example {
	priv := crypto.GenPrivKeyEd25519()
	pub := priv.PublicKey()
	host := pub.Address()
	winners := []dispenser.Address{
		crypto.GenPrivKeyEd25519().PublicKey().Address(),
		crypto.GenPrivKeyEd25519().PublicKey().Address(),
	}

	user := &sigs.UserData{
		Pubkey:   pub,
		Sequence: 17,
	}
	wallet := &cash.Wallet{Balance: 50000}

	initMsg := &escrow.InitializeEscrowMsg{
		EscrowID: 1,
		Winners:  winners,
		Prizes:   []uint64{300, 200},
	}
	e := &escrow.Escrow{
		Host:          host,
		EscrowID:      1,
		HashedWinners: [][]byte{escrow.HashWinner(winners[0]), escrow.HashWinner(winners[1])},
		Prizes:        []uint64{300, 200},
		TotalAmount:   500,
	}
	if vault, bump, err := escrow.VaultAddress(host, 1); err == nil {
		e.VaultAddress = vault
		e.VaultBump = uint32(bump)
	}
	if _, bump, err := escrow.RecordAddress(host, 1); err == nil {
		e.RecordBump = uint32(bump)
	}

	withdrawMsg := &escrow.WithdrawPrizeMsg{
		Host:     host,
		EscrowID: 1,
		Winner:   winners[0],
	}

	unsigned := Tx{InitializeEscrowMsg: initMsg}
	tx := unsigned
	sig, err := sigs.SignTx(priv, &tx, "test-123", 17)
	if err != nil {
		panic(err)
	}
	tx.Signatures = []*sigs.StdSignature{sig}

	return []commands.Example{
		{Filename: "priv_key", Obj: priv},
		{Filename: "pub_key", Obj: pub},
		{Filename: "user", Obj: user},
		{Filename: "wallet", Obj: wallet},
		{Filename: "escrow", Obj: e},
		{Filename: "initialize_escrow_msg", Obj: initMsg},
		{Filename: "withdraw_prize_msg", Obj: withdrawMsg},
		{Filename: "unsigned_tx", Obj: &unsigned},
		{Filename: "signed_tx", Obj: &tx},
	}
}
