package client

import (
	"testing"

	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/crypto"
	"github.com/iov-one/dispenser/store"
	"github.com/iov-one/dispenser/weavetest/assert"
	"github.com/iov-one/dispenser/x/escrow"
	"github.com/iov-one/dispenser/x/sigs"
)

func TestWithdrawTx(t *testing.T) {
	winner := crypto.GenPrivKeyEd25519()
	winnerAddr := winner.PublicKey().Address()
	host := crypto.GenPrivKeyEd25519().PublicKey().Address()

	chainID := "ding-dong"
	tx := BuildWithdrawPrizeTx(host, 17, winnerAddr)
	// if we sign with 0, we can validate against an empty db
	assert.Nil(t, SignTx(tx, winner, chainID, 0))
	assert.Equal(t, 1, len(tx.GetSignatures()))

	db := store.MemStore()
	signers, err := sigs.VerifyTxSignatures(db, tx, chainID)
	assert.Nil(t, err)
	assert.Equal(t, []dispenser.Address{winnerAddr}, signers)

	// make sure other chain doesn't validate
	db = store.MemStore()
	_, err = sigs.VerifyTxSignatures(db, tx, "foobar")
	assert.Equal(t, true, err != nil)

	// parse tx and verify we have the proper fields
	data, err := tx.Marshal()
	assert.Nil(t, err)
	parsed, err := ParseTx(data)
	assert.Nil(t, err)
	msg, err := parsed.GetMsg()
	assert.Nil(t, err)
	withdraw, ok := msg.(*escrow.WithdrawPrizeMsg)
	assert.Equal(t, true, ok)
	assert.Equal(t, host, withdraw.Host)
	assert.Equal(t, winnerAddr, withdraw.Winner)
	assert.Equal(t, uint64(17), withdraw.EscrowID)
}

func TestInitializeTx(t *testing.T) {
	host := crypto.GenPrivKeyEd25519()
	winners := []dispenser.Address{
		crypto.GenPrivKeyEd25519().PublicKey().Address(),
		crypto.GenPrivKeyEd25519().PublicKey().Address(),
	}
	tx := BuildInitializeEscrowTx(host.PublicKey().Address(), 5, winners, []uint64{10, 20})
	assert.Nil(t, SignTx(tx, host, "test-chain", 3))

	data, err := tx.Marshal()
	assert.Nil(t, err)
	parsed, err := ParseTx(data)
	assert.Nil(t, err)
	msg, err := parsed.GetMsg()
	assert.Nil(t, err)
	create, ok := msg.(*escrow.InitializeEscrowMsg)
	assert.Equal(t, true, ok)
	assert.Nil(t, create.Validate())
	assert.Equal(t, winners, create.Winners)
	assert.Equal(t, []uint64{10, 20}, create.Prizes)
	assert.Equal(t, int64(3), parsed.Signatures[0].Sequence)

	if _, err := ParseTx([]byte("not a transaction")); err == nil {
		t.Fatal("garbage must not parse")
	}
}
