package escrow

import (
	"bytes"

	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
	"github.com/iov-one/dispenser/orm"
	"github.com/iov-one/dispenser/x"
	"github.com/iov-one/dispenser/x/cash"
)

// Controller implements the escrow lifecycle on top of a record bucket and
// a coin mover. It does not authenticate callers, that is the job of the
// handlers.
//
// Both operations write to the store before they can fail. Callers must
// run them inside a savepoint so that a failure discards all writes.
type Controller interface {
	// Initialize creates a new escrow and moves the sum of prizes from
	// the host wallet to the escrow vault.
	Initialize(db dispenser.KVStore, host dispenser.Address, escrowID uint64, winners []dispenser.Address, prizes []uint64) (*Escrow, error)

	// Claim pays out the prize of given winner.
	Claim(db dispenser.KVStore, host dispenser.Address, escrowID uint64, claimant dispenser.Address) (*Receipt, error)
}

// BaseController is the default Controller implementation.
type BaseController struct {
	bucket orm.ModelBucket
	bank   cash.CoinMover
}

var _ Controller = BaseController{}

// NewController returns a controller storing records in given bucket and
// moving funds with given bank.
func NewController(bucket orm.ModelBucket, bank cash.CoinMover) BaseController {
	return BaseController{bucket: bucket, bank: bank}
}

func (c BaseController) Initialize(db dispenser.KVStore, host dispenser.Address, escrowID uint64, winners []dispenser.Address, prizes []uint64) (*Escrow, error) {
	if err := validateWinners(winners, prizes); err != nil {
		return nil, err
	}
	if err := host.Validate(); err != nil {
		return nil, errors.Field("Host", err, "invalid host")
	}
	total, err := x.SumAmounts(prizes...)
	if err != nil {
		return nil, err
	}

	recordAddr, recordBump, err := RecordAddress(host, escrowID)
	if err != nil {
		return nil, errors.Wrap(err, "record address")
	}
	switch err := c.bucket.Has(db, recordAddr); {
	case err == nil:
		return nil, errors.Wrapf(errors.ErrDuplicate, "escrow %d of %s", escrowID, host)
	case !errors.ErrNotFound.Is(err):
		return nil, errors.Wrap(err, "cannot check record")
	}

	vaultAddr, vaultBump, err := VaultAddress(host, escrowID)
	if err != nil {
		return nil, errors.Wrap(err, "vault address")
	}

	hashed := make([][]byte, len(winners))
	for i, w := range winners {
		hashed[i] = HashWinner(w)
	}

	e := &Escrow{
		Host:          host,
		VaultAddress:  vaultAddr,
		EscrowID:      escrowID,
		HashedWinners: hashed,
		Prizes:        append([]uint64(nil), prizes...),
		TotalAmount:   total,
		RecordBump:    uint32(recordBump),
		VaultBump:     uint32(vaultBump),
	}

	if total > 0 {
		if err := c.bank.MoveCoins(db, host, vaultAddr, total); err != nil {
			return nil, errors.Wrap(err, "cannot fund vault")
		}
	}
	if err := c.bucket.Put(db, recordAddr, e); err != nil {
		return nil, errors.Wrap(err, "cannot save escrow")
	}
	return e, nil
}

func (c BaseController) Claim(db dispenser.KVStore, host dispenser.Address, escrowID uint64, claimant dispenser.Address) (*Receipt, error) {
	recordAddr, _, err := RecordAddress(host, escrowID)
	if err != nil {
		return nil, errors.Wrap(err, "record address")
	}
	var e Escrow
	if err := c.bucket.One(db, recordAddr, &e); err != nil {
		return nil, errors.Wrapf(err, "escrow %d of %s", escrowID, host)
	}

	index := e.winnerIndex(claimant)
	if index < 0 {
		return nil, errors.Wrapf(ErrUnauthorized, "escrow %d of %s", escrowID, host)
	}
	prize := e.Prizes[index]
	if prize == 0 {
		return nil, errors.Wrapf(ErrPrizeAlreadyClaimed, "winner %d", index)
	}

	if e.VaultBump > 255 {
		return nil, errors.Wrapf(errors.ErrInvalidState, "vault bump %d", e.VaultBump)
	}
	vault, err := VaultCondition(e.Host, e.EscrowID).DeriveWithBump(uint8(e.VaultBump))
	if err != nil || !vault.Equals(e.VaultAddress) {
		return nil, errors.Wrap(errors.ErrInvalidState, "vault does not belong to this escrow")
	}
	if err := c.checkVault(db, &e); err != nil {
		return nil, err
	}

	if err := c.bank.MoveCoins(db, vault, claimant, prize); err != nil {
		return nil, errors.Wrap(err, "cannot pay out prize")
	}
	e.Prizes[index] = 0
	if err := c.bucket.Put(db, recordAddr, &e); err != nil {
		return nil, errors.Wrap(err, "cannot save escrow")
	}

	return &Receipt{
		Host:     e.Host,
		EscrowID: e.EscrowID,
		Winner:   claimant,
		Index:    uint32(index),
		Amount:   prize,
		Vault:    vault,
	}, nil
}

// checkVault ensures the vault still holds every unclaimed prize.
func (c BaseController) checkVault(db dispenser.KVStore, e *Escrow) error {
	owed, err := e.Outstanding()
	if err != nil {
		return errors.Wrap(err, "outstanding prizes")
	}
	held, err := c.bank.Balance(db, e.VaultAddress)
	switch {
	case errors.ErrEmpty.Is(err):
		held = 0
	case err != nil:
		return errors.Wrap(err, "vault balance")
	}
	if held < owed {
		return errors.Wrapf(errors.ErrInvalidState, "vault holds %d, owes %d", held, owed)
	}
	return nil
}

// winnerIndex returns the position of the first commitment matching the
// address or -1.
func (e *Escrow) winnerIndex(addr dispenser.Address) int {
	h := HashWinner(addr)
	for i, w := range e.HashedWinners {
		if bytes.Equal(w, h) {
			return i
		}
	}
	return -1
}
