package escrow

import (
	"bytes"
	"math"
	"testing"

	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
	"github.com/iov-one/dispenser/weavetest"
	"github.com/iov-one/dispenser/weavetest/assert"
)

func TestEscrowValidate(t *testing.T) {
	host := weavetest.NewAddress()
	vault, bump, err := VaultAddress(host, 1)
	assert.Nil(t, err)
	hash := HashWinner(weavetest.NewAddress())

	valid := func() *Escrow {
		return &Escrow{
			Host:          host,
			VaultAddress:  vault,
			EscrowID:      1,
			HashedWinners: [][]byte{hash},
			Prizes:        []uint64{5},
			TotalAmount:   5,
			VaultBump:     uint32(bump),
		}
	}

	cases := map[string]struct {
		mutate  func(*Escrow)
		field   string
		wantErr *errors.Error
	}{
		"valid": {
			mutate: func(*Escrow) {},
		},
		"claimed prizes are valid": {
			mutate: func(e *Escrow) { e.Prizes[0] = 0 },
		},
		"missing host": {
			mutate:  func(e *Escrow) { e.Host = nil },
			field:   "Host",
			wantErr: errors.ErrInvalidInput,
		},
		"missing vault": {
			mutate:  func(e *Escrow) { e.VaultAddress = nil },
			field:   "VaultAddress",
			wantErr: errors.ErrInvalidInput,
		},
		"mismatched prizes": {
			mutate:  func(e *Escrow) { e.Prizes = append(e.Prizes, 1) },
			field:   "Prizes",
			wantErr: ErrMismatchedPrizesAndWinners,
		},
		"too many winners": {
			mutate: func(e *Escrow) {
				e.HashedWinners = make([][]byte, MaxWinners+1)
				e.Prizes = make([]uint64, MaxWinners+1)
				for i := range e.HashedWinners {
					e.HashedWinners[i] = hash
				}
			},
			field:   "HashedWinners",
			wantErr: ErrTooManyWinners,
		},
		"short commitment": {
			mutate:  func(e *Escrow) { e.HashedWinners[0] = hash[:31] },
			field:   "HashedWinners",
			wantErr: errors.ErrInvalidInput,
		},
		"prizes above total": {
			mutate:  func(e *Escrow) { e.TotalAmount = 4 },
			field:   "TotalAmount",
			wantErr: errors.ErrInvalidState,
		},
		"prizes overflow": {
			mutate: func(e *Escrow) {
				e.HashedWinners = [][]byte{hash, hash}
				e.Prizes = []uint64{math.MaxUint64, 1}
			},
			field:   "Prizes",
			wantErr: errors.ErrOverflow,
		},
		"bump out of range": {
			mutate:  func(e *Escrow) { e.VaultBump = 256 },
			field:   "VaultBump",
			wantErr: errors.ErrInvalidInput,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			e := valid()
			tc.mutate(e)
			err := e.Validate()
			if tc.wantErr == nil {
				assert.Nil(t, err)
				return
			}
			assert.FieldError(t, err, tc.field, tc.wantErr)
		})
	}
}

func TestEscrowSerialization(t *testing.T) {
	host := weavetest.NewAddress()
	vault, _, err := VaultAddress(host, 42)
	assert.Nil(t, err)
	e := &Escrow{
		Host:          host,
		VaultAddress:  vault,
		EscrowID:      42,
		HashedWinners: [][]byte{HashWinner(weavetest.NewAddress()), HashWinner(weavetest.NewAddress())},
		Prizes:        []uint64{0, 7},
		TotalAmount:   9,
		RecordBump:    255,
		VaultBump:     254,
	}
	raw, err := e.Marshal()
	assert.Nil(t, err)

	var got Escrow
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, e, &got)

	cp := got.Copy().(*Escrow)
	cp.Prizes[1] = 0
	cp.HashedWinners[0][0]++
	if got.Prizes[1] != 7 || !bytes.Equal(got.HashedWinners[0], e.HashedWinners[0]) {
		t.Fatal("copy shares memory with the original")
	}
}

func TestDerivedAddresses(t *testing.T) {
	host := weavetest.NewAddress()

	record, recordBump, err := RecordAddress(host, 1)
	assert.Nil(t, err)
	again, againBump, err := RecordAddress(host, 1)
	assert.Nil(t, err)
	assert.Equal(t, record, again)
	assert.Equal(t, recordBump, againBump)

	vault, vaultBump, err := VaultAddress(host, 1)
	assert.Nil(t, err)
	if vault.Equals(record) {
		t.Fatal("record and vault must not share an address")
	}
	if record.IsOnCurve() || vault.IsOnCurve() {
		t.Fatal("derived addresses must not be ed25519 points")
	}

	rederived, err := VaultCondition(host, 1).DeriveWithBump(vaultBump)
	assert.Nil(t, err)
	assert.Equal(t, vault, rederived)

	next, _, err := VaultAddress(host, 2)
	assert.Nil(t, err)
	if next.Equals(vault) {
		t.Fatal("escrow id must change the vault address")
	}
	otherHost, _, err := VaultAddress(weavetest.NewAddress(), 1)
	assert.Nil(t, err)
	if otherHost.Equals(vault) {
		t.Fatal("host must change the vault address")
	}

	_, _, _, err = RecordCondition(host, 1).Parse()
	assert.Nil(t, err)
	assert.Equal(t, dispenser.AddressLength, len(HashWinner(host)))
}
