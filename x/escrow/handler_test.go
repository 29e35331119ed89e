package escrow

import (
	"context"
	"testing"

	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
	"github.com/iov-one/dispenser/store"
	"github.com/iov-one/dispenser/weavetest"
	"github.com/iov-one/dispenser/x/cash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeEscrowHandler(t *testing.T) {
	host := weavetest.NewAddress()
	stranger := weavetest.NewAddress()
	a, b := weavetest.NewAddress(), weavetest.NewAddress()

	cases := map[string]struct {
		signers     []dispenser.Address
		msg         dispenser.Msg
		wantCheck   *errors.Error
		wantDeliver *errors.Error
		wantHost    uint64
	}{
		"host defaults to the main signer": {
			signers:  []dispenser.Address{host},
			msg:      &InitializeEscrowMsg{EscrowID: 1, Winners: []dispenser.Address{a, b}, Prizes: []uint64{10, 20}},
			wantHost: 70,
		},
		"explicit host among signers": {
			signers:  []dispenser.Address{stranger, host},
			msg:      &InitializeEscrowMsg{Host: host, EscrowID: 1, Winners: []dispenser.Address{a}, Prizes: []uint64{100}},
			wantHost: 0,
		},
		"host did not sign": {
			signers:     []dispenser.Address{stranger},
			msg:         &InitializeEscrowMsg{Host: host, EscrowID: 1, Winners: []dispenser.Address{a}, Prizes: []uint64{1}},
			wantCheck:   errors.ErrUnauthorized,
			wantDeliver: errors.ErrUnauthorized,
			wantHost:    100,
		},
		"no signers": {
			msg:         &InitializeEscrowMsg{EscrowID: 1, Winners: []dispenser.Address{a}, Prizes: []uint64{1}},
			wantCheck:   errors.ErrUnauthorized,
			wantDeliver: errors.ErrUnauthorized,
			wantHost:    100,
		},
		"mismatched input": {
			signers:     []dispenser.Address{host},
			msg:         &InitializeEscrowMsg{EscrowID: 1, Winners: []dispenser.Address{a}, Prizes: []uint64{1, 2}},
			wantCheck:   ErrMismatchedPrizesAndWinners,
			wantDeliver: ErrMismatchedPrizesAndWinners,
			wantHost:    100,
		},
		"insufficient funds are detected on deliver": {
			signers:     []dispenser.Address{host},
			msg:         &InitializeEscrowMsg{EscrowID: 1, Winners: []dispenser.Address{a}, Prizes: []uint64{101}},
			wantDeliver: errors.ErrInsufficientAmount,
			wantHost:    100,
		},
		"wrong message type": {
			signers:     []dispenser.Address{host},
			msg:         &WithdrawPrizeMsg{Host: host, EscrowID: 1, Winner: host},
			wantCheck:   errors.ErrInvalidType,
			wantDeliver: errors.ErrInvalidType,
			wantHost:    100,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			db := store.MemStore()
			bank := cash.NewController(cash.NewBucket())
			require.NoError(t, bank.IssueCoins(db, host, 100))

			auth := &weavetest.Auth{Signers: tc.signers}
			h := InitializeEscrowHandler{auth: auth, ctrl: NewController(NewBucket(), bank)}
			tx := &weavetest.Tx{Msg: tc.msg}
			ctx := context.Background()

			cache := db.CacheWrap()
			_, err := h.Check(ctx, cache, tx)
			cache.Discard()
			if tc.wantCheck != nil {
				require.True(t, tc.wantCheck.Is(err), "%+v", err)
			} else {
				require.NoError(t, err)
			}

			res, err := h.Deliver(ctx, db, tx)
			if tc.wantDeliver != nil {
				require.True(t, tc.wantDeliver.Is(err), "%+v", err)
			} else {
				require.NoError(t, err)

				var got InitializeResult
				require.NoError(t, got.Unmarshal(res.Data))
				msg := tc.msg.(*InitializeEscrowMsg)
				record, recordBump, err := RecordAddress(host, msg.EscrowID)
				require.NoError(t, err)
				vault, vaultBump, err := VaultAddress(host, msg.EscrowID)
				require.NoError(t, err)
				assert.Equal(t, InitializeResult{
					Record:     record,
					RecordBump: uint32(recordBump),
					Vault:      vault,
					VaultBump:  uint32(vaultBump),
				}, got)
			}

			balance, err := bank.Balance(db, host)
			require.NoError(t, err)
			assert.Equal(t, tc.wantHost, balance)
		})
	}
}

func TestWithdrawPrizeHandler(t *testing.T) {
	host := weavetest.NewAddress()
	a, b := weavetest.NewAddress(), weavetest.NewAddress()

	db := store.MemStore()
	bank := cash.NewController(cash.NewBucket())
	require.NoError(t, bank.IssueCoins(db, host, 300))
	ctrl := NewController(NewBucket(), bank)
	_, err := ctrl.Initialize(db, host, 1, []dispenser.Address{a, b}, []uint64{100, 200})
	require.NoError(t, err)

	ctx := context.Background()
	withdraw := func(signer, winner dispenser.Address) (*dispenser.DeliverResult, error) {
		h := WithdrawPrizeHandler{auth: &weavetest.Auth{Signer: signer}, ctrl: ctrl}
		tx := &weavetest.Tx{Msg: &WithdrawPrizeMsg{Host: host, EscrowID: 1, Winner: winner}}
		if _, err := h.Check(ctx, db, tx); err != nil {
			return nil, err
		}
		return h.Deliver(ctx, db, tx)
	}

	// Someone else cannot withdraw a prize on behalf of a winner.
	_, err = withdraw(b, a)
	require.True(t, errors.ErrUnauthorized.Is(err), "%+v", err)

	res, err := withdraw(a, a)
	require.NoError(t, err)
	var receipt Receipt
	require.NoError(t, receipt.Unmarshal(res.Data))
	assert.Equal(t, uint64(100), receipt.Amount)
	assert.Equal(t, uint32(0), receipt.Index)
	assert.Equal(t, a, receipt.Winner)

	_, err = withdraw(a, a)
	require.True(t, ErrPrizeAlreadyClaimed.Is(err), "%+v", err)

	// The host signs for itself but is not a winner.
	_, err = withdraw(host, host)
	require.True(t, ErrUnauthorized.Is(err), "%+v", err)

	res, err = withdraw(b, b)
	require.NoError(t, err)
	require.NoError(t, receipt.Unmarshal(res.Data))
	assert.Equal(t, uint64(200), receipt.Amount)

	got, err := bank.Balance(db, b)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), got)
}

func TestEscrowQueries(t *testing.T) {
	host := weavetest.NewAddress()
	other := weavetest.NewAddress()
	winner := weavetest.NewAddress()

	db := store.MemStore()
	bank := cash.NewController(cash.NewBucket())
	require.NoError(t, bank.IssueCoins(db, host, 100))
	require.NoError(t, bank.IssueCoins(db, other, 100))
	ctrl := NewController(NewBucket(), bank)
	for id := uint64(1); id <= 3; id++ {
		_, err := ctrl.Initialize(db, host, id, []dispenser.Address{winner}, []uint64{id})
		require.NoError(t, err)
	}
	_, err := ctrl.Initialize(db, other, 1, []dispenser.Address{winner}, []uint64{5})
	require.NoError(t, err)

	qr := dispenser.NewQueryRouter()
	RegisterQuery(qr)

	byHost := qr.Handler("/escrows/host")
	require.NotNil(t, byHost)
	models, err := byHost.Query(db, dispenser.KeyQueryMod, host)
	require.NoError(t, err)
	assert.Len(t, models, 3)
	models, err = byHost.Query(db, dispenser.KeyQueryMod, other)
	require.NoError(t, err)
	assert.Len(t, models, 1)

	record, _, err := RecordAddress(host, 2)
	require.NoError(t, err)
	byKey := qr.Handler("/escrows")
	require.NotNil(t, byKey)
	models, err = byKey.Query(db, dispenser.KeyQueryMod, record)
	require.NoError(t, err)
	require.Len(t, models, 1)

	var e Escrow
	require.NoError(t, e.Unmarshal(models[0].Value))
	assert.Equal(t, uint64(2), e.EscrowID)
	assert.Equal(t, []uint64{2}, e.Prizes)

	var list []*Escrow
	keys, err := NewBucket().ByIndex(db, "host", other, &list)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, uint64(5), list[0].TotalAmount)
}
