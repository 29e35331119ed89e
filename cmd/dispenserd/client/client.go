package client

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/app"
	"github.com/iov-one/dispenser/errors"
	"github.com/iov-one/dispenser/x/cash"
	"github.com/iov-one/dispenser/x/escrow"
	"github.com/iov-one/dispenser/x/sigs"
	cmn "github.com/tendermint/tendermint/libs/common"
	tmpubsub "github.com/tendermint/tendermint/libs/pubsub"
	"github.com/tendermint/tendermint/rpc/client"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
	tmtypes "github.com/tendermint/tendermint/types"
)

type Header = tmtypes.Header
type Status = ctypes.ResultStatus
type GenesisDoc = tmtypes.GenesisDoc

const BroadcastTxSyncDefaultTimeOut = 15 * time.Second

var QueryNewBlockHeader = tmtypes.EventQueryNewBlockHeader

// Client is an interface to interact with a dispenser node.
type Client interface {
	TendermintClient() client.Client
	GetUser(addr dispenser.Address) (*UserResponse, error)
	GetWallet(addr dispenser.Address) (*WalletResponse, error)
	GetEscrow(host dispenser.Address, escrowID uint64) (*EscrowResponse, error)
	BroadcastTx(tx dispenser.Tx) BroadcastTxResponse
	BroadcastTxAsync(tx dispenser.Tx, out chan<- BroadcastTxResponse)
	BroadcastTxSync(tx dispenser.Tx, timeout time.Duration) BroadcastTxResponse
	AbciQuery(path string, data []byte) (AbciResponse, error)
}

// DispenserClient is a tendermint client wrapped to provide simple access
// to the data structures used by the dispenser.
type DispenserClient struct {
	conn client.Client
	// subscriber is a unique identifier for subscriptions
	subscriber string
}

var _ Client = (*DispenserClient)(nil)

// NewClient wraps a DispenserClient around an existing tendermint client
// connection.
func NewClient(conn client.Client) *DispenserClient {
	return &DispenserClient{
		conn:       conn,
		subscriber: "dispenser-client-" + cmn.RandStr(8),
	}
}

func (dc *DispenserClient) TendermintClient() client.Client {
	return dc.conn
}

// Nonce has a client/address pair, queries for the nonce
// and caches recent nonce locally to quickly sign
type Nonce struct {
	mutex     sync.Mutex
	client    Client
	addr      dispenser.Address
	nonce     int64
	fromQuery bool
}

// NewNonce creates a nonce for a client / address pair.
// Call Query to force a query, Next to use cache if possible
func NewNonce(client Client, addr dispenser.Address) *Nonce {
	return &Nonce{client: client, addr: addr}
}

// Query always queries the blockchain for the next nonce
func (n *Nonce) Query() (int64, error) {
	user, err := n.client.GetUser(n.addr)
	if err != nil {
		return 0, err
	}
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if user != nil {
		n.nonce = user.UserData.Sequence
	} else {
		n.nonce = 0 // new account starts at 0
	}
	n.fromQuery = true
	return n.nonce, nil
}

// Next will use a cached value if present, otherwise Query.
// It will always increment by 1, assuming last nonce was properly used.
// This is designed for cases where you want to rapidly generate many
// transactions without querying the blockchain each time.
func (n *Nonce) Next() (int64, error) {
	n.mutex.Lock()
	uninitialized := !n.fromQuery && n.nonce == 0
	n.mutex.Unlock()
	if uninitialized {
		return n.Query()
	}
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.nonce++
	n.fromQuery = false
	return n.nonce, nil
}

// Status will return the raw status from the node
func (dc *DispenserClient) Status() (*Status, error) {
	return dc.conn.Status()
}

// Genesis will return the genesis directly from the node
func (dc *DispenserClient) Genesis() (*GenesisDoc, error) {
	gen, err := dc.conn.Genesis()
	if err != nil {
		return nil, err
	}
	return gen.Genesis, nil
}

// ChainID will parse out the chainID from the genesis
func (dc *DispenserClient) ChainID() (string, error) {
	gen, err := dc.Genesis()
	if err != nil {
		return "", err
	}
	return gen.ChainID, nil
}

// Height will parse out the Height from the status result
func (dc *DispenserClient) Height() (int64, error) {
	status, err := dc.conn.Status()
	if err != nil {
		return -1, err
	}
	return status.SyncInfo.LatestBlockHeight, nil
}

// AbciResponse contains a query result:
// a (possibly empty) list of key-value pairs, and the height
// at which it queried
type AbciResponse struct {
	Models []dispenser.Model
	Height int64
}

// AbciQuery calls abci query on tendermint rpc, verifies if it is an error
// or empty, and if there is data pulls out the ResultSets from keys and
// values into an AbciResponse.
func (dc *DispenserClient) AbciQuery(path string, data []byte) (AbciResponse, error) {
	var out AbciResponse

	q, err := dc.conn.ABCIQuery(path, data)
	if err != nil {
		return out, errors.Wrap(err, "abci query")
	}
	resp := q.Response
	if resp.IsErr() {
		return out, errors.ABCIError(resp.Code, resp.Log)
	}
	out.Height = resp.Height

	if len(resp.Key) == 0 {
		return out, nil
	}

	var keys, vals app.ResultSet
	if err := keys.Unmarshal(resp.Key); err != nil {
		return out, errors.Wrap(err, "keys")
	}
	if err := vals.Unmarshal(resp.Value); err != nil {
		return out, errors.Wrap(err, "values")
	}
	out.Models, err = app.JoinResults(&keys, &vals)
	return out, err
}

func (dc *DispenserClient) TxSearch(query string, prove bool, page, perPage int) (*ctypes.ResultTxSearch, error) {
	return dc.conn.TxSearch(query, prove, page, perPage)
}

// BroadcastTxResponse is the result of submitting a transaction.
type BroadcastTxResponse struct {
	Error    error                           // not-nil if there was an error sending
	Response *ctypes.ResultBroadcastTxCommit // not-nil if we got response from node
}

// IsError returns the error for failure if it failed,
// or nil if it succeeded
func (b BroadcastTxResponse) IsError() error {
	if b.Error != nil {
		return b.Error
	}
	if b.Response.CheckTx.IsErr() {
		return errors.Wrap(errors.ABCIError(b.Response.CheckTx.Code, b.Response.CheckTx.Log), "check tx")
	}
	if b.Response.DeliverTx.IsErr() {
		return errors.Wrap(errors.ABCIError(b.Response.DeliverTx.Code, b.Response.DeliverTx.Log), "deliver tx")
	}
	return nil
}

// Data returns the data of the delivered transaction.
func (b BroadcastTxResponse) Data() []byte {
	if b.Response == nil {
		return nil
	}
	return b.Response.DeliverTx.Data
}

// BroadcastTx serializes a signed transaction and writes to the
// blockchain. It returns when the tx is committed to the
// blockchain.
//
// If you want high-performance, parallel sending, use BroadcastTxAsync
func (dc *DispenserClient) BroadcastTx(tx dispenser.Tx) BroadcastTxResponse {
	out := make(chan BroadcastTxResponse, 1)
	defer close(out)
	go dc.BroadcastTxAsync(tx, out)
	return <-out
}

// BroadcastTxSync submits the transaction to the mempool and waits up to
// timeout for it to be included in a block.
func (dc *DispenserClient) BroadcastTxSync(tx dispenser.Tx, timeout time.Duration) BroadcastTxResponse {
	data, err := tx.Marshal()
	if err != nil {
		return BroadcastTxResponse{Error: err}
	}

	// subscribe first so the event cannot be missed
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	events, unsubscribe, err := dc.subscribeTx(ctx, data)
	if err != nil {
		return BroadcastTxResponse{Error: err}
	}
	defer unsubscribe()

	res, err := dc.conn.BroadcastTxSync(data)
	if err != nil {
		return BroadcastTxResponse{Error: errors.Wrap(err, "broadcast")}
	}
	if res.Code != errors.SuccessABCICode {
		return BroadcastTxResponse{Error: errors.Wrap(errors.ABCIError(res.Code, res.Log), "check tx")}
	}

	select {
	case evt := <-events:
		txe, ok := evt.Data.(tmtypes.EventDataTx)
		if !ok {
			return BroadcastTxResponse{Error: errors.Wrapf(errors.ErrInvalidType, "event %T", evt.Data)}
		}
		return BroadcastTxResponse{
			Response: &ctypes.ResultBroadcastTxCommit{
				DeliverTx: txe.Result,
				Height:    txe.Height,
				Hash:      txe.Tx.Hash(),
			},
		}
	case <-ctx.Done():
		return BroadcastTxResponse{Error: errors.Wrap(ctx.Err(), "waiting for tx event")}
	}
}

func (dc *DispenserClient) subscribeTx(ctx context.Context, tx tmtypes.Tx) (<-chan ctypes.ResultEvent, func(), error) {
	query := tmtypes.EventQueryTxFor(tx)
	subscriber := hex.EncodeToString(append(tx.Hash(), cmn.RandBytes(2)...))
	events, err := dc.conn.Subscribe(ctx, subscriber, query.String())
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to subscribe")
	}
	unsubscribe := func() {
		_ = dc.conn.UnsubscribeAll(context.Background(), subscriber)
	}
	return events, unsubscribe, nil
}

// BroadcastTxAsync can be run in a goroutine and will output
// the result or error to the given channel.
// Useful if you want to send many tx in parallel
func (dc *DispenserClient) BroadcastTxAsync(tx dispenser.Tx, out chan<- BroadcastTxResponse) {
	data, err := tx.Marshal()
	if err != nil {
		out <- BroadcastTxResponse{Error: err}
		return
	}
	res, err := dc.conn.BroadcastTxCommit(data)
	out <- BroadcastTxResponse{
		Error:    err,
		Response: res,
	}
}

// SubscribeHeaders queries for headers and starts a goroutine
// to typecast the events into Headers. Returns a cancel
// function.
func (dc *DispenserClient) SubscribeHeaders(out chan<- *Header) (func(), error) {
	pipe, cancel, err := dc.Subscribe(QueryNewBlockHeader)
	if err != nil {
		return nil, err
	}
	go func() {
		defer close(out)
		for msg := range pipe {
			evt, ok := msg.Data.(tmtypes.EventDataNewBlockHeader)
			if !ok {
				continue
			}
			out <- &evt.Header
		}
	}()
	return cancel, nil
}

// Subscribe will take an arbitrary query and return the channel all
// events are pushed to. If there is no error, returns a cancel function
// that can be called to cancel the subscription.
func (dc *DispenserClient) Subscribe(query tmpubsub.Query) (<-chan ctypes.ResultEvent, func(), error) {
	ctx := context.Background()
	out, err := dc.conn.Subscribe(ctx, dc.subscriber, query.String())
	if err != nil {
		return nil, nil, errors.Wrap(err, "subscribe")
	}
	cancel := func() {
		_ = dc.conn.Unsubscribe(ctx, dc.subscriber, query.String())
	}
	return out, cancel, nil
}

// UnsubscribeAll cancels all subscriptions
func (dc *DispenserClient) UnsubscribeAll() error {
	return dc.conn.UnsubscribeAll(context.Background(), dc.subscriber)
}

// WalletResponse is a response on a query for a wallet.
type WalletResponse struct {
	Address dispenser.Address
	Wallet  cash.Wallet
	Height  int64
}

// GetWallet will return a wallet given an address.
// If no wallet is present, it will return (nil, nil).
func (dc *DispenserClient) GetWallet(addr dispenser.Address) (*WalletResponse, error) {
	if err := addr.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid address")
	}
	resp, err := dc.AbciQuery("/wallets", addr)
	if err != nil {
		return nil, err
	}
	if len(resp.Models) == 0 {
		return nil, nil
	}
	model := resp.Models[0]
	acct := stripBucket(cash.BucketName, model.Key)
	if !addr.Equals(acct) {
		return nil, errors.Wrapf(errors.ErrInvalidState, "queried %s, returned %s", addr, acct)
	}
	out := WalletResponse{
		Address: acct,
		Height:  resp.Height,
	}
	if err := out.Wallet.Unmarshal(model.Value); err != nil {
		return nil, err
	}
	return &out, nil
}

// Balance returns the balance of the given address. Missing wallets hold
// nothing.
func (dc *DispenserClient) Balance(addr dispenser.Address) (uint64, error) {
	w, err := dc.GetWallet(addr)
	if err != nil || w == nil {
		return 0, err
	}
	return w.Wallet.Balance, nil
}

// UserResponse is a response on a query for a User
type UserResponse struct {
	Address  dispenser.Address
	UserData sigs.UserData
	Height   int64
}

// GetUser will return nonce and public key registered
// for a given address if it was ever used.
// If it returns (nil, nil), then this address never signed
// a transaction before (and can use nonce = 0)
func (dc *DispenserClient) GetUser(addr dispenser.Address) (*UserResponse, error) {
	if err := addr.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid address")
	}
	resp, err := dc.AbciQuery("/auth", addr)
	if err != nil {
		return nil, err
	}
	if len(resp.Models) == 0 {
		return nil, nil
	}
	model := resp.Models[0]
	acct := stripBucket(sigs.BucketName, model.Key)
	if !addr.Equals(acct) {
		return nil, errors.Wrapf(errors.ErrInvalidState, "queried %s, returned %s", addr, acct)
	}
	out := UserResponse{
		Address: acct,
		Height:  resp.Height,
	}
	if err := out.UserData.Unmarshal(model.Value); err != nil {
		return nil, err
	}
	return &out, nil
}

// EscrowResponse is a response on a query for an escrow record.
type EscrowResponse struct {
	// Address is the derived record address.
	Address dispenser.Address
	Escrow  escrow.Escrow
	Height  int64
}

// GetEscrow loads the escrow created by host under the given id. If
// there is no such escrow, it returns (nil, nil).
func (dc *DispenserClient) GetEscrow(host dispenser.Address, escrowID uint64) (*EscrowResponse, error) {
	record, _, err := escrow.RecordAddress(host, escrowID)
	if err != nil {
		return nil, err
	}
	resp, err := dc.AbciQuery("/escrows", record)
	if err != nil {
		return nil, err
	}
	if len(resp.Models) == 0 {
		return nil, nil
	}
	escrows, err := toEscrows(resp)
	if err != nil {
		return nil, err
	}
	return &escrows[0], nil
}

// EscrowsByHost lists all escrows created by the host.
func (dc *DispenserClient) EscrowsByHost(host dispenser.Address) ([]EscrowResponse, error) {
	if err := host.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid address")
	}
	resp, err := dc.AbciQuery("/escrows/host", host)
	if err != nil {
		return nil, err
	}
	return toEscrows(resp)
}

func toEscrows(resp AbciResponse) ([]EscrowResponse, error) {
	out := make([]EscrowResponse, len(resp.Models))
	for i, m := range resp.Models {
		out[i].Address = stripBucket(escrow.BucketName, m.Key)
		out[i].Height = resp.Height
		if err := out[i].Escrow.Unmarshal(m.Value); err != nil {
			return nil, errors.Wrapf(err, "escrow %d", i)
		}
	}
	return out, nil
}

// stripBucket removes the "<bucket>:" prefix from a database key.
func stripBucket(bucket string, key []byte) dispenser.Address {
	n := len(bucket) + 1
	if len(key) < n {
		return nil
	}
	return key[n:]
}
