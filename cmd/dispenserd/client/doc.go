/*
Package client talks to a running dispenser node over the tendermint rpc.

It builds and signs escrow transactions, broadcasts them and reads wallets,
escrows and signer sequences back from the application state.
*/
package client
