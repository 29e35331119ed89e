/*
Package app contains the execution layer of the dispenser: the router, the
decorator chain, the ledger that sequences state transitions and the ABCI
application exposing it all to tendermint.
*/
package app
