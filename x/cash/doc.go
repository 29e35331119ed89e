/*
Package cash keeps a single native balance per address.

There is no logic in the funds, except that the balance of any wallet may
never go below zero nor above the largest uint64 value. Escrow vaults are
ordinary wallets held at a derived address.
*/
package cash
