/*
Package escrow implements a custodial multi-winner prize escrow.

A host locks a fixed pool of funds for up to MaxWinners designated winners.
Each escrow is identified by the pair (host, escrow id). Both the ledger
record and the custody vault live at addresses derived from that pair, so
nobody holds a private key able to move vault funds. Only this extension
can pay them out.

Winners are not stored in the clear. The record holds the sha256 digest of
each winner address together with the prize assigned to it. A winner claims
by signing a withdraw message. The prize is transferred from the vault and
its slot is set to zero, so every prize is paid out at most once.
*/
package escrow
