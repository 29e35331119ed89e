/*
Package x holds the pieces shared by all extensions: the Authenticator used
by handlers to learn who signed a transaction, the checked uint64 arithmetic
used for balances and prizes, and helpers to load persistent models.

The sub-packages are the extensions themselves. Each one registers its
handlers with a Router and its buckets with a QueryRouter, so an
application is assembled by wiring them together (see cmd/dispenserd/app).

Protobuf types in exported code are prefixed by the package, so avoid
stutter: use escrow.Receipt rather than escrow.EscrowReceipt.
*/
package x
