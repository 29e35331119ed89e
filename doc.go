/*
Package dispenser defines the common interfaces that tie together the storage,
the transaction handling and the extensions of the prize dispenser, as well as
implementations of some of the simpler components.

Requests travel through a context.Context between the application, the
decorators and the handlers. This package defines the common keys stored in
the context, such as block height, chain id and logger. Each extension may add
its own keys to enrich the context, following the convention

  WithXYZ(Context, T) Context
  GetXYZ(Context) (val T, ok bool)

WithXYZ panics if the value was previously set, so that lower-level modules
cannot overwrite it.
*/
package dispenser
