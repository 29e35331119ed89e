package store

import "github.com/iov-one/dispenser"

// Move references for all storage types into this package
// for shorter names everywhere.

type ReadOnlyKVStore = dispenser.ReadOnlyKVStore
type SetDeleter = dispenser.SetDeleter
type KVStore = dispenser.KVStore
type Batch = dispenser.Batch
type Iterator = dispenser.Iterator
type CacheableKVStore = dispenser.CacheableKVStore
type KVCacheWrap = dispenser.KVCacheWrap
type CommitKVStore = dispenser.CommitKVStore
type CommitID = dispenser.CommitID

// Model groups together key and value to return.
type Model = dispenser.Model
