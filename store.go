package dispenser

// ReadOnlyKVStore reads state. Keys must not be nil.
type ReadOnlyKVStore interface {
	// Get returns nil if the key is not set.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)

	// Iterator walks [start, end) in ascending key order. A nil bound is
	// open. The range must not be written to while the iterator is open.
	Iterator(start, end []byte) (Iterator, error)
	// ReverseIterator is Iterator in descending key order.
	ReverseIterator(start, end []byte) (Iterator, error)
}

// SetDeleter is the write half shared by stores and batches.
type SetDeleter interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// KVStore is the state handed to handlers.
type KVStore interface {
	ReadOnlyKVStore
	SetDeleter
	NewBatch() Batch
}

// Batch collects writes that are applied together by Write.
type Batch interface {
	SetDeleter
	Write() error
}

// Iterator is a cursor over a key range:
//
//	defer itr.Close()
//	for ; itr.Valid(); itr.Next() {
//		use(itr.Key(), itr.Value())
//	}
//
// Key, Value and Next panic once Valid returns false. Returned slices
// must not be modified.
type Iterator interface {
	Valid() bool
	Next() error
	Key() (key []byte)
	Value() (value []byte)
	Close()
}

// CacheableKVStore can stage writes in a cache wrap.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap stages writes on top of its parent, which sees them only
// after Write. Discard drops them. Cache wraps nest, which is how a
// failed transaction leaves no trace in the block state.
type KVCacheWrap interface {
	CacheableKVStore
	Write() error
	Discard()
}

// CommitKVStore is the persistent, versioned application state.
type CommitKVStore interface {
	// Get reads the last committed state.
	Get(key []byte) ([]byte, error)

	// CacheWrap returns a working copy of the latest state.
	CacheWrap() KVCacheWrap

	// Commit persists the working state as the next version.
	Commit() (CommitID, error)

	// LoadLatestVersion loads the newest complete version. After a crash
	// during commit this may be an older one.
	LoadLatestVersion() error

	LatestVersion() (CommitID, error)
}

// CommitID identifies a committed version by number and merkle root.
type CommitID struct {
	Version int64
	Hash    []byte
}
