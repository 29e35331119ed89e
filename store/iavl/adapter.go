/*
Package iavl persists the application state in a merkle tree (tendermint iavl)
backed by a tendermint database.
*/
package iavl

import (
	"path/filepath"
	"strings"

	"github.com/iov-one/dispenser/errors"
	"github.com/iov-one/dispenser/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

const (
	// DefaultCacheSize is the number of tree nodes kept in memory.
	DefaultCacheSize = 10000

	// DefaultHistorySize is the number of committed versions kept on disk.
	// Older versions are pruned on commit. Zero keeps all versions.
	DefaultHistorySize = 20
)

// CommitStore manages a iavl committed state.
type CommitStore struct {
	db      dbm.DB
	tree    *iavl.MutableTree
	history int64
}

var _ store.CommitKVStore = (*CommitStore)(nil)

// NewCommitStore creates a new store with goleveldb backing. name is the
// database directory name without the ".db" suffix, created under path.
func NewCommitStore(path, name string) (*CommitStore, error) {
	name = strings.TrimSuffix(name, ".db")
	db, err := dbm.NewGoLevelDB(name, path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "cannot open %s: %s", filepath.Join(path, name), err)
	}
	return newCommitStore(db, DefaultHistorySize), nil
}

// MockCommitStore creates a new in memory store, used by tests and by the
// daemon when no home directory is given.
func MockCommitStore() *CommitStore {
	return newCommitStore(dbm.NewMemDB(), 0)
}

func newCommitStore(db dbm.DB, history int64) *CommitStore {
	return &CommitStore{
		db:      db,
		tree:    iavl.NewMutableTree(db, DefaultCacheSize),
		history: history,
	}
}

// Close releases the database.
func (s *CommitStore) Close() {
	s.db.Close()
}

// Get returns the value at last committed state
// returns nil iff key doesn't exist. Panics on nil key.
func (s *CommitStore) Get(key []byte) ([]byte, error) {
	_, val := s.tree.GetVersioned(key, s.tree.Version())
	return val, nil
}

// Commit saves the working state as the next version and prunes versions
// that fall out of the history.
func (s *CommitStore) Commit() (store.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if s.history > 0 {
		if old := version - s.history; old > 0 && s.tree.VersionExists(old) {
			if err := s.tree.DeleteVersion(old); err != nil {
				return store.CommitID{}, errors.Wrapf(errors.ErrDatabase, "prune version %d: %s", old, err)
			}
		}
	}
	return store.CommitID{
		Version: version,
		Hash:    hash,
	}, nil
}

// LoadLatestVersion loads the latest persisted version.
func (s *CommitStore) LoadLatestVersion() error {
	if _, err := s.tree.Load(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// Rollback drops every version after the given one and makes it the
// working state. Used to replay a block.
func (s *CommitStore) Rollback(version int64) error {
	if _, err := s.tree.LoadVersionForOverwriting(version); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "rollback to %d: %s", version, err)
	}
	return nil
}

// LatestVersion returns info on the latest version saved to disk.
func (s *CommitStore) LatestVersion() (store.CommitID, error) {
	return store.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}, nil
}

// CacheWrap returns a btree cache on top of the working tree. Written changes
// become part of the next commit.
func (s *CommitStore) CacheWrap() store.KVCacheWrap {
	a := s.Adapter()
	return store.NewBTreeCacheWrap(a, a.NewBatch(), nil)
}

// Adapter returns a store that reads and writes the working tree directly.
func (s *CommitStore) Adapter() *Adapter {
	return &Adapter{tree: s.tree}
}

// Adapter exposes the working iavl tree as a KVStore.
type Adapter struct {
	tree *iavl.MutableTree
}

var _ store.CacheableKVStore = (*Adapter)(nil)

// Get returns nil iff key doesn't exist. Panics on nil key.
func (a *Adapter) Get(key []byte) ([]byte, error) {
	_, val := a.tree.Get(key)
	return val, nil
}

// Has checks if a key exists. Panics on nil key.
func (a *Adapter) Has(key []byte) (bool, error) {
	return a.tree.Has(key), nil
}

// Set adds a new value.
func (a *Adapter) Set(key, value []byte) error {
	a.tree.Set(key, value)
	return nil
}

// Delete removes from the tree.
func (a *Adapter) Delete(key []byte) error {
	a.tree.Remove(key)
	return nil
}

// NewBatch returns a batch that writes to the tree.
func (a *Adapter) NewBatch() store.Batch {
	return store.NewNonAtomicBatch(a)
}

// CacheWrap wraps us once again, with btree.
func (a *Adapter) CacheWrap() store.KVCacheWrap {
	return store.NewBTreeCacheWrap(a, a.NewBatch(), nil)
}

// Iterator over a domain of keys in ascending order. End is exclusive.
func (a *Adapter) Iterator(start, end []byte) (store.Iterator, error) {
	return store.NewSliceIterator(a.collect(start, end, true)), nil
}

// ReverseIterator over a domain of keys in descending order. End is exclusive.
func (a *Adapter) ReverseIterator(start, end []byte) (store.Iterator, error) {
	return store.NewSliceIterator(a.collect(start, end, false)), nil
}

func (a *Adapter) collect(start, end []byte, ascending bool) []store.Model {
	var res []store.Model
	a.tree.IterateRange(start, end, ascending, func(key, value []byte) bool {
		res = append(res, store.Model{Key: key, Value: value})
		// false continues the iteration
		return false
	})
	return res
}
