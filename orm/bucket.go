/*
Package orm stores typed models in prefixed sections of the key value
store.

A bucket holds a single model type under "<name>:<key>". Secondary indexes
live under "_i.<bucket>_<index>:<key>" and are kept in sync on every save
and delete. Both are exposed to ABCI queries through a QueryRouter.
*/
package orm

import (
	"fmt"
	"regexp"

	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// Indexed is what a bucket needs from a secondary index.
type Indexed interface {
	dispenser.QueryHandler
	Update(db dispenser.KVStore, prev Object, save Object) error
	GetAt(db dispenser.ReadOnlyKVStore, index []byte) ([][]byte, error)
}

// Bucket stores objects cloned from proto under a common prefix. It is
// meant to be wrapped by a type safe bucket of an extension.
type Bucket struct {
	name    string
	prefix  []byte
	proto   Cloneable
	indexes map[string]Indexed
}

var _ dispenser.QueryHandler = Bucket{}

// NewBucket panics if name is not 3 to 10 lower case letters or
// underscores.
func NewBucket(name string, proto Cloneable) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}
	return Bucket{
		name:   name,
		prefix: []byte(name + ":"),
		proto:  proto,
	}
}

func (b Bucket) Name() string {
	return b.name
}

// Register exposes the bucket under /<name> and every index under
// /<name>/<index>. An empty name falls back to the bucket name.
func (b Bucket) Register(name string, r dispenser.QueryRouter) {
	if name == "" {
		name = b.name
	}
	root := "/" + name
	r.Register(root, b)
	for idxName, idx := range b.indexes {
		r.Register(root+"/"+idxName, idx)
	}
}

// Query returns the raw stored pairs for a key or a key prefix.
func (b Bucket) Query(db dispenser.ReadOnlyKVStore, mod string, data []byte) ([]dispenser.Model, error) {
	switch mod {
	case dispenser.KeyQueryMod:
		key := b.DBKey(data)
		value, err := db.Get(key)
		if err != nil || value == nil {
			return nil, err
		}
		return []dispenser.Model{dispenser.Pair(key, value)}, nil
	case dispenser.PrefixQueryMod:
		return queryPrefix(db, b.DBKey(data))
	}
	return nil, errors.Wrapf(errors.ErrInvalidInput, "not implemented: %s", mod)
}

// DBKey returns a new slice holding the prefixed key.
func (b Bucket) DBKey(key []byte) []byte {
	out := make([]byte, 0, len(b.prefix)+len(key))
	return append(append(out, b.prefix...), key...)
}

// Get returns nil without an error when nothing is stored under key.
func (b Bucket) Get(db dispenser.ReadOnlyKVStore, key []byte) (Object, error) {
	bz, err := db.Get(b.DBKey(key))
	if err != nil || bz == nil {
		return nil, err
	}
	return b.Parse(key, bz)
}

func (b Bucket) Has(db dispenser.ReadOnlyKVStore, key []byte) (bool, error) {
	return db.Has(b.DBKey(key))
}

// Parse decodes a stored value into a fresh object of the bucket type.
func (b Bucket) Parse(key, value []byte) (Object, error) {
	obj := b.proto.Clone()
	if err := obj.Value().Unmarshal(value); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidState, "cannot unmarshal %T: %s", obj.Value(), err)
	}
	obj.SetKey(key)
	return obj, nil
}

// Save validates the object, updates all indexes and stores it.
func (b Bucket) Save(db dispenser.KVStore, obj Object) error {
	if err := obj.Validate(); err != nil {
		return err
	}
	bz, err := obj.Value().Marshal()
	if err != nil {
		return err
	}
	if err := b.updateIndexes(db, obj.Key(), obj); err != nil {
		return err
	}
	return db.Set(b.DBKey(obj.Key()), bz)
}

// Delete removes the object and its index entries.
func (b Bucket) Delete(db dispenser.KVStore, key []byte) error {
	if err := b.updateIndexes(db, key, nil); err != nil {
		return err
	}
	return db.Delete(b.DBKey(key))
}

func (b Bucket) updateIndexes(db dispenser.KVStore, key []byte, obj Object) error {
	if len(b.indexes) == 0 {
		return nil
	}
	prev, err := b.Get(db, key)
	if err != nil {
		return err
	}
	if prev == nil && obj == nil {
		return nil
	}
	for _, idx := range b.indexes {
		if err := idx.Update(db, prev, obj); err != nil {
			return err
		}
	}
	return nil
}

// WithIndex returns a copy of the bucket with an additional index. It
// panics if the name is already taken.
func (b Bucket) WithIndex(name string, indexer Indexer, unique bool) Bucket {
	if _, ok := b.indexes[name]; ok {
		panic(fmt.Sprintf("Index %s registered twice", name))
	}
	indexes := make(map[string]Indexed, len(b.indexes)+1)
	for n, idx := range b.indexes {
		indexes[n] = idx
	}
	indexes[name] = NewIndex(b.name+"_"+name, indexer, unique, b.DBKey)
	b.indexes = indexes
	return b
}

// GetIndexed loads all objects stored under key in the named index.
func (b Bucket) GetIndexed(db dispenser.ReadOnlyKVStore, name string, key []byte) ([]Object, error) {
	idx, ok := b.indexes[name]
	if !ok {
		return nil, errors.Wrap(ErrInvalidIndex, name)
	}
	refs, err := idx.GetAt(db, key)
	if err != nil || len(refs) == 0 {
		return nil, err
	}
	objs := make([]Object, len(refs))
	for i, ref := range refs {
		if objs[i], err = b.Get(db, ref); err != nil {
			return nil, err
		}
	}
	return objs, nil
}
