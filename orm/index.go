package orm

import (
	"bytes"

	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
)

const indexPrefix = "_i."

// Indexer returns the secondary key of an object. A nil key leaves the
// object out of the index.
type Indexer func(Object) ([]byte, error)

// Index maps a secondary key to the primary keys of the objects it was
// computed from. A unique index stores a single primary key, otherwise a
// MultiRef is stored.
type Index struct {
	name   string
	id     []byte
	unique bool
	index  Indexer
	refKey func([]byte) []byte
}

var _ Indexed = Index{}

// NewIndex returns an index named name. refKey turns a primary key into
// the database key of the referenced object.
func NewIndex(name string, indexer Indexer, unique bool, refKey func([]byte) []byte) Index {
	return Index{
		name:   name,
		id:     append([]byte(indexPrefix), []byte(name+":")...),
		index:  indexer,
		unique: unique,
		refKey: refKey,
	}
}

// Name returns the name of this index.
func (i Index) Name() string {
	return i.name
}

// IndexKey is the full key we store in the db, including prefix
// We copy into a new array rather than use append, as we don't
// want consecutive calls to overwrite the same byte array.
func (i Index) IndexKey(key []byte) []byte {
	l := len(i.id)
	out := make([]byte, l+len(key))
	copy(out, i.id)
	copy(out[l:], key)
	return out
}

// Update moves the reference of an object to its current secondary key.
// A nil prev inserts save, a nil save deletes prev.
func (i Index) Update(db dispenser.KVStore, prev Object, save Object) error {
	switch {
	case prev == nil && save == nil:
		return errors.Wrap(errors.ErrHuman, "update requires at least one non-nil object")
	case prev != nil && save != nil && !bytes.Equal(prev.Key(), save.Key()):
		return errors.Wrap(errors.ErrHuman, "cannot modify the primary key of an object")
	}

	var oldKey, newKey []byte
	if prev != nil {
		k, err := i.index(prev)
		if err != nil {
			return err
		}
		oldKey = k
	}
	if save != nil {
		k, err := i.index(save)
		if err != nil {
			return err
		}
		newKey = k
	}
	if oldKey != nil && newKey != nil && bytes.Equal(oldKey, newKey) {
		return nil
	}
	if oldKey != nil {
		if err := i.remove(db, oldKey, prev.Key()); err != nil {
			return err
		}
	}
	if newKey != nil {
		if err := i.insert(db, newKey, save.Key()); err != nil {
			return err
		}
	}
	return nil
}

// GetAt returns a list of all pk at that index (may be empty), or error
func (i Index) GetAt(db dispenser.ReadOnlyKVStore, index []byte) ([][]byte, error) {
	val, err := db.Get(i.IndexKey(index))
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, nil
	}
	if i.unique {
		return [][]byte{val}, nil
	}
	var data MultiRef
	if err := data.Unmarshal(val); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidState, "index %s: %s", i.name, err)
	}
	return data.GetRefs(), nil
}

// GetPrefix returns all references that have an index that
// begins with a given prefix
func (i Index) GetPrefix(db dispenser.ReadOnlyKVStore, prefix []byte) ([][]byte, error) {
	models, err := queryPrefix(db, i.IndexKey(prefix))
	if err != nil {
		return nil, err
	}
	var refs [][]byte
	for _, m := range models {
		if i.unique {
			refs = append(refs, m.Value)
			continue
		}
		var data MultiRef
		if err := data.Unmarshal(m.Value); err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidState, "index %s: %s", i.name, err)
		}
		refs = append(refs, data.Refs...)
	}
	return refs, nil
}

// Query handles queries from the QueryRouter.
// The result contains the referenced objects, not the index entries.
func (i Index) Query(db dispenser.ReadOnlyKVStore, mod string, data []byte) ([]dispenser.Model, error) {
	var (
		refs [][]byte
		err  error
	)
	switch mod {
	case dispenser.KeyQueryMod:
		refs, err = i.GetAt(db, data)
	case dispenser.PrefixQueryMod:
		refs, err = i.GetPrefix(db, data)
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "not implemented: %s", mod)
	}
	if err != nil {
		return nil, err
	}
	return i.loadRefs(db, refs)
}

func (i Index) loadRefs(db dispenser.ReadOnlyKVStore, refs [][]byte) ([]dispenser.Model, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	res := make([]dispenser.Model, len(refs))
	for j, ref := range refs {
		key := i.refKey(ref)
		value, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		res[j] = dispenser.Pair(key, value)
	}
	return res, nil
}

func (i Index) insert(db dispenser.KVStore, key []byte, pk []byte) error {
	dbkey := i.IndexKey(key)
	cur, err := db.Get(dbkey)
	if err != nil {
		return err
	}

	if i.unique {
		if cur != nil {
			return errors.Wrapf(errors.ErrDuplicate, "index %s", i.name)
		}
		return db.Set(dbkey, pk)
	}

	var data MultiRef
	if cur != nil {
		if err := data.Unmarshal(cur); err != nil {
			return errors.Wrapf(errors.ErrInvalidState, "index %s: %s", i.name, err)
		}
	}
	if err := data.Add(pk); err != nil {
		return err
	}
	bz, err := data.Marshal()
	if err != nil {
		return err
	}
	return db.Set(dbkey, bz)
}

func (i Index) remove(db dispenser.KVStore, key []byte, pk []byte) error {
	dbkey := i.IndexKey(key)
	cur, err := db.Get(dbkey)
	if err != nil {
		return err
	}
	if cur == nil {
		return errors.Wrapf(errors.ErrNotFound, "index %s", i.name)
	}

	if i.unique {
		if !bytes.Equal(cur, pk) {
			return errors.Wrapf(errors.ErrInvalidState, "index %s points to another key", i.name)
		}
		return db.Delete(dbkey)
	}

	var data MultiRef
	if err := data.Unmarshal(cur); err != nil {
		return errors.Wrapf(errors.ErrInvalidState, "index %s: %s", i.name, err)
	}
	if err := data.Remove(pk); err != nil {
		return err
	}
	if len(data.Refs) == 0 {
		return db.Delete(dbkey)
	}
	bz, err := data.Marshal()
	if err != nil {
		return err
	}
	return db.Set(dbkey, bz)
}
