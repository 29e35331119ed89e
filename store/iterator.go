package store

import (
	"bytes"

	"github.com/google/btree"
)

// collectItems takes a snapshot of all btree items within [start, end).
// Nil start or end means unbounded.
func collectItems(bt *btree.BTree, start, end []byte, ascending bool) []keyer {
	var res []keyer
	collect := func(item btree.Item) bool {
		res = append(res, item.(keyer))
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(bkey{end}, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(bkey{start}, collect)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, collect)
	}
	if !ascending {
		for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
			res[i], res[j] = res[j], res[i]
		}
	}
	return res
}

// mergeIterator combines the cached items with the iterator of the parent
// store. Cached items shadow parent entries with the same key and deleted
// items hide them.
type mergeIterator struct {
	items     []keyer
	parent    Iterator
	ascending bool
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(items []keyer, parent Iterator, ascending bool) (*mergeIterator, error) {
	it := &mergeIterator{
		items:     items,
		parent:    parent,
		ascending: ascending,
	}
	if err := it.skipDeleted(); err != nil {
		it.Close()
		return nil, err
	}
	return it, nil
}

// source marks where the current item comes from.
type source int

const (
	none source = iota
	us
	parent
	both
)

func (i *mergeIterator) current() source {
	ours := len(i.items) > 0
	theirs := i.parent.Valid()
	switch {
	case !ours && !theirs:
		return none
	case !theirs:
		return us
	case !ours:
		return parent
	}
	cmp := bytes.Compare(i.items[0].Key(), i.parent.Key())
	if !i.ascending {
		cmp = -cmp
	}
	switch {
	case cmp < 0:
		return us
	case cmp > 0:
		return parent
	default:
		return both
	}
}

// skipDeleted advances over all deleted items together with the parent
// entries they hide.
func (i *mergeIterator) skipDeleted() error {
	for {
		src := i.current()
		if src != us && src != both {
			return nil
		}
		if _, ok := i.items[0].(deletedItem); !ok {
			return nil
		}
		i.items = i.items[1:]
		if src == both {
			if err := i.parent.Next(); err != nil {
				return err
			}
		}
	}
}

// Valid implements Iterator and returns true iff it can be read.
func (i *mergeIterator) Valid() bool {
	return i.current() != none
}

// Next moves the iterator to the next key.
func (i *mergeIterator) Next() error {
	switch i.current() {
	case us:
		i.items = i.items[1:]
	case both:
		i.items = i.items[1:]
		if err := i.parent.Next(); err != nil {
			return err
		}
	case parent:
		if err := i.parent.Next(); err != nil {
			return err
		}
	default:
		panic("advanced past the end")
	}
	return i.skipDeleted()
}

// Key returns the key of the cursor.
func (i *mergeIterator) Key() []byte {
	switch i.current() {
	case us, both:
		return i.items[0].Key()
	case parent:
		return i.parent.Key()
	default:
		panic("advanced past the end")
	}
}

// Value returns the value of the cursor.
func (i *mergeIterator) Value() []byte {
	switch i.current() {
	case us, both:
		return i.items[0].(setItem).value
	case parent:
		return i.parent.Value()
	default:
		panic("advanced past the end")
	}
}

// Close releases the Iterator.
func (i *mergeIterator) Close() {
	i.parent.Close()
	i.items = nil
}
