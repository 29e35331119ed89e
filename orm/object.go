package orm

import (
	"github.com/iov-one/dispenser/errors"
	"github.com/iov-one/dispenser/x"
)

var _ x.Validater = (*SimpleObj)(nil)

// SimpleObj is the Object used by all buckets: a key and the model
// stored under it.
type SimpleObj struct {
	key   []byte
	value Model
}

func NewSimpleObj(key []byte, value Model) *SimpleObj {
	return &SimpleObj{key: key, value: value}
}

func (o SimpleObj) Key() []byte  { return o.key }
func (o SimpleObj) Value() Model { return o.value }

func (o *SimpleObj) SetKey(key []byte) {
	o.key = key
}

// Validate requires a key and a value and then validates the value.
func (o SimpleObj) Validate() error {
	switch {
	case len(o.key) == 0:
		return errors.Field("Key", errors.ErrEmpty, "missing key")
	case o.value == nil:
		return errors.Field("Value", errors.ErrEmpty, "missing value")
	}
	return errors.Field("Value", o.value.Validate(), "invalid value")
}

// Clone returns a deep copy. A bucket clones its template object to load
// every stored value, so the copy must not share the key buffer.
func (o *SimpleObj) Clone() Object {
	var key []byte
	if len(o.key) > 0 {
		key = append(key, o.key...)
	}
	return &SimpleObj{key: key, value: o.value.Copy()}
}
