package orm

import (
	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/x"
)

// Object is a model together with the key it is stored under. The bucket
// prefixes the key with its name.
type Object interface {
	Keyed
	Cloneable
	x.Validater
	Value() Model
}

// Reader loads objects by key.
type Reader interface {
	Get(db dispenser.ReadOnlyKVStore, key []byte) (Object, error)
}

type Keyed interface {
	Key() []byte
	SetKey([]byte)
}

type Cloneable interface {
	Clone() Object
}

// Model is the value of an Object. Copy must return a deep copy.
type Model interface {
	x.Validater
	dispenser.Persistent
	Copy() Model
}
