package x

import (
	"github.com/iov-one/dispenser"
)

// Validater is implemented by models and messages.
type Validater interface {
	Validate() error
}

// MarshalValidater can be validated and serialized.
type MarshalValidater interface {
	dispenser.Marshaller
	Validater
}

// The Must helpers panic on error. They serve genesis generation, fixtures
// and tests where a failure is a programming error.

func MustMarshal(obj dispenser.Marshaller) []byte {
	bz, err := obj.Marshal()
	if err != nil {
		panic(err)
	}
	return bz
}

func MustUnmarshal(obj dispenser.Persistent, bz []byte) {
	if err := obj.Unmarshal(bz); err != nil {
		panic(err)
	}
}

func MustValidate(obj Validater) {
	if err := obj.Validate(); err != nil {
		panic(err)
	}
}

// MustMarshalValid validates obj before serializing it.
func MustMarshalValid(obj MarshalValidater) []byte {
	MustValidate(obj)
	return MustMarshal(obj)
}
