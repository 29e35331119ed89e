package orm

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/dispenser/errors"
)

// Counter is a minimal model used to test buckets and indexes.
type Counter struct {
	Count int64 `protobuf:"varint,1,opt,name=count,proto3" json:"count,omitempty"`
}

var _ Model = (*Counter)(nil)

func NewCounter(count int64) *Counter {
	return &Counter{Count: count}
}

func (c *Counter) Copy() Model {
	return &Counter{Count: c.Count}
}

func (c *Counter) Validate() error {
	if c.Count < 0 {
		return errors.Wrap(errors.ErrInvalidState, "negative count")
	}
	return nil
}

type counterPB Counter

func (m *counterPB) Reset()         { *m = counterPB{} }
func (m *counterPB) String() string { return proto.CompactTextString(m) }
func (*counterPB) ProtoMessage()    {}

func (c *Counter) Marshal() ([]byte, error)  { return proto.Marshal((*counterPB)(c)) }
func (c *Counter) Unmarshal(bz []byte) error { return proto.Unmarshal(bz, (*counterPB)(c)) }

// multiRefFromStrings is like NewMultiRef, but takes strings
func multiRefFromStrings(strs ...string) (*MultiRef, error) {
	refs := make([][]byte, len(strs))
	for i, s := range strs {
		refs[i] = []byte(s)
	}
	return NewMultiRef(refs...)
}
