package app

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
)

// ResultSet is the query response encoding. Keys and values of a query
// are returned as two result sets of the same size.
type ResultSet struct {
	Results [][]byte `protobuf:"bytes,1,rep,name=results,proto3" json:"results,omitempty"`
}

type resultSetPB ResultSet

func (m *resultSetPB) Reset()         { *m = resultSetPB{} }
func (m *resultSetPB) String() string { return proto.CompactTextString(m) }
func (*resultSetPB) ProtoMessage()    {}

func (m *ResultSet) Marshal() ([]byte, error) {
	return proto.Marshal((*resultSetPB)(m))
}

func (m *ResultSet) Unmarshal(bz []byte) error {
	return proto.Unmarshal(bz, (*resultSetPB)(m))
}

// ResultsFromKeys returns a ResultSet of all keys
// given a set of models
func ResultsFromKeys(models []dispenser.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Key
	}
	return &ResultSet{Results: res}
}

// ResultsFromValues returns a ResultSet of all values
// given a set of models
func ResultsFromValues(models []dispenser.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Value
	}
	return &ResultSet{Results: res}
}

// JoinResults inverts ResultsFromKeys and ResultsFromValues
// and makes then a consistent whole again
func JoinResults(keys, values *ResultSet) ([]dispenser.Model, error) {
	kref, vref := keys.Results, values.Results
	if len(kref) != len(vref) {
		return nil, errors.Wrap(errors.ErrInvalidState, "mismatched result set size")
	}
	mods := make([]dispenser.Model, len(kref))
	for i := range mods {
		mods[i] = dispenser.Model{
			Key:   kref[i],
			Value: vref[i],
		}
	}
	return mods, nil
}

// UnmarshalOneResult will parse a resultset, and
// it if is not empty, unmarshal the first result into o
func UnmarshalOneResult(bz []byte, o dispenser.Persistent) error {
	var res ResultSet
	if err := res.Unmarshal(bz); err != nil {
		return err
	}
	if len(res.Results) == 0 {
		return nil
	}
	return o.Unmarshal(res.Results[0])
}
