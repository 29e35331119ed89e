package weavetest

import "github.com/iov-one/dispenser"

// Tx is a transaction carrying a single message. It cannot be serialized.
type Tx struct {
	Msg dispenser.Msg
	// Err is returned by GetMsg.
	Err error
}

var _ dispenser.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (dispenser.Msg, error) {
	return tx.Msg, tx.Err
}

func (tx *Tx) Marshal() ([]byte, error) {
	panic("weavetest.Tx cannot be marshaled")
}

func (tx *Tx) Unmarshal([]byte) error {
	panic("weavetest.Tx cannot be unmarshaled")
}

// Msg is a message routed by RoutePath. Its serialized form is
// Serialized, which lets tests control the bytes that get signed.
type Msg struct {
	RoutePath  string
	Serialized []byte
	// Err is returned by Validate, Marshal and Unmarshal.
	Err error
}

var _ dispenser.Msg = (*Msg)(nil)

func (m *Msg) Path() string             { return m.RoutePath }
func (m *Msg) Validate() error          { return m.Err }
func (m *Msg) Marshal() ([]byte, error) { return m.Serialized, m.Err }

func (m *Msg) Unmarshal(b []byte) error {
	m.Serialized = b
	return m.Err
}
