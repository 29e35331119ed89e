package server

import (
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagBind   = "bind"
	flagDebug  = "debug"
	flagHeight = "height"
)

// Options are the settings an application is generated with.
type Options struct {
	// Home is the directory holding the application database. An empty
	// home keeps the state in memory.
	Home   string
	Logger log.Logger
	// Debug returns full error messages and stack traces to the client.
	Debug bool
}
