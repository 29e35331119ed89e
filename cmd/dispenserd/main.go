package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/app"
	dispenserd "github.com/iov-one/dispenser/cmd/dispenserd/app"
	"github.com/iov-one/dispenser/commands"
	"github.com/iov-one/dispenser/commands/server"
	"github.com/iov-one/dispenser/x/cash"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	flagHome     = "home"
	flagLogLevel = "log_level"
	varHome      *string
	varLogLevel  *string
)

func init() {
	defaultHome := filepath.Join(os.ExpandEnv("$HOME"), ".dispenser")
	varHome = flag.String(flagHome, defaultHome, "directory to store files under")
	varLogLevel = flag.String(flagLogLevel, "info", "minimal level of logged messages: debug, info or error")

	flag.CommandLine.Usage = helpMessage
}

func helpMessage() {
	fmt.Println("dispenserd")
	fmt.Println("        Prize dispenser node")
	fmt.Println("")
	fmt.Println("help     Print this message")
	fmt.Println("init     Initialize app options in genesis file")
	fmt.Println("start    Run the abci server")
	fmt.Println("getblock Extract a block from blockchain.db")
	fmt.Println("retry    Run last block again to ensure it produces same result")
	fmt.Println("validate Check the app_state of genesis files")
	fmt.Println("keys     Generate or derive a signing key")
	fmt.Println("testgen  Write example encodings to a directory")
	fmt.Println("version  Print the app version")
	fmt.Println(`
  -home string
        directory to store files under (default "$HOME/.dispenser")
  -log_level string
        minimal level of logged messages: debug, info or error (default "info")`)
}

func newLogger(level string) (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout)).
		With("module", "dispenser")
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewFilter(logger, opt), nil
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Println("Missing command:")
		helpMessage()
		os.Exit(1)
	}

	logger, err := newLogger(*varLogLevel)
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		helpMessage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	rest := flag.Args()[1:]

	switch cmd {
	case "help":
		helpMessage()
	case "init":
		err = server.InitCmd(dispenserd.GenInitOptions, logger, *varHome, rest)
	case "start":
		err = server.StartCmd(dispenserd.GenerateApp, logger, *varHome, rest)
	case "getblock":
		err = server.GetBlockCmd(logger, *varHome, rest)
	case "retry":
		err = server.RetryCmd(dispenserd.InlineApp, dispenserd.TxDecoder, logger, *varHome, rest)
	case "validate":
		err = server.ValidateGenesis(app.ChainInitializers(cash.Initializer{}), rest)
	case "keys":
		err = keysCmd(os.Stdout, rest)
	case "testgen":
		err = commands.TestGenCmd(dispenserd.Examples(), rest)
	case "version":
		fmt.Println(dispenser.Version)
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		fmt.Printf("Error: %+v\n\n", err)
		helpMessage()
		os.Exit(1)
	}
}
