/*
Package commands holds helpers shared by the command line tools.
*/
package commands

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/iov-one/dispenser"
	"github.com/iov-one/dispenser/errors"
)

// Example will be written out to a file, .json and .bin
// Filename should have no path and no extension
type Example struct {
	Filename string
	Obj      dispenser.Marshaller
}

// TestGenCmd generates sample protobuf and json encodings
// of various objects to test clients against.
func TestGenCmd(examples []Example, args []string) error {
	outdir := "testdata"
	if len(args) > 0 {
		outdir = args[0]
	}
	if err := os.MkdirAll(outdir, 0755); err != nil {
		return errors.Wrap(err, "cannot create output directory")
	}

	for _, ex := range examples {
		js, err := json.MarshalIndent(ex.Obj, "", "  ")
		if err != nil {
			return errors.Wrapf(err, "json %s", ex.Filename)
		}
		if err := ioutil.WriteFile(filepath.Join(outdir, ex.Filename+".json"), js, 0644); err != nil {
			return err
		}

		pb, err := ex.Obj.Marshal()
		if err != nil {
			return errors.Wrapf(err, "protobuf %s", ex.Filename)
		}
		if err := ioutil.WriteFile(filepath.Join(outdir, ex.Filename+".bin"), pb, 0644); err != nil {
			return err
		}
	}
	return nil
}
