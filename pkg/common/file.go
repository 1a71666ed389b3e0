package common

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// ReadFile reads the whole file. Errors name the file.
func ReadFile(filename string) (data []byte, err error) {
	var f *os.File
	f, err = os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", filename)
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = errors.Wrapf(e, "close %s", filename)
		}
	}()
	data, err = io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", filename)
	}
	return data, nil
}
