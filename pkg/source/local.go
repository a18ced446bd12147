package source

import (
	"context"
	"os"
	"strings"

	"github.com/pingcap/errors"
)

// LocalReader reads from the local filesystem.
type LocalReader struct{}

func (LocalReader) ReadAll(_ context.Context, p string) ([]byte, error) {
	data, err := os.ReadFile(strings.TrimPrefix(p, SchemeFile+"://"))
	if err != nil {
		return nil, errors.Trace(err)
	}
	return data, nil
}
