package query

import (
	"context"

	cerror "github.com/pingcap-inc/sql2dw/pkg/errors"
	"github.com/pingcap-inc/sql2dw/pkg/source"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// Loader builds queries from resources read through a source.Reader.
type Loader struct {
	reader source.Reader
	logger *zap.Logger
}

func NewLoader(reader source.Reader) *Loader {
	return &Loader{reader: reader}
}

// WithLogger sets the logger receiving validation failures. Without one
// the global logger is used.
func (l *Loader) WithLogger(lg *zap.Logger) *Loader {
	l.logger = lg
	return l
}

// Load reads the resource at path in full and builds a Query from it.
// Nothing is cached.
func (l *Loader) Load(ctx context.Context, path string) (*Query, error) {
	if len(path) == 0 {
		return nil, cerror.ErrInvalidArgument.GenWithStackByArgs("empty string passed as the filepath")
	}
	data, err := l.reader.ReadAll(ctx, path)
	if err != nil {
		if cerror.Is(err, cerror.ErrInvalidArgument) || cerror.Is(err, cerror.ErrResourceAccess) {
			return nil, errors.Trace(err)
		}
		return nil, cerror.WrapError(cerror.ErrResourceAccess, err, path)
	}
	lg := l.logger
	if lg == nil {
		lg = log.L()
	}
	q, err := NewWithLogger(string(data), lg.With(zap.String("path", path)))
	if err != nil {
		return nil, errors.Annotatef(err, "query source %s", path)
	}
	return q, nil
}

var localLoader = NewLoader(source.LocalReader{})

// Load reads a query from the local filesystem.
func Load(ctx context.Context, path string) (*Query, error) {
	return localLoader.Load(ctx, path)
}
