// Package source reads query text from local files or object storage.
package source

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"

	cerror "github.com/pingcap-inc/sql2dw/pkg/errors"
	"github.com/pingcap/errors"
)

const (
	SchemeFile = "file"
	SchemeGCS  = "gs"
	SchemeS3   = "s3"
)

// Reader reads a whole resource.
type Reader interface {
	ReadAll(ctx context.Context, path string) ([]byte, error)
}

// Scheme returns the URI scheme of p, or "" for a plain filesystem path.
func Scheme(p string) string {
	if i := strings.Index(p, "://"); i > 0 {
		return strings.ToLower(p[:i])
	}
	return ""
}

// Join resolves rel against root. rel is returned as is when it is already
// absolute or carries a scheme.
func Join(root, rel string) string {
	if root == "" || Scheme(rel) != "" || filepath.IsAbs(rel) {
		return rel
	}
	if Scheme(root) != "" {
		return strings.TrimSuffix(root, "/") + "/" + path.Clean(rel)
	}
	return filepath.Join(root, rel)
}

// splitBucketObject splits "gs://bucket/dir/file.sql" into "bucket" and
// "dir/file.sql".
func splitBucketObject(p string) (string, string, error) {
	_, rest, ok := strings.Cut(p, "://")
	if !ok {
		return "", "", cerror.ErrInvalidArgument.GenWithStackByArgs(fmt.Sprintf("%q has no scheme", p))
	}
	bucket, object, found := strings.Cut(rest, "/")
	if !found || bucket == "" || object == "" {
		return "", "", cerror.ErrInvalidArgument.GenWithStackByArgs(fmt.Sprintf("%q must look like <scheme>://<bucket>/<object>", p))
	}
	return bucket, object, nil
}

// Mux dispatches reads to the Reader registered for the path's scheme.
// Plain paths are served by the "file" reader.
type Mux struct {
	mu      sync.Mutex
	readers map[string]Reader
}

func NewMux() *Mux {
	return &Mux{readers: make(map[string]Reader)}
}

// Register binds r to scheme, replacing any previous reader.
func (m *Mux) Register(scheme string, r Reader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readers[strings.ToLower(scheme)] = r
}

func (m *Mux) ReadAll(ctx context.Context, p string) ([]byte, error) {
	if p == "" {
		return nil, cerror.ErrInvalidArgument.GenWithStackByArgs("empty string passed as the query path")
	}
	scheme := Scheme(p)
	if scheme == "" {
		scheme = SchemeFile
	}
	m.mu.Lock()
	r, ok := m.readers[scheme]
	m.mu.Unlock()
	if !ok {
		return nil, cerror.ErrInvalidArgument.GenWithStackByArgs(fmt.Sprintf("unsupported query source scheme %q", scheme))
	}
	data, err := r.ReadAll(ctx, p)
	if err != nil {
		if cerror.Is(err, cerror.ErrInvalidArgument) {
			return nil, errors.Trace(err)
		}
		return nil, cerror.WrapError(cerror.ErrResourceAccess, err, p)
	}
	return data, nil
}

// lazyReader defers creating a Reader until the first read, so that object
// storage credentials are only required when such paths are used.
type lazyReader struct {
	once   sync.Once
	create func(ctx context.Context) (Reader, error)
	reader Reader
	err    error
}

func Lazy(create func(ctx context.Context) (Reader, error)) Reader {
	return &lazyReader{create: create}
}

func (l *lazyReader) ReadAll(ctx context.Context, p string) ([]byte, error) {
	l.once.Do(func() {
		l.reader, l.err = l.create(ctx)
	})
	if l.err != nil {
		return nil, errors.Trace(l.err)
	}
	return l.reader.ReadAll(ctx, p)
}

// Config holds object storage credentials.
type Config struct {
	GCSCredentialsFilePath string
	AWSRegion              string
	AWSAccessKey           string
	AWSSecretKey           string
}

// NewDefaultMux returns a Mux serving local files, gs:// and s3:// paths.
func NewDefaultMux(cfg Config) *Mux {
	m := NewMux()
	m.Register(SchemeFile, LocalReader{})
	m.Register(SchemeGCS, Lazy(func(ctx context.Context) (Reader, error) {
		return NewGCSReader(ctx, cfg.GCSCredentialsFilePath)
	}))
	m.Register(SchemeS3, Lazy(func(context.Context) (Reader, error) {
		return NewS3Reader(cfg.AWSRegion, cfg.AWSAccessKey, cfg.AWSSecretKey)
	}))
	return m
}
