package source

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

type objectOpener func(ctx context.Context, bucket, object string) (io.ReadCloser, error)

// GCSReader reads gs://bucket/object paths.
type GCSReader struct {
	open objectOpener
}

func NewGCSReader(ctx context.Context, credentialsFilePath string) (*GCSReader, error) {
	opts := []option.ClientOption{}
	if credentialsFilePath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFilePath))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Annotate(err, "Failed to create GCS client")
	}
	log.Info("GCS client created")
	return &GCSReader{
		open: func(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
			return client.Bucket(bucket).Object(object).NewReader(ctx)
		},
	}, nil
}

func (r *GCSReader) ReadAll(ctx context.Context, p string) ([]byte, error) {
	bucket, object, err := splitBucketObject(p)
	if err != nil {
		return nil, err
	}
	rc, err := r.open(ctx, bucket, object)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Trace(err)
	}
	log.Debug("Read query from GCS", zap.String("bucket", bucket), zap.String("object", object), zap.Int("size", len(data)))
	return data, nil
}
