package source

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// S3Reader reads s3://bucket/key paths.
type S3Reader struct {
	svc s3iface.S3API
}

// NewS3Reader uses the given static keys when both are set, otherwise the
// credentials found in the environment.
func NewS3Reader(region, accessKey, secretKey string) (*S3Reader, error) {
	cfg := aws.NewConfig()
	if region != "" {
		cfg = cfg.WithRegion(region)
	}
	if accessKey != "" && secretKey != "" {
		cfg = cfg.WithCredentials(credentials.NewStaticCredentials(accessKey, secretKey, ""))
	} else {
		cfg = cfg.WithCredentials(credentials.NewEnvCredentials())
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Annotate(err, "Failed to create AWS session")
	}
	log.Info("S3 client created", zap.String("region", region))
	return &S3Reader{svc: s3.New(sess)}, nil
}

func (r *S3Reader) ReadAll(ctx context.Context, p string) ([]byte, error) {
	bucket, key, err := splitBucketObject(p)
	if err != nil {
		return nil, err
	}
	out, err := r.svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.Trace(err)
	}
	log.Debug("Read query from S3", zap.String("bucket", bucket), zap.String("key", key), zap.Int("size", len(data)))
	return data, nil
}
