package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dlfarias/teamvault/internal/utils"
)

// S3Store writes objects to an S3-compatible endpoint
type S3Store struct {
	client *minio.Client
	bucket string
}

// S3Config describes the S3 endpoint and credentials
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// NewS3Store constructs the client and verifies the bucket exists
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, storageErr("create client", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, storageErr("check bucket", err)
	}
	if !exists {
		return nil, storageErr("check bucket",
			fmt.Errorf("bucket %q does not exist", cfg.Bucket))
	}

	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

// Put uploads the bytes under key, overwriting any prior object
func (s *S3Store) Put(ctx context.Context, key string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return "", storageErr("put object", err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

// Close is a no-op; the minio client holds no resources needing release
func (s *S3Store) Close() error {
	return nil
}

func storageErr(op string, err error) error {
	return utils.NewAppError(utils.NewSyncError(utils.ErrCodeStorageFailure,
		fmt.Sprintf("storage %s: %v", op, err)).Build())
}
