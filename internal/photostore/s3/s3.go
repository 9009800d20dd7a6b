package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vbonduro/renovo/internal/errs"
	"github.com/vbonduro/renovo/internal/photostore"
)

// objectAPI is the subset of the S3 client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *awss3.DeleteObjectInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, params *awss3.HeadObjectInput, optFns ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error)
}

type S3PhotoStore struct {
	client objectAPI
	bucket string
}

// NewS3PhotoStore builds a client from the default AWS credential chain. A
// non-empty endpoint targets an S3-compatible service with path-style
// addressing.
func NewS3PhotoStore(ctx context.Context, bucket, region, endpoint string) (*S3PhotoStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3PhotoStore(client, bucket), nil
}

func newS3PhotoStore(client objectAPI, bucket string) *S3PhotoStore {
	return &S3PhotoStore{client: client, bucket: bucket}
}

func (s *S3PhotoStore) Save(ctx context.Context, prefix, mimeType string, r io.Reader) (string, error) {
	key := photostore.NewKey(prefix, mimeType)
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}
	return key, nil
}

func (s *S3PhotoStore) Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, "", errs.NotFound("photo")
		}
		return nil, "", fmt.Errorf("failed to download photo: %w", err)
	}

	mimeType := aws.ToString(out.ContentType)
	if mimeType == "" {
		mimeType = photostore.ExtToMimeType(storageKey)
	}
	return out.Body, mimeType, nil
}

// Delete removes the object. S3 deletes are idempotent, so the object is
// checked first to report a missing key the same way the local store does.
func (s *S3PhotoStore) Delete(ctx context.Context, storageKey string) error {
	_, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return errs.NotFound("photo")
		}
		return fmt.Errorf("failed to stat photo: %w", err)
	}

	_, err = s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}
