package repositories

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	log "github.com/sirupsen/logrus"

	"github.com/caohoangphucs/giadungtinthanh/internal/config"
)

// ObjectStore talks to a MinIO/S3-compatible bucket over the AWS SDK with a
// custom endpoint and path-style addressing.
type ObjectStore struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewObjectStore initializes the client and makes sure the bucket exists.
func NewObjectStore(ctx context.Context, mc config.MinioConfig) (*ObjectStore, error) {
	scheme := "http"
	if mc.Secure {
		scheme = "https"
	}
	endpoint := fmt.Sprintf("%s://%s", scheme, mc.Endpoint)

	cfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(mc.AccessKey, mc.SecretKey, ""),
		Region:      mc.Region,
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	store := &ObjectStore{
		client:  client,
		bucket:  mc.Bucket,
		baseURL: fmt.Sprintf("%s/%s", endpoint, mc.Bucket),
	}
	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}

	log.Println("Successfully initialized object store client")
	return store, nil
}

func (o *ObjectStore) ensureBucket(ctx context.Context) error {
	_, err := o.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(o.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = o.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(o.bucket),
	})
	if err != nil {
		var owned *s3types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("create bucket %s: %w", o.bucket, err)
	}
	return nil
}

// Put uploads an object under key with the given content type and length.
func (o *ObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := o.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(o.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	return err
}

// Get returns a readable stream for the object. The caller closes it.
func (o *ObjectStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

func (o *ObjectStore) Delete(ctx context.Context, key string) error {
	_, err := o.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(key),
	})
	return err
}

// Exists checks if a given object key exists in the bucket.
// Returns true if the object exists, false if not, and an error if something went wrong.
func (o *ObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := o.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *s3types.NotFound
		if ok := errors.As(err, &nsk); ok {
			// Object not found
			return false, nil
		}
		// Other error (e.g. auth, network)
		return false, err
	}
	return true, nil
}

// List walks every key in the bucket, calling fn for each.
func (o *ObjectStore) List(ctx context.Context, fn func(key string) error) error {
	paginator := s3.NewListObjectsV2Paginator(o.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(o.bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, obj := range page.Contents {
			if err := fn(aws.ToString(obj.Key)); err != nil {
				return err
			}
		}
	}
	return nil
}

// PublicURL derives the direct bucket URL for an object key.
func (o *ObjectStore) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s", o.baseURL, key)
}
