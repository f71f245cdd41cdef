package store

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"

	"addressbook/internal/addressbook/models"
	"addressbook/pkg/platform/sentinel"
)

// DefaultObjectName is the object holding the serialized address book.
const DefaultObjectName = "addressbook/entries.json"

// ObjectStore keeps the document as a single object in an S3-compatible bucket.
type ObjectStore struct {
	client *minio.Client
	bucket string
	object string
}

// NewObjectStore constructs a MinIO/S3-backed gateway.
func NewObjectStore(client *minio.Client, bucket, object string) *ObjectStore {
	if object == "" {
		object = DefaultObjectName
	}
	return &ObjectStore{client: client, bucket: bucket, object: object}
}

// EnsureBucket creates the bucket if it does not exist.
func (s *ObjectStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *ObjectStore) Load(ctx context.Context) ([]models.Address, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.translate(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.translate(err)
	}
	return Decode(data)
}

func (s *ObjectStore) Save(ctx context.Context, addresses []models.Address) error {
	data, err := Encode(addresses)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, s.bucket, s.object, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", s.bucket, s.object, err)
	}
	return nil
}

func (s *ObjectStore) translate(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return sentinel.ErrNotFound
	}
	return fmt.Errorf("get %s/%s: %w", s.bucket, s.object, err)
}
