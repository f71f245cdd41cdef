//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"addressbook/internal/platform/config"
	"addressbook/internal/platform/objectstore"
)

const (
	minioImage     = "minio/minio:RELEASE.2024-10-13T13-34-11Z"
	minioAccessKey = "minioadmin"
	minioSecretKey = "minioadmin"
)

// MinioContainer wraps a MinIO server started from the generic container API.
type MinioContainer struct {
	Container testcontainers.Container
	Endpoint  string
	Client    *minio.Client
}

// NewMinioContainer starts a new MinIO container.
func NewMinioContainer(t *testing.T) *MinioContainer {
	t.Helper()

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        minioImage,
			ExposedPorts: []string{"9000/tcp"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     minioAccessKey,
				"MINIO_ROOT_PASSWORD": minioSecretKey,
			},
			Cmd:        []string{"server", "/data"},
			WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start minio container: %v", err)
	}

	endpoint, err := container.PortEndpoint(ctx, "9000/tcp", "")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get minio endpoint: %v", err)
	}

	client, err := objectstore.New(config.MinioConfig{
		Endpoint:  endpoint,
		AccessKey: minioAccessKey,
		SecretKey: minioSecretKey,
	})
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to create minio client: %v", err)
	}

	return &MinioContainer{
		Container: container,
		Endpoint:  endpoint,
		Client:    client,
	}
}

// EmptyBucket removes every object in bucket. Missing buckets are ignored.
func (m *MinioContainer) EmptyBucket(ctx context.Context, bucket string) error {
	exists, err := m.Client.BucketExists(ctx, bucket)
	if err != nil || !exists {
		return err
	}
	for obj := range m.Client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return obj.Err
		}
		if err := m.Client.RemoveObject(ctx, bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return err
		}
	}
	return nil
}
