package objectstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addressbook/internal/platform/config"
)

func TestNew(t *testing.T) {
	client, err := New(config.MinioConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
	})
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", client.EndpointURL().Host)
	assert.Equal(t, "http", client.EndpointURL().Scheme)
}

func TestNewRejectsEndpointWithPath(t *testing.T) {
	_, err := New(config.MinioConfig{Endpoint: "localhost:9000/bucket"})
	assert.Error(t, err)
}
