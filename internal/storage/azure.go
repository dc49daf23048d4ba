package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
)

// AzureBlobStore uploads generated mockups to an Azure Storage container and
// returns the blob URL.
type AzureBlobStore struct {
	client    *azblob.Client
	container string
}

// NewAzureBlobStore builds a store from a storage account connection string.
func NewAzureBlobStore(connectionString, container string) (*AzureBlobStore, error) {
	connectionString = strings.TrimSpace(connectionString)
	container = strings.TrimSpace(container)
	if connectionString == "" {
		return nil, errors.New("storage: azure connection string is required")
	}
	if container == "" {
		return nil, errors.New("storage: azure container is required")
	}
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: azure client: %w", err)
	}
	return &AzureBlobStore{client: client, container: container}, nil
}

// Save uploads data as a block blob with the given content type.
func (s *AzureBlobStore) Save(ctx context.Context, data []byte, contentType string) (string, error) {
	if s == nil || s.client == nil {
		return "", errors.New("storage: no azure store configured")
	}
	name := NewObjectKey(time.Now(), contentType)
	opts := &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	}
	if _, err := s.client.UploadBuffer(ctx, s.container, name, data, opts); err != nil {
		return "", fmt.Errorf("storage: azure upload: %w", err)
	}
	return blobURL(s.client.URL(), s.container, name)
}

func blobURL(serviceURL, container, name string) (string, error) {
	base, err := url.Parse(strings.TrimRight(serviceURL, "/"))
	if err != nil {
		return "", fmt.Errorf("storage: azure service url: %w", err)
	}
	return base.JoinPath(container, name).String(), nil
}
