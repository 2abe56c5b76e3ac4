// Package storage reads document blobs from Azure Blob Storage. The
// export core never writes blobs; ingestion belongs to the upstream
// collection service.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/legalhold/custodian/pkg/lifecycle"
)

// System resolves and streams stored document blobs.
type System interface {
	// Start registers a startup hook that verifies the container is
	// reachable.
	Start(lc *lifecycle.Coordinator) error
	// Download streams the blob at key; the caller closes the reader.
	// A missing blob returns ErrNotFound.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// Exists reports whether a blob is stored at key.
	Exists(ctx context.Context, key string) (bool, error)
}

type azure struct {
	client    *azblob.Client
	container string
	logger    *slog.Logger
}

// New validates the connection string and builds the client. Nothing
// is dialed until Start's hook runs.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		client:    client,
		container: cfg.ContainerName,
		logger:    logger.With("system", "storage"),
	}, nil
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() {
		// Read-only consumer: verify the container rather than create it.
		container := a.client.ServiceClient().NewContainerClient(a.container)
		if _, err := container.GetProperties(lc.Context(), nil); err != nil {
			a.logger.Error("storage container unreachable", "container", a.container, "error", err)
			return
		}
		a.logger.Info("storage container ready", "container", a.container)
	})

	return nil
}

func (a *azure) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	resp, err := a.client.DownloadStream(ctx, a.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("download blob %s: %w", key, err)
	}
	return resp.Body, nil
}

func (a *azure) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	blob := a.client.ServiceClient().NewContainerClient(a.container).NewBlobClient(key)
	if _, err := blob.GetProperties(ctx, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check blob %s: %w", key, err)
	}
	return true, nil
}

// Keys come from catalog rows, but traversal segments are rejected
// anyway before they reach the SDK.
func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
