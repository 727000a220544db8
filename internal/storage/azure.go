package storage

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"github.com/sirupsen/logrus"
)

// AzureStorage keeps report and export snapshots as blobs in one container
type AzureStorage struct {
	container *container.Client
	name      string
}

var _ StorageInterface = (*AzureStorage)(nil)

// NewAzureStorage connects with the default Azure credential chain (managed
// identity in the cluster, developer login locally) and creates the container
// on first use.
func NewAzureStorage(ctx context.Context, accountName, containerName string) (*AzureStorage, error) {
	if accountName == "" {
		return nil, fmt.Errorf("storage account name is required")
	}
	if containerName == "" {
		return nil, fmt.Errorf("storage container name is required")
	}

	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	client, err := azblob.NewClient(fmt.Sprintf("https://%s.blob.core.windows.net/", accountName), credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure blob client: %w", err)
	}

	s := &AzureStorage{
		container: client.ServiceClient().NewContainerClient(containerName),
		name:      containerName,
	}

	_, err = s.container.Create(ctx, nil)
	switch {
	case err == nil:
		logrus.Infof("Created snapshot container %s", containerName)
	case bloberror.HasCode(err, bloberror.ContainerAlreadyExists):
		logrus.Debugf("Snapshot container %s already exists", containerName)
	default:
		return nil, fmt.Errorf("failed to create container %s: %w", containerName, err)
	}

	return s, nil
}

// Store uploads a snapshot, replacing any blob with the same name
func (s *AzureStorage) Store(ctx context.Context, name string, data []byte) error {
	ct := contentType(name)
	_, err := s.container.NewBlockBlobClient(name).UploadBuffer(ctx, data, &blockblob.UploadBufferOptions{
		BlockSize:   1024 * 1024,
		Concurrency: 3,
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &ct},
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}

	logrus.WithFields(logrus.Fields{"container": s.name, "snapshot": name, "bytes": len(data)}).Info("Stored snapshot")
	return nil
}

// Retrieve downloads a snapshot; a missing blob yields ErrNotFound
func (s *AzureStorage) Retrieve(ctx context.Context, name string) ([]byte, error) {
	resp, err := s.container.NewBlobClient(name).DownloadStream(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to download %s: %w", name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// List returns snapshot names under prefix, sorted
func (s *AzureStorage) List(ctx context.Context, prefix string) ([]string, error) {
	names := []string{}
	pager := s.container.NewListBlobsFlatPager(&container.ListBlobsFlatOptions{Prefix: &prefix})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list snapshots under %q: %w", prefix, err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				names = append(names, *item.Name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a snapshot; deleting a missing blob is not an error
func (s *AzureStorage) Delete(ctx context.Context, name string) error {
	_, err := s.container.NewBlobClient(name).Delete(ctx, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.BlobNotFound) {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	logrus.WithFields(logrus.Fields{"container": s.name, "snapshot": name}).Info("Deleted snapshot")
	return nil
}
