package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
)

// AzureTransport talks to Azure Blob Storage with a shared-key credential.
type AzureTransport struct {
	cred    *azblob.SharedKeyCredential
	options *blockblob.ClientOptions
}

// NewAzureTransport validates the credential and service URL. It does not
// contact the service, so missing containers surface on first use.
func NewAzureTransport(account, accountKey, serviceURL string) (*AzureTransport, error) {
	if account == "" {
		return nil, &ConfigurationError{Field: "account", Err: errors.New("account name is required")}
	}
	if accountKey == "" {
		return nil, &ConfigurationError{Field: "accountKey", Err: errors.New("account key is required")}
	}
	cred, err := azblob.NewSharedKeyCredential(account, accountKey)
	if err != nil {
		return nil, &ConfigurationError{Field: "accountKey", Err: err}
	}
	u, err := url.Parse(serviceURL)
	if err != nil {
		return nil, &ConfigurationError{Field: "serviceBaseURL", Err: err}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &ConfigurationError{Field: "serviceBaseURL", Err: fmt.Errorf("unsupported url %q", serviceURL)}
	}
	return &AzureTransport{
		cred: cred,
		options: &blockblob.ClientOptions{
			ClientOptions: policy.ClientOptions{
				Telemetry: policy.TelemetryOptions{ApplicationID: "blobprovider"},
			},
		},
	}, nil
}

func (a *AzureTransport) client(b Blob) (*blockblob.Client, error) {
	return blockblob.NewClientWithSharedKeyCredential(b.URL, a.cred, a.options)
}

// Put uploads data as a block blob in BlockSize chunks with up to
// Concurrency parallel transfers.
func (a *AzureTransport) Put(ctx context.Context, b Blob, data []byte, opts PutOptions) error {
	c, err := a.client(b)
	if err != nil {
		return fmt.Errorf("create blob client: %w", err)
	}
	upload := &blockblob.UploadBufferOptions{
		BlockSize:   opts.BlockSize,
		Concurrency: concurrency16(opts.Concurrency),
	}
	if opts.ContentType != "" {
		contentType := opts.ContentType
		upload.HTTPHeaders = &blob.HTTPHeaders{BlobContentType: &contentType}
	}
	if _, err := c.UploadBuffer(ctx, data, upload); err != nil {
		return azureErr("upload", err)
	}
	return nil
}

// Remove deletes the blob.
func (a *AzureTransport) Remove(ctx context.Context, b Blob) error {
	c, err := a.client(b)
	if err != nil {
		return fmt.Errorf("create blob client: %w", err)
	}
	if _, err := c.Delete(ctx, nil); err != nil {
		return azureErr("delete", err)
	}
	return nil
}

func azureErr(op string, err error) error {
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound, bloberror.ResourceNotFound) {
		return fmt.Errorf("azure %s: %w: %w", op, ErrBlobNotFound, err)
	}
	return fmt.Errorf("azure %s: %w", op, err)
}

func concurrency16(n int) uint16 {
	switch {
	case n <= 0:
		return DefaultConcurrency
	case n > math.MaxUint16:
		return math.MaxUint16
	default:
		return uint16(n)
	}
}

var _ Transport = (*AzureTransport)(nil)
