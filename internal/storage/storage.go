// Package storage uploads file buffers to blob containers and deletes them again.
// Two layouts share one Provider contract: Single keeps every file in one
// container under a visibility folder, Dual splits public and private content
// across two containers and serves public files from a CDN root.
// The blob wire protocol is owned by the Transport implementation (Azure SDK,
// MinIO client, or in-memory for tests).
package storage

import (
	"context"
	"time"
)

const (
	// DefaultConcurrency bounds parallel block transfers per upload when the
	// configuration does not supply a usable value.
	DefaultConcurrency = 20
	// ChunkSize is the block size handed to the SDK for chunked uploads.
	ChunkSize = 4 * 1024 * 1024
	// UploadTimeout is the absolute deadline for a single upload, after which
	// the transfer is cancelled.
	UploadTimeout = time.Hour
)

// Folder names used by the single-container layout.
const (
	publicFolder  = "games"
	privateFolder = "usersprivate"
)

// File is the record handed over by the host pipeline. Upload mutates the
// URL fields in place; Delete reads them back to locate the blob.
type File struct {
	Hash    string `json:"hash"`
	Ext     string `json:"ext"`
	Mime    string `json:"mime"`
	Buffer  []byte `json:"-"`
	Private bool   `json:"private"`
	Path    string `json:"path,omitempty"`

	URL       string `json:"url,omitempty"`
	URLAzure  string `json:"urlAzure,omitempty"`
	BucketURL string `json:"bucketUrl,omitempty"`
}

// Name returns the blob file name, hash followed by extension.
func (f *File) Name() string {
	return f.Hash + f.Ext
}

// Provider is the upload/delete contract consumed by the host pipeline.
type Provider interface {
	// Upload streams f.Buffer to its resolved blob address and records the
	// resulting URL(s) on f.
	Upload(ctx context.Context, f *File) error
	// Delete removes the blob previously written for f.
	Delete(ctx context.Context, f *File) error
}

func pathOr(explicit, fallback string) string {
	if explicit != "" {
		return explicit
	}
	return fallback
}
