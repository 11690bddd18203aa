package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Single stores every file in one container. Visibility only chooses the
// folder under the path and which URL field is written back.
type Single struct {
	transport   Transport
	container   ContainerLocation
	defaultPath string
	concurrency int
	timeout     time.Duration
	log         *slog.Logger
}

// NewSingle builds the single-container layout over transport.
func NewSingle(transport Transport, opts Options, log *slog.Logger) (*Single, error) {
	if opts.ContainerName == "" {
		return nil, &ConfigurationError{Field: "containerName", Err: errors.New("container name is required")}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Single{
		transport:   transport,
		container:   NewContainerLocation(opts.serviceURL(), opts.ContainerName),
		defaultPath: opts.DefaultPath,
		concurrency: opts.concurrency(),
		timeout:     opts.uploadTimeout(),
		log:         log.With("component", "storage.single", "container", opts.ContainerName),
	}, nil
}

// Container returns the container root location.
func (s *Single) Container() ContainerLocation {
	return s.container
}

// Resolve returns the blob address f would be uploaded to.
func (s *Single) Resolve(f *File) Blob {
	folder := publicFolder
	if f.Private {
		folder = privateFolder
	}
	return s.container.With(pathOr(f.Path, s.defaultPath), folder).Blob(f.Name())
}

// Upload writes f.Buffer and sets f.URL (private) or f.URLAzure (public).
// Paths with dot segments fail with ErrInvalidPath before any transfer.
func (s *Single) Upload(ctx context.Context, f *File) error {
	if err := CheckPath(pathOr(f.Path, s.defaultPath)); err != nil {
		return err
	}
	b := s.Resolve(f)
	if err := put(ctx, s.transport, b, f, s.concurrency, s.timeout, s.log); err != nil {
		return err
	}
	if f.Private {
		f.URL = b.URL
	} else {
		f.URLAzure = b.URL
	}
	return nil
}

// Delete removes the blob recorded in f.URLAzure, or in f.URL for private
// files that never had a public address.
func (s *Single) Delete(ctx context.Context, f *File) error {
	address := pathOr(f.URLAzure, f.URL)
	if address == "" {
		return &NotFoundError{Err: errors.New("file has no stored url")}
	}
	b, err := s.container.Locate(address)
	if err != nil {
		return err
	}
	return remove(ctx, s.transport, b, s.log)
}

func put(ctx context.Context, t Transport, b Blob, f *File, concurrency int, timeout time.Duration, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log.Debug("uploading blob", "address", b.URL, "size", len(f.Buffer), "mime", f.Mime, "private", f.Private)
	err := t.Put(ctx, b, f.Buffer, PutOptions{
		ContentType: f.Mime,
		BlockSize:   ChunkSize,
		Concurrency: concurrency,
	})
	if err != nil {
		log.Debug("upload failed", "address", b.URL, "error", err)
		return classify("upload", b.URL, timeout, err)
	}
	return nil
}

func remove(ctx context.Context, t Transport, b Blob, log *slog.Logger) error {
	log.Debug("deleting blob", "address", b.URL)
	if err := t.Remove(ctx, b); err != nil {
		log.Debug("delete failed", "address", b.URL, "error", err)
		return classify("delete", b.URL, 0, err)
	}
	return nil
}

var _ Provider = (*Single)(nil)
