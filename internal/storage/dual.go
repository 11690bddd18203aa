package storage

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// Dual keeps public and private files in separate containers, each with its
// own default path. Public URLs are rewritten onto CDNRoot.
type Dual struct {
	transport   Transport
	public      ContainerLocation
	private     ContainerLocation
	pathPublic  string
	pathPrivate string
	cdnRoot     string
	concurrency int
	timeout     time.Duration
	log         *slog.Logger
}

// NewDual builds the dual-container layout over transport. Both container
// names are required.
func NewDual(transport Transport, opts Options, log *slog.Logger) (*Dual, error) {
	if opts.ContainerNamePublic == "" {
		return nil, &ConfigurationError{Field: "containerNamePublic", Err: errors.New("public container name is required")}
	}
	if opts.ContainerNamePrivate == "" {
		return nil, &ConfigurationError{Field: "containerNamePrivate", Err: errors.New("private container name is required")}
	}
	if log == nil {
		log = slog.Default()
	}
	base := opts.serviceURL()
	return &Dual{
		transport:   transport,
		public:      NewContainerLocation(base, opts.ContainerNamePublic),
		private:     NewContainerLocation(base, opts.ContainerNamePrivate),
		pathPublic:  opts.DefaultPathPublic,
		pathPrivate: opts.DefaultPathPrivate,
		cdnRoot:     opts.CDNRoot,
		concurrency: opts.concurrency(),
		timeout:     opts.uploadTimeout(),
		log: log.With("component", "storage.dual",
			"public", opts.ContainerNamePublic, "private", opts.ContainerNamePrivate),
	}, nil
}

// Container returns the root location used for the given visibility.
func (d *Dual) Container(private bool) ContainerLocation {
	if private {
		return d.private
	}
	return d.public
}

func (d *Dual) defaultPath(private bool) string {
	if private {
		return d.pathPrivate
	}
	return d.pathPublic
}

// Resolve returns the blob address f would be uploaded to.
func (d *Dual) Resolve(f *File) Blob {
	return d.Container(f.Private).With(pathOr(f.Path, d.defaultPath(f.Private))).Blob(f.Name())
}

// CDNURL rewrites a public blob address onto the CDN root. The container
// address is replaced once, as a plain substring.
func (d *Dual) CDNURL(address string) string {
	if d.cdnRoot == "" {
		return address
	}
	return strings.Replace(address, d.public.BaseAddress, d.cdnRoot, 1)
}

// Upload writes f.Buffer. Private files get f.URL; public files get the raw
// address in f.BucketURL and the CDN address in f.URL.
func (d *Dual) Upload(ctx context.Context, f *File) error {
	if err := CheckPath(pathOr(f.Path, d.defaultPath(f.Private))); err != nil {
		return err
	}
	b := d.Resolve(f)
	if err := put(ctx, d.transport, b, f, d.concurrency, d.timeout, d.log); err != nil {
		return err
	}
	if f.Private {
		f.URL = b.URL
		return nil
	}
	f.BucketURL = b.URL
	f.URL = d.CDNURL(b.URL)
	return nil
}

// OriginURL reverses CDNURL: an address under the CDN root is mapped back
// onto the public container. Other addresses are returned unchanged.
func (d *Dual) OriginURL(address string) string {
	if d.cdnRoot == "" {
		return address
	}
	if rest, ok := strings.CutPrefix(address, d.cdnRoot); ok {
		return d.public.BaseAddress + rest
	}
	return address
}

// Delete removes the blob for f. The container follows f.Private; the
// address is f.BucketURL, falling back to f.URL. A public f.URL on the CDN
// is mapped back to the container first.
func (d *Dual) Delete(ctx context.Context, f *File) error {
	address := f.BucketURL
	if address == "" {
		address = f.URL
		if !f.Private {
			address = d.OriginURL(address)
		}
	}
	if address == "" {
		return &NotFoundError{Err: errors.New("file has no stored url")}
	}
	b, err := d.Container(f.Private).Locate(address)
	if err != nil {
		return err
	}
	return remove(ctx, d.transport, b, d.log)
}

var _ Provider = (*Dual)(nil)
