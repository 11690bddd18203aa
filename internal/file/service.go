package file

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/radif/blobprovider/internal/storage"
)

// ErrForbidden is returned when a caller touches another owner's file.
var ErrForbidden = errors.New("file belongs to another owner")

// ErrEmptyUpload is returned for uploads without content.
var ErrEmptyUpload = errors.New("empty upload")

// UploadInput is what the HTTP layer hands to Service.Upload.
type UploadInput struct {
	OwnerID string
	Name    string
	Mime    string
	Data    []byte
	Private bool
	Path    string
}

// Service wires the catalog to the storage provider.
type Service struct {
	store    Store
	provider storage.Provider
	log      *slog.Logger
	newID    func() string
}

// NewService creates a new file Service.
func NewService(store Store, provider storage.Provider, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:    store,
		provider: provider,
		log:      log.With("component", "file.service"),
		newID:    func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:12] },
	}
}

// Upload pushes the payload to storage and records the resulting URLs.
// When the catalog write fails the blob is removed again.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*Record, error) {
	if len(in.Data) == 0 {
		return nil, ErrEmptyUpload
	}
	base, ext := sanitizeFileName(in.Name)
	f := &storage.File{
		Hash:    base + "_" + s.newID(),
		Ext:     ext,
		Mime:    detectMime(in.Mime, ext, in.Data),
		Buffer:  in.Data,
		Private: in.Private,
		Path:    strings.Trim(strings.TrimSpace(in.Path), "/"),
	}
	if err := s.provider.Upload(ctx, f); err != nil {
		return nil, fmt.Errorf("upload %s: %w", f.Name(), err)
	}

	rec, err := s.store.Create(ctx, &Record{
		OwnerID:   in.OwnerID,
		Name:      in.Name,
		Hash:      f.Hash,
		Ext:       f.Ext,
		Mime:      f.Mime,
		SizeBytes: int64(len(in.Data)),
		Private:   f.Private,
		Path:      f.Path,
		URL:       f.URL,
		URLAzure:  f.URLAzure,
		BucketURL: f.BucketURL,
	})
	if err != nil {
		if delErr := s.provider.Delete(ctx, f); delErr != nil {
			s.log.Warn("orphaned blob after catalog failure", "hash", f.Hash, "error", delErr)
		}
		return nil, fmt.Errorf("store file record: %w", err)
	}
	s.log.Info("file uploaded", "id", rec.ID, "owner", rec.OwnerID, "size", rec.SizeBytes, "private", rec.Private)
	return rec, nil
}

// Get returns a record visible to ownerID. Public files are visible to anyone.
func (s *Service) Get(ctx context.Context, id, ownerID string) (*Record, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Private && rec.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return rec, nil
}

// Delete removes the blob and then the record. A blob that is already gone
// does not block removing the record.
func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rec.OwnerID != ownerID {
		return ErrForbidden
	}
	if err := s.provider.Delete(ctx, rec.StorageFile()); err != nil {
		if !storage.IsNotFound(err) {
			return fmt.Errorf("delete blob for %s: %w", id, err)
		}
		s.log.Warn("blob already missing, removing record", "id", id, "error", err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete file record: %w", err)
	}
	s.log.Info("file deleted", "id", id, "owner", ownerID)
	return nil
}

// IsNotFound returns true when the error indicates a file record was not found.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

var invalidChars = regexp.MustCompile(`[^a-zA-Z0-9-_]+`)

// sanitizeFileName splits name into a safe lower-case base and extension.
func sanitizeFileName(name string) (string, string) {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == "/" || base == "" {
		base = "file"
	}
	ext := strings.ToLower(filepath.Ext(base))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ToLower(base)
	base = invalidChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "_")
	if base == "" {
		base = "file"
	}
	if invalidChars.MatchString(strings.TrimPrefix(ext, ".")) {
		ext = ""
	}
	return base, ext
}

// detectMime prefers the declared type, then the extension, then sniffing.
func detectMime(declared, ext string, data []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if byExt := mime.TypeByExtension(ext); byExt != "" {
		return byExt
	}
	return http.DetectContentType(data)
}
