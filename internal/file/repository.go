// Package file keeps a catalog of uploaded files and exposes upload, lookup
// and delete over HTTP. Blob transfer is delegated to a storage.Provider.
package file

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/radif/blobprovider/internal/storage"
)

// Record is an uploaded file as stored in the catalog. Visibility is kept
// next to the URLs so deletes never have to infer it from an address.
type Record struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Name      string    `json:"name"`
	Hash      string    `json:"hash"`
	Ext       string    `json:"ext"`
	Mime      string    `json:"mime"`
	SizeBytes int64     `json:"sizeBytes"`
	Private   bool      `json:"private"`
	Path      string    `json:"path,omitempty"`
	URL       string    `json:"url,omitempty"`
	URLAzure  string    `json:"urlAzure,omitempty"`
	BucketURL string    `json:"bucketUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// StorageFile returns the provider view of r, without a buffer.
func (r *Record) StorageFile() *storage.File {
	return &storage.File{
		Hash:      r.Hash,
		Ext:       r.Ext,
		Mime:      r.Mime,
		Private:   r.Private,
		Path:      r.Path,
		URL:       r.URL,
		URLAzure:  r.URLAzure,
		BucketURL: r.BucketURL,
	}
}

// ErrNotFound is returned when a file record does not exist.
var ErrNotFound = errors.New("file not found")

// Store is the persistence contract used by Service.
type Store interface {
	Create(ctx context.Context, r *Record) (*Record, error)
	GetByID(ctx context.Context, id string) (*Record, error)
	Delete(ctx context.Context, id string) error
}

// Repository handles all file catalog database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const recordColumns = `id, owner_id, name, hash, ext, mime, size_bytes, private, path, url, url_azure, bucket_url, created_at`

func scanRecord(row pgx.Row) (*Record, error) {
	r := &Record{}
	err := row.Scan(&r.ID, &r.OwnerID, &r.Name, &r.Hash, &r.Ext, &r.Mime, &r.SizeBytes,
		&r.Private, &r.Path, &r.URL, &r.URLAzure, &r.BucketURL, &r.CreatedAt)
	return r, err
}

// Create inserts a record and returns it with its generated id and timestamp.
func (repo *Repository) Create(ctx context.Context, r *Record) (*Record, error) {
	created, err := scanRecord(repo.db.QueryRow(ctx,
		`INSERT INTO files (owner_id, name, hash, ext, mime, size_bytes, private, path, url, url_azure, bucket_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+recordColumns,
		r.OwnerID, r.Name, r.Hash, r.Ext, r.Mime, r.SizeBytes, r.Private, r.Path, r.URL, r.URLAzure, r.BucketURL,
	))
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	return created, nil
}

// GetByID fetches a record by its UUID.
func (repo *Repository) GetByID(ctx context.Context, id string) (*Record, error) {
	r, err := scanRecord(repo.db.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM files WHERE id = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get file by id: %w", err)
	}
	return r, nil
}

// Delete removes the record with the given id.
func (repo *Repository) Delete(ctx context.Context, id string) error {
	tag, err := repo.db.Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if isInvalidUUID(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// isInvalidUUID checks for PostgreSQL invalid_text_representation (code 22P02).
func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

var _ Store = (*Repository)(nil)
