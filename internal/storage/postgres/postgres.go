// Package postgres implements the blob store backend on PostgreSQL. Blobs
// live in a single table keyed by the blob key; driver errors are
// translated into provider errors for the error mapper.
package postgres

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/utafrali/FileIngestGo/internal/errmap"
	"github.com/utafrali/FileIngestGo/internal/storage"
	"github.com/utafrali/FileIngestGo/pkg/database"
)

// Backend stores blobs in the blobs table, one row per key.
type Backend struct {
	db database.DBTX
}

func New(db database.DBTX) *Backend {
	return &Backend{db: db}
}

const putQuery = `
	INSERT INTO blobs (key, data, content_type, size, metadata, etag, last_modified)
	VALUES ($1, $2, $3, $4, $5, $6, now())
	ON CONFLICT (key) DO NOTHING
	RETURNING last_modified`

// Put writes a new blob. An existing key is never overwritten; the insert
// is a no-op in that case and Put reports a conflict.
func (b *Backend) Put(ctx context.Context, in storage.PutInput) (*storage.PutResult, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, &errmap.ProviderError{
			Status:  500,
			Message: "reading blob content",
			Err:     err,
		}
	}

	sum := md5.Sum(data)
	etag := hex.EncodeToString(sum[:])

	var lastModified time.Time
	err = b.db.QueryRow(ctx, putQuery,
		in.Key, data, in.ContentType, in.Size, in.Metadata, etag,
	).Scan(&lastModified)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &errmap.ProviderError{
			Status:  409,
			Code:    "BlobAlreadyExists",
			Message: fmt.Sprintf("blob %q already exists", in.Key),
		}
	}
	if err != nil {
		return nil, translatePgError(err, "inserting blob")
	}

	return &storage.PutResult{ETag: etag, LastModified: lastModified}, nil
}

const getQuery = `
	SELECT data, content_type, size, metadata, etag, last_modified
	FROM blobs
	WHERE key = $1`

// Get retrieves one blob by key.
func (b *Backend) Get(ctx context.Context, key string) (*storage.Object, error) {
	var (
		data        []byte
		contentType string
		size        int64
		metadata    map[string]string
		etag        string
		modified    time.Time
	)

	err := b.db.QueryRow(ctx, getQuery, key).Scan(&data, &contentType, &size, &metadata, &etag, &modified)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &errmap.ProviderError{
			Status:  404,
			Code:    "BlobNotFound",
			Message: fmt.Sprintf("blob %q not found", key),
		}
	}
	if err != nil {
		return nil, translatePgError(err, "selecting blob")
	}

	return &storage.Object{
		Info: storage.ObjectInfo{
			Key:          key,
			FileName:     metadata[storage.MetaFileName],
			TrackingID:   metadata[storage.MetaTrackingID],
			ContentType:  contentType,
			Size:         size,
			ETag:         etag,
			LastModified: modified,
		},
		Body: io.NopCloser(bytes.NewReader(data)),
	}, nil
}

const listQuery = `
	SELECT key, content_type, size, metadata, etag, last_modified
	FROM blobs
	WHERE key LIKE $1 || '%'
	ORDER BY key`

// List returns the info of every blob under the prefix, ordered by key.
func (b *Backend) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	rows, err := b.db.Query(ctx, listQuery, prefix)
	if err != nil {
		return nil, translatePgError(err, "listing blobs")
	}
	defer rows.Close()

	var infos []storage.ObjectInfo
	for rows.Next() {
		var (
			info     storage.ObjectInfo
			metadata map[string]string
		)
		if err := rows.Scan(&info.Key, &info.ContentType, &info.Size, &metadata, &info.ETag, &info.LastModified); err != nil {
			return nil, translatePgError(err, "scanning blob row")
		}
		info.FileName = metadata[storage.MetaFileName]
		info.TrackingID = metadata[storage.MetaTrackingID]
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePgError(err, "iterating blob rows")
	}

	return infos, nil
}

// translatePgError turns a pgx error into a provider error with an
// HTTP-like status the mapper understands.
func translatePgError(err error, action string) *errmap.ProviderError {
	perr := &errmap.ProviderError{
		Status:  500,
		Message: action,
		Err:     err,
	}

	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		switch pge.Code {
		case "42P01": // undefined_table
			perr.Status = 404
			perr.Code = "ContainerNotFound"
		case "28P01", "28000": // invalid_password, invalid_authorization
			perr.Status = 401
		case "23505": // unique_violation
			perr.Status = 409
			perr.Code = "BlobAlreadyExists"
		case "53300": // too_many_connections
			perr.Status = 429
		}
	}

	return perr
}
