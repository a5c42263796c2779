// Package gateway wraps the storage backends behind the pipeline-facing
// surfaces. The write side reports outcomes instead of returning errors;
// the read side returns typed storage errors. Outward messages are fixed
// and generic, with the provider detail kept in logs.
package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/utafrali/FileIngestGo/internal/domain"
	"github.com/utafrali/FileIngestGo/internal/errmap"
	"github.com/utafrali/FileIngestGo/internal/storage"
)

// Fixed outward failure messages. Provider detail never crosses this
// boundary; it goes to the logs only.
const (
	blobFailureMessage  = "blob storage operation failed"
	queueFailureMessage = "queue storage operation failed"
)

// BlobUpload describes one blob write through the gateway.
type BlobUpload struct {
	Key         string
	FileName    string
	TrackingID  string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Blob is the write-and-read surface over a storage backend.
type Blob struct {
	backend storage.Backend
	logger  *slog.Logger
}

func NewBlob(backend storage.Backend, logger *slog.Logger) *Blob {
	return &Blob{
		backend: backend,
		logger:  logger.With(slog.String("component", "blob_gateway")),
	}
}

// Upload writes one blob and reports the result as an outcome. It never
// returns an error: validation failures and backend failures both land in
// the outcome with a domain error code. The inputs are checked here
// independently of the pipeline's own validators since the gateway is also
// reachable outside the batch loop.
func (g *Blob) Upload(ctx context.Context, in BlobUpload) domain.BlobOutcome {
	if in.Body == nil || anyBlank(in.Key, in.FileName, in.TrackingID, in.ContentType) {
		return domain.BlobFailure(domain.BlobValidationFailed, blobFailureMessage)
	}

	// A seekable stream may have been read by an earlier check; the write
	// always starts at byte zero.
	if seeker, ok := in.Body.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return domain.BlobFailure(domain.BlobValidationFailed, blobFailureMessage)
		}
	}

	metadata := map[string]string{
		storage.MetaFileName:   in.FileName,
		storage.MetaTrackingID: in.TrackingID,
	}

	res, err := g.backend.Put(ctx, storage.PutInput{
		Key:         in.Key,
		ContentType: in.ContentType,
		Size:        in.Size,
		Metadata:    metadata,
		Body:        in.Body,
	})
	if err != nil {
		code := g.mapError(ctx, errmap.OpBlobUpload, in.Key, err)
		return domain.BlobFailure(code, blobFailureMessage)
	}

	return domain.BlobSuccess(res.ETag, res.LastModified.UTC())
}

// Download retrieves one blob. A blank key fails without touching the
// backend; backend failures surface as typed storage errors.
func (g *Blob) Download(ctx context.Context, key string) (*storage.Object, error) {
	if strings.TrimSpace(key) == "" {
		return nil, &domain.StorageError{
			Code:    domain.BlobValidationFailed,
			Message: blobFailureMessage,
		}
	}

	obj, err := g.backend.Get(ctx, key)
	if err != nil {
		code := g.mapError(ctx, errmap.OpBlobDownload, key, err)
		return nil, &domain.StorageError{Code: code, Message: blobFailureMessage, Err: err}
	}

	return obj, nil
}

// List returns the stored blobs under a prefix. Entries without a stored
// filename fall back to the blob key.
func (g *Blob) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	infos, err := g.backend.List(ctx, prefix)
	if err != nil {
		code := g.mapError(ctx, errmap.OpBlobList, prefix, err)
		return nil, &domain.StorageError{Code: code, Message: blobFailureMessage, Err: err}
	}

	for i := range infos {
		if infos[i].FileName == "" {
			infos[i].FileName = infos[i].Key
		}
	}

	return infos, nil
}

func anyBlank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// mapError logs the provider detail and resolves the domain code. Errors
// that are not provider errors map to the catch-all storage error code.
func (g *Blob) mapError(ctx context.Context, op errmap.Operation, key string, err error) domain.ErrorCode {
	var perr *errmap.ProviderError
	if !errors.As(err, &perr) {
		g.logger.ErrorContext(ctx, "unexpected blob backend failure",
			slog.String("operation", op.String()),
			slog.String("key", key),
			slog.String("error", err.Error()))
		return domain.BlobStorageError
	}

	code := errmap.Map(op, perr)
	g.logger.ErrorContext(ctx, "blob operation failed",
		slog.String("operation", op.String()),
		slog.String("key", key),
		slog.String("error_code", string(code)),
		slog.Int("provider_status", perr.Status),
		slog.String("provider_code", perr.Code),
		slog.String("error", perr.Error()))
	return code
}
