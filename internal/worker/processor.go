// Package worker consumes upload notifications and processes the referenced
// blobs. Processing is currently a fetch-and-verify step; the blob content
// is retrieved and discarded.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/utafrali/FileIngestGo/internal/domain"
	"github.com/utafrali/FileIngestGo/internal/gateway"
	"github.com/utafrali/FileIngestGo/internal/storage"
)

// Downloader is the blob read surface the processor needs.
type Downloader interface {
	Download(ctx context.Context, key string) (*storage.Object, error)
}

// Processor handles one notification at a time.
type Processor struct {
	blobs  Downloader
	seen   IdempotencyStore
	logger *slog.Logger
}

func NewProcessor(blobs Downloader, seen IdempotencyStore, logger *slog.Logger) *Processor {
	return &Processor{
		blobs:  blobs,
		seen:   seen,
		logger: logger.With(slog.String("component", "notification_processor")),
	}
}

// Handle processes one notification payload. Malformed payloads and unknown
// schema versions are logged and skipped rather than retried, since
// redelivery cannot fix them. A storage failure is returned so the consumer
// can retry or dead-letter the message.
func (p *Processor) Handle(ctx context.Context, messageID string, payload []byte) error {
	var n gateway.Notification
	if err := json.Unmarshal(payload, &n); err != nil {
		p.logger.WarnContext(ctx, "skipping malformed notification",
			slog.String("message_id", messageID),
			slog.String("error", err.Error()))
		return nil
	}

	if n.SchemaVersion != 1 {
		p.logger.WarnContext(ctx, "skipping notification with unknown schema version",
			slog.String("message_id", messageID),
			slog.Int("schema_version", n.SchemaVersion))
		return nil
	}

	if n.BlobName == "" || n.TrackingID == "" {
		p.logger.WarnContext(ctx, "skipping notification with missing correlation fields",
			slog.String("message_id", messageID))
		return nil
	}

	if messageID != "" {
		fresh, err := p.seen.MarkIfNew(ctx, messageID)
		if err != nil {
			return fmt.Errorf("checking idempotency for message %s: %w", messageID, err)
		}
		if !fresh {
			p.logger.InfoContext(ctx, "skipping already processed message",
				slog.String("message_id", messageID))
			return nil
		}
	}

	obj, err := p.blobs.Download(ctx, n.BlobName)
	if err != nil {
		var serr *domain.StorageError
		if errors.As(err, &serr) && serr.Code == domain.BlobNotFound {
			// The blob is gone; redelivery cannot bring it back.
			p.logger.WarnContext(ctx, "notified blob no longer exists",
				slog.String("blob_name", n.BlobName),
				slog.String("tracking_id", n.TrackingID))
			return nil
		}
		return fmt.Errorf("downloading blob %s: %w", n.BlobName, err)
	}
	defer obj.Body.Close()

	// Downstream processing is not implemented yet; drain the body so the
	// fetch is fully exercised.
	size, err := io.Copy(io.Discard, obj.Body)
	if err != nil {
		return fmt.Errorf("reading blob %s: %w", n.BlobName, err)
	}

	p.logger.InfoContext(ctx, "processed upload notification",
		slog.String("blob_name", n.BlobName),
		slog.String("tracking_id", n.TrackingID),
		slog.Int64("size", size))

	return nil
}
