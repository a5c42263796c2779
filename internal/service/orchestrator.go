// Package service implements the batch upload orchestration: per-item
// validation, blob write, queue notification and the batch summary. Only
// the batch-size ceiling fails the whole request; every other failure is
// recorded on its item.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/FileIngestGo/internal/domain"
	"github.com/utafrali/FileIngestGo/internal/gateway"
	"github.com/utafrali/FileIngestGo/internal/storage"
	"github.com/utafrali/FileIngestGo/internal/validate"
	apperrors "github.com/utafrali/FileIngestGo/pkg/errors"
)

// BlobGateway is the write-and-read blob surface the orchestrator uses.
type BlobGateway interface {
	Upload(ctx context.Context, in gateway.BlobUpload) domain.BlobOutcome
	Download(ctx context.Context, key string) (*storage.Object, error)
	List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error)
}

// QueueGateway publishes upload notifications.
type QueueGateway interface {
	Enqueue(ctx context.Context, blobName, trackingID string) domain.QueueOutcome
}

// Config holds the orchestrator settings.
type Config struct {
	// KeyPrefix is the first segment of every generated blob key.
	KeyPrefix string

	// MaxBatchSize is the per-request ceiling on the number of files.
	MaxBatchSize int
}

// Orchestrator runs the upload pipeline for a batch of files.
type Orchestrator struct {
	blob      BlobGateway
	queue     QueueGateway
	technical *validate.Technical
	business  *validate.Business
	stream    *validate.Stream
	cfg       Config
	logger    *slog.Logger
	metrics   *Metrics

	now func() time.Time
}

func NewOrchestrator(blob BlobGateway, queue QueueGateway, cfg Config, logger *slog.Logger, metrics *Metrics) *Orchestrator {
	return &Orchestrator{
		blob:      blob,
		queue:     queue,
		technical: validate.NewTechnical(),
		business:  validate.NewBusiness(),
		stream:    validate.NewStream(),
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "upload_orchestrator")),
		metrics:   metrics,
		now:       time.Now,
	}
}

// Upload runs the pipeline for every file in the batch and returns one
// result per file, in input order. The only error it returns is the
// batch-size ceiling; everything else is reported per item.
func (o *Orchestrator) Upload(ctx context.Context, files []domain.UploadFile) (*domain.BatchResult, error) {
	if len(files) > o.cfg.MaxBatchSize {
		return nil, apperrors.BatchTooLarge(len(files), o.cfg.MaxBatchSize)
	}

	startedAt := o.now().UTC()

	items := make([]domain.UploadItemResult, 0, len(files))
	for _, file := range files {
		item := o.processFile(ctx, file, startedAt)
		o.metrics.ObserveItem(&item)
		items = append(items, item)
	}

	result := &domain.BatchResult{
		Summary: summarize(items),
		Items:   items,
	}
	o.metrics.ObserveBatch(result.Summary)

	o.logger.InfoContext(ctx, "batch processed",
		slog.Int("files", len(files)),
		slog.String("summary", result.Summary))

	return result, nil
}

// processFile runs one file through validation, the blob write and the
// queue notification. The queue step only runs after a successful blob
// write.
func (o *Orchestrator) processFile(ctx context.Context, file domain.UploadFile, startedAt time.Time) domain.UploadItemResult {
	item := domain.UploadItemResult{
		FileName:    file.FileName(),
		ContentType: file.ContentType(),
		UploadedAt:  startedAt,
	}

	if verr := validate.Merge(o.technical.Check(file), o.business.Check(file)); verr != nil {
		item.Errors = verr.Fields
		return item
	}

	body, err := file.Open()
	if err != nil {
		item.Errors = []domain.FieldError{{Field: "stream", Message: "content stream could not be opened"}}
		return item
	}
	defer body.Close()

	if verr := o.stream.Check(body, file.Size()); verr != nil {
		item.Errors = verr.Fields
		return item
	}

	item.TrackingID = uuid.NewString()
	item.BlobKey = domain.BuildKey(o.cfg.KeyPrefix, item.UploadedAt, item.TrackingID, file.FileName())

	item.Blob = o.blob.Upload(ctx, gateway.BlobUpload{
		Key:         item.BlobKey,
		FileName:    file.FileName(),
		TrackingID:  item.TrackingID,
		ContentType: file.ContentType(),
		Size:        file.Size(),
		Body:        body,
	})
	if !item.Blob.Success {
		return item
	}

	item.Queue = o.queue.Enqueue(ctx, item.BlobKey, item.TrackingID)
	return item
}

// Download retrieves one stored blob by key.
func (o *Orchestrator) Download(ctx context.Context, key string) (*storage.Object, error) {
	return o.blob.Download(ctx, key)
}

// List returns the stored blobs under the configured prefix.
func (o *Orchestrator) List(ctx context.Context) ([]storage.ObjectInfo, error) {
	return o.blob.List(ctx, o.cfg.KeyPrefix+"/")
}

func summarize(items []domain.UploadItemResult) string {
	succeeded := 0
	for i := range items {
		if items[i].IsSuccess() {
			succeeded++
		}
	}

	switch {
	case len(items) == 0:
		return domain.SummaryEmpty
	case succeeded == len(items):
		return domain.SummaryAllSucceeded
	case succeeded == 0:
		return domain.SummaryAllFailed
	default:
		return domain.SummaryPartial
	}
}
