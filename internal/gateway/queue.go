package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/utafrali/FileIngestGo/internal/domain"
	"github.com/utafrali/FileIngestGo/internal/errmap"
	"github.com/utafrali/FileIngestGo/internal/queue"
)

// notificationSchemaVersion is the current wire schema of upload
// notifications. Consumers skip messages with a version they do not know.
const notificationSchemaVersion = 1

// Notification is the wire message published after a successful blob write.
type Notification struct {
	BlobName      string `json:"blobName"`
	TrackingID    string `json:"trackingId"`
	SchemaVersion int    `json:"schemaVersion"`
}

// Queue publishes upload notifications through a broker.
type Queue struct {
	broker queue.Broker
	logger *slog.Logger
}

func NewQueue(broker queue.Broker, logger *slog.Logger) *Queue {
	return &Queue{
		broker: broker,
		logger: logger.With(slog.String("component", "queue_gateway")),
	}
}

// Enqueue publishes one upload notification and reports the result as an
// outcome. It never returns an error: validation, serialization and broker
// failures all land in the outcome with a domain error code.
func (g *Queue) Enqueue(ctx context.Context, blobName, trackingID string) domain.QueueOutcome {
	if strings.TrimSpace(blobName) == "" || strings.TrimSpace(trackingID) == "" {
		return domain.QueueFailure(domain.QueueValidationFailed, queueFailureMessage)
	}

	payload, err := json.Marshal(Notification{
		BlobName:      blobName,
		TrackingID:    trackingID,
		SchemaVersion: notificationSchemaVersion,
	})
	if err != nil {
		g.logger.ErrorContext(ctx, "notification serialization failed",
			slog.String("blob_name", blobName),
			slog.String("error", err.Error()))
		return domain.QueueFailure(domain.QueueSerializationError, queueFailureMessage)
	}

	receipt, err := g.broker.Send(ctx, blobName, payload)
	if err != nil {
		code := g.mapError(ctx, blobName, err)
		return domain.QueueFailure(code, queueFailureMessage)
	}

	return domain.QueueSuccess(receipt.MessageID, receipt.InsertedAt.UTC())
}

func (g *Queue) mapError(ctx context.Context, blobName string, err error) domain.ErrorCode {
	var perr *errmap.ProviderError
	if !errors.As(err, &perr) {
		g.logger.ErrorContext(ctx, "unexpected queue broker failure",
			slog.String("blob_name", blobName),
			slog.String("error", err.Error()))
		return domain.QueueStorageError
	}

	code := errmap.Map(errmap.OpQueueSend, perr)
	g.logger.ErrorContext(ctx, "queue send failed",
		slog.String("blob_name", blobName),
		slog.String("error_code", string(code)),
		slog.Int("provider_status", perr.Status),
		slog.String("provider_code", perr.Code),
		slog.String("error", perr.Error()))
	return code
}
