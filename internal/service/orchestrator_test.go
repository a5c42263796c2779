package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/FileIngestGo/internal/domain"
	"github.com/utafrali/FileIngestGo/internal/errmap"
	"github.com/utafrali/FileIngestGo/internal/gateway"
	queuemem "github.com/utafrali/FileIngestGo/internal/queue/memory"
	"github.com/utafrali/FileIngestGo/internal/storage"
	storagemem "github.com/utafrali/FileIngestGo/internal/storage/memory"
	apperrors "github.com/utafrali/FileIngestGo/pkg/errors"
)

type testFile struct {
	name        string
	contentType string
	size        int64
	ext         string
	body        []byte
	openErr     error
}

func (f *testFile) FileName() string    { return f.name }
func (f *testFile) ContentType() string { return f.contentType }
func (f *testFile) Size() int64         { return f.size }
func (f *testFile) Extension() string   { return f.ext }
func (f *testFile) Open() (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return &seekCloser{Reader: bytes.NewReader(f.body)}, nil
}

// seekCloser mimics a multipart file: seekable, with a no-op Close.
type seekCloser struct {
	*bytes.Reader
}

func (*seekCloser) Close() error { return nil }

func validImage() *testFile {
	return &testFile{
		name:        "photo.png",
		contentType: "image/png",
		size:        4,
		ext:         ".png",
		body:        []byte("data"),
	}
}

// countingBlob wraps a gateway and counts Upload calls.
type countingBlob struct {
	BlobGateway
	uploads int
}

func (c *countingBlob) Upload(ctx context.Context, in gateway.BlobUpload) domain.BlobOutcome {
	c.uploads++
	return c.BlobGateway.Upload(ctx, in)
}

// countingQueue wraps a gateway and counts Enqueue calls.
type countingQueue struct {
	QueueGateway
	enqueues int
}

func (c *countingQueue) Enqueue(ctx context.Context, blobName, trackingID string) domain.QueueOutcome {
	c.enqueues++
	return c.QueueGateway.Enqueue(ctx, blobName, trackingID)
}

// flakyBlob fails the first n uploads with the given provider error, then
// delegates.
type flakyBlob struct {
	BlobGateway
	failFirst int
	failWith  domain.ErrorCode
	calls     int
}

func (f *flakyBlob) Upload(ctx context.Context, in gateway.BlobUpload) domain.BlobOutcome {
	f.calls++
	if f.calls <= f.failFirst {
		return domain.BlobFailure(f.failWith, "blob storage operation failed")
	}
	return f.BlobGateway.Upload(ctx, in)
}

type fixture struct {
	orch    *Orchestrator
	backend *storagemem.Backend
	broker  *queuemem.Broker
	blob    *countingBlob
	queue   *countingQueue
}

func newFixture(t *testing.T, mutate func(*fixture)) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &fixture{
		backend: storagemem.New(),
		broker:  queuemem.New(),
	}
	f.blob = &countingBlob{BlobGateway: gateway.NewBlob(f.backend, logger)}
	f.queue = &countingQueue{QueueGateway: gateway.NewQueue(f.broker, logger)}

	if mutate != nil {
		mutate(f)
	}

	f.orch = NewOrchestrator(f.blob, f.queue, Config{
		KeyPrefix:    "photos",
		MaxBatchSize: 5,
	}, logger, nil)

	return f
}

func TestUpload_SingleValidFile(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.orch.Upload(context.Background(), []domain.UploadFile{validImage()})
	require.NoError(t, err)

	assert.Equal(t, domain.SummaryAllSucceeded, res.Summary)
	require.Len(t, res.Items, 1)

	item := res.Items[0]
	assert.True(t, item.IsSuccess())
	assert.True(t, strings.HasPrefix(item.BlobKey, "photos/"), "key %q", item.BlobKey)
	assert.NotEmpty(t, item.TrackingID)
	assert.True(t, item.Blob.Success)
	assert.True(t, item.Queue.Success)
	assert.Len(t, f.broker.Messages(), 1)
}

func TestUpload_KeyPattern(t *testing.T) {
	f := newFixture(t, nil)
	f.orch.now = func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	}

	res, err := f.orch.Upload(context.Background(), []domain.UploadFile{validImage()})
	require.NoError(t, err)

	item := res.Items[0]
	assert.Equal(t, "photos/20260829/"+item.TrackingID+"-photo.png", item.BlobKey)
	assert.Equal(t, time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC), item.UploadedAt)
}

func TestUpload_FirstItemFailsPartialSuccess(t *testing.T) {
	var flaky *flakyBlob
	f := newFixture(t, func(f *fixture) {
		flaky = &flakyBlob{BlobGateway: f.blob.BlobGateway, failFirst: 1, failWith: domain.BlobUnavailable}
		f.blob.BlobGateway = flaky
	})

	res, err := f.orch.Upload(context.Background(), []domain.UploadFile{validImage(), validImage()})
	require.NoError(t, err)

	assert.Equal(t, domain.SummaryPartial, res.Summary)
	require.Len(t, res.Items, 2)

	failed := res.Items[0]
	assert.False(t, failed.IsSuccess())
	assert.Equal(t, domain.BlobUnavailable, failed.Blob.ErrorCode)
	assert.False(t, failed.Queue.Attempted, "queue must stay not-attempted after a blob failure")

	assert.True(t, res.Items[1].IsSuccess())
	assert.Equal(t, 1, f.queue.enqueues)
}

func TestUpload_AllItemsFail(t *testing.T) {
	f := newFixture(t, func(f *fixture) {
		f.backend.FailWith = &errmap.ProviderError{Status: 500}
	})

	res, err := f.orch.Upload(context.Background(), []domain.UploadFile{validImage(), validImage()})
	require.NoError(t, err)

	assert.Equal(t, domain.SummaryAllFailed, res.Summary)
	assert.Equal(t, 0, f.queue.enqueues)
}

func TestUpload_QueueNotFoundKeepsBlob(t *testing.T) {
	f := newFixture(t, func(f *fixture) {
		f.broker.FailWith = &errmap.ProviderError{Status: 404, Code: "QueueNotFound"}
	})

	res, err := f.orch.Upload(context.Background(), []domain.UploadFile{validImage()})
	require.NoError(t, err)

	item := res.Items[0]
	assert.False(t, item.IsSuccess())
	assert.True(t, item.Blob.Success)
	assert.Equal(t, domain.QueueNotFound, item.Queue.ErrorCode)

	// The stored blob survives the failed notification.
	assert.Equal(t, 1, f.backend.Len())
}

func TestUpload_InvalidItemSkipsGateways(t *testing.T) {
	f := newFixture(t, nil)

	bad := validImage()
	bad.contentType = "text/html"

	res, err := f.orch.Upload(context.Background(), []domain.UploadFile{bad, validImage()})
	require.NoError(t, err)

	assert.Equal(t, domain.SummaryPartial, res.Summary)

	rejected := res.Items[0]
	assert.NotEmpty(t, rejected.Errors)
	assert.False(t, rejected.Blob.Attempted)
	assert.False(t, rejected.Queue.Attempted)
	assert.Empty(t, rejected.BlobKey)

	assert.Equal(t, 1, f.blob.uploads)
	assert.Equal(t, 1, f.queue.enqueues)
}

func TestUpload_AggregatesAllValidationErrors(t *testing.T) {
	f := newFixture(t, nil)

	bad := &testFile{name: "bad#name", contentType: "text/html", size: -1, ext: ".exe"}

	res, err := f.orch.Upload(context.Background(), []domain.UploadFile{bad})
	require.NoError(t, err)

	fields := make(map[string]bool)
	for _, fe := range res.Items[0].Errors {
		fields[fe.Field] = true
	}
	assert.True(t, fields["fileName"])
	assert.True(t, fields["contentType"])
	assert.True(t, fields["extension"])
	assert.True(t, fields["size"])
}

func TestUpload_OpenFailureIsStreamError(t *testing.T) {
	f := newFixture(t, nil)

	bad := validImage()
	bad.openErr = errors.New("gone")

	res, err := f.orch.Upload(context.Background(), []domain.UploadFile{bad})
	require.NoError(t, err)

	item := res.Items[0]
	require.Len(t, item.Errors, 1)
	assert.Equal(t, "stream", item.Errors[0].Field)
	assert.False(t, item.Blob.Attempted)
	assert.Equal(t, 0, f.blob.uploads)
}

func TestUpload_StreamLengthMismatch(t *testing.T) {
	f := newFixture(t, nil)

	bad := validImage()
	bad.size = 999

	res, err := f.orch.Upload(context.Background(), []domain.UploadFile{bad})
	require.NoError(t, err)

	item := res.Items[0]
	require.NotEmpty(t, item.Errors)
	assert.Equal(t, "stream", item.Errors[0].Field)
	assert.Equal(t, 0, f.blob.uploads)
}

func TestUpload_BatchCeiling(t *testing.T) {
	f := newFixture(t, nil)

	files := make([]domain.UploadFile, 6)
	for i := range files {
		files[i] = validImage()
	}

	res, err := f.orch.Upload(context.Background(), files)
	require.Error(t, err)
	assert.Nil(t, res)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "BATCH_TOO_LARGE", appErr.Code)

	assert.Equal(t, 0, f.blob.uploads, "no blob call may happen for an oversized batch")
	assert.Equal(t, 0, f.queue.enqueues, "no queue call may happen for an oversized batch")
}

func TestUpload_EmptyBatch(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.orch.Upload(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, domain.SummaryEmpty, res.Summary)
}

func TestUpload_ResultsKeepInputOrder(t *testing.T) {
	f := newFixture(t, nil)

	names := []string{"a.png", "b.png", "c.png"}
	files := make([]domain.UploadFile, 0, len(names))
	for _, n := range names {
		file := validImage()
		file.name = n
		files = append(files, file)
	}

	res, err := f.orch.Upload(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	for i, n := range names {
		assert.Equal(t, n, res.Items[i].FileName)
	}
}

func TestDownloadAndListDelegate(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.orch.Upload(context.Background(), []domain.UploadFile{validImage()})
	require.NoError(t, err)
	key := res.Items[0].BlobKey

	obj, err := f.orch.Download(context.Background(), key)
	require.NoError(t, err)
	obj.Body.Close()
	assert.Equal(t, "photo.png", obj.Info.FileName)

	infos, err := f.orch.List(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, key, infos[0].Key)
}

var _ storage.Backend = (*storagemem.Backend)(nil)
