package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/FileIngestGo/internal/domain"
	"github.com/utafrali/FileIngestGo/internal/errmap"
	queuemem "github.com/utafrali/FileIngestGo/internal/queue/memory"
	"github.com/utafrali/FileIngestGo/internal/storage"
	storagemem "github.com/utafrali/FileIngestGo/internal/storage/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func uploadInput(key string) BlobUpload {
	return BlobUpload{
		Key:         key,
		FileName:    "a.png",
		TrackingID:  "t-1",
		ContentType: "image/png",
		Size:        4,
		Body:        bytes.NewReader([]byte("data")),
	}
}

func TestBlobUpload_Success(t *testing.T) {
	backend := storagemem.New()
	g := NewBlob(backend, discardLogger())

	out := g.Upload(context.Background(), uploadInput("photos/k"))

	assert.True(t, out.Attempted)
	assert.True(t, out.Success)
	assert.NotEmpty(t, out.ETag)
	require.NotNil(t, out.LastModified)
	assert.Equal(t, 1, backend.Len())
}

func TestBlobUpload_BlankKeySkipsBackend(t *testing.T) {
	backend := storagemem.New()
	g := NewBlob(backend, discardLogger())

	out := g.Upload(context.Background(), uploadInput("   "))

	assert.True(t, out.Attempted)
	assert.False(t, out.Success)
	assert.Equal(t, domain.BlobValidationFailed, out.ErrorCode)
	assert.Equal(t, 0, backend.Len())
}

func TestBlobUpload_BlankFieldsSkipBackend(t *testing.T) {
	backend := storagemem.New()
	g := NewBlob(backend, discardLogger())

	for _, mutate := range []func(*BlobUpload){
		func(in *BlobUpload) { in.FileName = "" },
		func(in *BlobUpload) { in.TrackingID = " " },
		func(in *BlobUpload) { in.ContentType = "" },
	} {
		in := uploadInput("photos/k")
		mutate(&in)

		out := g.Upload(context.Background(), in)
		assert.Equal(t, domain.BlobValidationFailed, out.ErrorCode)
	}
	assert.Equal(t, 0, backend.Len())
}

func TestBlobUpload_RewindsSeekableBody(t *testing.T) {
	backend := storagemem.New()
	g := NewBlob(backend, discardLogger())

	body := bytes.NewReader([]byte("data"))
	_, err := body.Seek(0, io.SeekEnd)
	require.NoError(t, err)

	in := uploadInput("photos/k")
	in.Body = body
	require.True(t, g.Upload(context.Background(), in).Success)

	obj, err := g.Download(context.Background(), "photos/k")
	require.NoError(t, err)
	defer obj.Body.Close()

	content, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))
}

func TestBlobUpload_NilBodySkipsBackend(t *testing.T) {
	backend := storagemem.New()
	g := NewBlob(backend, discardLogger())

	in := uploadInput("photos/k")
	in.Body = nil
	out := g.Upload(context.Background(), in)

	assert.Equal(t, domain.BlobValidationFailed, out.ErrorCode)
	assert.Equal(t, 0, backend.Len())
}

func TestBlobUpload_ConflictOutcome(t *testing.T) {
	backend := storagemem.New()
	g := NewBlob(backend, discardLogger())

	require.True(t, g.Upload(context.Background(), uploadInput("photos/k")).Success)

	out := g.Upload(context.Background(), uploadInput("photos/k"))

	assert.False(t, out.Success)
	assert.Equal(t, domain.BlobAlreadyExists, out.ErrorCode)
	assert.Equal(t, blobFailureMessage, out.ErrorMessage)
}

func TestBlobUpload_OutageOutcome(t *testing.T) {
	backend := storagemem.New()
	backend.FailWith = &errmap.ProviderError{Status: 503, Message: "down"}
	g := NewBlob(backend, discardLogger())

	out := g.Upload(context.Background(), uploadInput("photos/k"))

	assert.Equal(t, domain.BlobUnavailable, out.ErrorCode)
	assert.Equal(t, blobFailureMessage, out.ErrorMessage)
}

func TestBlobDownload_Success(t *testing.T) {
	backend := storagemem.New()
	g := NewBlob(backend, discardLogger())
	require.True(t, g.Upload(context.Background(), uploadInput("photos/k")).Success)

	obj, err := g.Download(context.Background(), "photos/k")
	require.NoError(t, err)
	defer obj.Body.Close()

	assert.Equal(t, "a.png", obj.Info.FileName)
	assert.Equal(t, "t-1", obj.Info.TrackingID)
}

func TestBlobDownload_BlankKey(t *testing.T) {
	g := NewBlob(storagemem.New(), discardLogger())

	_, err := g.Download(context.Background(), "  ")

	var serr *domain.StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, domain.BlobValidationFailed, serr.Code)
}

func TestBlobDownload_NotFound(t *testing.T) {
	g := NewBlob(storagemem.New(), discardLogger())

	_, err := g.Download(context.Background(), "photos/missing")

	var serr *domain.StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, domain.BlobNotFound, serr.Code)
	assert.Equal(t, blobFailureMessage, serr.Message)
}

func TestBlobList_FileNameFallsBackToKey(t *testing.T) {
	backend := storagemem.New()
	g := NewBlob(backend, discardLogger())

	_, err := backend.Put(context.Background(), storage.PutInput{
		Key:  "photos/no-meta",
		Body: bytes.NewReader([]byte("x")),
	})
	require.NoError(t, err)

	infos, err := g.List(context.Background(), "photos/")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "photos/no-meta", infos[0].FileName)
}

func TestBlobList_OutageError(t *testing.T) {
	backend := storagemem.New()
	backend.FailWith = &errmap.ProviderError{Status: 500}
	g := NewBlob(backend, discardLogger())

	_, err := g.List(context.Background(), "photos/")

	var serr *domain.StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, domain.BlobUnavailable, serr.Code)
}

func TestQueueEnqueue_Success(t *testing.T) {
	broker := queuemem.New()
	g := NewQueue(broker, discardLogger())

	out := g.Enqueue(context.Background(), "photos/k", "t-1")

	assert.True(t, out.Success)
	assert.NotEmpty(t, out.MessageID)
	require.NotNil(t, out.InsertedAt)

	msgs := broker.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "photos/k", msgs[0].Key)

	var n Notification
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &n))
	assert.Equal(t, "photos/k", n.BlobName)
	assert.Equal(t, "t-1", n.TrackingID)
	assert.Equal(t, 1, n.SchemaVersion)
}

func TestQueueEnqueue_WireFieldNames(t *testing.T) {
	broker := queuemem.New()
	g := NewQueue(broker, discardLogger())

	require.True(t, g.Enqueue(context.Background(), "photos/k", "t-1").Success)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(broker.Messages()[0].Payload, &raw))
	assert.Contains(t, raw, "blobName")
	assert.Contains(t, raw, "trackingId")
	assert.Contains(t, raw, "schemaVersion")
}

func TestQueueEnqueue_BlankFieldsSkipBroker(t *testing.T) {
	broker := queuemem.New()
	g := NewQueue(broker, discardLogger())

	for _, pair := range [][2]string{{"", "t-1"}, {"photos/k", ""}, {" ", " "}} {
		out := g.Enqueue(context.Background(), pair[0], pair[1])
		assert.Equal(t, domain.QueueValidationFailed, out.ErrorCode)
	}
	assert.Empty(t, broker.Messages())
}

func TestQueueEnqueue_BrokerFailureOutcome(t *testing.T) {
	broker := queuemem.New()
	broker.FailWith = &errmap.ProviderError{Status: 404, Code: "QueueNotFound"}
	g := NewQueue(broker, discardLogger())

	out := g.Enqueue(context.Background(), "photos/k", "t-1")

	assert.False(t, out.Success)
	assert.Equal(t, domain.QueueNotFound, out.ErrorCode)
	assert.Equal(t, queueFailureMessage, out.ErrorMessage)
}
