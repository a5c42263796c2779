package postgres

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/FileIngestGo/internal/errmap"
	"github.com/utafrali/FileIngestGo/internal/storage"
	"github.com/utafrali/FileIngestGo/pkg/database"
)

func newBackend(t *testing.T) (*Backend, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return New(mock), mock
}

func providerErr(t *testing.T, err error) *errmap.ProviderError {
	t.Helper()

	var perr *errmap.ProviderError
	require.ErrorAs(t, err, &perr)
	return perr
}

func TestPut_Success(t *testing.T) {
	backend, mock := newBackend(t)

	now := time.Now().UTC()
	meta := map[string]string{storage.MetaFileName: "a.png", storage.MetaTrackingID: "t-1"}

	mock.ExpectQuery("INSERT INTO blobs").
		WithArgs("photos/20260829/t-1-a.png", []byte("data"), "image/png", int64(4), meta, "8d777f385d3dfec8815d20f7496026dc").
		WillReturnRows(pgxmock.NewRows([]string{"last_modified"}).AddRow(now))

	res, err := backend.Put(context.Background(), storage.PutInput{
		Key:         "photos/20260829/t-1-a.png",
		ContentType: "image/png",
		Size:        4,
		Metadata:    meta,
		Body:        bytes.NewReader([]byte("data")),
	})
	require.NoError(t, err)

	assert.Equal(t, "8d777f385d3dfec8815d20f7496026dc", res.ETag)
	assert.Equal(t, now, res.LastModified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPut_ExistingKeyConflicts(t *testing.T) {
	backend, mock := newBackend(t)

	mock.ExpectQuery("INSERT INTO blobs").
		WithArgs("photos/k", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"last_modified"}))

	_, err := backend.Put(context.Background(), storage.PutInput{
		Key:  "photos/k",
		Body: bytes.NewReader([]byte("data")),
	})

	perr := providerErr(t, err)
	assert.Equal(t, 409, perr.Status)
	assert.Equal(t, "BlobAlreadyExists", perr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPut_UndefinedTableIsContainerNotFound(t *testing.T) {
	backend, mock := newBackend(t)

	mock.ExpectQuery("INSERT INTO blobs").
		WithArgs("photos/k", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "42P01"})

	_, err := backend.Put(context.Background(), storage.PutInput{
		Key:  "photos/k",
		Body: bytes.NewReader(nil),
	})

	perr := providerErr(t, err)
	assert.Equal(t, 404, perr.Status)
	assert.Equal(t, "ContainerNotFound", perr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPut_AuthFailure(t *testing.T) {
	backend, mock := newBackend(t)

	mock.ExpectQuery("INSERT INTO blobs").
		WithArgs("photos/k", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "28P01"})

	_, err := backend.Put(context.Background(), storage.PutInput{
		Key:  "photos/k",
		Body: bytes.NewReader(nil),
	})

	assert.Equal(t, 401, providerErr(t, err).Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPut_UnreadableBody(t *testing.T) {
	backend, _ := newBackend(t)

	_, err := backend.Put(context.Background(), storage.PutInput{
		Key:  "photos/k",
		Body: &failingReader{},
	})

	assert.Equal(t, 500, providerErr(t, err).Status)
}

func TestGet_Success(t *testing.T) {
	backend, mock := newBackend(t)

	now := time.Now().UTC()
	meta := map[string]string{storage.MetaFileName: "a.png", storage.MetaTrackingID: "t-1"}

	mock.ExpectQuery("SELECT data, content_type").
		WithArgs("photos/k").
		WillReturnRows(pgxmock.NewRows([]string{"data", "content_type", "size", "metadata", "etag", "last_modified"}).
			AddRow([]byte("data"), "image/png", int64(4), meta, "etag-1", now))

	obj, err := backend.Get(context.Background(), "photos/k")
	require.NoError(t, err)
	defer obj.Body.Close()

	assert.Equal(t, "photos/k", obj.Info.Key)
	assert.Equal(t, "a.png", obj.Info.FileName)
	assert.Equal(t, "t-1", obj.Info.TrackingID)
	assert.Equal(t, "image/png", obj.Info.ContentType)

	body, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "data", string(body))
}

func TestGet_MissingKey(t *testing.T) {
	backend, mock := newBackend(t)

	mock.ExpectQuery("SELECT data, content_type").
		WithArgs("photos/missing").
		WillReturnRows(pgxmock.NewRows([]string{"data", "content_type", "size", "metadata", "etag", "last_modified"}))

	_, err := backend.Get(context.Background(), "photos/missing")

	perr := providerErr(t, err)
	assert.Equal(t, 404, perr.Status)
	assert.Equal(t, "BlobNotFound", perr.Code)
}

func TestList_Success(t *testing.T) {
	backend, mock := newBackend(t)

	now := time.Now().UTC()

	mock.ExpectQuery("SELECT key, content_type").
		WithArgs("photos/").
		WillReturnRows(pgxmock.NewRows([]string{"key", "content_type", "size", "metadata", "etag", "last_modified"}).
			AddRow("photos/a", "image/png", int64(4), map[string]string{storage.MetaFileName: "a.png"}, "e1", now).
			AddRow("photos/b", "image/gif", int64(9), map[string]string{}, "e2", now))

	infos, err := backend.List(context.Background(), "photos/")
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, "photos/a", infos[0].Key)
	assert.Equal(t, "a.png", infos[0].FileName)
	assert.Equal(t, "photos/b", infos[1].Key)
	assert.Empty(t, infos[1].FileName)
}

func TestList_QueryError(t *testing.T) {
	backend, mock := newBackend(t)

	mock.ExpectQuery("SELECT key, content_type").
		WithArgs("photos/").
		WillReturnError(errors.New("connection reset"))

	_, err := backend.List(context.Background(), "photos/")
	assert.Equal(t, 500, providerErr(t, err).Status)
}

type failingReader struct{}

func (*failingReader) Read([]byte) (int, error) {
	return 0, errors.New("read failed")
}
