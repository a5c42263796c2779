package memory

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/FileIngestGo/internal/errmap"
	"github.com/utafrali/FileIngestGo/internal/storage"
)

func put(t *testing.T, b *Backend, key, content string) *storage.PutResult {
	t.Helper()

	res, err := b.Put(context.Background(), storage.PutInput{
		Key:         key,
		ContentType: "image/png",
		Size:        int64(len(content)),
		Metadata:    map[string]string{storage.MetaFileName: "a.png", storage.MetaTrackingID: "t-1"},
		Body:        bytes.NewReader([]byte(content)),
	})
	require.NoError(t, err)
	return res
}

func TestPutGetRoundTrip(t *testing.T) {
	b := New()

	res := put(t, b, "photos/k", "data")
	assert.NotEmpty(t, res.ETag)
	assert.False(t, res.LastModified.IsZero())

	obj, err := b.Get(context.Background(), "photos/k")
	require.NoError(t, err)
	defer obj.Body.Close()

	body, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "data", string(body))
	assert.Equal(t, "a.png", obj.Info.FileName)
	assert.Equal(t, "t-1", obj.Info.TrackingID)
}

func TestPutIsCreateOnly(t *testing.T) {
	b := New()
	put(t, b, "photos/k", "data")

	_, err := b.Put(context.Background(), storage.PutInput{
		Key:  "photos/k",
		Body: bytes.NewReader([]byte("other")),
	})

	var perr *errmap.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 409, perr.Status)
	assert.Equal(t, "BlobAlreadyExists", perr.Code)
	assert.Equal(t, 1, b.Len())
}

func TestGetMissing(t *testing.T) {
	b := New()

	_, err := b.Get(context.Background(), "photos/missing")

	var perr *errmap.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 404, perr.Status)
	assert.Equal(t, "BlobNotFound", perr.Code)
}

func TestListFiltersByPrefixAndSorts(t *testing.T) {
	b := New()
	put(t, b, "photos/b", "2")
	put(t, b, "photos/a", "1")
	put(t, b, "docs/c", "3")

	infos, err := b.List(context.Background(), "photos/")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "photos/a", infos[0].Key)
	assert.Equal(t, "photos/b", infos[1].Key)
}

func TestFailWith(t *testing.T) {
	b := New()
	b.FailWith = &errmap.ProviderError{Status: 503, Message: "down"}

	_, err := b.Put(context.Background(), storage.PutInput{Key: "k", Body: bytes.NewReader(nil)})
	var perr *errmap.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 503, perr.Status)

	_, err = b.List(context.Background(), "")
	assert.Error(t, err)
}
