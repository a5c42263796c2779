// Package memory implements an in-memory blob store backend, used in tests
// and local development.
package memory

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/utafrali/FileIngestGo/internal/errmap"
	"github.com/utafrali/FileIngestGo/internal/storage"
)

type blob struct {
	data        []byte
	contentType string
	metadata    map[string]string
	etag        string
	modified    time.Time
}

// Backend keeps blobs in a map guarded by a mutex.
type Backend struct {
	mu    sync.Mutex
	blobs map[string]blob

	// FailWith, when set, is returned by every call. Tests use it to
	// simulate backend outages.
	FailWith *errmap.ProviderError
}

func New() *Backend {
	return &Backend{blobs: make(map[string]blob)}
}

func (b *Backend) Put(ctx context.Context, in storage.PutInput) (*storage.PutResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.FailWith != nil {
		return nil, b.FailWith
	}

	if _, exists := b.blobs[in.Key]; exists {
		return nil, &errmap.ProviderError{
			Status:  409,
			Code:    "BlobAlreadyExists",
			Message: fmt.Sprintf("blob %q already exists", in.Key),
		}
	}

	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, &errmap.ProviderError{Status: 500, Message: "reading blob content", Err: err}
	}

	sum := md5.Sum(data)
	stored := blob{
		data:        data,
		contentType: in.ContentType,
		metadata:    cloneMeta(in.Metadata),
		etag:        hex.EncodeToString(sum[:]),
		modified:    time.Now().UTC(),
	}
	b.blobs[in.Key] = stored

	return &storage.PutResult{ETag: stored.etag, LastModified: stored.modified}, nil
}

func (b *Backend) Get(ctx context.Context, key string) (*storage.Object, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.FailWith != nil {
		return nil, b.FailWith
	}

	stored, ok := b.blobs[key]
	if !ok {
		return nil, &errmap.ProviderError{
			Status:  404,
			Code:    "BlobNotFound",
			Message: fmt.Sprintf("blob %q not found", key),
		}
	}

	return &storage.Object{
		Info: infoFor(key, stored),
		Body: io.NopCloser(bytes.NewReader(stored.data)),
	}, nil
}

func (b *Backend) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.FailWith != nil {
		return nil, b.FailWith
	}

	var infos []storage.ObjectInfo
	for key, stored := range b.blobs {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, infoFor(key, stored))
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })

	return infos, nil
}

// Len reports the number of stored blobs.
func (b *Backend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.blobs)
}

func infoFor(key string, stored blob) storage.ObjectInfo {
	return storage.ObjectInfo{
		Key:          key,
		FileName:     stored.metadata[storage.MetaFileName],
		TrackingID:   stored.metadata[storage.MetaTrackingID],
		ContentType:  stored.contentType,
		Size:         int64(len(stored.data)),
		ETag:         stored.etag,
		LastModified: stored.modified,
	}
}

func cloneMeta(meta map[string]string) map[string]string {
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
