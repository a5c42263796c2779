// Package http exposes the upload pipeline over HTTP: batch upload,
// listing and download of stored files.
package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/FileIngestGo/internal/domain"
	"github.com/utafrali/FileIngestGo/internal/storage"
	"github.com/utafrali/FileIngestGo/pkg/httputil"
)

// uploadFormField is the multipart field carrying the files of a batch.
const uploadFormField = "files"

// maxMultipartMemory bounds the in-memory part of multipart parsing;
// larger parts spill to temp files.
const maxMultipartMemory = 32 << 20

// Uploader is the pipeline surface the handler needs.
type Uploader interface {
	Upload(ctx context.Context, files []domain.UploadFile) (*domain.BatchResult, error)
	Download(ctx context.Context, key string) (*storage.Object, error)
	List(ctx context.Context) ([]storage.ObjectInfo, error)
}

// FileHandler serves the file upload endpoints.
type FileHandler struct {
	uploader Uploader
	logger   *slog.Logger
}

func NewFileHandler(uploader Uploader, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		uploader: uploader,
		logger:   logger.With(slog.String("component", "file_handler")),
	}
}

// Upload handles POST /api/v1/files. The response is always the full batch
// result; partial failure is expressed per item, not via the status code.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "request is not valid multipart form data"},
		})
		return
	}
	defer func() {
		// Removes the spilled temp files.
		_ = r.MultipartForm.RemoveAll()
	}()

	headers := r.MultipartForm.File[uploadFormField]
	if len(headers) == 0 {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "no files submitted in field " + strconv.Quote(uploadFormField)},
		})
		return
	}

	files := make([]domain.UploadFile, 0, len(headers))
	for _, fh := range headers {
		files = append(files, &multipartFile{header: fh})
	}

	result, err := h.uploader.Upload(r.Context(), files)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// List handles GET /api/v1/files.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	infos, err := h.uploader.List(r.Context())
	if err != nil {
		h.writeStorageError(w, r, err)
		return
	}

	entries := make([]listEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, listEntry{
			Key:          info.Key,
			FileName:     info.FileName,
			LastModified: info.LastModified.UTC().Format(time.RFC3339),
		})
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: entries})
}

type listEntry struct {
	Key          string `json:"key"`
	FileName     string `json:"file_name"`
	LastModified string `json:"last_modified_utc"`
}

// Download handles GET /api/v1/files/{key...} and streams the stored
// content with its recorded metadata in headers.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")

	obj, err := h.uploader.Download(r.Context(), key)
	if err != nil {
		h.writeStorageError(w, r, err)
		return
	}
	defer obj.Body.Close()

	if obj.Info.ContentType != "" {
		w.Header().Set("Content-Type", obj.Info.ContentType)
	}
	if obj.Info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Info.Size, 10))
	}
	if obj.Info.ETag != "" {
		w.Header().Set("ETag", obj.Info.ETag)
	}
	if obj.Info.FileName != "" {
		w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(filepath.Base(obj.Info.FileName)))
	}
	if obj.Info.TrackingID != "" {
		w.Header().Set("X-Tracking-Id", obj.Info.TrackingID)
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, obj.Body); err != nil {
		h.logger.ErrorContext(r.Context(), "streaming blob body failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

// writeStorageError renders a typed storage error with the HTTP status its
// domain code implies.
func (h *FileHandler) writeStorageError(w http.ResponseWriter, r *http.Request, err error) {
	var serr *domain.StorageError
	if !errors.As(err, &serr) {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, storageErrorStatus(serr.Code), httputil.Response{
		Error: &httputil.ErrorResponse{Code: string(serr.Code), Message: serr.Message},
	})
}

func storageErrorStatus(code domain.ErrorCode) int {
	switch code {
	case domain.BlobNotFound, domain.BlobContainerNotFound, domain.QueueNotFound, domain.QueueMessageNotFound:
		return http.StatusNotFound
	case domain.BlobAlreadyExists, domain.QueueAlreadyExists:
		return http.StatusConflict
	case domain.BlobValidationFailed, domain.QueueValidationFailed:
		return http.StatusBadRequest
	case domain.BlobUnauthorized, domain.QueueUnauthorized:
		return http.StatusForbidden
	case domain.BlobThrottled, domain.QueueThrottled:
		return http.StatusTooManyRequests
	case domain.BlobUnavailable, domain.QueueUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// multipartFile adapts one multipart file header to the pipeline's upload
// capability.
type multipartFile struct {
	header *multipart.FileHeader
}

func (f *multipartFile) FileName() string {
	return f.header.Filename
}

func (f *multipartFile) ContentType() string {
	return f.header.Header.Get("Content-Type")
}

func (f *multipartFile) Size() int64 {
	return f.header.Size
}

func (f *multipartFile) Extension() string {
	return strings.ToLower(filepath.Ext(f.header.Filename))
}

func (f *multipartFile) Open() (io.ReadCloser, error) {
	return f.header.Open()
}
