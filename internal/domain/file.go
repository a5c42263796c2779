package domain

import (
	"io"
	"time"
)

// Allowed content types for uploads.
var AllowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/pjpeg":     true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// AllowedExtensions is the set of accepted file extensions (lowercase, with dot).
var AllowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".pdf":  true,
}

// ContentTypesForExtension maps an extension to the MIME types accepted for
// it. An extension may accept several equivalent MIME strings.
var ContentTypesForExtension = map[string][]string{
	".jpg":  {"image/jpeg", "image/pjpeg"},
	".jpeg": {"image/jpeg", "image/pjpeg"},
	".png":  {"image/png"},
	".gif":  {"image/gif"},
	".webp": {"image/webp"},
	".pdf":  {"application/pdf"},
}

// MaxFileSize is the maximum allowed file size in bytes (10 MiB).
const MaxFileSize int64 = 10 * 1024 * 1024

// MaxFileNameLength is the maximum allowed length of an uploaded filename.
const MaxFileNameLength = 255

// UploadFile is the capability an upload request exposes to the pipeline.
// Transport layers wrap their native file representation in a thin adapter;
// the orchestrator never depends on a concrete type.
type UploadFile interface {
	// FileName returns the original filename as declared by the client.
	FileName() string

	// ContentType returns the declared MIME type.
	ContentType() string

	// Size returns the declared content length in bytes.
	Size() int64

	// Extension returns the lowercase file extension including the dot,
	// or "" when the filename has none.
	Extension() string

	// Open returns a fresh readable stream of the content.
	Open() (io.ReadCloser, error)
}

// FieldError is a structured validation error attached to a failed item.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// UploadItemResult is the per-file outcome record of a batch upload.
type UploadItemResult struct {
	BlobKey     string       `json:"blob_key,omitempty"`
	TrackingID  string       `json:"tracking_id,omitempty"`
	FileName    string       `json:"file_name"`
	ContentType string       `json:"content_type"`
	UploadedAt  time.Time    `json:"uploaded_at"`
	Blob        BlobOutcome  `json:"blob"`
	Queue       QueueOutcome `json:"queue"`
	Errors      []FieldError `json:"errors,omitempty"`
}

// IsSuccess reports whether both the blob write and the queue notification
// succeeded for this item.
func (r *UploadItemResult) IsSuccess() bool {
	return r.Blob.Success && r.Queue.Success
}

// Batch summary messages.
const (
	SummaryEmpty        = "no files to upload"
	SummaryAllSucceeded = "all files uploaded successfully"
	SummaryAllFailed    = "all files failed to upload"
	SummaryPartial      = "some files failed to upload"
)

// BatchResult is the orchestrator's return value: one result per input item,
// in input order, plus a three-way summary message.
type BatchResult struct {
	Summary string             `json:"summary"`
	Items   []UploadItemResult `json:"items"`
}
