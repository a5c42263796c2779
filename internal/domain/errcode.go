package domain

import "fmt"

// ErrorCode is a stable, backend-agnostic token for one failure class.
// The set is closed: the blob family and the queue family below are the only
// values, and the error mapper is the only place that derives mapped values
// from provider failures.
type ErrorCode string

// Blob store error codes.
const (
	BlobAlreadyExists     ErrorCode = "BLOB_ALREADY_EXISTS"
	BlobNotFound          ErrorCode = "BLOB_NOT_FOUND"
	BlobContainerNotFound ErrorCode = "BLOB_CONTAINER_NOT_FOUND"
	BlobUnauthorized      ErrorCode = "BLOB_UNAUTHORIZED"
	BlobThrottled         ErrorCode = "BLOB_THROTTLED"
	BlobUnavailable       ErrorCode = "BLOB_UNAVAILABLE"
	BlobValidationFailed  ErrorCode = "BLOB_VALIDATION_FAILED"
	BlobUploadFailed      ErrorCode = "BLOB_UPLOAD_FAILED"
	BlobDownloadFailed    ErrorCode = "BLOB_DOWNLOAD_FAILED"
	BlobOperationFailed   ErrorCode = "BLOB_OPERATION_FAILED"
	BlobStorageError      ErrorCode = "BLOB_STORAGE_ERROR"
)

// Queue error codes.
const (
	QueueAlreadyExists      ErrorCode = "QUEUE_ALREADY_EXISTS"
	QueueNotFound           ErrorCode = "QUEUE_NOT_FOUND"
	QueueMessageNotFound    ErrorCode = "QUEUE_MESSAGE_NOT_FOUND"
	QueueUnauthorized       ErrorCode = "QUEUE_UNAUTHORIZED"
	QueueThrottled          ErrorCode = "QUEUE_THROTTLED"
	QueueUnavailable        ErrorCode = "QUEUE_UNAVAILABLE"
	QueueValidationFailed   ErrorCode = "QUEUE_VALIDATION_FAILED"
	QueueSendingFailed      ErrorCode = "QUEUE_SENDING_FAILED"
	QueueReceivingFailed    ErrorCode = "QUEUE_RECEIVING_FAILED"
	QueueOperationFailed    ErrorCode = "QUEUE_OPERATION_FAILED"
	QueueSerializationError ErrorCode = "QUEUE_SERIALIZATION_ERROR"
	QueueStorageError       ErrorCode = "QUEUE_STORAGE_ERROR"
)

// StorageError is the typed error raised by the read-side gateway operations
// (download, list). It carries the mapped domain code so callers can branch
// on the failure class without parsing messages.
type StorageError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
