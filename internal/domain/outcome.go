package domain

import "time"

// BlobOutcome records the result of one blob store write. The zero value
// means the write was never attempted; Attempted distinguishes that state
// from an attempted-and-failed write.
type BlobOutcome struct {
	Attempted    bool       `json:"attempted"`
	Success      bool       `json:"success"`
	ETag         string     `json:"etag,omitempty"`
	LastModified *time.Time `json:"last_modified_utc,omitempty"`
	ErrorCode    ErrorCode  `json:"error_code,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// QueueOutcome records the result of one queue notification. The zero value
// means enqueue was never attempted (e.g. because the blob write failed).
type QueueOutcome struct {
	Attempted    bool       `json:"attempted"`
	Success      bool       `json:"success"`
	MessageID    string     `json:"message_id,omitempty"`
	InsertedAt   *time.Time `json:"inserted_at_utc,omitempty"`
	ErrorCode    ErrorCode  `json:"error_code,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// BlobSuccess builds a successful blob outcome.
func BlobSuccess(etag string, lastModified time.Time) BlobOutcome {
	return BlobOutcome{
		Attempted:    true,
		Success:      true,
		ETag:         etag,
		LastModified: &lastModified,
	}
}

// BlobFailure builds a failed blob outcome with a domain error code.
func BlobFailure(code ErrorCode, message string) BlobOutcome {
	return BlobOutcome{
		Attempted:    true,
		ErrorCode:    code,
		ErrorMessage: message,
	}
}

// QueueSuccess builds a successful queue outcome.
func QueueSuccess(messageID string, insertedAt time.Time) QueueOutcome {
	return QueueOutcome{
		Attempted:  true,
		Success:    true,
		MessageID:  messageID,
		InsertedAt: &insertedAt,
	}
}

// QueueFailure builds a failed queue outcome with a domain error code.
func QueueFailure(code ErrorCode, message string) QueueOutcome {
	return QueueOutcome{
		Attempted:    true,
		ErrorCode:    code,
		ErrorMessage: message,
	}
}
