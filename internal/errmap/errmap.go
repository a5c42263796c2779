// Package errmap translates provider-level storage failures into the closed
// set of domain error codes. The mapping is total: every operation and every
// provider error, including nil, yields exactly one code.
package errmap

import (
	"fmt"

	"github.com/utafrali/FileIngestGo/internal/domain"
)

// Operation identifies which storage call produced a failure. The not-found
// default and the generic code at the end of the precedence chain depend
// on it.
type Operation int

const (
	OpBlobUpload Operation = iota
	OpBlobDownload
	OpBlobList
	OpQueueSend
	OpQueueReceive
)

func (op Operation) String() string {
	switch op {
	case OpBlobUpload:
		return "blob_upload"
	case OpBlobDownload:
		return "blob_download"
	case OpBlobList:
		return "blob_list"
	case OpQueueSend:
		return "queue_send"
	case OpQueueReceive:
		return "queue_receive"
	default:
		return "unknown"
	}
}

// ProviderError carries the raw failure shape reported by a storage backend:
// an HTTP-like status and an optional provider-specific code string. Backends
// construct these from driver errors; nothing outside this package interprets
// the fields.
type ProviderError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider error (status %d, code %q): %v", e.Status, e.Code, e.Err)
	}
	return fmt.Sprintf("provider error (status %d, code %q): %s", e.Status, e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// codeSet groups the per-operation members used by the mapping chain so the
// blob and queue families share one precedence implementation.
type codeSet struct {
	alreadyExistsCodes map[string]struct{}
	alreadyExists      domain.ErrorCode
	notFoundCodes      map[string]domain.ErrorCode
	notFoundDefault    domain.ErrorCode
	unauthorized       domain.ErrorCode
	throttled          domain.ErrorCode
	unavailable        domain.ErrorCode
	generic            domain.ErrorCode
	fallback           domain.ErrorCode
}

func codes(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

var (
	blobAlreadyExistsCodes = codes("BlobAlreadyExists", "ResourceAlreadyExists")
	blobNotFoundCodes      = map[string]domain.ErrorCode{
		"BlobNotFound":      domain.BlobNotFound,
		"ContainerNotFound": domain.BlobContainerNotFound,
	}

	queueAlreadyExistsCodes = codes("QueueAlreadyExists", "ResourceAlreadyExists")
	queueNotFoundCodes      = map[string]domain.ErrorCode{
		"QueueNotFound":   domain.QueueNotFound,
		"MessageNotFound": domain.QueueMessageNotFound,
	}
)

func blobSet(notFoundDefault, generic domain.ErrorCode) codeSet {
	return codeSet{
		alreadyExistsCodes: blobAlreadyExistsCodes,
		alreadyExists:      domain.BlobAlreadyExists,
		notFoundCodes:      blobNotFoundCodes,
		notFoundDefault:    notFoundDefault,
		unauthorized:       domain.BlobUnauthorized,
		throttled:          domain.BlobThrottled,
		unavailable:        domain.BlobUnavailable,
		generic:            generic,
		fallback:           domain.BlobOperationFailed,
	}
}

func queueSet(generic domain.ErrorCode) codeSet {
	return codeSet{
		alreadyExistsCodes: queueAlreadyExistsCodes,
		alreadyExists:      domain.QueueAlreadyExists,
		notFoundCodes:      queueNotFoundCodes,
		notFoundDefault:    domain.QueueNotFound,
		unauthorized:       domain.QueueUnauthorized,
		throttled:          domain.QueueThrottled,
		unavailable:        domain.QueueUnavailable,
		generic:            generic,
		fallback:           domain.QueueOperationFailed,
	}
}

func setFor(op Operation) codeSet {
	switch op {
	case OpBlobUpload:
		return blobSet(domain.BlobContainerNotFound, domain.BlobUploadFailed)
	case OpBlobDownload:
		return blobSet(domain.BlobNotFound, domain.BlobDownloadFailed)
	case OpBlobList:
		return blobSet(domain.BlobContainerNotFound, domain.BlobOperationFailed)
	case OpQueueSend:
		return queueSet(domain.QueueSendingFailed)
	case OpQueueReceive:
		return queueSet(domain.QueueReceivingFailed)
	default:
		return blobSet(domain.BlobContainerNotFound, domain.BlobOperationFailed)
	}
}

// Map resolves one provider failure to the single domain error code for the
// given operation. Rules apply in a fixed order: conflict first, then the
// fine-grained not-found codes, auth, throttling, server-side faults, then
// the operation-specific generic code. A nil error maps to the family's
// operation-failed fallback since callers should not reach Map on success.
func Map(op Operation, perr *ProviderError) domain.ErrorCode {
	set := setFor(op)

	if perr == nil {
		return set.fallback
	}

	if _, conflict := set.alreadyExistsCodes[perr.Code]; conflict || perr.Status == 409 {
		return set.alreadyExists
	}

	switch {
	case perr.Status == 404:
		if code, ok := set.notFoundCodes[perr.Code]; ok {
			return code
		}
		return set.notFoundDefault
	case perr.Status == 401 || perr.Status == 403:
		return set.unauthorized
	case perr.Status == 429:
		return set.throttled
	case perr.Status >= 500:
		return set.unavailable
	default:
		return set.generic
	}
}
