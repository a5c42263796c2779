package validate

import (
	"fmt"
	"io"

	"github.com/utafrali/FileIngestGo/internal/domain"
)

// Stream runs the content-stream checks that need the opened body rather
// than the declared metadata.
type Stream struct{}

func NewStream() *Stream {
	return &Stream{}
}

// Check validates the opened content stream against the declared size. A
// nil stream fails immediately. A seekable stream is measured end to end
// and repositioned to the start so the upload can consume it from byte
// zero; non-seekable streams skip the length check since measuring would
// consume them.
func (s *Stream) Check(body io.Reader, declaredSize int64) *ValidationError {
	if body == nil {
		return &ValidationError{Fields: []domain.FieldError{{
			Field:   "stream",
			Message: "content stream is missing",
		}}}
	}

	seeker, ok := body.(io.Seeker)
	if !ok {
		return nil
	}

	length, err := seeker.Seek(0, io.SeekEnd)
	if err != nil {
		return &ValidationError{Fields: []domain.FieldError{{
			Field:   "stream",
			Message: "content stream is not readable",
		}}}
	}

	var fields []domain.FieldError
	if _, err := seeker.Seek(0, io.SeekStart); err != nil {
		fields = append(fields, domain.FieldError{
			Field:   "stream",
			Message: "content stream could not be rewound",
		})
	}
	if length != declaredSize {
		fields = append(fields, domain.FieldError{
			Field:   "stream",
			Message: fmt.Sprintf("content length %d does not match declared size %d", length, declaredSize),
		})
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
