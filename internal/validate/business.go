package validate

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/utafrali/FileIngestGo/internal/domain"
)

// illegalNameRunes are the punctuation characters rejected in filenames on
// top of control characters.
const illegalNameRunes = `\#%*:|"<>?`

// Business runs the content-policy checks on an item's declared metadata:
// filename shape, content-type allow-list, extension allow-list, the
// extension/MIME pairing, and the size ceiling. A rule is skipped when its
// field is blank, since the structural checks already report blank fields.
type Business struct{}

func NewBusiness() *Business {
	return &Business{}
}

// Check evaluates every business rule and returns the aggregated failures,
// or nil when the item passes.
func (b *Business) Check(file domain.UploadFile) *ValidationError {
	var fields []domain.FieldError

	name := strings.TrimSpace(file.FileName())
	if name != "" {
		fields = append(fields, checkFileName(name)...)
	}

	contentType := strings.TrimSpace(file.ContentType())
	if contentType != "" && !domain.AllowedContentTypes[strings.ToLower(contentType)] {
		fields = append(fields, domain.FieldError{
			Field:   "contentType",
			Message: fmt.Sprintf("content type %q is not allowed", contentType),
		})
	}

	ext := strings.ToLower(strings.TrimSpace(file.Extension()))
	if ext != "" && !domain.AllowedExtensions[ext] {
		fields = append(fields, domain.FieldError{
			Field:   "extension",
			Message: fmt.Sprintf("extension %q is not allowed", ext),
		})
	}

	if contentType != "" && ext != "" {
		if accepted, ok := domain.ContentTypesForExtension[ext]; ok && !slices.Contains(accepted, strings.ToLower(contentType)) {
			fields = append(fields, domain.FieldError{
				Field:   "contentType",
				Message: fmt.Sprintf("content type %q does not match extension %q", contentType, ext),
			})
		}
	}

	if file.Size() > domain.MaxFileSize {
		fields = append(fields, domain.FieldError{
			Field:   "size",
			Message: fmt.Sprintf("file size exceeds the limit of %d bytes", domain.MaxFileSize),
		})
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func checkFileName(name string) []domain.FieldError {
	var fields []domain.FieldError

	if name == "." || name == ".." {
		fields = append(fields, domain.FieldError{
			Field:   "fileName",
			Message: "file name must not be a relative path segment",
		})
	}

	if strings.ContainsFunc(name, unicode.IsControl) {
		fields = append(fields, domain.FieldError{
			Field:   "fileName",
			Message: "file name must not contain control characters",
		})
	}

	if strings.ContainsAny(name, illegalNameRunes) {
		fields = append(fields, domain.FieldError{
			Field:   "fileName",
			Message: fmt.Sprintf("file name must not contain any of %s", illegalNameRunes),
		})
	}

	if len(name) > domain.MaxFileNameLength {
		fields = append(fields, domain.FieldError{
			Field:   "fileName",
			Message: fmt.Sprintf("file name exceeds the limit of %d characters", domain.MaxFileNameLength),
		})
	}

	return fields
}
