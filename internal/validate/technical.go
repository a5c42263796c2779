package validate

import (
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/utafrali/FileIngestGo/internal/domain"
)

// technicalFields mirrors the declared metadata of one upload item so the
// structural checks can run as struct tags.
type technicalFields struct {
	FileName    string `field:"fileName" validate:"notblank,dotext"`
	ContentType string `field:"contentType" validate:"notblank"`
	Extension   string `field:"extension" validate:"notblank"`
	Size        int64  `field:"size" validate:"gt=0"`
}

// Technical runs the structural checks on an item's declared metadata:
// fields present and non-blank, a dot extension in the filename, and a
// positive declared size.
type Technical struct {
	validate *validator.Validate
}

func NewTechnical() *Technical {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("field")
	})

	// Registration only fails for blank tags, which are fixed here.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("dotext", func(fl validator.FieldLevel) bool {
		return filepath.Ext(strings.TrimSpace(fl.Field().String())) != ""
	})

	return &Technical{validate: v}
}

// Check validates the item's declared metadata and returns every failed
// field, or nil when all structural checks pass.
func (t *Technical) Check(file domain.UploadFile) *ValidationError {
	fields := technicalFields{
		FileName:    file.FileName(),
		ContentType: file.ContentType(),
		Extension:   file.Extension(),
		Size:        file.Size(),
	}

	err := t.validate.Struct(fields)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Fields: []domain.FieldError{{Field: "file", Message: "invalid upload metadata"}}}
	}

	out := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, domain.FieldError{
			Field:   fe.Field(),
			Message: technicalMessage(fe),
		})
	}
	return &ValidationError{Fields: out}
}

func technicalMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank":
		return "must not be blank"
	case "dotext":
		return "must include a file extension"
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "is invalid"
	}
}
