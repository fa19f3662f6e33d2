package transport

import (
	"errors"

	"github.com/ironpinguin/departure-monitor-sub000/internal/export"
	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
)

var (
	ErrEmptyFile            = errors.New("file is empty")
	ErrFileTooLarge         = errors.New("file exceeds the size limit")
	ErrUnsupportedExtension = errors.New("file extension is not supported")
	ErrUnsupportedMIMEType  = errors.New("file type is not supported")
	ErrInvalidEncoding      = errors.New("file is not valid UTF-8")
	ErrInvalidJSON          = errors.New("file is not valid JSON")
	ErrUnsupportedURLScheme = errors.New("url scheme is not supported")
	ErrFetchFailed          = errors.New("fetching url failed")
	ErrImportCanceled       = errors.New("import canceled")
)

// FileField is the field reported for errors about the input as a whole.
const FileField = "file"

type errorMapping struct {
	target  error
	code    models.ErrorCode
	message string
	field   string
}

var errorMappings = []errorMapping{
	{ErrFileTooLarge, models.ErrorValueOutOfRange, models.MessageFileTooLarge, FileField},
	{ErrUnsupportedExtension, models.ErrorInvalidDataType, models.MessageFileType, FileField},
	{ErrUnsupportedMIMEType, models.ErrorInvalidDataType, models.MessageFileType, FileField},
	{ErrUnsupportedURLScheme, models.ErrorInvalidDataType, models.MessageFileType, FileField},
	{ErrInvalidEncoding, models.ErrorInvalidDataType, models.MessageFileEncoding, FileField},
	{ErrEmptyFile, models.ErrorMissingRequiredField, models.MessageFileEmpty, FileField},
	{ErrInvalidJSON, models.ErrorInvalidSchema, models.MessageInvalidJSON, FileField},
	{export.ErrInconsistentMetadata, models.ErrorInvalidSchema, models.MessageInconsistentMetadata, "metadata.stopCount"},
}

// ResultFromError translates a boundary error into the validation vocabulary
// so callers handle I/O failures and invalid content alike. Unrecognized
// errors become a read failure.
func ResultFromError(err error) models.ValidationResult {
	if err == nil {
		return models.NewValidationResult(models.UnknownSchemaVersion)
	}

	ve := models.ValidationError{
		Code:     models.ErrorInvalidSchema,
		Message:  models.MessageReadFailed,
		Field:    FileField,
		Value:    models.Excerpt(err.Error()),
		Severity: models.SeverityError,
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			ve.Code = m.code
			ve.Message = m.message
			ve.Field = m.field
			break
		}
	}
	return models.InvalidResult(models.UnknownSchemaVersion, ve)
}
