package v1

import (
	"errors"
	"io"
	"net/http"

	"go-profile-backend/internal/domain"
	"go-profile-backend/pkg/apperror"
	"go-profile-backend/pkg/storage"

	"github.com/gin-gonic/gin"
)

// formDataField carries the whole item as JSON in multipart requests
const formDataField = "data"

// formFields collects multipart item fields. A "data" field holding a JSON
// object wins over individual text fields.
func formFields(c *gin.Context) (domain.Fields, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperror.BadRequest("Invalid multipart form")
	}

	if raw := form.Value[formDataField]; len(raw) > 0 {
		fields, err := domain.DecodeFields([]byte(raw[0]))
		if err != nil {
			return nil, apperror.BadRequest("Form field data must be a JSON object")
		}
		return fields, nil
	}

	fields := make(domain.Fields, len(form.Value))
	for key, values := range form.Value {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}
	return fields, nil
}

// formUpload reads one optional multipart file. ok is false when the field
// is absent.
func formUpload(c *gin.Context, field string, allowDocuments bool) (storage.Upload, bool, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return storage.Upload{}, false, nil
	}
	if err != nil {
		return storage.Upload{}, false, apperror.BadRequest("Invalid multipart form")
	}

	f, err := fh.Open()
	if err != nil {
		return storage.Upload{}, false, apperror.BadRequest("Could not read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return storage.Upload{}, false, apperror.BadRequest("Could not read uploaded file")
	}
	return storage.Upload{Filename: fh.Filename, Data: data, AllowDocuments: allowDocuments}, true, nil
}
