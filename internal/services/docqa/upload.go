package docqa

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/deepgram/parley/internal/services/ingest"
)

var (
	// ErrMissingFile is returned when the form has no file part
	ErrMissingFile = errors.New("no file selected")
	// ErrUploadTooLarge is returned when the body exceeds the configured cap
	ErrUploadTooLarge = errors.New("upload too large")
)

const sniffLen = 512

// UploadFromRequest reads the first file of a multipart form field
func UploadFromRequest(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) (Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return Upload{}, ErrUploadTooLarge
		}
		if errors.Is(err, http.ErrMissingFile) {
			return Upload{}, ErrMissingFile
		}
		return Upload{}, fmt.Errorf("failed to read upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return Upload{}, fmt.Errorf("failed to read upload: %w", err)
	}

	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}

	return Upload{
		FileName:     header.Filename,
		DeclaredType: ingest.DeclaredType(header.Header.Get("Content-Type"), head),
		Data:         data,
	}, nil
}
