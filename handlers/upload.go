package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/kevinaaaquil/bookreflect/backend/apperr"
)

const contentTypeEPUB = "application/epub+zip"

// upload is a single file read from the multipart field "file".
type upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// readUpload reads the "file" part of a multipart request, capped at maxBytes. A missing
// or generic part content type is sniffed from the data.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (*upload, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Validation("file is too large")
		}
		return nil, apperr.Validation("failed to parse multipart form")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, apperr.Validation("missing file")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperr.Validation("failed to read file")
	}
	ct := header.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	return &upload{Filename: header.Filename, ContentType: ct, Data: data}, nil
}

func (u *upload) isEPUB() bool {
	ext := strings.ToLower(filepath.Ext(u.Filename))
	return ext == ".epub" || strings.HasPrefix(u.ContentType, contentTypeEPUB)
}
