package dto

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/jsamuelsen11/go-todo-service/internal/domain"
)

// MaxBodyBytes is the maximum accepted request body size (1 MB).
const MaxBodyBytes = 1 << 20

const (
	contentTypeForm      = "application/x-www-form-urlencoded"
	contentTypeMultipart = "multipart/form-data"
)

// DecodeFields reads the request body into a raw field map. URL-encoded and
// multipart form bodies yield string values (first value per key, file parts
// ignored); every other body is decoded as a JSON object. An empty body
// yields an empty map. Malformed bodies are reported as
// *domain.ValidationError.
func DecodeFields(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case contentTypeForm:
		if err := r.ParseForm(); err != nil {
			return nil, bodyError("invalid form body")
		}
		return firstValues(r.PostForm), nil
	case contentTypeMultipart:
		if err := r.ParseMultipartForm(MaxBodyBytes); err != nil {
			return nil, bodyError("invalid multipart body")
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()
		return firstValues(r.MultipartForm.Value), nil
	default:
		return decodeJSON(r)
	}
}

func firstValues(form map[string][]string) map[string]any {
	fields := make(map[string]any, len(form))
	for key, values := range form {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}
	return fields
}

func decodeJSON(r *http.Request) (map[string]any, error) {
	fields := make(map[string]any)

	err := json.NewDecoder(r.Body).Decode(&fields)
	switch {
	case err == nil:
		return fields, nil
	case errors.Is(err, io.EOF):
		return fields, nil
	default:
		return nil, bodyError("invalid JSON")
	}
}

func bodyError(msg string) error {
	return &domain.ValidationError{Fields: map[string]string{"body": msg}}
}
