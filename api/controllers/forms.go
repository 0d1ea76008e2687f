package controllers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/qmedica/catalog-backend/api/validators"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
)

// multipartMemory caps the in-memory portion of a multipart parse; larger
// parts spill to temp files.
const multipartMemory = 16 << 20

func parseMultipart(r *http.Request) error {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	return nil
}

// readFormFile returns the named upload's bytes and client filename. A
// missing part is not an error; it returns nil bytes so edit forms can omit
// the file to keep the current one.
func readFormFile(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", nil
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read uploaded file")
	}
	return data, header.Filename, nil
}

// readFormFiles returns every upload submitted under one repeated field.
func readFormFiles(r *http.Request, field string) ([][]byte, []string, error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}
	headers := r.MultipartForm.File[field]
	data := make([][]byte, 0, len(headers))
	names := make([]string, 0, len(headers))
	for _, header := range headers {
		bytes, err := readMultipartHeader(header)
		if err != nil {
			return nil, nil, err
		}
		data = append(data, bytes)
		names = append(names, header.Filename)
	}
	return data, names, nil
}

func readMultipartHeader(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read uploaded file")
	}
	return data, nil
}

func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

func formValuePtr(r *http.Request, key string) *string {
	value := formValue(r, key)
	if value == "" {
		return nil
	}
	return &value
}

func formDatePtr(r *http.Request, key string) (*time.Time, error) {
	raw := formValue(r, key)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, key+" must be formatted YYYY-MM-DD")
	}
	return &parsed, nil
}

func formIDPtr(r *http.Request, key string) (*uint, error) {
	raw := formValue(r, key)
	if raw == "" {
		return nil, nil
	}
	id, err := validators.ParseIDParam(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, key+" must be a positive integer id")
	}
	return &id, nil
}

// formIDList parses a repeated id field, ignoring blanks.
func formIDList(r *http.Request, key string) ([]uint, error) {
	if r.Form == nil {
		return nil, nil
	}
	values := r.Form[key]
	ids := make([]uint, 0, len(values))
	for _, raw := range values {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := validators.ParseIDParam(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, key+" must contain positive integer ids")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// queryIDList parses a repeated query-string id parameter.
func queryIDList(r *http.Request, key string) ([]uint, error) {
	values := r.URL.Query()[key]
	ids := make([]uint, 0, len(values))
	for _, raw := range values {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := validators.ParseIDParam(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, key+" must contain positive integer ids")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func queryIDPtr(r *http.Request, key string) (*uint, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	id, err := validators.ParseIDParam(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, key+" must be a positive integer id")
	}
	return &id, nil
}
