package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
)

// ParseIDParam converts a positive numeric path segment into a database ID.
func ParseIDParam(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || value == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid id").WithDetails(map[string]any{"id": raw})
	}
	return uint(value), nil
}

// ParseFormInt reads a required integer field from an already-parsed form.
func ParseFormInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "form field is required").WithDetails(map[string]any{"field": key})
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "form field must be numeric").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}
