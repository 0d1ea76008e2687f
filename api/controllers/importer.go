package controllers

import (
	"net/http"

	"github.com/qmedica/catalog-backend/api/responses"
	"github.com/qmedica/catalog-backend/internal/importer"
	"github.com/qmedica/catalog-backend/pkg/enums"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
	"github.com/qmedica/catalog-backend/pkg/logger"
)

// ImportTemplates lists the spreadsheet template links shown on the import
// forms.
func ImportTemplates(svc importer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Templates())
	}
}

// ImportSettings bulk-imports lookup values from an uploaded xlsx sheet.
func ImportSettings(svc importer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := parseMultipart(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		settingType, err := enums.ParseSettingType(formValue(r, "type"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown setting type"))
			return
		}

		sheet, _, err := readFormFile(r, "file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.ImportSettings(r.Context(), settingType, sheet)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// ImportCategories bulk-imports categories from an uploaded xlsx sheet.
func ImportCategories(svc importer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := parseMultipart(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sheet, _, err := readFormFile(r, "file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.ImportCategories(r.Context(), sheet)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
