package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qmedica/catalog-backend/api/responses"
	"github.com/qmedica/catalog-backend/api/validators"
	"github.com/qmedica/catalog-backend/internal/companies"
	"github.com/qmedica/catalog-backend/pkg/logger"
)

func companyInputFromForm(r *http.Request) (companies.CompanyInput, error) {
	regDate, err := formDatePtr(r, "reg_date")
	if err != nil {
		return companies.CompanyInput{}, err
	}
	logo, logoName, err := readFormFile(r, "logo")
	if err != nil {
		return companies.CompanyInput{}, err
	}

	return companies.CompanyInput{
		Name:          formValue(r, "name"),
		Shortname:     formValue(r, "shortname"),
		RegNo:         formValuePtr(r, "reg_no"),
		RegDate:       regDate,
		Address:       formValuePtr(r, "address"),
		Website:       formValuePtr(r, "website"),
		Email:         formValuePtr(r, "email"),
		ContactNumber: formValuePtr(r, "contact_number"),
		Logo:          logo,
		LogoFilename:  logoName,
	}, nil
}

// CompaniesList returns affiliated companies, optionally filtered by search.
func CompaniesList(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context(), r.URL.Query().Get("search"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// CompaniesGet returns one affiliated company.
func CompaniesGet(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(chi.URLParam(r, "companyId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		company, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, company)
	}
}

// CompaniesCreate adds an affiliated company from a multipart form with an
// optional logo upload.
func CompaniesCreate(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := parseMultipart(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := companyInputFromForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// CompaniesUpdate edits an affiliated company; omitting the logo part keeps
// the current image.
func CompaniesUpdate(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(chi.URLParam(r, "companyId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := parseMultipart(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := companyInputFromForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// CompaniesDelete removes an affiliated company and its logo file.
func CompaniesDelete(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(chi.URLParam(r, "companyId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
