package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qmedica/catalog-backend/api/responses"
	"github.com/qmedica/catalog-backend/api/validators"
	"github.com/qmedica/catalog-backend/internal/packages"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
	"github.com/qmedica/catalog-backend/pkg/logger"
)

// packageInputFromForm maps the multipart bundle form. product_ids ordering
// becomes the display sort order; spec_icon/spec_text rows pair by position.
func packageInputFromForm(r *http.Request) (packages.PackageInput, error) {
	var input packages.PackageInput

	input.Name = formValue(r, "name")
	input.Description = formValue(r, "description")
	input.BundleLabel = formValue(r, "bundle_label")

	productIDs, err := formIDList(r, "product_ids")
	if err != nil {
		return input, err
	}
	input.ProductIDs = productIDs

	icons := r.Form["spec_icon"]
	texts := r.Form["spec_text"]
	if len(icons) != len(texts) {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "spec_icon and spec_text rows must pair up")
	}
	for i := range texts {
		input.Specs = append(input.Specs, packages.SpecInput{Icon: icons[i], SpecText: texts[i]})
	}

	image, imageName, err := readFormFile(r, "main_image")
	if err != nil {
		return input, err
	}
	input.Image = image
	input.ImageFilename = imageName

	return input, nil
}

// PackagesList returns product bundles, optionally filtered by search.
func PackagesList(svc packages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context(), r.URL.Query().Get("search"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// PackagesGet returns one bundle with ordered products and specs.
func PackagesGet(svc packages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(chi.URLParam(r, "packageId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pack, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pack)
	}
}

// PackagesCreate adds a bundle from its multipart form.
func PackagesCreate(svc packages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := parseMultipart(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := packageInputFromForm(r)
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

// PackagesUpdate edits a bundle; products and specs are replaced wholesale.
func PackagesUpdate(svc packages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(chi.URLParam(r, "packageId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := parseMultipart(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := packageInputFromForm(r)
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

// PackagesDelete removes a bundle and its image file.
func PackagesDelete(svc packages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(chi.URLParam(r, "packageId"))
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
