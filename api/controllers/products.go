package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/qmedica/catalog-backend/api/responses"
	"github.com/qmedica/catalog-backend/api/validators"
	"github.com/qmedica/catalog-backend/internal/products"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
	"github.com/qmedica/catalog-backend/pkg/logger"
)

// productInputFromForm maps the multipart admin form onto a ProductInput.
//
// Repeated fields:
//
//	spec_key[] / spec_value[]   paired by position
//	category_ids, type_ids, material_ids, event_ids, testimony_ids
//	images                      new gallery uploads
//	kept_images                 stored paths to retain on edit
//
// main_image selects the main gallery entry: "new:<n>" for the n-th new
// upload or "kept:<path>" for a retained one.
func productInputFromForm(r *http.Request) (products.ProductInput, error) {
	var input products.ProductInput

	input.Code = formValue(r, "code")
	input.Model = formValue(r, "model")
	input.MDARegNo = formValue(r, "mda_reg_no")
	input.Description = formValue(r, "description")

	supplierID, err := formIDPtr(r, "supplier_id")
	if err != nil {
		return input, err
	}
	input.SupplierID = supplierID

	for _, field := range []struct {
		key  string
		dest *[]uint
	}{
		{"category_ids", &input.CategoryIDs},
		{"type_ids", &input.TypeIDs},
		{"material_ids", &input.MaterialIDs},
		{"event_ids", &input.EventIDs},
		{"testimony_ids", &input.TestimonyIDs},
	} {
		ids, err := formIDList(r, field.key)
		if err != nil {
			return input, err
		}
		*field.dest = ids
	}

	keys := r.Form["spec_key"]
	values := r.Form["spec_value"]
	if len(keys) != len(values) {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "spec_key and spec_value rows must pair up")
	}
	for i := range keys {
		input.Specs = append(input.Specs, products.SpecInput{Key: keys[i], Value: values[i]})
	}

	mainRef := formValue(r, "main_image")

	imageData, imageNames, err := readFormFiles(r, "images")
	if err != nil {
		return input, err
	}
	for i := range imageData {
		input.NewImages = append(input.NewImages, products.NewImage{
			FileUpload: products.FileUpload{Data: imageData[i], Filename: imageNames[i]},
			IsMain:     mainRef == "new:"+strconv.Itoa(i),
		})
	}

	for _, path := range r.Form["kept_images"] {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		input.KeptImages = append(input.KeptImages, products.KeptImage{
			Path:   path,
			IsMain: mainRef == "kept:"+path,
		})
	}

	certData, certName, err := readFormFile(r, "mda_cert")
	if err != nil {
		return input, err
	}
	if len(certData) > 0 {
		input.MDACert = &products.FileUpload{Data: certData, Filename: certName}
	}

	return input, nil
}

// ProductsList returns the admin catalog list with combined filters.
func ProductsList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryIDs, err := queryIDList(r, "category_ids")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		typeIDs, err := queryIDList(r, "type_ids")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supplierID, err := queryIDPtr(r, "supplier_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), products.ListFilter{
			Search:      r.URL.Query().Get("search"),
			CategoryIDs: categoryIDs,
			TypeIDs:     typeIDs,
			SupplierID:  supplierID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ProductsGet returns one product with all associations preloaded.
func ProductsGet(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ProductsCreate adds a product from its multipart admin form.
func ProductsCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := parseMultipart(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := productInputFromForm(r)
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

// ProductsUpdate edits a product; child associations are replaced with the
// submitted sets and unreferenced image files are removed after commit.
func ProductsUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := parseMultipart(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := productInputFromForm(r)
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

// ProductsDelete removes a product row and its stored files.
func ProductsDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(chi.URLParam(r, "productId"))
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
