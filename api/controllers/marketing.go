package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/qmedica/catalog-backend/api/responses"
	"github.com/qmedica/catalog-backend/api/validators"
	"github.com/qmedica/catalog-backend/internal/marketing"
	"github.com/qmedica/catalog-backend/pkg/enums"
	"github.com/qmedica/catalog-backend/pkg/logger"
)

func materialInputFromForm(r *http.Request) (marketing.MaterialInput, error) {
	companyID, err := formIDPtr(r, "company_id")
	if err != nil {
		return marketing.MaterialInput{}, err
	}
	file, filename, err := readFormFile(r, "file")
	if err != nil {
		return marketing.MaterialInput{}, err
	}

	return marketing.MaterialInput{
		Name:      formValue(r, "name"),
		Category:  enums.MaterialCategory(formValue(r, "category")),
		CompanyID: companyID,
		File:      file,
		Filename:  filename,
	}, nil
}

// MaterialsList returns marketing materials with search/category/company
// filters.
func MaterialsList(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, err := queryIDPtr(r, "company_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := queryIDPtr(r, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var category *enums.MaterialCategory
		if raw := r.URL.Query().Get("category"); raw != "" {
			c := enums.MaterialCategory(raw)
			category = &c
		}

		rows, err := svc.ListMaterials(r.Context(), marketing.MaterialFilter{
			Search:    r.URL.Query().Get("search"),
			Category:  category,
			CompanyID: companyID,
			ProductID: productID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// MaterialsCreate uploads a marketing material.
func MaterialsCreate(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := parseMultipart(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := materialInputFromForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateMaterial(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// MaterialsUpdate edits a marketing material; omitting the file keeps the
// current asset.
func MaterialsUpdate(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(chi.URLParam(r, "materialId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := parseMultipart(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := materialInputFromForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateMaterial(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// MaterialsDelete removes a marketing material and its file.
func MaterialsDelete(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(chi.URLParam(r, "materialId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteMaterial(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type linkRequest struct {
	Title string `json:"title"`
	URL   string `json:"url" validate:"required,url"`
}

type eventRequest struct {
	Name      string        `json:"name" validate:"required"`
	Location  string        `json:"location"`
	StartDate *time.Time    `json:"start_date,omitempty"`
	EndDate   *time.Time    `json:"end_date,omitempty"`
	Links     []linkRequest `json:"links" validate:"dive"`
}

func (req eventRequest) toInput() marketing.EventInput {
	links := make([]marketing.LinkInput, 0, len(req.Links))
	for _, link := range req.Links {
		links = append(links, marketing.LinkInput{Title: link.Title, URL: link.URL})
	}
	return marketing.EventInput{
		Name:      req.Name,
		Location:  req.Location,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Links:     links,
	}
}

// EventsList returns events, optionally filtered by search text or by the
// product they are linked to.
func EventsList(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := queryIDPtr(r, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListEvents(r.Context(), marketing.ListFilter{
			Search:    r.URL.Query().Get("search"),
			ProductID: productID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// EventsGet returns one event with its links.
func EventsGet(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(chi.URLParam(r, "eventId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := svc.GetEvent(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, event)
	}
}

// EventsCreate adds an event with its links.
func EventsCreate(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload eventRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateEvent(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// EventsUpdate edits an event; links are replaced wholesale.
func EventsUpdate(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(chi.URLParam(r, "eventId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload eventRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateEvent(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// EventsDelete removes an event and its links via DB cascades.
func EventsDelete(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(chi.URLParam(r, "eventId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteEvent(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type testimonyRequest struct {
	ClientName string        `json:"client_name" validate:"required"`
	Location   string        `json:"location"`
	StartDate  *time.Time    `json:"start_date,omitempty"`
	EndDate    *time.Time    `json:"end_date,omitempty"`
	Treatment  string        `json:"treatment"`
	Links      []linkRequest `json:"links" validate:"dive"`
}

func (req testimonyRequest) toInput() marketing.TestimonyInput {
	links := make([]marketing.LinkInput, 0, len(req.Links))
	for _, link := range req.Links {
		links = append(links, marketing.LinkInput{Title: link.Title, URL: link.URL})
	}
	return marketing.TestimonyInput{
		ClientName: req.ClientName,
		Location:   req.Location,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Treatment:  req.Treatment,
		Links:      links,
	}
}

// TestimoniesList returns testimonies, optionally filtered by search text or
// by the product they are linked to.
func TestimoniesList(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := queryIDPtr(r, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListTestimonies(r.Context(), marketing.ListFilter{
			Search:    r.URL.Query().Get("search"),
			ProductID: productID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// TestimoniesGet returns one testimony with its links.
func TestimoniesGet(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(chi.URLParam(r, "testimonyId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		testimony, err := svc.GetTestimony(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, testimony)
	}
}

// TestimoniesCreate adds a testimony with its links.
func TestimoniesCreate(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload testimonyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateTestimony(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// TestimoniesUpdate edits a testimony; links are replaced wholesale.
func TestimoniesUpdate(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(chi.URLParam(r, "testimonyId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload testimonyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateTestimony(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// TestimoniesDelete removes a testimony and its links via DB cascades.
func TestimoniesDelete(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(chi.URLParam(r, "testimonyId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteTestimony(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
