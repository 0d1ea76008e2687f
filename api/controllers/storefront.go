package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qmedica/catalog-backend/api/middleware"
	"github.com/qmedica/catalog-backend/api/responses"
	"github.com/qmedica/catalog-backend/api/validators"
	"github.com/qmedica/catalog-backend/internal/storefront"
	"github.com/qmedica/catalog-backend/pkg/db/models"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
	"github.com/qmedica/catalog-backend/pkg/logger"
)

// branding is the page-wide tenant context sent with every storefront
// response.
type branding struct {
	Name      string  `json:"name"`
	Shortname string  `json:"shortname"`
	Logo      *string `json:"logo,omitempty"`
	Website   *string `json:"website,omitempty"`
}

func brandingFrom(company *models.AffiliatedCompany) branding {
	return branding{
		Name:      company.Name,
		Shortname: company.Shortname,
		Logo:      company.Logo,
		Website:   company.Website,
	}
}

func tenantCompany(w http.ResponseWriter, r *http.Request, logg *logger.Logger) *models.AffiliatedCompany {
	company := middleware.CompanyFromContext(r.Context())
	if company == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "company not found"))
	}
	return company
}

// StorefrontHome returns the tenant branding plus its category tree.
func StorefrontHome(svc storefront.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		company := tenantCompany(w, r, logg)
		if company == nil {
			return
		}

		categories, err := svc.CategoryTree(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"company":    brandingFrom(company),
			"categories": categories,
		})
	}
}

// StorefrontProducts lists the tenant-visible products.
func StorefrontProducts(svc storefront.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		company := tenantCompany(w, r, logg)
		if company == nil {
			return
		}

		categoryIDs, err := queryIDList(r, "category_ids")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cards, err := svc.ListProducts(r.Context(), company, r.URL.Query().Get("search"), categoryIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"company":  brandingFrom(company),
			"products": cards,
		})
	}
}

// StorefrontProductDetail returns the enriched public product page data.
func StorefrontProductDetail(svc storefront.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		company := tenantCompany(w, r, logg)
		if company == nil {
			return
		}

		id, err := validators.ParseIDParam(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.ProductDetail(r.Context(), company, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"company": brandingFrom(company),
			"detail":  view,
		})
	}
}

// StorefrontCertificate returns a product's regulatory certificate path so
// the client can render it inline (PDF) or as an image.
func StorefrontCertificate(svc storefront.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		company := tenantCompany(w, r, logg)
		if company == nil {
			return
		}

		id, err := validators.ParseIDParam(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cert, err := svc.Certificate(r.Context(), company, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"company":     brandingFrom(company),
			"certificate": cert,
		})
	}
}

// StorefrontWatch resolves an event or testimony link into its embeddable
// video URL.
func StorefrontWatch(svc storefront.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		company := tenantCompany(w, r, logg)
		if company == nil {
			return
		}

		id, err := validators.ParseIDParam(chi.URLParam(r, "linkId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		video, err := svc.WatchVideo(r.Context(), chi.URLParam(r, "kind"), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"company": brandingFrom(company),
			"video":   video,
		})
	}
}

// StorefrontPackages lists bundles containing tenant-visible products.
func StorefrontPackages(svc storefront.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		company := tenantCompany(w, r, logg)
		if company == nil {
			return
		}

		rows, err := svc.ListPackages(r.Context(), company, r.URL.Query().Get("search"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"company":  brandingFrom(company),
			"packages": rows,
		})
	}
}

// StorefrontPackageDetail returns one bundle with its visible products.
func StorefrontPackageDetail(svc storefront.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		company := tenantCompany(w, r, logg)
		if company == nil {
			return
		}

		id, err := validators.ParseIDParam(chi.URLParam(r, "packageId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.PackageDetail(r.Context(), company, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"company": brandingFrom(company),
			"detail":  view,
		})
	}
}
