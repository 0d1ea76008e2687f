package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qmedica/catalog-backend/api/responses"
	"github.com/qmedica/catalog-backend/pkg/db/models"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
	"github.com/qmedica/catalog-backend/pkg/logger"
)

// CompanyResolver looks up a storefront tenant by its shortname path segment.
type CompanyResolver interface {
	CompanyByShortname(ctx context.Context, shortname string) (*models.AffiliatedCompany, error)
}

// Tenant resolves the {shortname} URL parameter into an affiliated company
// and injects it into the request context. Unknown shortnames 404 so the
// tenant catch-all cannot shadow typos into empty storefronts.
func Tenant(resolver CompanyResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			shortname := chi.URLParam(r, "shortname")
			if shortname == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "storefront not found"))
				return
			}

			company, err := resolver.CompanyByShortname(ctx, shortname)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			ctx = WithCompany(ctx, company)
			if logg != nil {
				ctx = logg.WithCompany(ctx, company.Shortname)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
