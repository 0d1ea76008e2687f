package controllers

import (
	"net/http"

	"github.com/qmedica/catalog-backend/api/responses"
	"github.com/qmedica/catalog-backend/internal/dashboard"
	"github.com/qmedica/catalog-backend/pkg/logger"
)

// DashboardSummary returns the entity counts for the admin landing page.
func DashboardSummary(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, counts)
	}
}
