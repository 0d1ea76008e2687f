package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qmedica/catalog-backend/api/controllers"
	"github.com/qmedica/catalog-backend/api/middleware"
	"github.com/qmedica/catalog-backend/internal/categories"
	"github.com/qmedica/catalog-backend/internal/companies"
	"github.com/qmedica/catalog-backend/internal/dashboard"
	"github.com/qmedica/catalog-backend/internal/importer"
	"github.com/qmedica/catalog-backend/internal/marketing"
	"github.com/qmedica/catalog-backend/internal/packages"
	"github.com/qmedica/catalog-backend/internal/products"
	"github.com/qmedica/catalog-backend/internal/settings"
	"github.com/qmedica/catalog-backend/internal/storefront"
	"github.com/qmedica/catalog-backend/internal/suppliers"
	"github.com/qmedica/catalog-backend/internal/uploads"
	"github.com/qmedica/catalog-backend/internal/users"
	"github.com/qmedica/catalog-backend/pkg/auth/session"
	"github.com/qmedica/catalog-backend/pkg/config"
	"github.com/qmedica/catalog-backend/pkg/db"
	"github.com/qmedica/catalog-backend/pkg/enums"
	"github.com/qmedica/catalog-backend/pkg/logger"
	"github.com/qmedica/catalog-backend/pkg/metrics"
	"github.com/qmedica/catalog-backend/pkg/redis"
)

// Deps bundles everything the router wires together.
type Deps struct {
	Cfg         *config.Config
	Logg        *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	Sessions    session.Store
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	Users      users.Service
	Settings   settings.Service
	Categories categories.Service
	Companies  companies.Service
	Suppliers  suppliers.Service
	Products   products.Service
	Marketing  marketing.Service
	Packages   packages.Service
	Importer   importer.Service
	Dashboard  dashboard.Service
	Storefront storefront.Service
	Assembler  *uploads.Assembler
}

// NewRouter builds the full HTTP surface. Fixed admin/auth/ops routes are
// registered before the tenant catch-all so a company shortname can never
// shadow them.
func NewRouter(deps Deps) http.Handler {
	cfg, logg := deps.Cfg, deps.Logg

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	// Stored assets are served straight off disk; DB rows hold the
	// root-relative paths.
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Uploads.Root)))
	r.Get("/uploads/*", fileServer.ServeHTTP)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(deps.Users, deps.Sessions, cfg, logg))
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.Session, deps.Sessions, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Sessions, cfg, logg))
			r.Get("/me", controllers.AuthMe())
		})
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Session, deps.Sessions, logg))

		r.Get("/dashboard", controllers.DashboardSummary(deps.Dashboard, logg))

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.SettingsList(deps.Settings, logg))
			r.Post("/", controllers.SettingsCreate(deps.Settings, logg))
			r.Put("/{settingId}", controllers.SettingsUpdate(deps.Settings, logg))
			r.With(middleware.RequireRole(enums.RoleAdmin, logg)).
				Delete("/{settingId}", controllers.SettingsDelete(deps.Settings, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoriesList(deps.Categories, logg))
			r.Get("/tree", controllers.CategoriesTree(deps.Categories, logg))
			r.Post("/", controllers.CategoriesCreate(deps.Categories, logg))
			r.Put("/{categoryId}", controllers.CategoriesRename(deps.Categories, logg))
			r.With(middleware.RequireRole(enums.RoleAdmin, logg)).
				Delete("/{categoryId}", controllers.CategoriesDelete(deps.Categories, logg))
		})

		r.Route("/companies", func(r chi.Router) {
			r.Get("/", controllers.CompaniesList(deps.Companies, logg))
			r.Get("/{companyId}", controllers.CompaniesGet(deps.Companies, logg))
			r.Post("/", controllers.CompaniesCreate(deps.Companies, logg))
			r.Put("/{companyId}", controllers.CompaniesUpdate(deps.Companies, logg))
			r.Delete("/{companyId}", controllers.CompaniesDelete(deps.Companies, logg))
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", controllers.SuppliersList(deps.Suppliers, logg))
			r.Get("/{supplierId}", controllers.SuppliersGet(deps.Suppliers, logg))
			r.Post("/", controllers.SuppliersCreate(deps.Suppliers, logg))
			r.Put("/{supplierId}", controllers.SuppliersUpdate(deps.Suppliers, logg))
			r.Delete("/{supplierId}", controllers.SuppliersDelete(deps.Suppliers, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(deps.Products, logg))
			r.Get("/{productId}", controllers.ProductsGet(deps.Products, logg))
			r.Post("/", controllers.ProductsCreate(deps.Products, logg))
			r.Put("/{productId}", controllers.ProductsUpdate(deps.Products, logg))
			r.Delete("/{productId}", controllers.ProductsDelete(deps.Products, logg))
		})

		r.Route("/materials", func(r chi.Router) {
			r.Get("/", controllers.MaterialsList(deps.Marketing, logg))
			r.Post("/", controllers.MaterialsCreate(deps.Marketing, logg))
			r.Put("/{materialId}", controllers.MaterialsUpdate(deps.Marketing, logg))
			r.Delete("/{materialId}", controllers.MaterialsDelete(deps.Marketing, logg))
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", controllers.EventsList(deps.Marketing, logg))
			r.Get("/{eventId}", controllers.EventsGet(deps.Marketing, logg))
			r.Post("/", controllers.EventsCreate(deps.Marketing, logg))
			r.Put("/{eventId}", controllers.EventsUpdate(deps.Marketing, logg))
			r.Delete("/{eventId}", controllers.EventsDelete(deps.Marketing, logg))
		})

		r.Route("/testimonies", func(r chi.Router) {
			r.Get("/", controllers.TestimoniesList(deps.Marketing, logg))
			r.Get("/{testimonyId}", controllers.TestimoniesGet(deps.Marketing, logg))
			r.Post("/", controllers.TestimoniesCreate(deps.Marketing, logg))
			r.Put("/{testimonyId}", controllers.TestimoniesUpdate(deps.Marketing, logg))
			r.Delete("/{testimonyId}", controllers.TestimoniesDelete(deps.Marketing, logg))
		})

		r.Route("/packages", func(r chi.Router) {
			r.Get("/", controllers.PackagesList(deps.Packages, logg))
			r.Get("/{packageId}", controllers.PackagesGet(deps.Packages, logg))
			r.Post("/", controllers.PackagesCreate(deps.Packages, logg))
			r.Put("/{packageId}", controllers.PackagesUpdate(deps.Packages, logg))
			r.With(middleware.RequireRole(enums.RoleAdmin, logg)).
				Delete("/{packageId}", controllers.PackagesDelete(deps.Packages, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
			r.Get("/", controllers.UsersList(deps.Users, logg))
			r.Post("/", controllers.UsersCreate(deps.Users, logg))
			r.Put("/{userId}", controllers.UsersUpdate(deps.Users, logg))
			r.Delete("/{userId}", controllers.UsersDelete(deps.Users, logg))
		})

		r.Route("/import", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
			r.Get("/templates", controllers.ImportTemplates(deps.Importer))
			r.Post("/settings", controllers.ImportSettings(deps.Importer, logg))
			r.Post("/categories", controllers.ImportCategories(deps.Importer, logg))
		})

		r.Post("/uploads/chunk", controllers.UploadChunk(deps.Assembler, logg))
	})

	// Tenant catch-all goes last; reserved shortnames are also rejected at
	// company creation so this ordering is belt and braces.
	r.Route("/{shortname}", func(r chi.Router) {
		r.Use(middleware.Tenant(deps.Companies, logg))
		r.Get("/", controllers.StorefrontHome(deps.Storefront, logg))
		r.Get("/products", controllers.StorefrontProducts(deps.Storefront, logg))
		r.Get("/products/{productId}", controllers.StorefrontProductDetail(deps.Storefront, logg))
		r.Get("/products/{productId}/certificate", controllers.StorefrontCertificate(deps.Storefront, logg))
		r.Get("/watch/{kind}/{linkId}", controllers.StorefrontWatch(deps.Storefront, logg))
		r.Get("/packages", controllers.StorefrontPackages(deps.Storefront, logg))
		r.Get("/packages/{packageId}", controllers.StorefrontPackageDetail(deps.Storefront, logg))
	})

	return r
}
