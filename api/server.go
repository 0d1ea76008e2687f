package api

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/qmedica/catalog-backend/api/routes"
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
	"github.com/qmedica/catalog-backend/pkg/logger"
	"github.com/qmedica/catalog-backend/pkg/metrics"
	"github.com/qmedica/catalog-backend/pkg/redis"
)

// Server owns the wired HTTP handler plus the services cmd/api needs to
// reach directly (bootstrap).
type Server struct {
	Handler http.Handler
	Users   users.Service
}

// NewServer wires repositories, services, and controllers into the router.
func NewServer(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sessions *session.Manager,
	registry *prometheus.Registry,
) (*Server, error) {
	gormDB := dbClient.DB()

	store, err := uploads.NewStore(cfg.Uploads, logg)
	if err != nil {
		return nil, fmt.Errorf("uploads store: %w", err)
	}

	var uploadMetrics *metrics.UploadMetrics
	var httpMetrics *metrics.HTTPMetrics
	if registry != nil {
		uploadMetrics = metrics.NewUploadMetrics(registry)
		httpMetrics = metrics.NewHTTPMetrics(registry)
	}

	assembler, err := uploads.NewAssembler(cfg.Uploads.StagingDir, store, uploadMetrics, logg)
	if err != nil {
		return nil, fmt.Errorf("chunk assembler: %w", err)
	}

	categoryRepo := categories.NewRepository(gormDB)
	categoryService, err := categories.NewService(categoryRepo)
	if err != nil {
		return nil, fmt.Errorf("categories service: %w", err)
	}

	settingService, err := settings.NewService(settings.NewRepository(gormDB))
	if err != nil {
		return nil, fmt.Errorf("settings service: %w", err)
	}

	companyService, err := companies.NewService(companies.NewRepository(gormDB), store)
	if err != nil {
		return nil, fmt.Errorf("companies service: %w", err)
	}

	supplierService, err := suppliers.NewService(suppliers.NewRepository(gormDB))
	if err != nil {
		return nil, fmt.Errorf("suppliers service: %w", err)
	}

	productService, err := products.NewService(products.NewRepository(gormDB), categoryRepo, store)
	if err != nil {
		return nil, fmt.Errorf("products service: %w", err)
	}

	marketingService, err := marketing.NewService(marketing.NewRepository(gormDB), store)
	if err != nil {
		return nil, fmt.Errorf("marketing service: %w", err)
	}

	packageService, err := packages.NewService(packages.NewRepository(gormDB), store)
	if err != nil {
		return nil, fmt.Errorf("packages service: %w", err)
	}

	userService, err := users.NewService(users.NewRepository(gormDB), cfg, logg)
	if err != nil {
		return nil, fmt.Errorf("users service: %w", err)
	}

	importService, err := importer.NewService(settingService, categoryService, cfg.Import)
	if err != nil {
		return nil, fmt.Errorf("importer service: %w", err)
	}

	dashboardService, err := dashboard.NewService(gormDB)
	if err != nil {
		return nil, fmt.Errorf("dashboard service: %w", err)
	}

	storefrontService, err := storefront.NewService(storefront.NewRepository(gormDB), categoryRepo)
	if err != nil {
		return nil, fmt.Errorf("storefront service: %w", err)
	}

	handler := routes.NewRouter(routes.Deps{
		Cfg:         cfg,
		Logg:        logg,
		DB:          dbClient,
		Redis:       redisClient,
		Sessions:    sessions,
		HTTPMetrics: httpMetrics,
		Gatherer:    registry,

		Users:      userService,
		Settings:   settingService,
		Categories: categoryService,
		Companies:  companyService,
		Suppliers:  supplierService,
		Products:   productService,
		Marketing:  marketingService,
		Packages:   packageService,
		Importer:   importService,
		Dashboard:  dashboardService,
		Storefront: storefrontService,
		Assembler:  assembler,
	})

	return &Server{Handler: handler, Users: userService}, nil
}
