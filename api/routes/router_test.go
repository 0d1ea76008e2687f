package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/qmedica/catalog-backend/internal/categories"
	"github.com/qmedica/catalog-backend/internal/companies"
	"github.com/qmedica/catalog-backend/internal/dashboard"
	"github.com/qmedica/catalog-backend/internal/importer"
	"github.com/qmedica/catalog-backend/internal/marketing"
	"github.com/qmedica/catalog-backend/internal/packages"
	"github.com/qmedica/catalog-backend/internal/products"
	"github.com/qmedica/catalog-backend/internal/storefront"
	"github.com/qmedica/catalog-backend/internal/suppliers"
	"github.com/qmedica/catalog-backend/internal/users"
	pkgauth "github.com/qmedica/catalog-backend/pkg/auth"
	"github.com/qmedica/catalog-backend/pkg/auth/session"
	"github.com/qmedica/catalog-backend/pkg/config"
	"github.com/qmedica/catalog-backend/pkg/db/models"
	"github.com/qmedica/catalog-backend/pkg/enums"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
	"github.com/qmedica/catalog-backend/pkg/logger"
	"gorm.io/gorm"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

// stubSessions returns the configured record regardless of session ID, so a
// test can mint any cookie and decide what the server-side state says.
type stubSessions struct {
	rec *session.Record
}

func (s stubSessions) Get(ctx context.Context, sessionID string) (*session.Record, error) {
	if s.rec == nil {
		return nil, session.ErrNoSession
	}
	return s.rec, nil
}

func (s stubSessions) Create(ctx context.Context, rec session.Record) (string, error) {
	return "sess-test", nil
}

func (s stubSessions) Revoke(ctx context.Context, sessionID string) error {
	return nil
}

type stubUsersService struct{}

func (stubUsersService) List(ctx context.Context, actor users.Actor) ([]models.User, error) {
	return []models.User{}, nil
}

// Get implements [users.Service].
func (stubUsersService) Get(ctx context.Context, actor users.Actor, id uint) (*models.User, error) {
	panic("unimplemented")
}

// Create implements [users.Service].
func (stubUsersService) Create(ctx context.Context, actor users.Actor, input users.UserInput) (*models.User, error) {
	panic("unimplemented")
}

// Update implements [users.Service].
func (stubUsersService) Update(ctx context.Context, actor users.Actor, id uint, input users.UserInput) (*models.User, error) {
	panic("unimplemented")
}

// Delete implements [users.Service].
func (stubUsersService) Delete(ctx context.Context, actor users.Actor, id uint) error {
	panic("unimplemented")
}

// Authenticate implements [users.Service].
func (stubUsersService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	panic("unimplemented")
}

// Bootstrap implements [users.Service].
func (stubUsersService) Bootstrap(ctx context.Context) error {
	return nil
}

type stubSettingsService struct{}

func (stubSettingsService) List(ctx context.Context, settingType enums.SettingType) ([]models.Setting, error) {
	return []models.Setting{}, nil
}

func (stubSettingsService) Create(ctx context.Context, settingType enums.SettingType, value string) (*models.Setting, error) {
	panic("unimplemented")
}

func (stubSettingsService) Update(ctx context.Context, id uint, value string) (*models.Setting, error) {
	panic("unimplemented")
}

func (stubSettingsService) Delete(ctx context.Context, id uint) error {
	return nil
}

type stubCategoriesService struct{}

func (stubCategoriesService) Tree(ctx context.Context) ([]categories.Node, error) {
	return []categories.Node{}, nil
}

func (stubCategoriesService) List(ctx context.Context) ([]models.Category, error) {
	return []models.Category{}, nil
}

func (stubCategoriesService) Create(ctx context.Context, name string, parentID *uint) (*models.Category, error) {
	panic("unimplemented")
}

func (stubCategoriesService) Rename(ctx context.Context, id uint, name string) (*models.Category, error) {
	panic("unimplemented")
}

func (stubCategoriesService) Delete(ctx context.Context, id uint) error {
	return nil
}

// stubCompaniesService resolves exactly one shortname so tenant routing can
// be exercised against hits and misses.
type stubCompaniesService struct {
	company *models.AffiliatedCompany
}

func (s stubCompaniesService) List(ctx context.Context, search string) ([]models.AffiliatedCompany, error) {
	return []models.AffiliatedCompany{}, nil
}

func (s stubCompaniesService) Get(ctx context.Context, id uint) (*models.AffiliatedCompany, error) {
	panic("unimplemented")
}

func (s stubCompaniesService) CompanyByShortname(ctx context.Context, shortname string) (*models.AffiliatedCompany, error) {
	if s.company != nil && s.company.Shortname == shortname {
		return s.company, nil
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, gorm.ErrRecordNotFound, "storefront not found")
}

func (s stubCompaniesService) Create(ctx context.Context, input companies.CompanyInput) (*models.AffiliatedCompany, error) {
	panic("unimplemented")
}

func (s stubCompaniesService) Update(ctx context.Context, id uint, input companies.CompanyInput) (*models.AffiliatedCompany, error) {
	panic("unimplemented")
}

func (s stubCompaniesService) Delete(ctx context.Context, id uint) error {
	return nil
}

type stubSuppliersService struct{}

func (stubSuppliersService) List(ctx context.Context, filter suppliers.ListFilter) ([]models.Supplier, error) {
	return []models.Supplier{}, nil
}

func (stubSuppliersService) Get(ctx context.Context, id uint) (*models.Supplier, error) {
	panic("unimplemented")
}

func (stubSuppliersService) Create(ctx context.Context, input suppliers.SupplierInput) (*models.Supplier, error) {
	panic("unimplemented")
}

func (stubSuppliersService) Update(ctx context.Context, id uint, input suppliers.SupplierInput) (*models.Supplier, error) {
	panic("unimplemented")
}

func (stubSuppliersService) Delete(ctx context.Context, id uint) error {
	return nil
}

type stubProductsService struct{}

func (stubProductsService) List(ctx context.Context, filter products.ListFilter) ([]models.Product, error) {
	return []models.Product{}, nil
}

func (stubProductsService) Get(ctx context.Context, id uint) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductsService) Create(ctx context.Context, input products.ProductInput) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductsService) Update(ctx context.Context, id uint, input products.ProductInput) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductsService) Delete(ctx context.Context, id uint) error {
	return nil
}

type stubMarketingService struct{}

func (stubMarketingService) ListMaterials(ctx context.Context, filter marketing.MaterialFilter) ([]models.MarketingMaterial, error) {
	return []models.MarketingMaterial{}, nil
}

func (stubMarketingService) GetMaterial(ctx context.Context, id uint) (*models.MarketingMaterial, error) {
	panic("unimplemented")
}

func (stubMarketingService) CreateMaterial(ctx context.Context, input marketing.MaterialInput) (*models.MarketingMaterial, error) {
	panic("unimplemented")
}

func (stubMarketingService) UpdateMaterial(ctx context.Context, id uint, input marketing.MaterialInput) (*models.MarketingMaterial, error) {
	panic("unimplemented")
}

func (stubMarketingService) DeleteMaterial(ctx context.Context, id uint) error {
	return nil
}

func (stubMarketingService) ListEvents(ctx context.Context, filter marketing.ListFilter) ([]models.Event, error) {
	return []models.Event{}, nil
}

func (stubMarketingService) GetEvent(ctx context.Context, id uint) (*models.Event, error) {
	panic("unimplemented")
}

func (stubMarketingService) CreateEvent(ctx context.Context, input marketing.EventInput) (*models.Event, error) {
	panic("unimplemented")
}

func (stubMarketingService) UpdateEvent(ctx context.Context, id uint, input marketing.EventInput) (*models.Event, error) {
	panic("unimplemented")
}

func (stubMarketingService) DeleteEvent(ctx context.Context, id uint) error {
	return nil
}

func (stubMarketingService) ListTestimonies(ctx context.Context, filter marketing.ListFilter) ([]models.Testimony, error) {
	return []models.Testimony{}, nil
}

func (stubMarketingService) GetTestimony(ctx context.Context, id uint) (*models.Testimony, error) {
	panic("unimplemented")
}

func (stubMarketingService) CreateTestimony(ctx context.Context, input marketing.TestimonyInput) (*models.Testimony, error) {
	panic("unimplemented")
}

func (stubMarketingService) UpdateTestimony(ctx context.Context, id uint, input marketing.TestimonyInput) (*models.Testimony, error) {
	panic("unimplemented")
}

func (stubMarketingService) DeleteTestimony(ctx context.Context, id uint) error {
	return nil
}

type stubPackagesService struct{}

func (stubPackagesService) List(ctx context.Context, search string) ([]models.Package, error) {
	return []models.Package{}, nil
}

func (stubPackagesService) Get(ctx context.Context, id uint) (*models.Package, error) {
	panic("unimplemented")
}

func (stubPackagesService) Create(ctx context.Context, input packages.PackageInput) (*models.Package, error) {
	panic("unimplemented")
}

func (stubPackagesService) Update(ctx context.Context, id uint, input packages.PackageInput) (*models.Package, error) {
	panic("unimplemented")
}

func (stubPackagesService) Delete(ctx context.Context, id uint) error {
	return nil
}

type stubImporterService struct{}

func (stubImporterService) ImportSettings(ctx context.Context, settingType enums.SettingType, sheet []byte) (*importer.Report, error) {
	panic("unimplemented")
}

func (stubImporterService) ImportCategories(ctx context.Context, sheet []byte) (*importer.Report, error) {
	panic("unimplemented")
}

func (stubImporterService) Templates() importer.Templates {
	return importer.Templates{}
}

type stubDashboardService struct{}

func (stubDashboardService) Summary(ctx context.Context) (*dashboard.Counts, error) {
	return &dashboard.Counts{}, nil
}

type stubStorefrontService struct{}

func (stubStorefrontService) ListProducts(ctx context.Context, company *models.AffiliatedCompany, search string, categoryIDs []uint) ([]storefront.ProductCard, error) {
	return []storefront.ProductCard{}, nil
}

func (stubStorefrontService) ProductDetail(ctx context.Context, company *models.AffiliatedCompany, productID uint) (*storefront.ProductView, error) {
	panic("unimplemented")
}

func (stubStorefrontService) Certificate(ctx context.Context, company *models.AffiliatedCompany, productID uint) (*storefront.CertificateView, error) {
	panic("unimplemented")
}

func (stubStorefrontService) ListPackages(ctx context.Context, company *models.AffiliatedCompany, search string) ([]models.Package, error) {
	return []models.Package{}, nil
}

func (stubStorefrontService) WatchVideo(ctx context.Context, kind string, linkID uint) (*storefront.VideoView, error) {
	panic("unimplemented")
}

func (stubStorefrontService) PackageDetail(ctx context.Context, company *models.AffiliatedCompany, packageID uint) (*storefront.PackageView, error) {
	panic("unimplemented")
}

func (stubStorefrontService) CategoryTree(ctx context.Context) ([]models.Category, error) {
	return []models.Category{}, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		App: config.AppConfig{
			Env:         "test",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Session: config.SessionConfig{
			CookieName: "catalog_session",
			Secret:     "test-secret",
			TTL:        time.Hour,
		},
		Uploads: config.UploadsConfig{Root: t.TempDir()},
	}
}

func newTestRouter(cfg *config.Config, sessions stubSessions, company *models.AffiliatedCompany) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Output: io.Discard})
	return NewRouter(Deps{
		Cfg:        cfg,
		Logg:       logg,
		DB:         stubPinger{},
		Sessions:   sessions,
		Users:      stubUsersService{},
		Settings:   stubSettingsService{},
		Categories: stubCategoriesService{},
		Companies:  stubCompaniesService{company: company},
		Suppliers:  stubSuppliersService{},
		Products:   stubProductsService{},
		Marketing:  stubMarketingService{},
		Packages:   stubPackagesService{},
		Importer:   stubImporterService{},
		Dashboard:  stubDashboardService{},
		Storefront: stubStorefrontService{},
	})
}

func sessionCookie(t *testing.T, cfg *config.Config, role enums.Role) *http.Cookie {
	t.Helper()
	token, err := pkgauth.MintSessionToken(cfg.Session, time.Now(), pkgauth.SessionPayload{
		SessionID: "sess-test",
		UserID:    1,
		Email:     "admin@example.com",
		Role:      role,
	})
	if err != nil {
		t.Fatalf("mint session token: %v", err)
	}
	return &http.Cookie{Name: cfg.Session.CookieName, Value: token}
}

func TestAdminGroupRejectsMissingSession(t *testing.T) {
	cfg := testConfig(t)
	router := newTestRouter(cfg, stubSessions{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without cookie got %d", resp.Code)
	}
}

func TestAdminGroupRejectsRevokedSession(t *testing.T) {
	cfg := testConfig(t)
	// Valid cookie, but no server-side record behind it.
	router := newTestRouter(cfg, stubSessions{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
	req.AddCookie(sessionCookie(t, cfg, enums.RoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked session got %d", resp.Code)
	}
}

func TestAdminGroupAcceptsSessionCookie(t *testing.T) {
	cfg := testConfig(t)
	sessions := stubSessions{rec: &session.Record{UserID: 1, Email: "admin@example.com", Role: enums.RoleAdmin}}
	router := newTestRouter(cfg, sessions, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
	req.AddCookie(sessionCookie(t, cfg, enums.RoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for authenticated dashboard got %d", resp.Code)
	}
}

func TestUserManagementRequiresAdminRole(t *testing.T) {
	cfg := testConfig(t)
	sessions := stubSessions{rec: &session.Record{UserID: 2, Email: "spec@example.com", Role: enums.RoleProductSpecialist}}
	router := newTestRouter(cfg, sessions, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
	req.AddCookie(sessionCookie(t, cfg, enums.RoleProductSpecialist))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	sessions = stubSessions{rec: &session.Record{UserID: 1, Email: "admin@example.com", Role: enums.RoleAdmin}}
	router = newTestRouter(cfg, sessions, nil)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
	req.AddCookie(sessionCookie(t, cfg, enums.RoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestServerSideRoleOverridesCookieRole(t *testing.T) {
	cfg := testConfig(t)
	// Cookie was minted while the user was still an Admin; the record has
	// since been downgraded. The record wins.
	sessions := stubSessions{rec: &session.Record{UserID: 3, Email: "former@example.com", Role: enums.RoleGraphicDesigner}}
	router := newTestRouter(cfg, sessions, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
	req.AddCookie(sessionCookie(t, cfg, enums.RoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 when record role is downgraded got %d", resp.Code)
	}
}

func TestTenantRouteResolvesKnownShortname(t *testing.T) {
	cfg := testConfig(t)
	company := &models.AffiliatedCompany{Name: "Acme Medical", Shortname: "acme"}
	router := newTestRouter(cfg, stubSessions{}, company)

	req := httptest.NewRequest(http.MethodGet, "/acme", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for known shortname got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/nosuchcompany", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown shortname got %d", resp.Code)
	}
}

func TestFixedRoutesWinOverTenantCatchAll(t *testing.T) {
	cfg := testConfig(t)
	// A storefront named "health" must not shadow the ops endpoints.
	company := &models.AffiliatedCompany{Name: "Health Co", Shortname: "health"}
	router := newTestRouter(cfg, stubSessions{}, company)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 from liveness probe got %d", resp.Code)
	}
}

func TestStorefrontIsPublic(t *testing.T) {
	cfg := testConfig(t)
	company := &models.AffiliatedCompany{Name: "Acme Medical", Shortname: "acme"}
	router := newTestRouter(cfg, stubSessions{}, company)

	for _, path := range []string{"/acme/products", "/acme/packages"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for public %s got %d", path, resp.Code)
		}
	}
}
