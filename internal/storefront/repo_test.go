package storefront

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/qmedica/catalog-backend/pkg/db/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// A single connection keeps the in-memory database alive for the test.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, conn.AutoMigrate(
		&models.Setting{},
		&models.AffiliatedCompany{},
		&models.Supplier{},
		&models.SupplierCompany{},
		&models.Product{},
		&models.ProductImage{},
		&models.Package{},
		&models.PackageProduct{},
		&models.PackageSpec{},
	))
	return conn
}

func seedCompany(t *testing.T, db *gorm.DB, name, shortname string) *models.AffiliatedCompany {
	t.Helper()
	company := &models.AffiliatedCompany{Name: name, Shortname: shortname}
	require.NoError(t, db.Create(company).Error)
	return company
}

func seedSupplier(t *testing.T, db *gorm.DB, name string, companyIDs ...uint) *models.Supplier {
	t.Helper()
	supplier := &models.Supplier{Name: name}
	require.NoError(t, db.Create(supplier).Error)
	for _, companyID := range companyIDs {
		link := &models.SupplierCompany{SupplierID: supplier.ID, CompanyID: companyID}
		require.NoError(t, db.Create(link).Error)
	}
	return supplier
}

func seedProduct(t *testing.T, db *gorm.DB, code string, supplierID uint) *models.Product {
	t.Helper()
	product := &models.Product{Code: code, SupplierID: &supplierID}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestListProductsScopesToCompanySuppliers(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	acme := seedCompany(t, db, "Acme Medical", "acme")
	other := seedCompany(t, db, "Other Distributors", "other")

	acmeSupplier := seedSupplier(t, db, "Acme Supplier", acme.ID)
	otherSupplier := seedSupplier(t, db, "Other Supplier", other.ID)

	first := seedProduct(t, db, "ACME-001", acmeSupplier.ID)
	second := seedProduct(t, db, "ACME-002", acmeSupplier.ID)
	seedProduct(t, db, "OTHER-001", otherSupplier.ID)
	seedProduct(t, db, "OTHER-002", otherSupplier.ID)

	products, err := repo.ListProducts(ctx, acme.ID, "", nil)
	require.NoError(t, err)
	require.Len(t, products, 2)

	got := map[uint]bool{products[0].ID: true, products[1].ID: true}
	assert.True(t, got[first.ID], "missing first company product")
	assert.True(t, got[second.ID], "missing second company product")
}

func TestFindProductRejectsForeignCompany(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	acme := seedCompany(t, db, "Acme Medical", "acme")
	other := seedCompany(t, db, "Other Distributors", "other")
	otherSupplier := seedSupplier(t, db, "Other Supplier", other.ID)
	foreign := seedProduct(t, db, "OTHER-001", otherSupplier.ID)

	_, err := repo.FindProduct(ctx, acme.ID, foreign.ID)
	assert.Error(t, err, "product of another company's supplier should not resolve")
}

func TestListPackagesRequiresVisibleProduct(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	acme := seedCompany(t, db, "Acme Medical", "acme")
	other := seedCompany(t, db, "Other Distributors", "other")
	acmeSupplier := seedSupplier(t, db, "Acme Supplier", acme.ID)
	otherSupplier := seedSupplier(t, db, "Other Supplier", other.ID)

	visible := seedProduct(t, db, "ACME-001", acmeSupplier.ID)
	hidden := seedProduct(t, db, "OTHER-001", otherSupplier.ID)

	visiblePack := &models.Package{Name: "Visible Kit"}
	require.NoError(t, db.Create(visiblePack).Error)
	require.NoError(t, db.Create(&models.PackageProduct{PackageID: visiblePack.ID, ProductID: visible.ID}).Error)

	hiddenPack := &models.Package{Name: "Hidden Kit"}
	require.NoError(t, db.Create(hiddenPack).Error)
	require.NoError(t, db.Create(&models.PackageProduct{PackageID: hiddenPack.ID, ProductID: hidden.ID}).Error)

	packages, err := repo.ListPackages(ctx, acme.ID, "")
	require.NoError(t, err)
	require.Len(t, packages, 1)
	assert.Equal(t, visiblePack.ID, packages[0].ID)
}
