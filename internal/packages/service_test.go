package packages

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/qmedica/catalog-backend/internal/uploads"
	"github.com/qmedica/catalog-backend/pkg/db/models"
	"github.com/qmedica/catalog-backend/pkg/enums"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
)

type stubPackageRepo struct {
	stored       *models.Package
	products     []models.PackageProduct
	specs        []models.PackageSpec
	failOnCreate bool
	failOnUpdate bool
	deletedID    uint
}

func (s *stubPackageRepo) List(ctx context.Context, search string) ([]models.Package, error) {
	if s.stored == nil {
		return nil, nil
	}
	return []models.Package{*s.stored}, nil
}

func (s *stubPackageRepo) FindByID(ctx context.Context, id uint) (*models.Package, error) {
	if s.stored == nil || s.stored.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	pack := *s.stored
	pack.Products = s.products
	pack.Specs = s.specs
	return &pack, nil
}

func (s *stubPackageRepo) CreateWithChildren(ctx context.Context, pack *models.Package, products []models.PackageProduct, specs []models.PackageSpec) error {
	if s.failOnCreate {
		return fmt.Errorf("insert failed")
	}
	pack.ID = 1
	s.stored = pack
	s.products = products
	s.specs = specs
	return nil
}

func (s *stubPackageRepo) UpdateWithChildren(ctx context.Context, pack *models.Package, products []models.PackageProduct, specs []models.PackageSpec) error {
	if s.failOnUpdate {
		return fmt.Errorf("update failed")
	}
	s.stored = pack
	s.products = products
	s.specs = specs
	return nil
}

func (s *stubPackageRepo) Delete(ctx context.Context, id uint) error {
	s.deletedID = id
	return nil
}

type stubAssets struct {
	stored  []string
	removed []string
}

func (s *stubAssets) Replace(ctx context.Context, data []byte, originalName string, kind enums.UploadKind, oldPath string) (*uploads.Result, error) {
	path := fmt.Sprintf("packages/stored-%d.jpg", len(s.stored)+1)
	s.stored = append(s.stored, path)
	if oldPath != "" && oldPath != path {
		s.removed = append(s.removed, oldPath)
	}
	return &uploads.Result{Path: path, ContentType: "image/jpeg"}, nil
}

func (s *stubAssets) Remove(ctx context.Context, path string) {
	s.removed = append(s.removed, path)
}

func newTestService(t *testing.T, repo *stubPackageRepo, assets *stubAssets) Service {
	t.Helper()
	svc, err := NewService(repo, assets)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateRequiresName(t *testing.T) {
	svc := newTestService(t, &stubPackageRepo{}, &stubAssets{})

	_, err := svc.Create(context.Background(), PackageInput{Name: "   "})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateAssignsSortOrderFromPosition(t *testing.T) {
	repo := &stubPackageRepo{}
	svc := newTestService(t, repo, &stubAssets{})

	_, err := svc.Create(context.Background(), PackageInput{
		Name:       "Starter Kit",
		ProductIDs: []uint{9, 4, 9, 2},
		Specs: []SpecInput{
			{Icon: "box", SpecText: "Ships assembled"},
			{SpecText: "  "},
			{Icon: "truck", SpecText: "Next-day delivery"},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if len(repo.products) != 3 {
		t.Fatalf("expected duplicate product dropped, got %d rows", len(repo.products))
	}
	for i, want := range []uint{9, 4, 2} {
		if repo.products[i].ProductID != want {
			t.Fatalf("product %d = %d, want %d", i, repo.products[i].ProductID, want)
		}
	}
	if repo.products[2].SortOrder != 3 {
		t.Fatalf("sort_order should keep form position, got %d", repo.products[2].SortOrder)
	}
	if len(repo.specs) != 2 {
		t.Fatalf("blank spec should be dropped, got %d rows", len(repo.specs))
	}
}

func TestCreateRemovesImageOnRepoFailure(t *testing.T) {
	assets := &stubAssets{}
	svc := newTestService(t, &stubPackageRepo{failOnCreate: true}, assets)

	_, err := svc.Create(context.Background(), PackageInput{
		Name:          "Starter Kit",
		Image:         []byte("img"),
		ImageFilename: "kit.png",
	})
	if err == nil {
		t.Fatal("expected create to fail")
	}
	if len(assets.removed) != 1 || assets.removed[0] != "packages/stored-1.jpg" {
		t.Fatalf("stored image should be cleaned up, removed=%v", assets.removed)
	}
}

func TestUpdateKeepsImageWhenNoneSubmitted(t *testing.T) {
	existing := "packages/current.jpg"
	repo := &stubPackageRepo{stored: &models.Package{ID: 1, Name: "Kit", MainImage: &existing}}
	assets := &stubAssets{}
	svc := newTestService(t, repo, assets)

	updated, err := svc.Update(context.Background(), 1, PackageInput{Name: "Kit v2"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.MainImage == nil || *updated.MainImage != existing {
		t.Fatalf("main image should be preserved, got %v", updated.MainImage)
	}
	if len(assets.removed) != 0 {
		t.Fatalf("nothing should be removed, got %v", assets.removed)
	}
}

func TestUpdateRemovesOldImageAfterSave(t *testing.T) {
	oldImage := "packages/current.jpg"
	repo := &stubPackageRepo{stored: &models.Package{ID: 1, Name: "Kit", MainImage: &oldImage}}
	assets := &stubAssets{}
	svc := newTestService(t, repo, assets)

	_, err := svc.Update(context.Background(), 1, PackageInput{
		Name:          "Kit v2",
		Image:         []byte("img"),
		ImageFilename: "kit.png",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(assets.removed) != 1 || assets.removed[0] != oldImage {
		t.Fatalf("old image should be removed after the row is saved, removed=%v", assets.removed)
	}
}

func TestUpdateKeepsOldImageWhenSaveFails(t *testing.T) {
	oldImage := "packages/current.jpg"
	repo := &stubPackageRepo{
		stored:       &models.Package{ID: 1, Name: "Kit", MainImage: &oldImage},
		failOnUpdate: true,
	}
	assets := &stubAssets{}
	svc := newTestService(t, repo, assets)

	_, err := svc.Update(context.Background(), 1, PackageInput{
		Name:          "Kit v2",
		Image:         []byte("img"),
		ImageFilename: "kit.png",
	})
	if err == nil {
		t.Fatal("expected update to fail")
	}
	if len(assets.removed) != 1 || assets.removed[0] != "packages/stored-1.jpg" {
		t.Fatalf("new image should be cleaned up and the old one kept, removed=%v", assets.removed)
	}
}

func TestDeleteRemovesImageFile(t *testing.T) {
	image := "packages/current.jpg"
	repo := &stubPackageRepo{stored: &models.Package{ID: 4, Name: "Kit", MainImage: &image}}
	assets := &stubAssets{}
	svc := newTestService(t, repo, assets)

	if err := svc.Delete(context.Background(), 4); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if repo.deletedID != 4 {
		t.Fatalf("row not deleted, got id %d", repo.deletedID)
	}
	if len(assets.removed) != 1 || assets.removed[0] != image {
		t.Fatalf("image file should be removed, got %v", assets.removed)
	}
}
