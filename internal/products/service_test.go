package products

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/qmedica/catalog-backend/internal/uploads"
	"github.com/qmedica/catalog-backend/pkg/db/models"
	"github.com/qmedica/catalog-backend/pkg/enums"
)

type stubProductRepo struct {
	products map[uint]*models.Product
	children map[uint]Children
	nextID   uint
	failOn   string
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: map[uint]*models.Product{}, children: map[uint]Children{}, nextID: 1}
}

func (r *stubProductRepo) List(ctx context.Context, query ListQuery) ([]models.Product, error) {
	var out []models.Product
	for id, p := range r.products {
		if len(query.CategoryIDs) > 0 {
			allowed := map[uint]struct{}{}
			for _, cid := range query.CategoryIDs {
				allowed[cid] = struct{}{}
			}
			match := false
			for _, cid := range r.children[id].CategoryIDs {
				if _, ok := allowed[cid]; ok {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubProductRepo) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	ch := r.children[id]
	copied.Images = append([]models.ProductImage(nil), ch.Images...)
	copied.Specifications = append([]models.ProductSpecification(nil), ch.Specs...)
	return &copied, nil
}

func (r *stubProductRepo) CreateFull(ctx context.Context, product *models.Product, children Children) error {
	if r.failOn == "create" {
		return errors.New("forced create failure")
	}
	product.ID = r.nextID
	r.nextID++
	r.products[product.ID] = product
	r.children[product.ID] = children
	return nil
}

func (r *stubProductRepo) UpdateFull(ctx context.Context, product *models.Product, children Children) error {
	if r.failOn == "update" {
		return errors.New("forced update failure")
	}
	r.products[product.ID] = product
	r.children[product.ID] = children
	return nil
}

func (r *stubProductRepo) Delete(ctx context.Context, id uint) error {
	delete(r.products, id)
	delete(r.children, id)
	return nil
}

type stubCategoryLister struct {
	all []models.Category
}

func (s *stubCategoryLister) ListAll(ctx context.Context) ([]models.Category, error) {
	return s.all, nil
}

type stubAssets struct {
	saved   int
	removed []string
}

func (s *stubAssets) Save(ctx context.Context, data []byte, originalName string, kind enums.UploadKind) (*uploads.Result, error) {
	s.saved++
	return &uploads.Result{Path: fmt.Sprintf("products/stored-%d.jpg", s.saved), ContentType: "image/jpeg"}, nil
}

func (s *stubAssets) Remove(ctx context.Context, path string) {
	s.removed = append(s.removed, path)
}

func newProductService(t *testing.T, repo *stubProductRepo, assets *stubAssets, cats ...models.Category) Service {
	t.Helper()
	svc, err := NewService(repo, &stubCategoryLister{all: cats}, assets)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateRequiresCode(t *testing.T) {
	svc := newProductService(t, newStubProductRepo(), &stubAssets{})
	if _, err := svc.Create(context.Background(), ProductInput{Code: "  "}); err == nil {
		t.Fatal("expected validation error for missing code")
	}
}

func TestCreateStoresSpecsMaterialsAndMainImage(t *testing.T) {
	repo := newStubProductRepo()
	assets := &stubAssets{}
	svc := newProductService(t, repo, assets)

	created, err := svc.Create(context.Background(), ProductInput{
		Code: "ULTRA-100",
		Specs: []SpecInput{
			{Key: "Weight", Value: "2kg"},
			{Key: "Power", Value: "220V"},
		},
		MaterialIDs: []uint{7},
		NewImages: []NewImage{
			{FileUpload: FileUpload{Data: []byte("a"), Filename: "a.png"}},
			{FileUpload: FileUpload{Data: []byte("b"), Filename: "b.png"}, IsMain: true},
			{FileUpload: FileUpload{Data: []byte("c"), Filename: "c.png"}},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	detail, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(detail.Specifications) != 2 {
		t.Fatalf("expected 2 specs, got %d", len(detail.Specifications))
	}
	if got := repo.children[created.ID].MaterialIDs; len(got) != 1 || got[0] != 7 {
		t.Fatalf("expected material link [7], got %v", got)
	}

	mains := 0
	var mainPath string
	for _, img := range detail.Images {
		if img.IsMain {
			mains++
			mainPath = img.ImagePath
		}
	}
	if mains != 1 {
		t.Fatalf("expected exactly one main image, got %d", mains)
	}
	if mainPath != "products/stored-2.jpg" {
		t.Fatalf("expected second upload to be main, got %s", mainPath)
	}
}

func TestCreateCleansUpStoredFilesOnDBFailure(t *testing.T) {
	repo := newStubProductRepo()
	repo.failOn = "create"
	assets := &stubAssets{}
	svc := newProductService(t, repo, assets)

	_, err := svc.Create(context.Background(), ProductInput{
		Code:      "FAIL-1",
		NewImages: []NewImage{{FileUpload: FileUpload{Data: []byte("a"), Filename: "a.png"}}},
	})
	if err == nil {
		t.Fatal("expected create to fail")
	}
	if len(assets.removed) != 1 {
		t.Fatalf("expected 1 cleaned-up file, got %v", assets.removed)
	}
}

func TestUpdateRemovesDroppedImageFiles(t *testing.T) {
	repo := newStubProductRepo()
	assets := &stubAssets{}
	svc := newProductService(t, repo, assets)
	ctx := context.Background()

	created, err := svc.Create(ctx, ProductInput{
		Code: "EDIT-1",
		NewImages: []NewImage{
			{FileUpload: FileUpload{Data: []byte("a"), Filename: "a.png"}},
			{FileUpload: FileUpload{Data: []byte("b"), Filename: "b.png"}},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Keep only the first stored image.
	if _, err := svc.Update(ctx, created.ID, ProductInput{
		Code:       "EDIT-1",
		KeptImages: []KeptImage{{Path: "products/stored-1.jpg", IsMain: true}},
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	removedSecond := false
	for _, path := range assets.removed {
		if path == "products/stored-2.jpg" {
			removedSecond = true
		}
		if path == "products/stored-1.jpg" {
			t.Fatal("kept image must not be deleted")
		}
	}
	if !removedSecond {
		t.Fatalf("expected dropped image file removed, got %v", assets.removed)
	}
}

func TestListExpandsParentCategory(t *testing.T) {
	parentID := uint(1)
	repo := newStubProductRepo()
	assets := &stubAssets{}
	svc := newProductService(t, repo, assets,
		models.Category{ID: 1, Name: "Imaging"},
		models.Category{ID: 2, Name: "Ultrasound", ParentID: &parentID},
	)
	ctx := context.Background()

	if _, err := svc.Create(ctx, ProductInput{Code: "CHILD-TAGGED", CategoryIDs: []uint{2}}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	results, err := svc.List(ctx, ListFilter{CategoryIDs: []uint{1}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected child-tagged product via parent filter, got %d results", len(results))
	}
}

func TestDeleteRemovesAssetFiles(t *testing.T) {
	repo := newStubProductRepo()
	assets := &stubAssets{}
	svc := newProductService(t, repo, assets)
	ctx := context.Background()

	created, err := svc.Create(ctx, ProductInput{
		Code:      "DEL-1",
		NewImages: []NewImage{{FileUpload: FileUpload{Data: []byte("a"), Filename: "a.png"}}},
		MDACert:   &FileUpload{Data: []byte("%PDF"), Filename: "cert.pdf"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	assets.removed = nil
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(assets.removed) < 1 {
		t.Fatal("expected asset files removed on delete")
	}
}
