package marketing

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/qmedica/catalog-backend/internal/uploads"
	"github.com/qmedica/catalog-backend/pkg/db/models"
	"github.com/qmedica/catalog-backend/pkg/enums"
)

type stubMarketingRepo struct {
	material     *models.MarketingMaterial
	failOnUpdate bool

	lastEventFilter     ListFilter
	lastTestimonyFilter ListFilter
}

func (s *stubMarketingRepo) ListMaterials(ctx context.Context, filter MaterialFilter) ([]models.MarketingMaterial, error) {
	return nil, nil
}

func (s *stubMarketingRepo) FindMaterialByID(ctx context.Context, id uint) (*models.MarketingMaterial, error) {
	if s.material == nil || s.material.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	material := *s.material
	return &material, nil
}

func (s *stubMarketingRepo) CreateMaterial(ctx context.Context, material *models.MarketingMaterial) error {
	material.ID = 1
	s.material = material
	return nil
}

func (s *stubMarketingRepo) UpdateMaterial(ctx context.Context, material *models.MarketingMaterial) error {
	if s.failOnUpdate {
		return fmt.Errorf("update failed")
	}
	s.material = material
	return nil
}

func (s *stubMarketingRepo) DeleteMaterial(ctx context.Context, id uint) error {
	return nil
}

func (s *stubMarketingRepo) ListEvents(ctx context.Context, filter ListFilter) ([]models.Event, error) {
	s.lastEventFilter = filter
	return nil, nil
}

func (s *stubMarketingRepo) FindEventByID(ctx context.Context, id uint) (*models.Event, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubMarketingRepo) CreateEventWithLinks(ctx context.Context, event *models.Event, links []models.EventLink) error {
	panic("unimplemented")
}

func (s *stubMarketingRepo) UpdateEventWithLinks(ctx context.Context, event *models.Event, links []models.EventLink) error {
	panic("unimplemented")
}

func (s *stubMarketingRepo) DeleteEvent(ctx context.Context, id uint) error {
	return nil
}

func (s *stubMarketingRepo) ListTestimonies(ctx context.Context, filter ListFilter) ([]models.Testimony, error) {
	s.lastTestimonyFilter = filter
	return nil, nil
}

func (s *stubMarketingRepo) FindTestimonyByID(ctx context.Context, id uint) (*models.Testimony, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubMarketingRepo) CreateTestimonyWithLinks(ctx context.Context, testimony *models.Testimony, links []models.TestimonyLink) error {
	panic("unimplemented")
}

func (s *stubMarketingRepo) UpdateTestimonyWithLinks(ctx context.Context, testimony *models.Testimony, links []models.TestimonyLink) error {
	panic("unimplemented")
}

func (s *stubMarketingRepo) DeleteTestimony(ctx context.Context, id uint) error {
	return nil
}

type stubAssetStore struct {
	stored  []string
	removed []string
}

func (s *stubAssetStore) Replace(ctx context.Context, data []byte, originalName string, kind enums.UploadKind, oldPath string) (*uploads.Result, error) {
	path := fmt.Sprintf("marketing/stored-%d.pdf", len(s.stored)+1)
	s.stored = append(s.stored, path)
	if oldPath != "" && oldPath != path {
		s.removed = append(s.removed, oldPath)
	}
	return &uploads.Result{Path: path, ContentType: "application/pdf"}, nil
}

func (s *stubAssetStore) Remove(ctx context.Context, path string) {
	s.removed = append(s.removed, path)
}

func newTestService(t *testing.T, repo *stubMarketingRepo, assets *stubAssetStore) Service {
	t.Helper()
	svc, err := NewService(repo, assets)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestUpdateMaterialRemovesOldFileAfterSave(t *testing.T) {
	repo := &stubMarketingRepo{material: &models.MarketingMaterial{
		ID:       1,
		Name:     "Brochure",
		FilePath: "marketing/current.pdf",
	}}
	assets := &stubAssetStore{}
	svc := newTestService(t, repo, assets)

	updated, err := svc.UpdateMaterial(context.Background(), 1, MaterialInput{
		Name:     "Brochure v2",
		File:     []byte("pdf"),
		Filename: "brochure.pdf",
	})
	if err != nil {
		t.Fatalf("UpdateMaterial: %v", err)
	}
	if updated.FilePath != "marketing/stored-1.pdf" {
		t.Fatalf("file not replaced, got %q", updated.FilePath)
	}
	if len(assets.removed) != 1 || assets.removed[0] != "marketing/current.pdf" {
		t.Fatalf("old file should be removed after the row is saved, removed=%v", assets.removed)
	}
}

func TestUpdateMaterialKeepsOldFileWhenSaveFails(t *testing.T) {
	repo := &stubMarketingRepo{
		material: &models.MarketingMaterial{
			ID:       1,
			Name:     "Brochure",
			FilePath: "marketing/current.pdf",
		},
		failOnUpdate: true,
	}
	assets := &stubAssetStore{}
	svc := newTestService(t, repo, assets)

	_, err := svc.UpdateMaterial(context.Background(), 1, MaterialInput{
		Name:     "Brochure v2",
		File:     []byte("pdf"),
		Filename: "brochure.pdf",
	})
	if err == nil {
		t.Fatal("expected update to fail")
	}
	if len(assets.removed) != 1 || assets.removed[0] != "marketing/stored-1.pdf" {
		t.Fatalf("new file should be cleaned up and the old one kept, removed=%v", assets.removed)
	}
}

func TestListEventsPassesProductFilter(t *testing.T) {
	repo := &stubMarketingRepo{}
	svc := newTestService(t, repo, &stubAssetStore{})

	productID := uint(42)
	if _, err := svc.ListEvents(context.Background(), ListFilter{Search: "  expo  ", ProductID: &productID}); err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if repo.lastEventFilter.Search != "expo" {
		t.Fatalf("search not trimmed, got %q", repo.lastEventFilter.Search)
	}
	if repo.lastEventFilter.ProductID == nil || *repo.lastEventFilter.ProductID != productID {
		t.Fatalf("product filter dropped, got %v", repo.lastEventFilter.ProductID)
	}
}

func TestListTestimoniesPassesProductFilter(t *testing.T) {
	repo := &stubMarketingRepo{}
	svc := newTestService(t, repo, &stubAssetStore{})

	productID := uint(7)
	if _, err := svc.ListTestimonies(context.Background(), ListFilter{ProductID: &productID}); err != nil {
		t.Fatalf("ListTestimonies: %v", err)
	}
	if repo.lastTestimonyFilter.ProductID == nil || *repo.lastTestimonyFilter.ProductID != productID {
		t.Fatalf("product filter dropped, got %v", repo.lastTestimonyFilter.ProductID)
	}
}
