package categories

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/qmedica/catalog-backend/pkg/db/models"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
)

type stubCategoryRepo struct {
	categories map[uint]models.Category
	nextID     uint
	deleted    []uint
}

func newStubCategoryRepo(seed ...models.Category) *stubCategoryRepo {
	repo := &stubCategoryRepo{categories: map[uint]models.Category{}, nextID: 1}
	for _, c := range seed {
		repo.categories[c.ID] = c
		if c.ID >= repo.nextID {
			repo.nextID = c.ID + 1
		}
	}
	return repo
}

func (r *stubCategoryRepo) ListAll(ctx context.Context) ([]models.Category, error) {
	out := make([]models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	return out, nil
}

func (r *stubCategoryRepo) FindByID(ctx context.Context, id uint) (*models.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *stubCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	category.ID = r.nextID
	r.nextID++
	r.categories[category.ID] = *category
	return nil
}

func (r *stubCategoryRepo) Update(ctx context.Context, category *models.Category) error {
	r.categories[category.ID] = *category
	return nil
}

func (r *stubCategoryRepo) Delete(ctx context.Context, id uint) error {
	delete(r.categories, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func TestCreateRejectsBlankName(t *testing.T) {
	svc, err := NewService(newStubCategoryRepo())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if _, err := svc.Create(context.Background(), "   ", nil); err == nil {
		t.Fatal("expected validation error for blank name")
	}
}

func TestCreateRejectsMissingParent(t *testing.T) {
	svc, _ := NewService(newStubCategoryRepo())
	missing := uint(99)
	_, err := svc.Create(context.Background(), "Ultrasound", &missing)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestCreateNestsUnderParent(t *testing.T) {
	repo := newStubCategoryRepo(models.Category{ID: 1, Name: "Imaging"})
	svc, _ := NewService(repo)

	parent := uint(1)
	created, err := svc.Create(context.Background(), "Ultrasound", &parent)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ParentID == nil || *created.ParentID != 1 {
		t.Fatalf("expected parent 1, got %v", created.ParentID)
	}
}

func TestDeleteMissingCategory(t *testing.T) {
	svc, _ := NewService(newStubCategoryRepo())
	err := svc.Delete(context.Background(), 42)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestTreeNestsChildren(t *testing.T) {
	parentID := uint(1)
	repo := newStubCategoryRepo(
		models.Category{ID: 1, Name: "Imaging"},
		models.Category{ID: 2, Name: "Ultrasound", ParentID: &parentID},
	)
	svc, _ := NewService(repo)

	tree, err := svc.Tree(context.Background())
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if len(tree) != 1 {
		t.Fatalf("expected 1 root, got %d", len(tree))
	}
	if len(tree[0].Children) != 1 || tree[0].Children[0].Name != "Ultrasound" {
		t.Fatalf("expected nested child, got %+v", tree[0])
	}
}
