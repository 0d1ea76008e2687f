package packages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/qmedica/catalog-backend/internal/uploads"
	"github.com/qmedica/catalog-backend/pkg/db/models"
	"github.com/qmedica/catalog-backend/pkg/enums"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
)

type packageRepository interface {
	List(ctx context.Context, search string) ([]models.Package, error)
	FindByID(ctx context.Context, id uint) (*models.Package, error)
	CreateWithChildren(ctx context.Context, pack *models.Package, products []models.PackageProduct, specs []models.PackageSpec) error
	UpdateWithChildren(ctx context.Context, pack *models.Package, products []models.PackageProduct, specs []models.PackageSpec) error
	Delete(ctx context.Context, id uint) error
}

type assetStore interface {
	Replace(ctx context.Context, data []byte, originalName string, kind enums.UploadKind, oldPath string) (*uploads.Result, error)
	Remove(ctx context.Context, path string)
}

// SpecInput is one bullet line on the package form; ordering follows slice
// position.
type SpecInput struct {
	Icon     string
	SpecText string
}

// PackageInput carries the admin form fields for a product bundle. Slice
// position in ProductIDs becomes sort_order.
type PackageInput struct {
	Name        string
	Description string
	BundleLabel string
	ProductIDs  []uint
	Specs       []SpecInput

	// Image is the raw upload; nil on edit means keep the current image.
	Image         []byte
	ImageFilename string
}

// Service exposes package bundle operations.
type Service interface {
	List(ctx context.Context, search string) ([]models.Package, error)
	Get(ctx context.Context, id uint) (*models.Package, error)
	Create(ctx context.Context, input PackageInput) (*models.Package, error)
	Update(ctx context.Context, id uint, input PackageInput) (*models.Package, error)
	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo   packageRepository
	assets assetStore
}

func NewService(repo packageRepository, assets assetStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("package repository required")
	}
	if assets == nil {
		return nil, fmt.Errorf("asset store required")
	}
	return &service{repo: repo, assets: assets}, nil
}

func (s *service) List(ctx context.Context, search string) ([]models.Package, error) {
	packages, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list packages")
	}
	return packages, nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.Package, error) {
	pack, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "package not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load package")
	}
	return pack, nil
}

func (s *service) Create(ctx context.Context, input PackageInput) (*models.Package, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "package name is required")
	}

	pack := buildPackage(input)

	if len(input.Image) > 0 {
		stored, err := s.assets.Replace(ctx, input.Image, input.ImageFilename, enums.UploadKindPackageImage, "")
		if err != nil {
			return nil, err
		}
		pack.MainImage = &stored.Path
	}

	products, specs := buildChildren(input)
	if err := s.repo.CreateWithChildren(ctx, pack, products, specs); err != nil {
		if pack.MainImage != nil {
			s.assets.Remove(ctx, *pack.MainImage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create package")
	}
	return s.Get(ctx, pack.ID)
}

func (s *service) Update(ctx context.Context, id uint, input PackageInput) (*models.Package, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "package name is required")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	pack := buildPackage(input)
	pack.ID = existing.ID
	pack.CreatedAt = existing.CreatedAt
	pack.MainImage = existing.MainImage

	if len(input.Image) > 0 {
		stored, err := s.assets.Replace(ctx, input.Image, input.ImageFilename, enums.UploadKindPackageImage, "")
		if err != nil {
			return nil, err
		}
		pack.MainImage = &stored.Path
	}

	products, specs := buildChildren(input)
	if err := s.repo.UpdateWithChildren(ctx, pack, products, specs); err != nil {
		if len(input.Image) > 0 && pack.MainImage != nil {
			s.assets.Remove(ctx, *pack.MainImage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update package")
	}

	// The prior image goes only after the new row is committed.
	if len(input.Image) > 0 && existing.MainImage != nil && deref(existing.MainImage) != deref(pack.MainImage) {
		s.assets.Remove(ctx, *existing.MainImage)
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uint) error {
	pack, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete package")
	}
	if pack.MainImage != nil {
		s.assets.Remove(ctx, *pack.MainImage)
	}
	return nil
}

func buildPackage(input PackageInput) *models.Package {
	return &models.Package{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		BundleLabel: strings.TrimSpace(input.BundleLabel),
	}
}

func buildChildren(input PackageInput) ([]models.PackageProduct, []models.PackageSpec) {
	seen := make(map[uint]struct{}, len(input.ProductIDs))
	products := make([]models.PackageProduct, 0, len(input.ProductIDs))
	for i, productID := range input.ProductIDs {
		if _, dup := seen[productID]; dup {
			continue
		}
		seen[productID] = struct{}{}
		products = append(products, models.PackageProduct{ProductID: productID, SortOrder: i})
	}

	specs := make([]models.PackageSpec, 0, len(input.Specs))
	for i, spec := range input.Specs {
		text := strings.TrimSpace(spec.SpecText)
		if text == "" {
			continue
		}
		specs = append(specs, models.PackageSpec{Icon: strings.TrimSpace(spec.Icon), SpecText: text, SortOrder: i})
	}
	return products, specs
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
