package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/qmedica/catalog-backend/internal/categories"
	"github.com/qmedica/catalog-backend/internal/uploads"
	"github.com/qmedica/catalog-backend/pkg/db/models"
	"github.com/qmedica/catalog-backend/pkg/enums"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
)

type productRepository interface {
	List(ctx context.Context, query ListQuery) ([]models.Product, error)
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	CreateFull(ctx context.Context, product *models.Product, children Children) error
	UpdateFull(ctx context.Context, product *models.Product, children Children) error
	Delete(ctx context.Context, id uint) error
}

type categoryLister interface {
	ListAll(ctx context.Context) ([]models.Category, error)
}

type assetStore interface {
	Save(ctx context.Context, data []byte, originalName string, kind enums.UploadKind) (*uploads.Result, error)
	Remove(ctx context.Context, path string)
}

// FileUpload is a raw attachment from the admin form.
type FileUpload struct {
	Data     []byte
	Filename string
}

// NewImage is a freshly uploaded gallery image.
type NewImage struct {
	FileUpload
	IsMain bool
}

// KeptImage references an already-stored gallery image on edit.
type KeptImage struct {
	Path   string
	IsMain bool
}

// SpecInput is one free-form attribute row.
type SpecInput struct {
	Key   string
	Value string
}

// ProductInput carries the admin form fields for create and edit. On edit,
// KeptImages lists the stored paths to retain; images absent from it are
// deleted from disk after the transaction commits.
type ProductInput struct {
	Code        string
	Model       string
	MDARegNo    string
	Description string
	SupplierID  *uint

	Specs        []SpecInput
	CategoryIDs  []uint
	TypeIDs      []uint
	MaterialIDs  []uint
	EventIDs     []uint
	TestimonyIDs []uint

	NewImages  []NewImage
	KeptImages []KeptImage
	MDACert    *FileUpload
}

// ListFilter narrows the admin product list.
type ListFilter struct {
	Search      string
	CategoryIDs []uint
	TypeIDs     []uint
	SupplierID  *uint
}

// Service exposes product operations.
type Service interface {
	List(ctx context.Context, filter ListFilter) ([]models.Product, error)
	Get(ctx context.Context, id uint) (*models.Product, error)
	Create(ctx context.Context, input ProductInput) (*models.Product, error)
	Update(ctx context.Context, id uint, input ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo       productRepository
	categories categoryLister
	assets     assetStore
}

func NewService(repo productRepository, categoryRepo categoryLister, assets assetStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if categoryRepo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if assets == nil {
		return nil, fmt.Errorf("asset store required")
	}
	return &service{repo: repo, categories: categoryRepo, assets: assets}, nil
}

// List expands the selected category ids through the tree closure so a
// parent category also matches products tagged only with its descendants.
func (s *service) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	query := ListQuery{
		Search:     strings.TrimSpace(filter.Search),
		TypeIDs:    filter.TypeIDs,
		SupplierID: filter.SupplierID,
	}

	if len(filter.CategoryIDs) > 0 {
		all, err := s.categories.ListAll(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
		}
		query.CategoryIDs = categories.ExpandIDs(all, filter.CategoryIDs)
	}

	products, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return products, nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) Create(ctx context.Context, input ProductInput) (*models.Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	product := buildProduct(input)

	storedPaths, children, err := s.storeAttachments(ctx, product, input)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateFull(ctx, product, children); err != nil {
		s.removeAll(ctx, storedPaths)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return s.Get(ctx, product.ID)
}

func (s *service) Update(ctx context.Context, id uint, input ProductInput) (*models.Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	product := buildProduct(input)
	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt
	product.MDACert = existing.MDACert
	product.ProductImage = existing.ProductImage

	storedPaths, children, err := s.storeAttachments(ctx, product, input)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateFull(ctx, product, children); err != nil {
		s.removeAll(ctx, storedPaths)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	// Old files go only after the new rows are committed.
	kept := map[string]struct{}{}
	for _, img := range children.Images {
		kept[img.ImagePath] = struct{}{}
	}
	for _, img := range existing.Images {
		if _, ok := kept[img.ImagePath]; !ok {
			s.assets.Remove(ctx, img.ImagePath)
		}
	}
	if input.MDACert != nil && existing.MDACert != nil && (product.MDACert == nil || *existing.MDACert != *product.MDACert) {
		s.assets.Remove(ctx, *existing.MDACert)
	}

	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uint) error {
	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}

	for _, img := range product.Images {
		s.assets.Remove(ctx, img.ImagePath)
	}
	if product.MDACert != nil {
		s.assets.Remove(ctx, *product.MDACert)
	}
	if product.ProductImage != nil {
		s.assets.Remove(ctx, *product.ProductImage)
	}
	return nil
}

func validateInput(input ProductInput) error {
	if strings.TrimSpace(input.Code) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product code is required")
	}
	return nil
}

func buildProduct(input ProductInput) *models.Product {
	return &models.Product{
		Code:        strings.TrimSpace(input.Code),
		Model:       strings.TrimSpace(input.Model),
		MDARegNo:    strings.TrimSpace(input.MDARegNo),
		Description: strings.TrimSpace(input.Description),
		SupplierID:  input.SupplierID,
	}
}

// storeAttachments writes new files to disk and assembles the child set.
// Returned paths are the newly stored files, removed again if the DB write
// fails afterwards.
func (s *service) storeAttachments(ctx context.Context, product *models.Product, input ProductInput) ([]string, Children, error) {
	children := Children{
		CategoryIDs:  input.CategoryIDs,
		TypeIDs:      input.TypeIDs,
		MaterialIDs:  input.MaterialIDs,
		EventIDs:     input.EventIDs,
		TestimonyIDs: input.TestimonyIDs,
	}
	for _, spec := range input.Specs {
		key := strings.TrimSpace(spec.Key)
		if key == "" {
			continue
		}
		children.Specs = append(children.Specs, models.ProductSpecification{
			SpecKey:   key,
			SpecValue: strings.TrimSpace(spec.Value),
		})
	}

	var stored []string

	for _, kept := range input.KeptImages {
		children.Images = append(children.Images, models.ProductImage{
			ImagePath: kept.Path,
			IsMain:    kept.IsMain,
		})
	}
	for _, img := range input.NewImages {
		result, err := s.assets.Save(ctx, img.Data, img.Filename, enums.UploadKindProductImage)
		if err != nil {
			s.removeAll(ctx, stored)
			return nil, Children{}, err
		}
		stored = append(stored, result.Path)
		children.Images = append(children.Images, models.ProductImage{
			ImagePath: result.Path,
			IsMain:    img.IsMain,
		})
	}
	normalizeMain(children.Images)

	if input.MDACert != nil {
		result, err := s.assets.Save(ctx, input.MDACert.Data, input.MDACert.Filename, enums.UploadKindCertificate)
		if err != nil {
			s.removeAll(ctx, stored)
			return nil, Children{}, err
		}
		stored = append(stored, result.Path)
		product.MDACert = &result.Path
	}

	return stored, children, nil
}

// normalizeMain keeps the at-most-one-main invariant: the first image marked
// main wins; if none is marked and images exist, the first becomes main.
func normalizeMain(images []models.ProductImage) {
	mainSeen := false
	for i := range images {
		if images[i].IsMain {
			if mainSeen {
				images[i].IsMain = false
			}
			mainSeen = true
		}
	}
	if !mainSeen && len(images) > 0 {
		images[0].IsMain = true
	}
}

func (s *service) removeAll(ctx context.Context, paths []string) {
	for _, path := range paths {
		s.assets.Remove(ctx, path)
	}
}
