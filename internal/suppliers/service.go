package suppliers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/qmedica/catalog-backend/pkg/db/models"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
)

type supplierRepository interface {
	List(ctx context.Context, search string, countryID *uint) ([]models.Supplier, error)
	FindByID(ctx context.Context, id uint) (*models.Supplier, error)
	CreateWithCompanies(ctx context.Context, supplier *models.Supplier, companyIDs []uint) error
	UpdateWithCompanies(ctx context.Context, supplier *models.Supplier, companyIDs []uint) error
	Delete(ctx context.Context, id uint) error
}

// SupplierInput carries the admin form fields for create and edit.
type SupplierInput struct {
	Name       string
	CountryID  *uint
	CompanyIDs []uint
}

// ListFilter narrows the supplier list.
type ListFilter struct {
	Search    string
	CountryID *uint
}

// Service exposes supplier operations.
type Service interface {
	List(ctx context.Context, filter ListFilter) ([]models.Supplier, error)
	Get(ctx context.Context, id uint) (*models.Supplier, error)
	Create(ctx context.Context, input SupplierInput) (*models.Supplier, error)
	Update(ctx context.Context, id uint, input SupplierInput) (*models.Supplier, error)
	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo supplierRepository
}

func NewService(repo supplierRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("supplier repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.Supplier, error) {
	suppliers, err := s.repo.List(ctx, strings.TrimSpace(filter.Search), filter.CountryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list suppliers")
	}
	return suppliers, nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.Supplier, error) {
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	return supplier, nil
}

func (s *service) Create(ctx context.Context, input SupplierInput) (*models.Supplier, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier name is required")
	}

	supplier := &models.Supplier{Name: name, CountryID: input.CountryID}
	if err := s.repo.CreateWithCompanies(ctx, supplier, input.CompanyIDs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create supplier")
	}
	return s.Get(ctx, supplier.ID)
}

func (s *service) Update(ctx context.Context, id uint, input SupplierInput) (*models.Supplier, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier name is required")
	}

	supplier, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	supplier.Name = name
	supplier.CountryID = input.CountryID
	supplier.Country = nil
	supplier.Companies = nil
	if err := s.repo.UpdateWithCompanies(ctx, supplier, input.CompanyIDs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update supplier")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete supplier")
	}
	return nil
}
