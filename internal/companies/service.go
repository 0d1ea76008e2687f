package companies

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qmedica/catalog-backend/internal/uploads"
	"github.com/qmedica/catalog-backend/pkg/db/models"
	"github.com/qmedica/catalog-backend/pkg/enums"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
)

// Shortnames become URL path segments, so they are restricted to characters
// that never need escaping.
var shortnameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}$`)

// Fixed routes always match before the tenant catch-all, so a company named
// after one of them would be unreachable. Reject at creation time instead.
// Must list every top-level prefix the router registers.
var reservedShortnames = map[string]struct{}{
	"admin":   {},
	"api":     {},
	"auth":    {},
	"health":  {},
	"metrics": {},
	"uploads": {},
}

type companyRepository interface {
	List(ctx context.Context, search string) ([]models.AffiliatedCompany, error)
	FindByID(ctx context.Context, id uint) (*models.AffiliatedCompany, error)
	FindByShortname(ctx context.Context, shortname string) (*models.AffiliatedCompany, error)
	Create(ctx context.Context, company *models.AffiliatedCompany) error
	Update(ctx context.Context, company *models.AffiliatedCompany) error
	Delete(ctx context.Context, id uint) error
}

type assetStore interface {
	Replace(ctx context.Context, data []byte, originalName string, kind enums.UploadKind, oldPath string) (*uploads.Result, error)
	Remove(ctx context.Context, path string)
}

// CompanyInput carries the admin form fields for create and edit.
type CompanyInput struct {
	Name          string
	Shortname     string
	RegNo         *string
	RegDate       *time.Time
	Address       *string
	Website       *string
	Email         *string
	ContactNumber *string

	// Logo is the raw upload; nil means keep the current logo.
	Logo         []byte
	LogoFilename string
}

// Service exposes affiliated-company operations.
type Service interface {
	List(ctx context.Context, search string) ([]models.AffiliatedCompany, error)
	Get(ctx context.Context, id uint) (*models.AffiliatedCompany, error)
	CompanyByShortname(ctx context.Context, shortname string) (*models.AffiliatedCompany, error)
	Create(ctx context.Context, input CompanyInput) (*models.AffiliatedCompany, error)
	Update(ctx context.Context, id uint, input CompanyInput) (*models.AffiliatedCompany, error)
	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo   companyRepository
	assets assetStore
}

func NewService(repo companyRepository, assets assetStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("company repository required")
	}
	if assets == nil {
		return nil, fmt.Errorf("asset store required")
	}
	return &service{repo: repo, assets: assets}, nil
}

func (s *service) List(ctx context.Context, search string) ([]models.AffiliatedCompany, error) {
	companies, err := s.repo.List(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list companies")
	}
	return companies, nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.AffiliatedCompany, error) {
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load company")
	}
	return company, nil
}

// CompanyByShortname satisfies the tenant-resolution middleware.
func (s *service) CompanyByShortname(ctx context.Context, shortname string) (*models.AffiliatedCompany, error) {
	company, err := s.repo.FindByShortname(ctx, strings.ToLower(strings.TrimSpace(shortname)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "storefront not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load company")
	}
	return company, nil
}

func (s *service) Create(ctx context.Context, input CompanyInput) (*models.AffiliatedCompany, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	company := &models.AffiliatedCompany{
		Name:          strings.TrimSpace(input.Name),
		Shortname:     strings.ToLower(strings.TrimSpace(input.Shortname)),
		RegNo:         input.RegNo,
		RegDate:       input.RegDate,
		Address:       input.Address,
		Website:       input.Website,
		Email:         input.Email,
		ContactNumber: input.ContactNumber,
	}

	if len(input.Logo) > 0 {
		stored, err := s.assets.Replace(ctx, input.Logo, input.LogoFilename, enums.UploadKindLogo, "")
		if err != nil {
			return nil, err
		}
		company.Logo = &stored.Path
	}

	if err := s.repo.Create(ctx, company); err != nil {
		if company.Logo != nil {
			s.assets.Remove(ctx, *company.Logo)
		}
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "shortname already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create company")
	}
	return company, nil
}

func (s *service) Update(ctx context.Context, id uint, input CompanyInput) (*models.AffiliatedCompany, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	company, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	company.Name = strings.TrimSpace(input.Name)
	company.Shortname = strings.ToLower(strings.TrimSpace(input.Shortname))
	company.RegNo = input.RegNo
	company.RegDate = input.RegDate
	company.Address = input.Address
	company.Website = input.Website
	company.Email = input.Email
	company.ContactNumber = input.ContactNumber

	oldLogo := ""
	if company.Logo != nil {
		oldLogo = *company.Logo
	}
	if len(input.Logo) > 0 {
		stored, err := s.assets.Replace(ctx, input.Logo, input.LogoFilename, enums.UploadKindLogo, "")
		if err != nil {
			return nil, err
		}
		company.Logo = &stored.Path
	}

	if err := s.repo.Update(ctx, company); err != nil {
		if len(input.Logo) > 0 && company.Logo != nil {
			s.assets.Remove(ctx, *company.Logo)
		}
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "shortname already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update company")
	}

	// The prior logo goes only after the new row is committed.
	if len(input.Logo) > 0 && oldLogo != "" && company.Logo != nil && oldLogo != *company.Logo {
		s.assets.Remove(ctx, oldLogo)
	}
	return company, nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	company, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if company.Logo != nil {
		s.assets.Remove(ctx, *company.Logo)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete company")
	}
	return nil
}

func validateInput(input CompanyInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "company name is required")
	}
	shortname := strings.ToLower(strings.TrimSpace(input.Shortname))
	if !shortnameRe.MatchString(shortname) {
		return pkgerrors.New(pkgerrors.CodeValidation, "shortname must be lowercase letters, digits, and dashes").
			WithDetails(map[string]any{"shortname": input.Shortname})
	}
	if _, reserved := reservedShortnames[shortname]; reserved {
		return pkgerrors.New(pkgerrors.CodeValidation, "shortname is reserved").
			WithDetails(map[string]any{"shortname": shortname})
	}
	return nil
}
