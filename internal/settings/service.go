package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/qmedica/catalog-backend/pkg/db/models"
	"github.com/qmedica/catalog-backend/pkg/enums"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
)

type settingRepository interface {
	ListByType(ctx context.Context, settingType enums.SettingType) ([]models.Setting, error)
	FindByID(ctx context.Context, id uint) (*models.Setting, error)
	Create(ctx context.Context, setting *models.Setting) error
	Update(ctx context.Context, setting *models.Setting) error
	Delete(ctx context.Context, id uint) error
}

// Service exposes the admin-extensible enumerations (countries, product
// types) stored in the settings table.
type Service interface {
	List(ctx context.Context, settingType enums.SettingType) ([]models.Setting, error)
	Create(ctx context.Context, settingType enums.SettingType, value string) (*models.Setting, error)
	Update(ctx context.Context, id uint, value string) (*models.Setting, error)
	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo settingRepository
}

func NewService(repo settingRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("setting repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, settingType enums.SettingType) ([]models.Setting, error) {
	if !settingType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown setting type")
	}
	list, err := s.repo.ListByType(ctx, settingType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list settings")
	}
	return list, nil
}

func (s *service) Create(ctx context.Context, settingType enums.SettingType, value string) (*models.Setting, error) {
	if !settingType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown setting type")
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "value is required")
	}

	setting := &models.Setting{Type: settingType, Value: value}
	if err := s.repo.Create(ctx, setting); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "value already exists for this type")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create setting")
	}
	return setting, nil
}

func (s *service) Update(ctx context.Context, id uint, value string) (*models.Setting, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "value is required")
	}

	setting, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "setting not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load setting")
	}

	setting.Value = value
	if err := s.repo.Update(ctx, setting); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "value already exists for this type")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update setting")
	}
	return setting, nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "setting not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load setting")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete setting")
	}
	return nil
}
