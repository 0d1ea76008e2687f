package dashboard

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/qmedica/catalog-backend/pkg/db/models"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
)

// Counts is the admin landing-page summary.
type Counts struct {
	Products    int64 `json:"products"`
	Suppliers   int64 `json:"suppliers"`
	Companies   int64 `json:"companies"`
	Categories  int64 `json:"categories"`
	Materials   int64 `json:"materials"`
	Events      int64 `json:"events"`
	Testimonies int64 `json:"testimonies"`
	Packages    int64 `json:"packages"`
	Users       int64 `json:"users"`
}

// Service answers the admin dashboard summary query.
type Service interface {
	Summary(ctx context.Context) (*Counts, error)
}

type service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle required")
	}
	return &service{db: db}, nil
}

func (s *service) Summary(ctx context.Context) (*Counts, error) {
	counts := &Counts{}
	for _, entry := range []struct {
		model any
		dest  *int64
	}{
		{&models.Product{}, &counts.Products},
		{&models.Supplier{}, &counts.Suppliers},
		{&models.AffiliatedCompany{}, &counts.Companies},
		{&models.Category{}, &counts.Categories},
		{&models.MarketingMaterial{}, &counts.Materials},
		{&models.Event{}, &counts.Events},
		{&models.Testimony{}, &counts.Testimonies},
		{&models.Package{}, &counts.Packages},
		{&models.User{}, &counts.Users},
	} {
		if err := s.db.WithContext(ctx).Model(entry.model).Count(entry.dest).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count rows")
		}
	}
	return counts, nil
}
