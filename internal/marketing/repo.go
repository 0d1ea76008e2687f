package marketing

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/qmedica/catalog-backend/pkg/db/models"
	"github.com/qmedica/catalog-backend/pkg/enums"
)

// MaterialFilter narrows the marketing-material list.
type MaterialFilter struct {
	Search    string
	Category  *enums.MaterialCategory
	CompanyID *uint
	ProductID *uint
}

// ListFilter narrows the event and testimony lists.
type ListFilter struct {
	Search    string
	ProductID *uint
}

// Repository handles marketing materials, events, and testimonies.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListMaterials(ctx context.Context, filter MaterialFilter) ([]models.MarketingMaterial, error) {
	query := r.db.WithContext(ctx).Preload("Company").Order("created_at DESC")
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.ProductID != nil {
		query = query.Where("id IN (SELECT material_id FROM product_marketing WHERE product_id = ?)", *filter.ProductID)
	}
	var materials []models.MarketingMaterial
	if err := query.Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

func (r *Repository) FindMaterialByID(ctx context.Context, id uint) (*models.MarketingMaterial, error) {
	var material models.MarketingMaterial
	if err := r.db.WithContext(ctx).Preload("Company").First(&material, id).Error; err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *Repository) CreateMaterial(ctx context.Context, material *models.MarketingMaterial) error {
	if material == nil {
		return fmt.Errorf("material is required")
	}
	return r.db.WithContext(ctx).Create(material).Error
}

func (r *Repository) UpdateMaterial(ctx context.Context, material *models.MarketingMaterial) error {
	if material == nil {
		return fmt.Errorf("material is required")
	}
	return r.db.WithContext(ctx).Omit("Company").Save(material).Error
}

func (r *Repository) DeleteMaterial(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.MarketingMaterial{}, id).Error
}

func (r *Repository) ListEvents(ctx context.Context, filter ListFilter) ([]models.Event, error) {
	query := r.db.WithContext(ctx).Preload("Links").Order("start_date DESC")
	if filter.Search != "" {
		query = query.Where("name ILIKE ? OR location ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	if filter.ProductID != nil {
		query = query.Where("id IN (SELECT event_id FROM product_events WHERE product_id = ?)", *filter.ProductID)
	}
	var events []models.Event
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *Repository) FindEventByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).Preload("Links").First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// CreateEventWithLinks inserts the event row and its links in one transaction.
func (r *Repository) CreateEventWithLinks(ctx context.Context, event *models.Event, links []models.EventLink) error {
	if event == nil {
		return fmt.Errorf("event is required")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Links").Create(event).Error; err != nil {
			return err
		}
		return insertEventLinks(tx, event.ID, links)
	})
}

// UpdateEventWithLinks saves the event and replaces its link set wholesale.
func (r *Repository) UpdateEventWithLinks(ctx context.Context, event *models.Event, links []models.EventLink) error {
	if event == nil {
		return fmt.Errorf("event is required")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Links").Save(event).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.EventLink{}).Error; err != nil {
			return err
		}
		return insertEventLinks(tx, event.ID, links)
	})
}

func (r *Repository) DeleteEvent(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Event{}, id).Error
}

func (r *Repository) ListTestimonies(ctx context.Context, filter ListFilter) ([]models.Testimony, error) {
	query := r.db.WithContext(ctx).Preload("Links").Order("created_at DESC")
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("client_name ILIKE ? OR treatment ILIKE ? OR location ILIKE ?", pattern, pattern, pattern)
	}
	if filter.ProductID != nil {
		query = query.Where("id IN (SELECT testimony_id FROM product_testimonies WHERE product_id = ?)", *filter.ProductID)
	}
	var testimonies []models.Testimony
	if err := query.Find(&testimonies).Error; err != nil {
		return nil, err
	}
	return testimonies, nil
}

func (r *Repository) FindTestimonyByID(ctx context.Context, id uint) (*models.Testimony, error) {
	var testimony models.Testimony
	if err := r.db.WithContext(ctx).Preload("Links").First(&testimony, id).Error; err != nil {
		return nil, err
	}
	return &testimony, nil
}

func (r *Repository) CreateTestimonyWithLinks(ctx context.Context, testimony *models.Testimony, links []models.TestimonyLink) error {
	if testimony == nil {
		return fmt.Errorf("testimony is required")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Links").Create(testimony).Error; err != nil {
			return err
		}
		return insertTestimonyLinks(tx, testimony.ID, links)
	})
}

func (r *Repository) UpdateTestimonyWithLinks(ctx context.Context, testimony *models.Testimony, links []models.TestimonyLink) error {
	if testimony == nil {
		return fmt.Errorf("testimony is required")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Links").Save(testimony).Error; err != nil {
			return err
		}
		if err := tx.Where("testimony_id = ?", testimony.ID).Delete(&models.TestimonyLink{}).Error; err != nil {
			return err
		}
		return insertTestimonyLinks(tx, testimony.ID, links)
	})
}

func (r *Repository) DeleteTestimony(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Testimony{}, id).Error
}

func insertEventLinks(tx *gorm.DB, eventID uint, links []models.EventLink) error {
	for i := range links {
		links[i].ID = 0
		links[i].EventID = eventID
		if err := tx.Create(&links[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func insertTestimonyLinks(tx *gorm.DB, testimonyID uint, links []models.TestimonyLink) error {
	for i := range links {
		links[i].ID = 0
		links[i].TestimonyID = testimonyID
		if err := tx.Create(&links[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
