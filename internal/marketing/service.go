package marketing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qmedica/catalog-backend/internal/uploads"
	"github.com/qmedica/catalog-backend/pkg/db/models"
	"github.com/qmedica/catalog-backend/pkg/enums"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
)

type marketingRepository interface {
	ListMaterials(ctx context.Context, filter MaterialFilter) ([]models.MarketingMaterial, error)
	FindMaterialByID(ctx context.Context, id uint) (*models.MarketingMaterial, error)
	CreateMaterial(ctx context.Context, material *models.MarketingMaterial) error
	UpdateMaterial(ctx context.Context, material *models.MarketingMaterial) error
	DeleteMaterial(ctx context.Context, id uint) error

	ListEvents(ctx context.Context, filter ListFilter) ([]models.Event, error)
	FindEventByID(ctx context.Context, id uint) (*models.Event, error)
	CreateEventWithLinks(ctx context.Context, event *models.Event, links []models.EventLink) error
	UpdateEventWithLinks(ctx context.Context, event *models.Event, links []models.EventLink) error
	DeleteEvent(ctx context.Context, id uint) error

	ListTestimonies(ctx context.Context, filter ListFilter) ([]models.Testimony, error)
	FindTestimonyByID(ctx context.Context, id uint) (*models.Testimony, error)
	CreateTestimonyWithLinks(ctx context.Context, testimony *models.Testimony, links []models.TestimonyLink) error
	UpdateTestimonyWithLinks(ctx context.Context, testimony *models.Testimony, links []models.TestimonyLink) error
	DeleteTestimony(ctx context.Context, id uint) error
}

type assetStore interface {
	Replace(ctx context.Context, data []byte, originalName string, kind enums.UploadKind, oldPath string) (*uploads.Result, error)
	Remove(ctx context.Context, path string)
}

// MaterialInput carries the admin form fields for a marketing material.
type MaterialInput struct {
	Name      string
	Category  enums.MaterialCategory
	CompanyID *uint

	// File is the raw upload; nil on edit means keep the current file.
	File     []byte
	Filename string
}

// LinkInput is one external reference row for events and testimonies.
type LinkInput struct {
	Title string
	URL   string
}

// EventInput carries the admin form fields for an event.
type EventInput struct {
	Name      string
	Location  string
	StartDate *time.Time
	EndDate   *time.Time
	Links     []LinkInput
}

// TestimonyInput carries the admin form fields for a testimony.
type TestimonyInput struct {
	ClientName string
	Location   string
	StartDate  *time.Time
	EndDate    *time.Time
	Treatment  string
	Links      []LinkInput
}

// Service exposes marketing-material, event, and testimony operations.
type Service interface {
	ListMaterials(ctx context.Context, filter MaterialFilter) ([]models.MarketingMaterial, error)
	GetMaterial(ctx context.Context, id uint) (*models.MarketingMaterial, error)
	CreateMaterial(ctx context.Context, input MaterialInput) (*models.MarketingMaterial, error)
	UpdateMaterial(ctx context.Context, id uint, input MaterialInput) (*models.MarketingMaterial, error)
	DeleteMaterial(ctx context.Context, id uint) error

	ListEvents(ctx context.Context, filter ListFilter) ([]models.Event, error)
	GetEvent(ctx context.Context, id uint) (*models.Event, error)
	CreateEvent(ctx context.Context, input EventInput) (*models.Event, error)
	UpdateEvent(ctx context.Context, id uint, input EventInput) (*models.Event, error)
	DeleteEvent(ctx context.Context, id uint) error

	ListTestimonies(ctx context.Context, filter ListFilter) ([]models.Testimony, error)
	GetTestimony(ctx context.Context, id uint) (*models.Testimony, error)
	CreateTestimony(ctx context.Context, input TestimonyInput) (*models.Testimony, error)
	UpdateTestimony(ctx context.Context, id uint, input TestimonyInput) (*models.Testimony, error)
	DeleteTestimony(ctx context.Context, id uint) error
}

type service struct {
	repo   marketingRepository
	assets assetStore
}

func NewService(repo marketingRepository, assets assetStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("marketing repository required")
	}
	if assets == nil {
		return nil, fmt.Errorf("asset store required")
	}
	return &service{repo: repo, assets: assets}, nil
}

func (s *service) ListMaterials(ctx context.Context, filter MaterialFilter) ([]models.MarketingMaterial, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	materials, err := s.repo.ListMaterials(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list materials")
	}
	return materials, nil
}

func (s *service) GetMaterial(ctx context.Context, id uint) (*models.MarketingMaterial, error) {
	material, err := s.repo.FindMaterialByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "material not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load material")
	}
	return material, nil
}

func (s *service) CreateMaterial(ctx context.Context, input MaterialInput) (*models.MarketingMaterial, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "material name is required")
	}
	if len(input.File) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "material file is required")
	}

	stored, err := s.assets.Replace(ctx, input.File, input.Filename, enums.UploadKindMarketing, "")
	if err != nil {
		return nil, err
	}

	material := &models.MarketingMaterial{
		Name:      strings.TrimSpace(input.Name),
		Category:  input.Category,
		CompanyID: input.CompanyID,
		FilePath:  stored.Path,
		FileType:  stored.ContentType,
	}
	if err := s.repo.CreateMaterial(ctx, material); err != nil {
		s.assets.Remove(ctx, stored.Path)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create material")
	}
	return material, nil
}

func (s *service) UpdateMaterial(ctx context.Context, id uint, input MaterialInput) (*models.MarketingMaterial, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "material name is required")
	}

	material, err := s.GetMaterial(ctx, id)
	if err != nil {
		return nil, err
	}

	oldPath := material.FilePath
	material.Name = strings.TrimSpace(input.Name)
	material.Category = input.Category
	material.CompanyID = input.CompanyID
	material.Company = nil

	if len(input.File) > 0 {
		stored, err := s.assets.Replace(ctx, input.File, input.Filename, enums.UploadKindMarketing, "")
		if err != nil {
			return nil, err
		}
		material.FilePath = stored.Path
		material.FileType = stored.ContentType
	}

	if err := s.repo.UpdateMaterial(ctx, material); err != nil {
		if material.FilePath != oldPath {
			s.assets.Remove(ctx, material.FilePath)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update material")
	}

	// The prior file goes only after the new row is committed.
	if material.FilePath != oldPath {
		s.assets.Remove(ctx, oldPath)
	}
	return material, nil
}

func (s *service) DeleteMaterial(ctx context.Context, id uint) error {
	material, err := s.GetMaterial(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteMaterial(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete material")
	}
	s.assets.Remove(ctx, material.FilePath)
	return nil
}

func (s *service) ListEvents(ctx context.Context, filter ListFilter) ([]models.Event, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	events, err := s.repo.ListEvents(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list events")
	}
	return events, nil
}

func (s *service) GetEvent(ctx context.Context, id uint) (*models.Event, error) {
	event, err := s.repo.FindEventByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load event")
	}
	return event, nil
}

func (s *service) CreateEvent(ctx context.Context, input EventInput) (*models.Event, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event name is required")
	}

	event := &models.Event{
		Name:      strings.TrimSpace(input.Name),
		Location:  strings.TrimSpace(input.Location),
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}
	if err := s.repo.CreateEventWithLinks(ctx, event, buildEventLinks(input.Links)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create event")
	}
	return s.GetEvent(ctx, event.ID)
}

func (s *service) UpdateEvent(ctx context.Context, id uint, input EventInput) (*models.Event, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event name is required")
	}

	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	event.Name = strings.TrimSpace(input.Name)
	event.Location = strings.TrimSpace(input.Location)
	event.StartDate = input.StartDate
	event.EndDate = input.EndDate
	event.Links = nil

	if err := s.repo.UpdateEventWithLinks(ctx, event, buildEventLinks(input.Links)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update event")
	}
	return s.GetEvent(ctx, id)
}

func (s *service) DeleteEvent(ctx context.Context, id uint) error {
	if _, err := s.GetEvent(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete event")
	}
	return nil
}

func (s *service) ListTestimonies(ctx context.Context, filter ListFilter) ([]models.Testimony, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	testimonies, err := s.repo.ListTestimonies(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list testimonies")
	}
	return testimonies, nil
}

func (s *service) GetTestimony(ctx context.Context, id uint) (*models.Testimony, error) {
	testimony, err := s.repo.FindTestimonyByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "testimony not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load testimony")
	}
	return testimony, nil
}

func (s *service) CreateTestimony(ctx context.Context, input TestimonyInput) (*models.Testimony, error) {
	if strings.TrimSpace(input.ClientName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client name is required")
	}

	testimony := &models.Testimony{
		ClientName: strings.TrimSpace(input.ClientName),
		Location:   strings.TrimSpace(input.Location),
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Treatment:  strings.TrimSpace(input.Treatment),
	}
	if err := s.repo.CreateTestimonyWithLinks(ctx, testimony, buildTestimonyLinks(input.Links)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create testimony")
	}
	return s.GetTestimony(ctx, testimony.ID)
}

func (s *service) UpdateTestimony(ctx context.Context, id uint, input TestimonyInput) (*models.Testimony, error) {
	if strings.TrimSpace(input.ClientName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client name is required")
	}

	testimony, err := s.GetTestimony(ctx, id)
	if err != nil {
		return nil, err
	}

	testimony.ClientName = strings.TrimSpace(input.ClientName)
	testimony.Location = strings.TrimSpace(input.Location)
	testimony.StartDate = input.StartDate
	testimony.EndDate = input.EndDate
	testimony.Treatment = strings.TrimSpace(input.Treatment)
	testimony.Links = nil

	if err := s.repo.UpdateTestimonyWithLinks(ctx, testimony, buildTestimonyLinks(input.Links)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update testimony")
	}
	return s.GetTestimony(ctx, id)
}

func (s *service) DeleteTestimony(ctx context.Context, id uint) error {
	if _, err := s.GetTestimony(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteTestimony(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete testimony")
	}
	return nil
}

func buildEventLinks(inputs []LinkInput) []models.EventLink {
	links := make([]models.EventLink, 0, len(inputs))
	for _, link := range inputs {
		url := strings.TrimSpace(link.URL)
		if url == "" {
			continue
		}
		links = append(links, models.EventLink{Title: strings.TrimSpace(link.Title), URL: url})
	}
	return links
}

func buildTestimonyLinks(inputs []LinkInput) []models.TestimonyLink {
	links := make([]models.TestimonyLink, 0, len(inputs))
	for _, link := range inputs {
		url := strings.TrimSpace(link.URL)
		if url == "" {
			continue
		}
		links = append(links, models.TestimonyLink{Title: strings.TrimSpace(link.Title), URL: url})
	}
	return links
}
