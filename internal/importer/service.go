package importer

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/qmedica/catalog-backend/pkg/config"
	"github.com/qmedica/catalog-backend/pkg/db/models"
	"github.com/qmedica/catalog-backend/pkg/enums"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
)

const maxImportRows = 5000

type settingCreator interface {
	Create(ctx context.Context, settingType enums.SettingType, value string) (*models.Setting, error)
}

type categoryCreator interface {
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, name string, parentID *uint) (*models.Category, error)
}

// RowError records one spreadsheet row that could not be imported. Row is
// the 1-based sheet row number.
type RowError struct {
	Row     int    `json:"row"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// Report summarizes a bulk import run.
type Report struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors"`
}

// Templates lists the downloadable spreadsheet templates shown next to the
// import forms.
type Templates struct {
	CountryTemplateURL  string `json:"country_template_url"`
	TypeTemplateURL     string `json:"type_template_url"`
	CategoryTemplateURL string `json:"category_template_url"`
}

// Service imports settings and categories from uploaded xlsx sheets.
type Service interface {
	ImportSettings(ctx context.Context, settingType enums.SettingType, sheet []byte) (*Report, error)
	ImportCategories(ctx context.Context, sheet []byte) (*Report, error)
	Templates() Templates
}

type service struct {
	settings   settingCreator
	categories categoryCreator
	cfg        config.ImportConfig
}

func NewService(settings settingCreator, categories categoryCreator, cfg config.ImportConfig) (Service, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings service required")
	}
	if categories == nil {
		return nil, fmt.Errorf("categories service required")
	}
	return &service{settings: settings, categories: categories, cfg: cfg}, nil
}

// ImportSettings reads one value per row from the first column of the first
// sheet. The first row is treated as a header and skipped.
func (s *service) ImportSettings(ctx context.Context, settingType enums.SettingType, sheet []byte) (*Report, error) {
	if !settingType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid setting type")
	}

	rows, err := readFirstSheet(sheet)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		value := firstCell(row)
		if value == "" {
			report.Skipped++
			continue
		}
		if _, err := s.settings.Create(ctx, settingType, value); err != nil {
			report.Errors = append(report.Errors, rowError(i+1, value, err))
			continue
		}
		report.Imported++
	}
	return report, nil
}

// ImportCategories reads name and optional parent-name columns. Parents are
// matched against existing categories plus rows already imported from the
// same sheet, so a parent row may precede its children within one file.
func (s *service) ImportCategories(ctx context.Context, sheet []byte) (*Report, error) {
	rows, err := readFirstSheet(sheet)
	if err != nil {
		return nil, err
	}

	existing, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]uint, len(existing))
	for _, category := range existing {
		byName[strings.ToLower(category.Name)] = category.ID
	}

	report := &Report{}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		name := firstCell(row)
		if name == "" {
			report.Skipped++
			continue
		}

		var parentID *uint
		if parent := secondCell(row); parent != "" {
			id, ok := byName[strings.ToLower(parent)]
			if !ok {
				report.Errors = append(report.Errors, RowError{
					Row:     i + 1,
					Value:   name,
					Message: fmt.Sprintf("parent category %q not found", parent),
				})
				continue
			}
			parentID = &id
		}

		created, err := s.categories.Create(ctx, name, parentID)
		if err != nil {
			report.Errors = append(report.Errors, rowError(i+1, name, err))
			continue
		}
		byName[strings.ToLower(created.Name)] = created.ID
		report.Imported++
	}
	return report, nil
}

func (s *service) Templates() Templates {
	return Templates{
		CountryTemplateURL:  s.cfg.CountryTemplateURL,
		TypeTemplateURL:     s.cfg.TypeTemplateURL,
		CategoryTemplateURL: s.cfg.CategoryTemplateURL,
	}
}

func readFirstSheet(sheet []byte) ([][]string, error) {
	if len(sheet) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "spreadsheet file is required")
	}

	file, err := excelize.OpenReader(bytes.NewReader(sheet))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is not a readable xlsx spreadsheet")
	}
	defer file.Close()

	name := file.GetSheetName(0)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "spreadsheet has no sheets")
	}
	rows, err := file.GetRows(name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read spreadsheet rows")
	}
	if len(rows) > maxImportRows {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("spreadsheet exceeds %d rows", maxImportRows))
	}
	return rows, nil
}

func firstCell(row []string) string {
	if len(row) == 0 {
		return ""
	}
	return strings.TrimSpace(row[0])
}

func secondCell(row []string) string {
	if len(row) < 2 {
		return ""
	}
	return strings.TrimSpace(row[1])
}

func rowError(row int, value string, err error) RowError {
	message := err.Error()
	if typed := pkgerrors.As(err); typed != nil {
		message = typed.Message()
	}
	return RowError{Row: row, Value: value, Message: message}
}
