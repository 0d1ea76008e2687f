package storefront

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/qmedica/catalog-backend/internal/marketing"
	"github.com/qmedica/catalog-backend/pkg/db/models"
	"github.com/qmedica/catalog-backend/pkg/enums"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
)

// materialGroupOrder fixes the display order of material buckets; anything
// with an unrecognized category tag lands in OTHERS.
var materialGroupOrder = []string{
	string(enums.MaterialFliers),
	string(enums.MaterialBackdrop),
	string(enums.MaterialPoster),
	string(enums.MaterialRollup),
	string(enums.MaterialBrochure),
	"OTHERS",
}

type storefrontRepository interface {
	ListProducts(ctx context.Context, companyID uint, search string, categoryIDs []uint) ([]models.Product, error)
	FindProduct(ctx context.Context, companyID, productID uint) (*models.Product, error)
	FindProductCert(ctx context.Context, companyID, productID uint) (*models.Product, error)
	ListPackages(ctx context.Context, companyID uint, search string) ([]models.Package, error)
	FindPackage(ctx context.Context, companyID, packageID uint) (*models.Package, error)
	PackageProducts(ctx context.Context, companyID, packageID uint) ([]models.Product, error)
	FindEventLink(ctx context.Context, linkID uint) (*models.EventLink, error)
	FindTestimonyLink(ctx context.Context, linkID uint) (*models.TestimonyLink, error)
}

type categoryLister interface {
	ListAll(ctx context.Context) ([]models.Category, error)
}

// ProductCard is one tile on the public product list.
type ProductCard struct {
	ID          uint   `json:"id"`
	Code        string `json:"code"`
	Model       string `json:"model"`
	Description string `json:"description"`
	MainImage   string `json:"main_image"`
}

// MaterialGroup is one display bucket of marketing materials.
type MaterialGroup struct {
	Category  string                     `json:"category"`
	Materials []models.MarketingMaterial `json:"materials"`
}

// MediaItem is an event or testimony with its derived primary video.
type MediaItem struct {
	ID         uint     `json:"id"`
	Title      string   `json:"title"`
	Location   string   `json:"location"`
	Treatment  string   `json:"treatment,omitempty"`
	LinkURLs   []string `json:"link_urls"`
	VideoURL   string   `json:"video_url,omitempty"`
	VideoEmbed string   `json:"video_embed,omitempty"`
}

// ProductView is the enriched public product-detail payload.
type ProductView struct {
	Product        *models.Product `json:"product"`
	MainImage      string          `json:"main_image"`
	MaterialGroups []MaterialGroup `json:"material_groups"`
	Events         []MediaItem     `json:"events"`
	Testimonies    []MediaItem     `json:"testimonies"`
	MDACert        string          `json:"mda_cert,omitempty"`
}

// PackageView is the public package-detail payload.
type PackageView struct {
	Package  *models.Package `json:"package"`
	Products []ProductCard   `json:"products"`
}

// CertificateView is the regulatory-certificate payload for one product.
type CertificateView struct {
	ProductID uint   `json:"product_id"`
	Path      string `json:"path"`
	IsPDF     bool   `json:"is_pdf"`
}

// VideoView is a watchable link resolved to its embeddable URL.
type VideoView struct {
	Title    string `json:"title"`
	VideoURL string `json:"video_url"`
}

// Service answers the public storefront queries for one tenant company.
type Service interface {
	ListProducts(ctx context.Context, company *models.AffiliatedCompany, search string, categoryIDs []uint) ([]ProductCard, error)
	ProductDetail(ctx context.Context, company *models.AffiliatedCompany, productID uint) (*ProductView, error)
	Certificate(ctx context.Context, company *models.AffiliatedCompany, productID uint) (*CertificateView, error)
	ListPackages(ctx context.Context, company *models.AffiliatedCompany, search string) ([]models.Package, error)
	PackageDetail(ctx context.Context, company *models.AffiliatedCompany, packageID uint) (*PackageView, error)
	WatchVideo(ctx context.Context, kind string, linkID uint) (*VideoView, error)
	CategoryTree(ctx context.Context) ([]models.Category, error)
}

type service struct {
	repo       storefrontRepository
	categories categoryLister
}

func NewService(repo storefrontRepository, categories categoryLister) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("storefront repository required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category lister required")
	}
	return &service{repo: repo, categories: categories}, nil
}

func (s *service) ListProducts(ctx context.Context, company *models.AffiliatedCompany, search string, categoryIDs []uint) ([]ProductCard, error) {
	if company == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
	}
	products, err := s.repo.ListProducts(ctx, company.ID, search, categoryIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list storefront products")
	}
	cards := make([]ProductCard, 0, len(products))
	for i := range products {
		cards = append(cards, toCard(&products[i]))
	}
	return cards, nil
}

func (s *service) ProductDetail(ctx context.Context, company *models.AffiliatedCompany, productID uint) (*ProductView, error) {
	if company == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
	}
	product, err := s.repo.FindProduct(ctx, company.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load storefront product")
	}

	view := &ProductView{
		Product:        product,
		MainImage:      MainImagePath(product),
		MaterialGroups: GroupMaterials(product.Materials, company.ID),
		Events:         eventItems(product.Events),
		Testimonies:    testimonyItems(product.Testimonies),
	}
	if product.MDACert != nil {
		view.MDACert = *product.MDACert
	}
	return view, nil
}

// Certificate resolves a company-visible product's regulatory certificate.
func (s *service) Certificate(ctx context.Context, company *models.AffiliatedCompany, productID uint) (*CertificateView, error) {
	if company == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
	}
	product, err := s.repo.FindProductCert(ctx, company.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "certificate not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product certificate")
	}
	if product.MDACert == nil || *product.MDACert == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "certificate not found")
	}
	path := *product.MDACert
	return &CertificateView{
		ProductID: product.ID,
		Path:      path,
		IsPDF:     strings.HasSuffix(strings.ToLower(path), ".pdf"),
	}, nil
}

func (s *service) ListPackages(ctx context.Context, company *models.AffiliatedCompany, search string) ([]models.Package, error) {
	if company == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
	}
	packages, err := s.repo.ListPackages(ctx, company.ID, search)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list storefront packages")
	}
	return packages, nil
}

func (s *service) PackageDetail(ctx context.Context, company *models.AffiliatedCompany, packageID uint) (*PackageView, error) {
	if company == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
	}
	pack, err := s.repo.FindPackage(ctx, company.ID, packageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "package not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load storefront package")
	}

	products, err := s.repo.PackageProducts(ctx, company.ID, packageID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load package products")
	}
	cards := make([]ProductCard, 0, len(products))
	for i := range products {
		cards = append(cards, toCard(&products[i]))
	}
	return &PackageView{Package: pack, Products: cards}, nil
}

// WatchVideo resolves an event or testimony link to its embeddable URL.
func (s *service) WatchVideo(ctx context.Context, kind string, linkID uint) (*VideoView, error) {
	var title, url, fallback string
	switch kind {
	case "event":
		link, err := s.repo.FindEventLink(ctx, linkID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "video not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load event link")
		}
		title, url, fallback = link.Title, link.URL, "Event Video"
	case "testimony":
		link, err := s.repo.FindTestimonyLink(ctx, linkID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "video not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load testimony link")
		}
		title, url, fallback = link.Title, link.URL, "Testimony Video"
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown video kind").
			WithDetails(map[string]any{"kind": kind})
	}

	if url == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "video not found")
	}
	if title == "" {
		title = fallback
	}
	return &VideoView{Title: title, VideoURL: marketing.EmbedURL(url)}, nil
}

func (s *service) CategoryTree(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

func toCard(p *models.Product) ProductCard {
	return ProductCard{
		ID:          p.ID,
		Code:        p.Code,
		Model:       p.Model,
		Description: p.Description,
		MainImage:   MainImagePath(p),
	}
}

// MainImagePath picks the gallery image marked main, falling back to the
// legacy single-image column, then to the first gallery image.
func MainImagePath(product *models.Product) string {
	for _, image := range product.Images {
		if image.IsMain {
			return image.ImagePath
		}
	}
	if product.ProductImage != nil && *product.ProductImage != "" {
		return *product.ProductImage
	}
	if len(product.Images) > 0 {
		return product.Images[0].ImagePath
	}
	return ""
}

// GroupMaterials buckets materials by category tag in fixed display order.
// When both a company-scoped brochure and a generic one exist, only the
// company's own brochure is shown.
func GroupMaterials(materials []models.MarketingMaterial, companyID uint) []MaterialGroup {
	buckets := make(map[string][]models.MarketingMaterial)
	known := make(map[string]struct{}, len(materialGroupOrder))
	for _, name := range materialGroupOrder {
		known[name] = struct{}{}
	}

	for _, material := range materials {
		key := string(material.Category)
		if _, ok := known[key]; !ok {
			key = "OTHERS"
		}
		buckets[key] = append(buckets[key], material)
	}

	brochureKey := string(enums.MaterialBrochure)
	if brochures := buckets[brochureKey]; len(brochures) > 0 {
		scoped := brochures[:0:0]
		for _, brochure := range brochures {
			if brochure.CompanyID != nil && *brochure.CompanyID == companyID {
				scoped = append(scoped, brochure)
			}
		}
		if len(scoped) > 0 {
			buckets[brochureKey] = scoped
		}
	}

	groups := make([]MaterialGroup, 0, len(materialGroupOrder))
	for _, name := range materialGroupOrder {
		if items := buckets[name]; len(items) > 0 {
			groups = append(groups, MaterialGroup{Category: name, Materials: items})
		}
	}
	return groups
}

func eventItems(events []models.Event) []MediaItem {
	items := make([]MediaItem, 0, len(events))
	for _, event := range events {
		urls := make([]string, 0, len(event.Links))
		for _, link := range event.Links {
			urls = append(urls, link.URL)
		}
		items = append(items, mediaItem(event.ID, event.Name, event.Location, "", urls))
	}
	return items
}

func testimonyItems(testimonies []models.Testimony) []MediaItem {
	items := make([]MediaItem, 0, len(testimonies))
	for _, testimony := range testimonies {
		urls := make([]string, 0, len(testimony.Links))
		for _, link := range testimony.Links {
			urls = append(urls, link.URL)
		}
		items = append(items, mediaItem(testimony.ID, testimony.ClientName, testimony.Location, testimony.Treatment, urls))
	}
	return items
}

func mediaItem(id uint, title, location, treatment string, urls []string) MediaItem {
	item := MediaItem{
		ID:        id,
		Title:     title,
		Location:  location,
		Treatment: treatment,
		LinkURLs:  urls,
	}
	if video := marketing.PrimaryVideoURL(urls); video != "" {
		item.VideoURL = video
		item.VideoEmbed = marketing.EmbedURL(video)
	}
	return item
}
