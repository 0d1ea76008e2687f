package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/qmedica/catalog-backend/pkg/db/models"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
)

type categoryRepository interface {
	ListAll(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uint) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) error
}

// Node is a category with its children nested for tree rendering.
type Node struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	ParentID *uint  `json:"parent_id,omitempty"`
	Children []Node `json:"children,omitempty"`
}

// Service exposes category operations.
type Service interface {
	Tree(ctx context.Context) ([]Node, error)
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, name string, parentID *uint) (*models.Category, error)
	Rename(ctx context.Context, id uint, name string) (*models.Category, error)
	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo categoryRepository
}

func NewService(repo categoryRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]models.Category, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return all, nil
}

func (s *service) Tree(ctx context.Context) ([]Node, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return buildTree(all), nil
}

func (s *service) Create(ctx context.Context, name string, parentID *uint) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	if parentID != nil {
		if _, err := s.repo.FindByID(ctx, *parentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "parent category not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parent category")
		}
	}

	category := &models.Category{Name: name, ParentID: parentID}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return category, nil
}

func (s *service) Rename(ctx context.Context, id uint, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	category.Name = name
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	return category, nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

func buildTree(all []models.Category) []Node {
	byParent := map[uint][]models.Category{}
	var roots []models.Category
	for _, c := range all {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
	}

	var build func(c models.Category, seen map[uint]struct{}) Node
	build = func(c models.Category, seen map[uint]struct{}) Node {
		node := Node{ID: c.ID, Name: c.Name, ParentID: c.ParentID}
		seen[c.ID] = struct{}{}
		for _, child := range byParent[c.ID] {
			if _, visited := seen[child.ID]; visited {
				continue
			}
			node.Children = append(node.Children, build(child, seen))
		}
		return node
	}

	nodes := make([]Node, 0, len(roots))
	seen := map[uint]struct{}{}
	for _, root := range roots {
		nodes = append(nodes, build(root, seen))
	}
	return nodes
}
