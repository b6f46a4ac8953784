package menu

import (
	"context"
	"fmt"
	"strings"

	"restaurant-ops/internal/domain"
	categoryrepo "restaurant-ops/internal/repository/category"
	productrepo "restaurant-ops/internal/repository/product"
)

type Service struct {
	categories categoryrepo.Repository
	products   productrepo.Repository
}

func New(categories categoryrepo.Repository, products productrepo.Repository) *Service {
	return &Service{categories: categories, products: products}
}

// Section is one category with its available products.
type Section struct {
	Category domain.Category  `json:"category"`
	Products []domain.Product `json:"products"`
}

type Menu struct {
	Sections      []Section        `json:"sections"`
	Uncategorized []domain.Product `json:"uncategorized"`
}

// Menu groups available products under their categories in category order.
// Empty categories are omitted.
func (s *Service) Menu(ctx context.Context, establishmentID string) (*Menu, error) {
	categories, err := s.categories.ListByEstablishment(ctx, establishmentID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	products, err := s.products.ListByEstablishment(ctx, establishmentID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	byCategory := make(map[string][]domain.Product, len(categories))
	m := &Menu{Sections: []Section{}, Uncategorized: []domain.Product{}}
	for _, p := range products {
		if !p.Available {
			continue
		}
		if p.CategoryID == nil {
			m.Uncategorized = append(m.Uncategorized, p)
			continue
		}
		byCategory[*p.CategoryID] = append(byCategory[*p.CategoryID], p)
	}
	for _, c := range categories {
		items := byCategory[c.ID]
		if len(items) == 0 {
			continue
		}
		m.Sections = append(m.Sections, Section{Category: c, Products: items})
	}
	return m, nil
}

func (s *Service) Products(ctx context.Context, establishmentID string) ([]domain.Product, error) {
	return s.products.ListByEstablishment(ctx, establishmentID)
}

func (s *Service) Product(ctx context.Context, establishmentID, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, establishmentID, id)
}

func (s *Service) ProductsByID(ctx context.Context, establishmentID string, ids []string) (map[string]domain.Product, error) {
	return s.products.GetByIDs(ctx, establishmentID, ids)
}

func (s *Service) Categories(ctx context.Context, establishmentID string) ([]domain.Category, error) {
	return s.categories.ListByEstablishment(ctx, establishmentID)
}

func (s *Service) UpsertCategory(ctx context.Context, c domain.Category) (*domain.Category, error) {
	if strings.TrimSpace(c.Key) == "" || strings.TrimSpace(c.Name) == "" {
		return nil, fmt.Errorf("category key and name required: %w", domain.ErrInvalidInput)
	}
	return s.categories.Upsert(ctx, c)
}

func (s *Service) UpsertProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if strings.TrimSpace(p.Key) == "" || strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("product key and name required: %w", domain.ErrInvalidInput)
	}
	if p.PriceCents < 0 {
		return nil, fmt.Errorf("product %s has a negative price: %w", p.Key, domain.ErrInvalidInput)
	}
	for _, m := range p.Modifiers {
		if m.Key == "" || m.PriceCents < 0 {
			return nil, fmt.Errorf("product %s has an invalid modifier: %w", p.Key, domain.ErrInvalidInput)
		}
	}
	return s.products.Upsert(ctx, p)
}
