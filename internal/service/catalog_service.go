package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"delipos/internal/checkout"
	"delipos/internal/dto"
	"delipos/internal/model"
	"delipos/internal/repository"

	"github.com/google/uuid"
)

// ErrProductNotFound is the degraded outcome for both a true miss and a
// catalog/network failure — the scan flow treats them identically.
var ErrProductNotFound = errors.New("product not found")

type CatalogService interface {
	// LookupByUPC returns the exact match for a scanned code.
	LookupByUPC(ctx context.Context, upc string) (*checkout.ProductRef, error)
	// FindSimilar runs the near-match search over the full catalog after an
	// exact miss: substring containment, equal last-12 digits, or equality
	// after stripping leading zeros. First match wins; nil when none.
	FindSimilar(ctx context.Context, upc string) (*checkout.ProductRef, error)
	SearchByName(ctx context.Context, query string) ([]dto.ProductResponse, error)

	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	AdjustInventory(ctx context.Context, id uuid.UUID, req dto.AdjustInventoryRequest) error
}

type catalogService struct {
	repo repository.ProductRepository
}

func NewCatalogService(repo repository.ProductRepository) CatalogService {
	return &catalogService{repo: repo}
}

func (s *catalogService) LookupByUPC(ctx context.Context, upc string) (*checkout.ProductRef, error) {
	p, err := s.repo.FindByUPC(ctx, upc)
	if err != nil {
		return nil, ErrProductNotFound
	}
	return productRef(p), nil
}

// similarUPC implements the three near-match rules.
func similarUPC(scanned, candidate string) bool {
	if scanned == "" || candidate == "" {
		return false
	}
	if strings.Contains(scanned, candidate) || strings.Contains(candidate, scanned) {
		return true
	}
	if len(scanned) >= 12 && len(candidate) >= 12 &&
		scanned[len(scanned)-12:] == candidate[len(candidate)-12:] {
		return true
	}
	if strings.TrimLeft(scanned, "0") == strings.TrimLeft(candidate, "0") {
		return true
	}
	return false
}

func (s *catalogService) FindSimilar(ctx context.Context, upc string) (*checkout.ProductRef, error) {
	products, err := s.repo.AllActive(ctx)
	if err != nil {
		// Degrade to "no match" — the scan flow falls through to not-found.
		return nil, nil
	}
	for i := range products {
		if products[i].UPC == upc {
			continue
		}
		if similarUPC(upc, products[i].UPC) {
			return productRef(&products[i]), nil
		}
	}
	return nil, nil
}

func (s *catalogService) SearchByName(ctx context.Context, query string) ([]dto.ProductResponse, error) {
	products, err := s.repo.SearchByName(ctx, query, 25)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *productToResponse(&products[i]))
	}
	return out, nil
}

func (s *catalogService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if _, err := s.repo.FindByUPC(ctx, req.UPC); err == nil {
		return nil, fmt.Errorf("a product with UPC %s already exists", req.UPC)
	}
	category := req.Category
	if category == "" {
		category = "grocery"
	}
	p := &model.Product{
		UPC:       req.UPC,
		Name:      req.Name,
		Price:     req.Price,
		Inventory: req.Inventory,
		Category:  category,
		Active:    true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *catalogService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Inventory != nil {
		p.Inventory = *req.Inventory
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *catalogService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *catalogService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *catalogService) AdjustInventory(ctx context.Context, id uuid.UUID, req dto.AdjustInventoryRequest) error {
	return s.repo.AdjustInventory(ctx, id, req.Delta)
}

func productRef(p *model.Product) *checkout.ProductRef {
	inv := p.Inventory
	return &checkout.ProductRef{
		UPC:       p.UPC,
		Name:      p.Name,
		Price:     p.Price,
		Inventory: &inv,
	}
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:        p.ID.String(),
		UPC:       p.UPC,
		Name:      p.Name,
		Price:     p.Price,
		Inventory: p.Inventory,
		Category:  p.Category,
		Active:    p.Active,
	}
}
