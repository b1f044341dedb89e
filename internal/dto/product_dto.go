package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// ProductFilter is bound from the query string of GET /v1/products.
type ProductFilter struct {
	UPC    string `form:"upc"`
	Query  string `form:"q"`
	Active string `form:"active"` // "false" = inactive, "all" = everything, default active
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	UPC       string          `json:"upc"       validate:"required,min=1,max=32"`
	Name      string          `json:"name"      validate:"required,min=1"`
	Price     decimal.Decimal `json:"price"     validate:"min=0"`
	Inventory int             `json:"inventory" validate:"min=0"`
	Category  string          `json:"category"`
}

type UpdateProductRequest struct {
	Name      *string          `json:"name"      validate:"omitempty,min=1"`
	Price     *decimal.Decimal `json:"price"     validate:"omitempty,min=0"`
	Inventory *int             `json:"inventory"`
	Category  *string          `json:"category"`
}

type AdjustInventoryRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Reason string `json:"reason" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID        string          `json:"id"`
	UPC       string          `json:"upc"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Inventory int             `json:"inventory"`
	Category  string          `json:"category"`
	Active    bool            `json:"active"`
}

// PriceCheckResponse serves the public price-check endpoint.
type PriceCheckResponse struct {
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Inventory int             `json:"inventory"`
	Category  string          `json:"category"`
}
