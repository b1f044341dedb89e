package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"delipos/internal/apierror"
	"delipos/internal/dto"
	"delipos/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const priceCacheTTL = 4 * time.Hour

// PriceCheckHandler serves the public price check endpoint used by the aisle
// kiosk. No authentication required; no side effects whatsoever.
type PriceCheckHandler struct {
	repo repository.ProductRepository
	rdb  *redis.Client
}

func NewPriceCheckHandler(repo repository.ProductRepository, rdb *redis.Client) *PriceCheckHandler {
	return &PriceCheckHandler{repo: repo, rdb: rdb}
}

// GetByUPC godoc
// @Summary Price check by UPC (no authentication)
// @Tags price
// @Produce json
// @Param upc path string true "UPC"
// @Success 200 {object} dto.PriceCheckResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/price/{upc} [get]
func (h *PriceCheckHandler) GetByUPC(c *gin.Context) {
	upc := c.Param("upc")
	ctx := c.Request.Context()
	cacheKey := "price:" + upc

	// Try Redis cache first — the kiosk hits the same handful of codes
	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var resp dto.PriceCheckResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	product, err := h.repo.FindByUPC(ctx, upc)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Product not found"))
		return
	}

	resp := dto.PriceCheckResponse{
		Name:      product.Name,
		Price:     product.Price,
		Inventory: product.Inventory,
		Category:  product.Category,
	}

	// Populate cache — best effort, ignore errors
	if b, jsonErr := json.Marshal(resp); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cacheKey, b, priceCacheTTL).Err()
	}

	c.JSON(http.StatusOK, resp)
}
