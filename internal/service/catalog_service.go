package service

import (
	"context"
	"fmt"
	"time"

	"github.com/edukart-next/internal/cache"
	"github.com/edukart-next/internal/logger"
	"github.com/edukart-next/internal/models"
	"github.com/edukart-next/internal/repository"
	"github.com/shopspring/decimal"
)

// PriceableLine is one resolved cart entry with its effective unit price.
type PriceableLine struct {
	ProductType string       `json:"product_type"`
	ItemID      uint         `json:"item_id"`
	Title       string       `json:"title"`
	UnitPrice   models.Money `json:"unit_price"`
	IsFree      bool         `json:"is_free"`
	FlashSaleID uint         `json:"flash_sale_id,omitempty"`
}

// CatalogService resolves cart entries into priced lines. Effective unit
// price precedence: active flash-sale discount, then sale price, then base
// price; a free item always contributes zero.
type CatalogService struct {
	catalogRepo   repository.CatalogRepository
	flashSaleRepo repository.FlashSaleRepository
	cacheTTL      time.Duration
}

// NewCatalogService creates a catalog service.
func NewCatalogService(catalogRepo repository.CatalogRepository, flashSaleRepo repository.FlashSaleRepository, cacheTTL time.Duration) *CatalogService {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &CatalogService{
		catalogRepo:   catalogRepo,
		flashSaleRepo: flashSaleRepo,
		cacheTTL:      cacheTTL,
	}
}

// ResolvePrice resolves one entry through the price cache. Unknown or
// inactive items resolve to nil without error so callers can drop them.
func (s *CatalogService) ResolvePrice(ctx context.Context, productType string, itemID uint) (*PriceableLine, error) {
	key := priceCacheKey(productType, itemID)

	var cached PriceableLine
	hit, err := cache.GetJSON(ctx, key, &cached)
	if err != nil {
		logger.Warnw("price_cache_read_failed", "key", key, "error", err)
	}
	if hit {
		return &cached, nil
	}

	line, err := s.ResolvePriceFresh(ctx, productType, itemID)
	if err != nil || line == nil {
		return line, err
	}

	if err := cache.SetJSON(ctx, key, line, s.cacheTTL); err != nil {
		logger.Warnw("price_cache_write_failed", "key", key, "error", err)
	}
	return line, nil
}

// ResolvePriceFresh resolves one entry straight from the database. The
// settlement path uses this so stale cache entries can never change what a
// verified payment settles into.
func (s *CatalogService) ResolvePriceFresh(ctx context.Context, productType string, itemID uint) (*PriceableLine, error) {
	item, err := s.catalogRepo.GetByTypeAndItem(productType, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || !item.IsActive {
		return nil, nil
	}

	line := &PriceableLine{
		ProductType: item.ProductType,
		ItemID:      item.RefID,
		Title:       item.Title,
		IsFree:      item.IsFree,
	}
	if item.IsFree {
		line.UnitPrice = models.NewMoneyFromDecimal(decimal.Zero)
		return line, nil
	}

	price := item.BasePrice
	if item.SalePrice != nil {
		price = *item.SalePrice
	}

	sale, err := s.flashSaleRepo.GetActiveForItem(productType, itemID, time.Now())
	if err != nil {
		return nil, err
	}
	if sale != nil {
		price = sale.DiscountPrice
		line.FlashSaleID = sale.ID
	}

	line.UnitPrice = price
	return line, nil
}

// InvalidatePrice drops the cached price of one item.
func (s *CatalogService) InvalidatePrice(ctx context.Context, productType string, itemID uint) {
	if err := cache.Del(ctx, priceCacheKey(productType, itemID)); err != nil {
		logger.Warnw("price_cache_del_failed", "product_type", productType, "item_id", itemID, "error", err)
	}
}

// ListCatalog returns a catalog page for cart building.
func (s *CatalogService) ListCatalog(filter repository.CatalogListFilter) ([]models.CatalogItem, int64, error) {
	filter.OnlyActive = true
	return s.catalogRepo.List(filter)
}

func priceCacheKey(productType string, itemID uint) string {
	return fmt.Sprintf("price:%s:%d", productType, itemID)
}
