package public

import (
	"strconv"

	"github.com/edukart-next/internal/http/response"
	"github.com/edukart-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListCatalog returns active catalog items for cart building.
// GET /api/v1/public/catalog
func (h *Handler) ListCatalog(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := h.CatalogService.ListCatalog(repository.CatalogListFilter{
		Page:        page,
		PageSize:    pageSize,
		ProductType: c.Query("product_type"),
		Search:      c.Query("search"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.catalog_list_failed", err)
		return
	}

	totalPage := (total + int64(pageSize) - 1) / int64(pageSize)
	response.SuccessWithPage(c, items, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}
