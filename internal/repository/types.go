package repository

import "time"

// CatalogListFilter filters catalog item listings.
type CatalogListFilter struct {
	Page        int
	PageSize    int
	ProductType string
	Search      string
	OnlyActive  bool
}

// OrderListFilter filters order listings.
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
