package domain

import (
	"time"

	"github.com/spf13/cast"
)

// ID is the normalized product/category identifier. Backend revisions emit
// identifiers as JSON numbers or strings interchangeably; everything is
// coerced to this form once at ingestion so internal comparisons are exact.
type ID string

// NormalizeID coerces any identifier value from a backend payload to ID.
func NormalizeID(v interface{}) ID {
	return ID(cast.ToString(v))
}

// CategoryAll is the sentinel filter value meaning "no category filter".
const CategoryAll ID = "all"

// IsAllCategories reports whether id denotes the unfiltered catalog.
func IsAllCategories(id ID) bool {
	return id == "" || id == CategoryAll
}

// Product represents one catalog item as held by the store.
//
// AvailableStock is mutated by cart operations and may go negative only
// transiently before reconciliation. InitialStock is fixed when the catalog
// is loaded and is the baseline cart quantities are subtracted from.
type Product struct {
	ID             ID        `json:"id"`
	Name           string    `json:"name"`
	Price          float64   `json:"price"` // price in main currency units (e.g., dollars)
	Unit           string    `json:"unit"`
	CategoryID     ID        `json:"category_id,omitempty"`
	AvailableStock int       `json:"available_stock"`
	InitialStock   int       `json:"initial_stock"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// Category is immutable once fetched. Key and ID carry the same value; the
// historical POS front-end consumed both names and the alias is kept.
type Category struct {
	ID   ID     `json:"id"`
	Key  ID     `json:"key"`
	Name string `json:"name"`
}
