package catalog

import "errors"

// Common errors returned by the catalog
var (
	ErrProductNotFound = errors.New("product not found")
)

// Product is a catalog entry with its purchasable inventory.
type Product struct {
	ID        string
	Title     string
	Price     int64 // minor units
	Available int   // purchasable quantity, 0 means out of stock
}

// Catalog resolves product ids to price, title and available inventory.
// Lookups are read-only; "not found" is a distinct outcome from
// "found but unavailable".
type Catalog interface {
	// Lookup returns the product for the given id or ErrProductNotFound.
	Lookup(id string) (*Product, error)

	// SetProduct upserts a catalog entry (used for seeding).
	SetProduct(p Product)
}
