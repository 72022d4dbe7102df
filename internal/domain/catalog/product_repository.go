package catalog

import "context"

// ProductRepository persists admitted products
type ProductRepository interface {
	// FindByID returns shared.ErrNotFound when the product does not exist
	FindByID(ctx context.Context, id string) (*AdmittedProduct, error)

	// Upsert inserts the product or, on id conflict, updates its mutable
	// fields. Stock fields are only updated when syncInventory is set.
	Upsert(ctx context.Context, product *AdmittedProduct, syncInventory bool) error

	// Count returns the number of stored products, optionally filtered by status
	Count(ctx context.Context, status AdmissionStatus) (int64, error)

	// FindRecentNames returns id → name of the most recently synced admitted
	// products of a platform, newest first.
	FindRecentNames(ctx context.Context, platform string, limit int) (map[string]string, error)
}
