package service

import "context"

// Owner is the user record behind a profile.
type Owner struct {
	Role        string
	FullName    string
	PhoneNumber string
}

// OwnerReader looks up the user that is creating a profile.
// Implementations return an apperr NotFound when the user is unknown.
type OwnerReader interface {
	GetOwner(ctx context.Context, userID string) (Owner, error)
}

// CatalogLookup canonicalises categories and communes against the catalog.
// Unknown names yield an apperr Validation error.
type CatalogLookup interface {
	CanonicalCategory(name string) (string, error)
	CanonicalCategories(names []string) ([]string, error)
	CanonicalPlace(commune string) (canonical, city string, err error)
}
