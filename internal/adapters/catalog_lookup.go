// Package adapters connects bounded contexts through the narrow ports each
// service declares, so no service imports another module directly.
package adapters

import (
	catalogsvc "bosfinder_backend/internal/catalog/service"
)

// CatalogLookup adapts the catalog service to the bos and jobrequests
// CatalogLookup ports.
type CatalogLookup struct {
	catalog *catalogsvc.Service
}

// NewCatalogLookup creates a new catalog adapter.
func NewCatalogLookup(catalog *catalogsvc.Service) *CatalogLookup {
	return &CatalogLookup{catalog: catalog}
}

func (a *CatalogLookup) CanonicalCategory(name string) (string, error) {
	return a.catalog.CanonicalCategory(name)
}

func (a *CatalogLookup) CanonicalCategories(names []string) ([]string, error) {
	return a.catalog.CanonicalCategories(names)
}

// CanonicalPlace returns the catalog spelling of commune and the city it belongs to.
func (a *CatalogLookup) CanonicalPlace(commune string) (string, string, error) {
	c, err := a.catalog.CanonicalCommune(commune)
	if err != nil {
		return "", "", err
	}
	return c.Name, c.City, nil
}
