// Package service exposes the reference catalog and its validation rules.
package service

import (
	"strings"

	"bosfinder_backend/internal/catalog/repository"
	"bosfinder_backend/internal/catalog/transport"
	"bosfinder_backend/platform/apperr"
	"bosfinder_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
)

// Validation tags registered by RegisterValidations.
const (
	TagCategory = "category"
	TagCommune  = "commune"
)

// Service provides catalog lookups.
type Service struct {
	repo repository.Repository
}

// New creates a new catalog service.
func New(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

// List returns every category and commune.
func (s *Service) List() transport.CatalogResponse {
	communes := s.repo.Communes()
	resp := transport.CatalogResponse{
		Categories: s.repo.Categories(),
		Communes:   make([]transport.CommuneResponse, len(communes)),
	}
	for i, c := range communes {
		resp.Communes[i] = transport.CommuneResponse{Name: c.Name, City: c.City}
	}
	return resp
}

// CanonicalCategory returns the catalog spelling of name.
func (s *Service) CanonicalCategory(name string) (string, error) {
	canonical, ok := s.repo.Category(name)
	if !ok {
		return "", apperr.Validation("unknown category: " + strings.TrimSpace(name))
	}
	return canonical, nil
}

// CanonicalCategories canonicalises and de-duplicates names, keeping their order.
func (s *Service) CanonicalCategories(names []string) ([]string, error) {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		canonical, err := s.CanonicalCategory(name)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	return out, nil
}

// CanonicalCommune returns the catalog commune for name.
func (s *Service) CanonicalCommune(name string) (repository.Commune, error) {
	commune, ok := s.repo.Commune(name)
	if !ok {
		return repository.Commune{}, apperr.Validation("unknown commune: " + strings.TrimSpace(name))
	}
	return commune, nil
}

// RegisterValidations adds the category and commune struct tags to val.
func (s *Service) RegisterValidations(val *validator.Validator) error {
	if err := val.RegisterValidation(TagCategory, func(fl playground.FieldLevel) bool {
		_, ok := s.repo.Category(fl.Field().String())
		return ok
	}); err != nil {
		return err
	}
	return val.RegisterValidation(TagCommune, func(fl playground.FieldLevel) bool {
		_, ok := s.repo.Commune(fl.Field().String())
		return ok
	})
}
