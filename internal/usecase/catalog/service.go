// Package catalog lists what callers can ask about: categories, authors and models.
package catalog

import (
	"context"
	"fmt"
	"slices"

	"github.com/kailas-cloud/bookclub/internal/domain"
	"github.com/kailas-cloud/bookclub/internal/domain/category"
)

// AuthorLister lists the unique authors reviewed in a category code.
type AuthorLister interface {
	Authors(ctx context.Context, category string) ([]string, error)
}

// Models is the advertised model catalog.
type Models struct {
	Available []string
	Default   string
	Judge     string
}

// Service serves the catalog.
type Service struct {
	authors AuthorLister
	models  Models
}

// New creates a catalog service.
func New(authors AuthorLister, models Models) *Service {
	return &Service{authors: authors, models: models}
}

// Categories returns the category table in display order.
func (s *Service) Categories() []category.Category {
	return category.All()
}

// Authors lists authors for a category given by display name or code.
// Unlike answering, an unrecognized category is ErrNotFound rather than the default.
func (s *Service) Authors(ctx context.Context, nameOrCode string) ([]string, error) {
	c, ok := category.ByCode(nameOrCode)
	if !ok {
		c, ok = category.ByName(nameOrCode)
	}
	if !ok {
		return nil, fmt.Errorf("category %q: %w", nameOrCode, domain.ErrNotFound)
	}

	authors, err := s.authors.Authors(ctx, c.Code)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	return authors, nil
}

// Models returns the model catalog.
func (s *Service) Models() Models {
	m := s.models
	m.Available = slices.Clone(m.Available)
	return m
}
