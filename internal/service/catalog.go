package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vetdesk/vetdesk/internal/core"
	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
	"github.com/vetdesk/vetdesk/internal/domain/model"
	apperrors "github.com/vetdesk/vetdesk/internal/errors"
	"github.com/vetdesk/vetdesk/internal/observability/statsd"
)

// CatalogRepos groups the public catalog repositories.
type CatalogRepos struct {
	Products   core.ProductRepository       // Required
	Categories core.CategoryRepository      // Required
	Services   core.ClinicServiceRepository // Required
}

// CatalogServiceOptions groups dependencies for CatalogService.
type CatalogServiceOptions struct {
	Repos   CatalogRepos
	Logger  *slog.Logger // Optional
	Metrics statsd.Sink  // Optional
}

// CatalogService manages products, categories and clinic services.
// Reads are public; writes follow the staff policy.
type CatalogService struct {
	products   resources[model.Product, *model.Product]
	categories resources[model.Category, *model.Category]
	services   resources[model.ClinicService, *model.ClinicService]
}

// NewCatalogService constructs a new CatalogService.
func NewCatalogService(opts CatalogServiceOptions) (*CatalogService, error) {
	switch {
	case opts.Repos.Products == nil:
		return nil, errors.New("ProductRepository is required")
	case opts.Repos.Categories == nil:
		return nil, errors.New("CategoryRepository is required")
	case opts.Repos.Services == nil:
		return nil, errors.New("ClinicServiceRepository is required")
	}
	return &CatalogService{
		products:   newResources[model.Product](domainauth.KindProduct, opts.Repos.Products, opts.Logger, opts.Metrics),
		categories: newResources[model.Category](domainauth.KindCategory, opts.Repos.Categories, opts.Logger, opts.Metrics),
		services:   newResources[model.ClinicService](domainauth.KindService, opts.Repos.Services, opts.Logger, opts.Metrics),
	}, nil
}

// MustNewCatalogService constructs a new CatalogService and panics on error.
func MustNewCatalogService(opts CatalogServiceOptions) *CatalogService {
	svc, err := NewCatalogService(opts)
	if err != nil {
		panic(err) //nolint:forbidigo // startup wiring
	}
	return svc
}

// checkCategory rejects products that point at a category that does not exist.
func (s *CatalogService) checkCategory(ctx context.Context, p *model.Product) error {
	if p.CategoryID == "" {
		return nil
	}
	_, err := s.categories.repo.GetByID(ctx, p.CategoryID)
	if apperrors.IsNotFound(err) {
		return apperrors.ValidationField("category_id", "category_id does not reference an existing category")
	}
	return err
}

// CreateProduct adds a product.
func (s *CatalogService) CreateProduct(
	ctx context.Context,
	caller *domainauth.Identity,
	req *model.ProductRequest,
) (*model.Product, error) {
	if req == nil {
		return nil, errRequestRequired()
	}
	return s.products.create(ctx, caller, "", req, s.checkCategory)
}

// GetProduct returns a product by id.
func (s *CatalogService) GetProduct(ctx context.Context, caller *domainauth.Identity, id string) (*model.Product, error) {
	return s.products.get(ctx, caller, id)
}

// ListProducts returns a page of products.
func (s *CatalogService) ListProducts(
	ctx context.Context,
	caller *domainauth.Identity,
	opts model.ListOptions,
) ([]*model.Product, error) {
	return s.products.list(ctx, caller, opts)
}

// UpdateProduct applies req to the product with id.
func (s *CatalogService) UpdateProduct(
	ctx context.Context,
	caller *domainauth.Identity,
	id string,
	req *model.UpdateProductRequest,
) (*model.Product, error) {
	if req == nil {
		return nil, errRequestRequired()
	}
	return s.products.update(ctx, caller, id, req, s.checkCategory)
}

// DeleteProduct removes the product with id.
func (s *CatalogService) DeleteProduct(ctx context.Context, caller *domainauth.Identity, id string) error {
	_, err := s.products.delete(ctx, caller, id)
	return err
}

// CreateCategory adds a category.
func (s *CatalogService) CreateCategory(
	ctx context.Context,
	caller *domainauth.Identity,
	req *model.CategoryRequest,
) (*model.Category, error) {
	if req == nil {
		return nil, errRequestRequired()
	}
	return s.categories.create(ctx, caller, "", req, nil)
}

// GetCategory returns a category by id.
func (s *CatalogService) GetCategory(ctx context.Context, caller *domainauth.Identity, id string) (*model.Category, error) {
	return s.categories.get(ctx, caller, id)
}

// ListCategories returns a page of categories.
func (s *CatalogService) ListCategories(
	ctx context.Context,
	caller *domainauth.Identity,
	opts model.ListOptions,
) ([]*model.Category, error) {
	return s.categories.list(ctx, caller, opts)
}

// UpdateCategory applies req to the category with id.
func (s *CatalogService) UpdateCategory(
	ctx context.Context,
	caller *domainauth.Identity,
	id string,
	req *model.UpdateCategoryRequest,
) (*model.Category, error) {
	if req == nil {
		return nil, errRequestRequired()
	}
	return s.categories.update(ctx, caller, id, req, nil)
}

// DeleteCategory removes the category with id.
func (s *CatalogService) DeleteCategory(ctx context.Context, caller *domainauth.Identity, id string) error {
	_, err := s.categories.delete(ctx, caller, id)
	return err
}

// CreateService adds a clinic service.
func (s *CatalogService) CreateService(
	ctx context.Context,
	caller *domainauth.Identity,
	req *model.ClinicServiceRequest,
) (*model.ClinicService, error) {
	if req == nil {
		return nil, errRequestRequired()
	}
	return s.services.create(ctx, caller, "", req, nil)
}

// GetService returns a clinic service by id.
func (s *CatalogService) GetService(
	ctx context.Context,
	caller *domainauth.Identity,
	id string,
) (*model.ClinicService, error) {
	return s.services.get(ctx, caller, id)
}

// ListServices returns a page of clinic services.
func (s *CatalogService) ListServices(
	ctx context.Context,
	caller *domainauth.Identity,
	opts model.ListOptions,
) ([]*model.ClinicService, error) {
	return s.services.list(ctx, caller, opts)
}

// UpdateService applies req to the clinic service with id.
func (s *CatalogService) UpdateService(
	ctx context.Context,
	caller *domainauth.Identity,
	id string,
	req *model.UpdateClinicServiceRequest,
) (*model.ClinicService, error) {
	if req == nil {
		return nil, errRequestRequired()
	}
	return s.services.update(ctx, caller, id, req, nil)
}

// DeleteService removes the clinic service with id.
func (s *CatalogService) DeleteService(ctx context.Context, caller *domainauth.Identity, id string) error {
	_, err := s.services.delete(ctx, caller, id)
	return err
}
