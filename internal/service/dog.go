package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vetdesk/vetdesk/internal/core"
	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
	"github.com/vetdesk/vetdesk/internal/domain/model"
	"github.com/vetdesk/vetdesk/internal/observability/statsd"
)

// DogServiceOptions groups dependencies for DogService.
type DogServiceOptions struct {
	Repo      core.DogRepository      // Required
	Customers core.CustomerRepository // Required: parent lookups
	Logger    *slog.Logger            // Optional
	Metrics   statsd.Sink             // Optional
}

// DogService provides policy-checked operations on dogs. Every dog belongs to a customer.
type DogService struct {
	res       resources[model.Dog, *model.Dog]
	customers core.CustomerRepository
}

// NewDogService constructs a new DogService.
func NewDogService(opts DogServiceOptions) (*DogService, error) {
	if opts.Repo == nil {
		return nil, errors.New("DogRepository is required")
	}
	if opts.Customers == nil {
		return nil, errors.New("CustomerRepository is required")
	}
	return &DogService{
		res:       newResources[model.Dog](domainauth.KindDog, opts.Repo, opts.Logger, opts.Metrics),
		customers: opts.Customers,
	}, nil
}

// MustNewDogService constructs a new DogService and panics on error.
func MustNewDogService(opts DogServiceOptions) *DogService {
	svc, err := NewDogService(opts)
	if err != nil {
		panic(err) //nolint:forbidigo // startup wiring
	}
	return svc
}

// Create adds a dog to customerID.
func (s *DogService) Create(
	ctx context.Context,
	caller *domainauth.Identity,
	customerID string,
	req *model.CreateDogRequest,
) (*model.Dog, error) {
	if req == nil {
		return nil, errRequestRequired()
	}
	req.CustomerID = customerID
	return s.res.create(ctx, caller, customerID, req, func(ctx context.Context, d *model.Dog) error {
		_, err := s.customers.GetByID(ctx, d.CustomerID)
		return err
	})
}

// Get returns a dog by id.
func (s *DogService) Get(ctx context.Context, caller *domainauth.Identity, id string) (*model.Dog, error) {
	return s.res.get(ctx, caller, id)
}

// GetForCustomer returns the dog with id only when it belongs to customerID.
func (s *DogService) GetForCustomer(
	ctx context.Context,
	caller *domainauth.Identity,
	customerID, id string,
) (*model.Dog, error) {
	d, err := s.res.get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if d.CustomerID != customerID {
		return nil, s.res.repoNotFound()
	}
	return d, nil
}

// List returns a page of all dogs.
func (s *DogService) List(ctx context.Context, caller *domainauth.Identity, opts model.ListOptions) ([]*model.Dog, error) {
	return s.res.list(ctx, caller, opts)
}

// ListByCustomer returns the dogs of customerID.
func (s *DogService) ListByCustomer(
	ctx context.Context,
	caller *domainauth.Identity,
	customerID string,
	opts model.ListOptions,
) ([]*model.Dog, error) {
	return s.res.listByOwner(ctx, caller, customerID, opts)
}

// Update applies req to the dog with id.
func (s *DogService) Update(
	ctx context.Context,
	caller *domainauth.Identity,
	id string,
	req *model.UpdateDogRequest,
) (*model.Dog, error) {
	if req == nil {
		return nil, errRequestRequired()
	}
	return s.res.update(ctx, caller, id, req, nil)
}

// Delete removes the dog with id.
func (s *DogService) Delete(ctx context.Context, caller *domainauth.Identity, id string) error {
	_, err := s.res.delete(ctx, caller, id)
	return err
}
