package service

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
	"github.com/vetdesk/vetdesk/internal/domain/model"
	apperrors "github.com/vetdesk/vetdesk/internal/errors"
)

// PortalRecords groups the services the customer portal reads through.
type PortalRecords struct {
	Customers *CustomerService
	Dogs      *DogService
	Invoices  *InvoiceService
	Diagnoses *DiagnoseService
}

// PortalServiceOptions groups dependencies for PortalService.
type PortalServiceOptions struct {
	Records PortalRecords // Required
}

// PortalService is the self-service surface for signed-in customers.
// Every call is scoped to the caller's own customer record and still goes
// through the per-resource policy.
type PortalService struct {
	records PortalRecords
}

// NewPortalService constructs a new PortalService.
func NewPortalService(opts PortalServiceOptions) (*PortalService, error) {
	r := opts.Records
	if r.Customers == nil || r.Dogs == nil || r.Invoices == nil || r.Diagnoses == nil {
		return nil, errors.New("portal requires customer, dog, invoice and diagnose services")
	}
	return &PortalService{records: r}, nil
}

// MustNewPortalService constructs a new PortalService and panics on error.
func MustNewPortalService(opts PortalServiceOptions) *PortalService {
	svc, err := NewPortalService(opts)
	if err != nil {
		panic(err) //nolint:forbidigo // startup wiring
	}
	return svc
}

// self returns the caller's customer id.
func self(caller *domainauth.Identity) (string, error) {
	if caller == nil {
		return "", apperrors.Unauthenticated("authentication required")
	}
	if caller.Role != domainauth.RoleCustomer {
		return "", apperrors.Forbidden("the portal is only available to customer accounts")
	}
	return caller.SubjectID, nil
}

// Profile returns the caller's customer record.
func (s *PortalService) Profile(ctx context.Context, caller *domainauth.Identity) (*model.Customer, error) {
	id, err := self(caller)
	if err != nil {
		return nil, err
	}
	return s.records.Customers.Get(ctx, caller, id)
}

// UpdateProfile applies req to the caller's customer record.
func (s *PortalService) UpdateProfile(
	ctx context.Context,
	caller *domainauth.Identity,
	req *model.UpdateCustomerRequest,
) (*model.Customer, error) {
	id, err := self(caller)
	if err != nil {
		return nil, err
	}
	return s.records.Customers.Update(ctx, caller, id, req)
}

// DeleteProfile removes the caller's own customer record.
func (s *PortalService) DeleteProfile(ctx context.Context, caller *domainauth.Identity) error {
	id, err := self(caller)
	if err != nil {
		return err
	}
	return s.records.Customers.Delete(ctx, caller, id)
}

// Dogs lists the caller's dogs.
func (s *PortalService) Dogs(
	ctx context.Context,
	caller *domainauth.Identity,
	opts model.ListOptions,
) ([]*model.Dog, error) {
	id, err := self(caller)
	if err != nil {
		return nil, err
	}
	return s.records.Dogs.ListByCustomer(ctx, caller, id, opts)
}

// Dog returns one of the caller's dogs.
func (s *PortalService) Dog(ctx context.Context, caller *domainauth.Identity, dogID string) (*model.Dog, error) {
	id, err := self(caller)
	if err != nil {
		return nil, err
	}
	return s.records.Dogs.GetForCustomer(ctx, caller, id, dogID)
}

// UpdateDog applies req to one of the caller's dogs.
func (s *PortalService) UpdateDog(
	ctx context.Context,
	caller *domainauth.Identity,
	dogID string,
	req *model.UpdateDogRequest,
) (*model.Dog, error) {
	if _, err := s.Dog(ctx, caller, dogID); err != nil {
		return nil, err
	}
	return s.records.Dogs.Update(ctx, caller, dogID, req)
}

// History is a customer's full clinical record.
type History struct {
	Customer  *model.Customer   `json:"customer"`
	Dogs      []*model.Dog      `json:"dogs"`
	Invoices  []*model.Invoice  `json:"invoices"`
	Diagnoses []*model.Diagnose `json:"diagnoses"`
}

// History loads the caller's profile, dogs, invoices and diagnoses concurrently.
func (s *PortalService) History(ctx context.Context, caller *domainauth.Identity) (*History, error) {
	id, err := self(caller)
	if err != nil {
		return nil, err
	}

	opts := model.ListOptions{Limit: model.MaxListLimit}
	var h History
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		h.Customer, err = s.records.Customers.Get(gctx, caller, id)
		return err
	})
	g.Go(func() error {
		var err error
		h.Dogs, err = s.records.Dogs.ListByCustomer(gctx, caller, id, opts)
		return err
	})
	g.Go(func() error {
		var err error
		h.Invoices, err = s.records.Invoices.ListByCustomer(gctx, caller, id, opts)
		return err
	})
	g.Go(func() error {
		var err error
		h.Diagnoses, err = s.records.Diagnoses.ListByCustomer(gctx, caller, id, opts)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &h, nil
}
