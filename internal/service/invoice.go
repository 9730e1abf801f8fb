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

// PatientRepos groups the lookups clinical records are checked against.
type PatientRepos struct {
	Customers core.CustomerRepository // Required
	Dogs      core.DogRepository      // Required
}

func (p PatientRepos) validate() error {
	if p.Customers == nil {
		return errors.New("CustomerRepository is required")
	}
	if p.Dogs == nil {
		return errors.New("DogRepository is required")
	}
	return nil
}

// checkLink verifies customerID exists and, when dogID is set, that the dog belongs to it.
func (p PatientRepos) checkLink(ctx context.Context, customerID, dogID string) error {
	if _, err := p.Customers.GetByID(ctx, customerID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.ValidationField("customer_id", "customer_id does not reference an existing customer")
		}
		return err
	}
	if dogID == "" {
		return nil
	}
	dog, err := p.Dogs.GetByID(ctx, dogID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.ValidationField("dog_id", "dog_id does not reference an existing dog")
		}
		return err
	}
	if dog.CustomerID != customerID {
		return apperrors.ValidationField("dog_id", "dog does not belong to this customer")
	}
	return nil
}

// InvoiceServiceOptions groups dependencies for InvoiceService.
type InvoiceServiceOptions struct {
	Repo     core.InvoiceRepository // Required
	Patients PatientRepos           // Required
	Logger   *slog.Logger           // Optional
	Metrics  statsd.Sink            // Optional
}

// InvoiceService provides policy-checked operations on invoices.
// Numbers are assigned by the repository on insert and never change.
type InvoiceService struct {
	res      resources[model.Invoice, *model.Invoice]
	patients PatientRepos
}

// NewInvoiceService constructs a new InvoiceService.
func NewInvoiceService(opts InvoiceServiceOptions) (*InvoiceService, error) {
	if opts.Repo == nil {
		return nil, errors.New("InvoiceRepository is required")
	}
	if err := opts.Patients.validate(); err != nil {
		return nil, err
	}
	return &InvoiceService{
		res:      newResources[model.Invoice](domainauth.KindInvoice, opts.Repo, opts.Logger, opts.Metrics),
		patients: opts.Patients,
	}, nil
}

// MustNewInvoiceService constructs a new InvoiceService and panics on error.
func MustNewInvoiceService(opts InvoiceServiceOptions) *InvoiceService {
	svc, err := NewInvoiceService(opts)
	if err != nil {
		panic(err) //nolint:forbidigo // startup wiring
	}
	return svc
}

func (s *InvoiceService) checkLink(ctx context.Context, inv *model.Invoice) error {
	return s.patients.checkLink(ctx, inv.CustomerID, inv.DogID)
}

// Create issues a new invoice.
func (s *InvoiceService) Create(
	ctx context.Context,
	caller *domainauth.Identity,
	req *model.CreateInvoiceRequest,
) (*model.Invoice, error) {
	if req == nil {
		return nil, errRequestRequired()
	}
	return s.res.create(ctx, caller, req.CustomerID, req, s.checkLink)
}

// Get returns an invoice by id.
func (s *InvoiceService) Get(ctx context.Context, caller *domainauth.Identity, id string) (*model.Invoice, error) {
	return s.res.get(ctx, caller, id)
}

// List returns a page of invoices, newest first.
func (s *InvoiceService) List(
	ctx context.Context,
	caller *domainauth.Identity,
	opts model.ListOptions,
) ([]*model.Invoice, error) {
	return s.res.list(ctx, caller, opts)
}

// ListByCustomer returns the invoices of customerID.
func (s *InvoiceService) ListByCustomer(
	ctx context.Context,
	caller *domainauth.Identity,
	customerID string,
	opts model.ListOptions,
) ([]*model.Invoice, error) {
	return s.res.listByOwner(ctx, caller, customerID, opts)
}

// Update applies req to the invoice with id.
func (s *InvoiceService) Update(
	ctx context.Context,
	caller *domainauth.Identity,
	id string,
	req *model.UpdateInvoiceRequest,
) (*model.Invoice, error) {
	if req == nil {
		return nil, errRequestRequired()
	}
	return s.res.update(ctx, caller, id, req, s.checkLink)
}

// Delete removes the invoice with id.
func (s *InvoiceService) Delete(ctx context.Context, caller *domainauth.Identity, id string) error {
	_, err := s.res.delete(ctx, caller, id)
	return err
}
