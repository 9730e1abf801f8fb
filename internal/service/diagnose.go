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

// DiagnoseServiceOptions groups dependencies for DiagnoseService.
type DiagnoseServiceOptions struct {
	Repo     core.DiagnoseRepository // Required
	Patients PatientRepos            // Required
	Logger   *slog.Logger            // Optional
	Metrics  statsd.Sink             // Optional
}

// DiagnoseService provides policy-checked operations on diagnoses.
type DiagnoseService struct {
	res      resources[model.Diagnose, *model.Diagnose]
	patients PatientRepos
}

// NewDiagnoseService constructs a new DiagnoseService.
func NewDiagnoseService(opts DiagnoseServiceOptions) (*DiagnoseService, error) {
	if opts.Repo == nil {
		return nil, errors.New("DiagnoseRepository is required")
	}
	if err := opts.Patients.validate(); err != nil {
		return nil, err
	}
	return &DiagnoseService{
		res:      newResources[model.Diagnose](domainauth.KindDiagnose, opts.Repo, opts.Logger, opts.Metrics),
		patients: opts.Patients,
	}, nil
}

// MustNewDiagnoseService constructs a new DiagnoseService and panics on error.
func MustNewDiagnoseService(opts DiagnoseServiceOptions) *DiagnoseService {
	svc, err := NewDiagnoseService(opts)
	if err != nil {
		panic(err) //nolint:forbidigo // startup wiring
	}
	return svc
}

// Create records a new diagnose. The dog must belong to the customer.
func (s *DiagnoseService) Create(
	ctx context.Context,
	caller *domainauth.Identity,
	req *model.CreateDiagnoseRequest,
) (*model.Diagnose, error) {
	if req == nil {
		return nil, errRequestRequired()
	}
	return s.res.create(ctx, caller, req.CustomerID, req, func(ctx context.Context, d *model.Diagnose) error {
		return s.patients.checkLink(ctx, d.CustomerID, d.DogID)
	})
}

// Get returns a diagnose by id.
func (s *DiagnoseService) Get(ctx context.Context, caller *domainauth.Identity, id string) (*model.Diagnose, error) {
	return s.res.get(ctx, caller, id)
}

// List returns a page of diagnoses, newest first.
func (s *DiagnoseService) List(
	ctx context.Context,
	caller *domainauth.Identity,
	opts model.ListOptions,
) ([]*model.Diagnose, error) {
	return s.res.list(ctx, caller, opts)
}

// ListByCustomer returns the diagnoses of customerID.
func (s *DiagnoseService) ListByCustomer(
	ctx context.Context,
	caller *domainauth.Identity,
	customerID string,
	opts model.ListOptions,
) ([]*model.Diagnose, error) {
	return s.res.listByOwner(ctx, caller, customerID, opts)
}

// Update applies req to the diagnose with id. Patient links are immutable.
func (s *DiagnoseService) Update(
	ctx context.Context,
	caller *domainauth.Identity,
	id string,
	req *model.UpdateDiagnoseRequest,
) (*model.Diagnose, error) {
	if req == nil {
		return nil, errRequestRequired()
	}
	return s.res.update(ctx, caller, id, req, nil)
}

// Delete removes the diagnose with id.
func (s *DiagnoseService) Delete(ctx context.Context, caller *domainauth.Identity, id string) error {
	_, err := s.res.delete(ctx, caller, id)
	return err
}
