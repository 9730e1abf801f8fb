package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vetdesk/vetdesk/internal/core"
	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
	"github.com/vetdesk/vetdesk/internal/domain/model"
	apperrors "github.com/vetdesk/vetdesk/internal/errors"
	"github.com/vetdesk/vetdesk/internal/observability/statsd"
	"github.com/vetdesk/vetdesk/internal/ports"
)

// AccountDeps groups the password storage shared by customer and staff accounts.
type AccountDeps struct {
	Credentials core.CredentialRepository // Required
	Hasher      ports.PasswordHasher      // Required
}

func (d AccountDeps) validate() error {
	if d.Credentials == nil {
		return errors.New("CredentialRepository is required")
	}
	if d.Hasher == nil {
		return errors.New("PasswordHasher is required")
	}
	return nil
}

// setPassword hashes password and stores it for subjectID.
func (d AccountDeps) setPassword(ctx context.Context, subjectID string, kind model.SubjectKind, password string) error {
	hash, err := d.Hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return d.Credentials.Set(ctx, model.Credential{SubjectID: subjectID, SubjectKind: kind, PasswordHash: hash})
}

// staffDirectory answers whether an email belongs to a staff account.
// Sign-in resolves staff first, so a customer sharing a staff email could
// never log in.
type staffDirectory struct {
	users core.UserRepository
}

func (d staffDirectory) has(ctx context.Context, email string) (bool, error) {
	_, err := d.users.FindByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if apperrors.IsNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("find user: %w", err)
}

// refuse returns a conflict when email belongs to staff.
func (d staffDirectory) refuse(ctx context.Context, email string) error {
	taken, err := d.has(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return errEmailTaken()
	}
	return nil
}

func errEmailTaken() error {
	return &apperrors.AppError{
		Code:    apperrors.ErrCodeConflict,
		Message: "This email already exists. Please choose a different one.",
		Field:   "email",
	}
}

// CustomerServiceOptions groups dependencies for CustomerService.
type CustomerServiceOptions struct {
	Repo     core.CustomerRepository // Required
	Staff    core.UserRepository     // Required: staff email lookups
	Accounts AccountDeps             // Required: customer passwords
	Logger   *slog.Logger            // Optional
	Metrics  statsd.Sink             // Optional
}

// CustomerService provides policy-checked operations on customers.
type CustomerService struct {
	res      resources[model.Customer, *model.Customer]
	staff    staffDirectory
	accounts AccountDeps
	logger   *slog.Logger
}

// NewCustomerService constructs a new CustomerService.
func NewCustomerService(opts CustomerServiceOptions) (*CustomerService, error) {
	if opts.Repo == nil {
		return nil, errors.New("CustomerRepository is required")
	}
	if opts.Staff == nil {
		return nil, errors.New("UserRepository is required")
	}
	if err := opts.Accounts.validate(); err != nil {
		return nil, err
	}
	res := newResources[model.Customer](domainauth.KindCustomer, opts.Repo, opts.Logger, opts.Metrics)
	return &CustomerService{
		res:      res,
		staff:    staffDirectory{users: opts.Staff},
		accounts: opts.Accounts,
		logger:   res.logger,
	}, nil
}

// MustNewCustomerService constructs a new CustomerService and panics on error.
func MustNewCustomerService(opts CustomerServiceOptions) *CustomerService {
	svc, err := NewCustomerService(opts)
	if err != nil {
		panic(err) //nolint:forbidigo // startup wiring
	}
	return svc
}

// Create registers a customer on behalf of staff. A password, when given,
// lets the customer sign in to the portal.
func (s *CustomerService) Create(
	ctx context.Context,
	caller *domainauth.Identity,
	req *model.CreateCustomerRequest,
) (*model.Customer, error) {
	if req == nil {
		return nil, errRequestRequired()
	}
	c, err := s.res.create(ctx, caller, "", req, func(ctx context.Context, c *model.Customer) error {
		return s.staff.refuse(ctx, c.Email)
	})
	if err != nil {
		return nil, err
	}
	if req.Password == "" {
		return c, nil
	}
	if err := s.accounts.setPassword(ctx, c.ID, model.SubjectCustomer, req.Password); err != nil {
		s.rollback(ctx, c.ID)
		return nil, fmt.Errorf("set customer password: %w", err)
	}
	return c, nil
}

func (s *CustomerService) rollback(ctx context.Context, id string) {
	if _, err := s.res.repo.Delete(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to roll back customer", "id", id, "error", err)
	}
}

// Get returns a customer by id.
func (s *CustomerService) Get(ctx context.Context, caller *domainauth.Identity, id string) (*model.Customer, error) {
	return s.res.get(ctx, caller, id)
}

// List returns a page of customers, newest first.
func (s *CustomerService) List(
	ctx context.Context,
	caller *domainauth.Identity,
	opts model.ListOptions,
) ([]*model.Customer, error) {
	return s.res.list(ctx, caller, opts)
}

// Update applies req to the customer with id.
func (s *CustomerService) Update(
	ctx context.Context,
	caller *domainauth.Identity,
	id string,
	req *model.UpdateCustomerRequest,
) (*model.Customer, error) {
	if req == nil {
		return nil, errRequestRequired()
	}
	return s.res.update(ctx, caller, id, req, func(ctx context.Context, c *model.Customer) error {
		if req.Email == nil {
			return nil
		}
		return s.staff.refuse(ctx, c.Email)
	})
}

// Delete removes the customer with id and its password.
func (s *CustomerService) Delete(ctx context.Context, caller *domainauth.Identity, id string) error {
	if _, err := s.res.delete(ctx, caller, id); err != nil {
		return err
	}
	if err := s.accounts.Credentials.Delete(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "failed to delete customer credential", "id", id, "error", err)
	}
	return nil
}
