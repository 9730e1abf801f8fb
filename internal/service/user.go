package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vetdesk/vetdesk/internal/core"
	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
	"github.com/vetdesk/vetdesk/internal/domain/model"
	"github.com/vetdesk/vetdesk/internal/observability/statsd"
)

// UserServiceOptions groups dependencies for UserService.
type UserServiceOptions struct {
	Repo     core.UserRepository // Required
	Accounts AccountDeps         // Required: staff passwords
	Logger   *slog.Logger        // Optional
	Metrics  statsd.Sink         // Optional
}

// UserService manages staff accounts.
type UserService struct {
	res      resources[model.User, *model.User]
	accounts AccountDeps
	logger   *slog.Logger
}

// NewUserService constructs a new UserService.
func NewUserService(opts UserServiceOptions) (*UserService, error) {
	if opts.Repo == nil {
		return nil, errors.New("UserRepository is required")
	}
	if err := opts.Accounts.validate(); err != nil {
		return nil, err
	}
	res := newResources[model.User](domainauth.KindUser, opts.Repo, opts.Logger, opts.Metrics)
	res.target = func(u *model.User) domainauth.Resource {
		return domainauth.Resource{OwnerID: u.ID, TargetRole: u.Role}
	}
	return &UserService{res: res, accounts: opts.Accounts, logger: res.logger}, nil
}

// MustNewUserService constructs a new UserService and panics on error.
func MustNewUserService(opts UserServiceOptions) *UserService {
	svc, err := NewUserService(opts)
	if err != nil {
		panic(err) //nolint:forbidigo // startup wiring
	}
	return svc
}

// SanitizeUserUpdate drops a role change the caller is not allowed to make.
// The remaining fields are left untouched.
func SanitizeUserUpdate(caller *domainauth.Identity, req *model.UpdateUserRequest) *model.UpdateUserRequest {
	if req == nil {
		return nil
	}
	req.Role = domainauth.GuardRoleChange(caller, req.Role)
	return req
}

// Create adds a staff account. Callers other than super_admin cannot pick
// the role; their accounts get the default staff role.
func (s *UserService) Create(
	ctx context.Context,
	caller *domainauth.Identity,
	req *model.CreateUserRequest,
) (*model.User, error) {
	if req == nil {
		return nil, errRequestRequired()
	}
	req.Role = domainauth.GuardRoleChange(caller, req.Role)
	u, err := s.res.create(ctx, caller, "", req, nil)
	if err != nil {
		return nil, err
	}
	return s.finishCreate(ctx, u, req.Password)
}

// CreateBootstrap adds a staff account without a caller, keeping the requested role.
// It backs the admin CLI that provisions the first super_admin.
func (s *UserService) CreateBootstrap(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if req == nil {
		return nil, errRequestRequired()
	}
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	u, err := s.res.repo.Create(ctx, req.Build())
	if err != nil {
		return nil, err
	}
	return s.finishCreate(ctx, u, req.Password)
}

func (s *UserService) finishCreate(ctx context.Context, u *model.User, password string) (*model.User, error) {
	if err := s.accounts.setPassword(ctx, u.ID, model.SubjectUser, password); err != nil {
		if _, delErr := s.res.repo.Delete(ctx, u.ID); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to roll back user", "id", u.ID, "error", delErr)
		}
		return nil, fmt.Errorf("set user password: %w", err)
	}
	s.logger.InfoContext(ctx, "staff user created", "id", u.ID, "role", u.Role)
	return u, nil
}

// Get returns a staff account by id.
func (s *UserService) Get(ctx context.Context, caller *domainauth.Identity, id string) (*model.User, error) {
	return s.res.get(ctx, caller, id)
}

// List returns a page of staff accounts.
func (s *UserService) List(ctx context.Context, caller *domainauth.Identity, opts model.ListOptions) ([]*model.User, error) {
	return s.res.list(ctx, caller, opts)
}

// Update applies req to the staff account with id. A role change from a
// caller other than super_admin is dropped and the rest of the update proceeds.
func (s *UserService) Update(
	ctx context.Context,
	caller *domainauth.Identity,
	id string,
	req *model.UpdateUserRequest,
) (*model.User, error) {
	if req == nil {
		return nil, errRequestRequired()
	}
	u, err := s.res.load(ctx, caller, domainauth.ActionUpdate, id)
	if err != nil {
		return nil, err
	}
	if !req.HasUpdates() {
		return nil, validationError(model.ErrNoUpdates)
	}
	SanitizeUserUpdate(caller, req)
	if !req.HasUpdates() {
		return u, nil
	}
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	req.Apply(u)
	updated, err := s.res.repo.Update(ctx, u)
	if err != nil {
		return nil, err
	}
	if req.Password != nil {
		if err := s.accounts.setPassword(ctx, updated.ID, model.SubjectUser, *req.Password); err != nil {
			return nil, fmt.Errorf("set user password: %w", err)
		}
	}
	return updated, nil
}

// Delete removes the staff account with id. super_admin accounts cannot be deleted.
func (s *UserService) Delete(ctx context.Context, caller *domainauth.Identity, id string) error {
	if _, err := s.res.delete(ctx, caller, id); err != nil {
		return err
	}
	if err := s.accounts.Credentials.Delete(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "failed to delete user credential", "id", id, "error", err)
	}
	return nil
}
