package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vetdesk/vetdesk/internal/core"
	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
	"github.com/vetdesk/vetdesk/internal/domain/model"
	apperrors "github.com/vetdesk/vetdesk/internal/errors"
	"github.com/vetdesk/vetdesk/internal/observability/metrics"
	"github.com/vetdesk/vetdesk/internal/observability/statsd"
	"github.com/vetdesk/vetdesk/internal/ports"
)

// ErrProviderUnavailable is returned by the OAuth flow when no external provider is configured.
var ErrProviderUnavailable = errors.New("external sign-in is not configured")

// AuthAccounts groups the account stores used to sign people in.
type AuthAccounts struct {
	Customers   core.CustomerRepository   // Required
	Users       core.UserRepository       // Required
	Credentials core.CredentialRepository // Required
}

// AuthCollaborators groups the session, password and provider ports.
type AuthCollaborators struct {
	Signer   ports.SessionSigner  // Required
	Hasher   ports.PasswordHasher // Required
	Provider ports.AuthProvider   // Optional: external customer sign-in
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Accounts      AuthAccounts
	Collaborators AuthCollaborators
	Logger        *slog.Logger // Optional
	Metrics       statsd.Sink  // Optional
}

// AuthService signs staff and customers in and resolves session tokens.
// Sessions are stateless signed tokens; nothing is persisted when one is issued.
type AuthService struct {
	customers core.CustomerRepository
	users     core.UserRepository
	passwords AccountDeps
	signer    ports.SessionSigner
	provider  ports.AuthProvider
	logger    *slog.Logger
	metrics   statsd.Sink
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	switch {
	case opts.Accounts.Customers == nil:
		return nil, errors.New("CustomerRepository is required")
	case opts.Accounts.Users == nil:
		return nil, errors.New("UserRepository is required")
	case opts.Collaborators.Signer == nil:
		return nil, errors.New("SessionSigner is required")
	}
	passwords := AccountDeps{Credentials: opts.Accounts.Credentials, Hasher: opts.Collaborators.Hasher}
	if err := passwords.validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		customers: opts.Accounts.Customers,
		users:     opts.Accounts.Users,
		passwords: passwords,
		signer:    opts.Collaborators.Signer,
		provider:  opts.Collaborators.Provider,
		logger:    logger.With("component", "auth_service"),
		metrics:   opts.Metrics,
	}, nil
}

// MustNewAuthService constructs a new AuthService and panics on error.
func MustNewAuthService(opts AuthServiceOptions) *AuthService {
	svc, err := NewAuthService(opts)
	if err != nil {
		panic(err) //nolint:forbidigo // startup wiring
	}
	return svc
}

// Session is a freshly issued token and the identity it carries.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Identity  domainauth.Identity
}

// IssueSession signs a token for identity. The token is valid for SessionTTL.
func (s *AuthService) IssueSession(identity domainauth.Identity) (*Session, error) {
	if err := identity.Validate(); err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	token, exp, err := s.signer.Issue(identity)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	return &Session{Token: token, ExpiresAt: exp, Identity: identity}, nil
}

// Sign-in methods reported on the session metric.
const (
	signInPassword = "password"
	signInRegister = "register"
	signInOAuth    = "oauth"
)

func (s *AuthService) issue(identity domainauth.Identity, method string) (*Session, error) {
	sess, err := s.IssueSession(identity)
	if err != nil {
		return nil, err
	}
	metrics.EmitSessionIssued(s.metrics, method, string(identity.Role))
	return sess, nil
}

// ResolveIdentity returns the identity carried by token, or nil for an empty,
// invalid or expired token. It never touches storage.
func (s *AuthService) ResolveIdentity(token string) *domainauth.Identity {
	if token == "" {
		return nil
	}
	id, err := s.signer.Verify(token)
	if err != nil {
		s.logger.Debug("session token rejected", "error", err)
		return nil
	}
	return id
}

// LoginInput carries password credentials.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func errBadCredentials() error {
	return apperrors.Unauthenticated("invalid email or password")
}

// Login checks a password against staff accounts first, then customers.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	email := model.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperrors.Validation("email and password are required")
	}

	identity, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.checkPassword(ctx, identity.SubjectID, in.Password); err != nil {
		return nil, err
	}
	if !identity.Role.Valid() {
		s.logger.WarnContext(ctx, "login refused for unrecognized role",
			"subject", identity.SubjectID, "role", identity.Role)
		return nil, apperrors.Forbidden("account role is not recognized; ask an administrator to fix it")
	}
	s.logger.InfoContext(ctx, "login", "subject", identity.SubjectID, "role", identity.Role)
	return s.issue(identity, signInPassword)
}

// lookup finds the account for email, staff first.
func (s *AuthService) lookup(ctx context.Context, email string) (domainauth.Identity, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return u.Identity(), nil
	}
	if !apperrors.IsNotFound(err) {
		return domainauth.Identity{}, fmt.Errorf("find user: %w", err)
	}
	c, err := s.customers.FindByEmail(ctx, email)
	if err == nil {
		return customerIdentity(c), nil
	}
	if apperrors.IsNotFound(err) {
		return domainauth.Identity{}, errBadCredentials()
	}
	return domainauth.Identity{}, fmt.Errorf("find customer: %w", err)
}

func (s *AuthService) checkPassword(ctx context.Context, subjectID, password string) error {
	cred, err := s.passwords.Credentials.Get(ctx, subjectID)
	if errors.Is(err, model.ErrCredentialNotFound) {
		return errBadCredentials()
	}
	if err != nil {
		return fmt.Errorf("get credential: %w", err)
	}
	if err := s.passwords.Hasher.Compare(cred.PasswordHash, password); err != nil {
		return errBadCredentials()
	}
	return nil
}

func customerIdentity(c *model.Customer) domainauth.Identity {
	name := c.Name
	if name == "" {
		name = c.Email
	}
	return domainauth.Identity{
		SubjectID:   c.ID,
		Email:       c.Email,
		DisplayName: name,
		Role:        domainauth.RoleCustomer,
	}
}

// staffEmailTaken reports whether email belongs to a staff account.
func (s *AuthService) staffEmailTaken(ctx context.Context, email string) (bool, error) {
	return staffDirectory{users: s.users}.has(ctx, email)
}

// Register creates a customer account with a password and signs it in.
func (s *AuthService) Register(ctx context.Context, req *model.CreateCustomerRequest) (*Session, error) {
	if req == nil {
		return nil, errRequestRequired()
	}
	if req.Password == "" {
		return nil, apperrors.ValidationField("password", "password is required")
	}
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	taken, err := s.staffEmailTaken(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errEmailTaken()
	}

	c, err := s.customers.Create(ctx, req.Build())
	if err != nil {
		return nil, err
	}
	if err := s.passwords.setPassword(ctx, c.ID, model.SubjectCustomer, req.Password); err != nil {
		if _, delErr := s.customers.Delete(ctx, c.ID); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to roll back registration", "id", c.ID, "error", delErr)
		}
		return nil, fmt.Errorf("set customer password: %w", err)
	}
	s.logger.InfoContext(ctx, "customer registered", "subject", c.ID)
	return s.issue(customerIdentity(c), signInRegister)
}

// ProviderAvailable reports whether external sign-in is configured.
func (s *AuthService) ProviderAvailable() bool { return s.provider != nil }

// BeginLoginResult contains the result of beginning an external sign-in.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginOAuth starts an external sign-in and returns the provider URL with state and nonce.
func (s *AuthService) BeginOAuth(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if s.provider == nil {
		return nil, ErrProviderUnavailable
	}
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}
	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing an external sign-in.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteOAuth exchanges the provider code, finds or creates the customer
// with the verified email and signs it in. Staff must use their password.
func (s *AuthService) CompleteOAuth(ctx context.Context, in CompleteLoginInput) (*Session, error) {
	if s.provider == nil {
		return nil, ErrProviderUnavailable
	}
	switch {
	case in.Code == "":
		return nil, errors.New("authorization code is required")
	case in.State == "":
		return nil, errors.New("state parameter is required")
	case in.Nonce == "":
		return nil, errors.New("nonce parameter is required")
	}

	profile, err := s.provider.Exchange(ctx, ports.ExchangeInput(in))
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	email := model.NormalizeEmail(profile.Email)
	if email == "" {
		return nil, apperrors.Unauthenticated("identity provider did not return an email address")
	}

	taken, err := s.staffEmailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		s.logger.WarnContext(ctx, "external sign-in refused for staff email", "provider_subject", profile.Subject)
		return nil, apperrors.Forbidden("staff accounts must sign in with a password")
	}

	c, err := s.findOrCreateCustomer(ctx, email, profile)
	if err != nil {
		return nil, err
	}
	return s.issue(customerIdentity(c), signInOAuth)
}

func (s *AuthService) findOrCreateCustomer(
	ctx context.Context,
	email string,
	profile domainauth.ProviderProfile,
) (*model.Customer, error) {
	c, err := s.customers.FindByEmail(ctx, email)
	if err == nil {
		return s.linkable(ctx, c)
	}
	if !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("find customer: %w", err)
	}
	c, err = s.customers.Create(ctx, &model.Customer{Name: profile.DisplayName(), Email: email})
	if apperrors.IsConflict(err) {
		// Lost a race with a concurrent sign-in or registration for the same address.
		if c, err = s.customers.FindByEmail(ctx, email); err != nil {
			return nil, fmt.Errorf("find customer: %w", err)
		}
		return s.linkable(ctx, c)
	}
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	s.logger.InfoContext(ctx, "customer created from external sign-in", "subject", c.ID)
	return c, nil
}

// linkable refuses a provider sign-in into a customer that has a password.
// Registration never proves ownership of the email, so only accounts without
// a password are reachable through the provider.
func (s *AuthService) linkable(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	_, err := s.passwords.Credentials.Get(ctx, c.ID)
	if errors.Is(err, model.ErrCredentialNotFound) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}
	s.logger.WarnContext(ctx, "external sign-in refused for password account", "subject", c.ID)
	return nil, &apperrors.AppError{
		Code:    apperrors.ErrCodeConflict,
		Message: "This email is registered with a password. Sign in with your password.",
		Field:   "email",
	}
}
