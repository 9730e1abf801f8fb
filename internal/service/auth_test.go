package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
	"github.com/vetdesk/vetdesk/internal/domain/model"
	apperrors "github.com/vetdesk/vetdesk/internal/errors"
	"github.com/vetdesk/vetdesk/internal/mocks"
	mockauth "github.com/vetdesk/vetdesk/internal/mocks/auth"
	"github.com/vetdesk/vetdesk/internal/mocks/store"
	"github.com/vetdesk/vetdesk/internal/ports"
	"github.com/vetdesk/vetdesk/internal/testutil"
)

func TestNewAuthService_RequiredDependencies(t *testing.T) {
	_, err := NewAuthService(AuthServiceOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CustomerRepository is required")

	_, err = NewAuthService(AuthServiceOptions{Accounts: AuthAccounts{
		Customers:   store.NewMemoryDocuments[model.Customer]("customer"),
		Users:       store.NewMemoryDocuments[model.User]("user"),
		Credentials: store.NewMemoryCredentials(),
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SessionSigner is required")
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	c := newClinic(t)
	vet := c.seedUser(t, "vet@clinic.example", domainauth.RoleAdmin2)
	ana := c.seedCustomer("ana@example.com")
	require.NoError(t, c.credentials.Set(ctx, model.Credential{
		SubjectID: ana.ID, SubjectKind: model.SubjectCustomer, PasswordHash: "plain:ana password",
	}))

	t.Run("staff", func(t *testing.T) {
		sess, err := c.authSvc.Login(ctx, LoginInput{Email: " VET@clinic.example", Password: "correct horse"})
		require.NoError(t, err)
		assert.Equal(t, vet.ID, sess.Identity.SubjectID)
		assert.Equal(t, domainauth.RoleAdmin2, sess.Identity.Role)
		assert.Equal(t, c.now.Add(domainauth.SessionTTL), sess.ExpiresAt)

		resolved := c.authSvc.ResolveIdentity(sess.Token)
		require.NotNil(t, resolved)
		assert.Equal(t, sess.Identity, *resolved)
	})

	t.Run("customer", func(t *testing.T) {
		sess, err := c.authSvc.Login(ctx, LoginInput{Email: "ana@example.com", Password: "ana password"})
		require.NoError(t, err)
		assert.Equal(t, ana.ID, sess.Identity.SubjectID)
		assert.Equal(t, domainauth.RoleCustomer, sess.Identity.Role)
		assert.Equal(t, ana.Name, sess.Identity.DisplayName)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := c.authSvc.Login(ctx, LoginInput{Email: "ana@example.com", Password: "nope"})
		assert.True(t, apperrors.IsUnauthenticated(err))
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := c.authSvc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "whatever"})
		assert.True(t, apperrors.IsUnauthenticated(err))
	})

	t.Run("account without password", func(t *testing.T) {
		c.seedCustomer("oauth-only@example.com")
		_, err := c.authSvc.Login(ctx, LoginInput{Email: "oauth-only@example.com", Password: "whatever"})
		assert.True(t, apperrors.IsUnauthenticated(err))
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := c.authSvc.Login(ctx, LoginInput{Email: "ana@example.com"})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("legacy role is refused", func(t *testing.T) {
		c.seedUser(t, "legacy@clinic.example", domainauth.Role("SUPER_ADMIN"))
		_, err := c.authSvc.Login(ctx, LoginInput{Email: "legacy@clinic.example", Password: "correct horse"})
		assert.True(t, apperrors.IsForbidden(err))
	})
}

func TestAuthService_Login_CredentialStoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	creds := mocks.NewMockCredentialRepository(ctrl)
	creds.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

	customers := store.NewMemoryDocuments[model.Customer]("customer")
	customers.Seed(&model.Customer{Name: "Ana", Email: "ana@example.com"})
	svc := MustNewAuthService(AuthServiceOptions{
		Accounts: AuthAccounts{
			Customers:   customers,
			Users:       store.NewMemoryDocuments[model.User]("user"),
			Credentials: creds,
		},
		Collaborators: AuthCollaborators{Signer: &mockauth.StaticSigner{}, Hasher: mockauth.PlainHasher{}},
	})

	_, err := svc.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "x"})
	require.Error(t, err)
	assert.False(t, apperrors.IsUnauthenticated(err))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestAuthService_ResolveIdentity(t *testing.T) {
	c := newClinic(t)
	assert.Nil(t, c.authSvc.ResolveIdentity(""))
	assert.Nil(t, c.authSvc.ResolveIdentity("garbage"))

	sess, err := c.authSvc.IssueSession(*testutil.StaffIdentity(domainauth.RoleAdmin))
	require.NoError(t, err)
	require.NotNil(t, c.authSvc.ResolveIdentity(sess.Token))

	c.now = c.now.Add(domainauth.SessionTTL - time.Second)
	assert.NotNil(t, c.authSvc.ResolveIdentity(sess.Token))

	c.now = c.now.Add(time.Second)
	assert.Nil(t, c.authSvc.ResolveIdentity(sess.Token))
}

func TestAuthService_IssueSession_RejectsPartialIdentity(t *testing.T) {
	c := newClinic(t)
	_, err := c.authSvc.IssueSession(domainauth.Identity{SubjectID: "x", Role: domainauth.RoleAdmin})
	assert.Error(t, err)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates customer and signs in", func(t *testing.T) {
		c := newClinic(t)
		sess, err := c.authSvc.Register(ctx, testutil.NewCustomerRequest().WithPassword("ana password").Build())
		require.NoError(t, err)
		assert.Equal(t, domainauth.RoleCustomer, sess.Identity.Role)
		assert.Equal(t, 1, c.customers.Len())

		again, err := c.authSvc.Login(ctx, LoginInput{Email: "ana@example.com", Password: "ana password"})
		require.NoError(t, err)
		assert.Equal(t, sess.Identity.SubjectID, again.Identity.SubjectID)
	})

	t.Run("password required", func(t *testing.T) {
		c := newClinic(t)
		_, err := c.authSvc.Register(ctx, testutil.NewCustomerRequest().Build())
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, 0, c.customers.Len())
	})

	t.Run("staff email conflicts", func(t *testing.T) {
		c := newClinic(t)
		c.seedUser(t, "ana@example.com", domainauth.RoleAdmin)
		_, err := c.authSvc.Register(ctx, testutil.NewCustomerRequest().WithPassword("ana password").Build())
		assert.True(t, apperrors.IsConflict(err))
		assert.Equal(t, 0, c.customers.Len())
	})

	t.Run("customer email conflicts", func(t *testing.T) {
		c := newClinic(t)
		c.seedCustomer("ana@example.com")
		_, err := c.authSvc.Register(ctx, testutil.NewCustomerRequest().WithPassword("ana password").Build())
		assert.True(t, apperrors.IsConflict(err))
	})
}

func TestAuthService_OAuth(t *testing.T) {
	ctx := context.Background()

	t.Run("begin returns provider url", func(t *testing.T) {
		c := newClinic(t)
		res, err := c.authSvc.BeginOAuth(ctx, "http://localhost:8080/auth/oauth/callback")
		require.NoError(t, err)
		assert.Equal(t, "https://mock-idp/auth", res.AuthURL)
		assert.Equal(t, "state-1", res.State)
		assert.Equal(t, "nonce-1", res.Nonce)
	})

	t.Run("complete creates then reuses the customer", func(t *testing.T) {
		c := newClinic(t)
		in := CompleteLoginInput{Code: "code", State: "state-1", Nonce: "nonce-1"}

		first, err := c.authSvc.CompleteOAuth(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, "mock.owner@example.com", first.Identity.Email)
		assert.Equal(t, "Mock Owner", first.Identity.DisplayName)
		assert.Equal(t, domainauth.RoleCustomer, first.Identity.Role)

		second, err := c.authSvc.CompleteOAuth(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, first.Identity.SubjectID, second.Identity.SubjectID)
		assert.Equal(t, 1, c.customers.Len())
	})

	t.Run("staff email refused", func(t *testing.T) {
		c := newClinic(t)
		c.seedUser(t, "mock.owner@example.com", domainauth.RoleAdmin)
		_, err := c.authSvc.CompleteOAuth(ctx, CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
		assert.True(t, apperrors.IsForbidden(err))
		assert.Equal(t, 0, c.customers.Len())
	})

	t.Run("self-registered password account is not linked", func(t *testing.T) {
		c := newClinic(t)
		_, err := c.authSvc.Register(ctx, testutil.NewCustomerRequest().
			WithEmail("mock.owner@example.com").
			WithPassword("attacker pass").
			Build())
		require.NoError(t, err)

		_, err = c.authSvc.CompleteOAuth(ctx, CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrCodeConflict, appErr.Code)
		assert.Equal(t, "email", appErr.Field)
		assert.Equal(t, 1, c.customers.Len())
	})

	t.Run("staff-created customer without password is linked", func(t *testing.T) {
		c := newClinic(t)
		ana := c.seedCustomer("mock.owner@example.com")

		sess, err := c.authSvc.CompleteOAuth(ctx, CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
		require.NoError(t, err)
		assert.Equal(t, ana.ID, sess.Identity.SubjectID)
	})

	t.Run("credential lookup failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		creds := mocks.NewMockCredentialRepository(ctrl)
		creds.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

		customers := store.NewMemoryDocuments[model.Customer]("customer")
		customers.Seed(&model.Customer{Name: "Owner", Email: "mock.owner@example.com"})
		svc := MustNewAuthService(AuthServiceOptions{
			Accounts: AuthAccounts{
				Customers:   customers,
				Users:       store.NewMemoryDocuments[model.User]("user"),
				Credentials: creds,
			},
			Collaborators: AuthCollaborators{
				Signer:   &mockauth.StaticSigner{},
				Hasher:   mockauth.PlainHasher{},
				Provider: mockauth.NewMockAuthProvider(),
			},
		})
		_, err := svc.CompleteOAuth(ctx, CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
		assert.ErrorContains(t, err, "db down")
	})

	t.Run("missing parameters", func(t *testing.T) {
		c := newClinic(t)
		_, err := c.authSvc.CompleteOAuth(ctx, CompleteLoginInput{State: "s", Nonce: "n"})
		assert.ErrorContains(t, err, "authorization code is required")
		_, err = c.authSvc.CompleteOAuth(ctx, CompleteLoginInput{Code: "c", Nonce: "n"})
		assert.ErrorContains(t, err, "state parameter is required")
		_, err = c.authSvc.CompleteOAuth(ctx, CompleteLoginInput{Code: "c", State: "s"})
		assert.ErrorContains(t, err, "nonce parameter is required")
	})

	t.Run("provider error", func(t *testing.T) {
		c := newClinic(t)
		c.provider.ExchangeFunc = func(context.Context, ports.ExchangeInput) (domainauth.ProviderProfile, error) {
			return domainauth.ProviderProfile{}, errors.New("invalid_grant")
		}
		_, err := c.authSvc.CompleteOAuth(ctx, CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
		assert.ErrorContains(t, err, "invalid_grant")
	})

	t.Run("no provider configured", func(t *testing.T) {
		svc := MustNewAuthService(AuthServiceOptions{
			Accounts: AuthAccounts{
				Customers:   store.NewMemoryDocuments[model.Customer]("customer"),
				Users:       store.NewMemoryDocuments[model.User]("user"),
				Credentials: store.NewMemoryCredentials(),
			},
			Collaborators: AuthCollaborators{Signer: &mockauth.StaticSigner{}, Hasher: mockauth.PlainHasher{}},
		})
		assert.False(t, svc.ProviderAvailable())
		_, err := svc.BeginOAuth(ctx, "http://localhost/cb")
		assert.ErrorIs(t, err, ErrProviderUnavailable)
		_, err = svc.CompleteOAuth(ctx, CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
		assert.ErrorIs(t, err, ErrProviderUnavailable)
	})
}
