package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
	"github.com/vetdesk/vetdesk/internal/domain/model"
	apperrors "github.com/vetdesk/vetdesk/internal/errors"
	"github.com/vetdesk/vetdesk/internal/mocks"
	mockauth "github.com/vetdesk/vetdesk/internal/mocks/auth"
	"github.com/vetdesk/vetdesk/internal/mocks/store"
	"github.com/vetdesk/vetdesk/internal/testutil"
)

func TestNewCustomerService_RequiredDependencies(t *testing.T) {
	_, err := NewCustomerService(CustomerServiceOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CustomerRepository is required")

	_, err = NewCustomerService(CustomerServiceOptions{Repo: store.NewMemoryDocuments[model.Customer]("customer")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UserRepository is required")

	_, err = NewCustomerService(CustomerServiceOptions{
		Repo:  store.NewMemoryDocuments[model.Customer]("customer"),
		Staff: store.NewMemoryDocuments[model.User]("user"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CredentialRepository is required")

	assert.Panics(t, func() { MustNewCustomerService(CustomerServiceOptions{}) })
}

func TestCustomerService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("admin creates with password", func(t *testing.T) {
		c := newClinic(t)
		req := testutil.NewCustomerRequest().WithEmail(" Ana@Example.com ").WithPassword("s3cret-pass").Build()

		got, err := c.customerSvc.Create(ctx, staff(domainauth.RoleAdmin), req)
		require.NoError(t, err)
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, "ana@example.com", got.Email)

		cred, err := c.credentials.Get(ctx, got.ID)
		require.NoError(t, err)
		assert.Equal(t, model.SubjectCustomer, cred.SubjectKind)
		assert.Equal(t, "plain:s3cret-pass", cred.PasswordHash)
	})

	t.Run("admin2 is denied before any write", func(t *testing.T) {
		c := newClinic(t)
		_, err := c.customerSvc.Create(ctx, staff(domainauth.RoleAdmin2), testutil.NewCustomerRequest().Build())
		require.Error(t, err)
		assert.True(t, apperrors.IsForbidden(err))
		assert.Equal(t, 0, c.customers.Calls("Create"))
	})

	t.Run("anonymous is unauthenticated", func(t *testing.T) {
		c := newClinic(t)
		_, err := c.customerSvc.Create(ctx, nil, testutil.NewCustomerRequest().Build())
		assert.True(t, apperrors.IsUnauthenticated(err))
		assert.Equal(t, 0, c.customers.Calls("Create"))
	})

	t.Run("validation runs after authorization", func(t *testing.T) {
		c := newClinic(t)
		req := testutil.NewCustomerRequest().WithEmail("not-an-email").Build()
		_, err := c.customerSvc.Create(ctx, staff(domainauth.RoleSuperAdmin), req)
		assert.True(t, apperrors.IsValidation(err))
		assert.Contains(t, err.Error(), "email")
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		c := newClinic(t)
		c.seedCustomer("ana@example.com")
		_, err := c.customerSvc.Create(ctx, staff(domainauth.RoleAdmin), testutil.NewCustomerRequest().Build())
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("credential failure rolls back the customer", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		creds := mocks.NewMockCredentialRepository(ctrl)
		creds.EXPECT().Set(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

		repo := store.NewMemoryDocuments[model.Customer]("customer")
		svc := MustNewCustomerService(CustomerServiceOptions{
			Repo:     repo,
			Staff:    store.NewMemoryDocuments[model.User]("user"),
			Accounts: AccountDeps{Credentials: creds, Hasher: mockauth.PlainHasher{}},
		})
		req := testutil.NewCustomerRequest().WithPassword("s3cret-pass").Build()
		_, err := svc.Create(ctx, staff(domainauth.RoleAdmin), req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db down")
		assert.Equal(t, 0, repo.Len())
	})
}

func TestCustomerService_SelfOwnership(t *testing.T) {
	ctx := context.Background()
	c := newClinic(t)
	ana := c.seedCustomer("ana@example.com")
	bob := c.seedCustomer("bob@example.com")
	anaID := testutil.CustomerIdentity(ana.ID)

	own, err := c.customerSvc.Get(ctx, anaID, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, ana.ID, own.ID)

	_, err = c.customerSvc.Get(ctx, anaID, bob.ID)
	assert.True(t, apperrors.IsForbidden(err))

	_, err = c.customerSvc.List(ctx, anaID, model.ListOptions{})
	assert.True(t, apperrors.IsForbidden(err))
	assert.Equal(t, 0, c.customers.Calls("List"))

	updated, err := c.customerSvc.Update(ctx, anaID, ana.ID, &model.UpdateCustomerRequest{City: ptr("Cusco")})
	require.NoError(t, err)
	assert.Equal(t, "Cusco", updated.City)

	_, err = c.customerSvc.Update(ctx, anaID, bob.ID, &model.UpdateCustomerRequest{City: ptr("Cusco")})
	assert.True(t, apperrors.IsForbidden(err))
	assert.Equal(t, 1, c.customers.Calls("Update"))

	err = c.customerSvc.Delete(ctx, anaID, bob.ID)
	assert.True(t, apperrors.IsForbidden(err))
	assert.Equal(t, 0, c.customers.Calls("Delete"))

	require.NoError(t, c.customerSvc.Delete(ctx, anaID, ana.ID))
	_, err = c.customerSvc.Get(ctx, staff(domainauth.RoleAdmin), ana.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCustomerService_RefusesStaffEmail(t *testing.T) {
	ctx := context.Background()
	c := newClinic(t)
	c.seedUser(t, "vet@clinic.example", domainauth.RoleAdmin)
	ana := c.seedCustomer("ana@example.com")

	_, err := c.customerSvc.Create(ctx, staff(domainauth.RoleAdmin),
		testutil.NewCustomerRequest().WithEmail("VET@clinic.example").Build())
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeConflict, appErr.Code)
	assert.Equal(t, "email", appErr.Field)
	assert.Equal(t, 0, c.customers.Calls("Create"))

	_, err = c.portalSvc.UpdateProfile(ctx, testutil.CustomerIdentity(ana.ID),
		&model.UpdateCustomerRequest{Email: ptr("vet@clinic.example")})
	require.True(t, apperrors.IsConflict(err))
	assert.Equal(t, 0, c.customers.Calls("Update"))

	got, err := c.customerSvc.Get(ctx, staff(domainauth.RoleAdmin), ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", got.Email)

	updated, err := c.portalSvc.UpdateProfile(ctx, testutil.CustomerIdentity(ana.ID),
		&model.UpdateCustomerRequest{Email: ptr("ana.new@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "ana.new@example.com", updated.Email)
}

func TestCustomerService_Update_NoFields(t *testing.T) {
	c := newClinic(t)
	ana := c.seedCustomer("ana@example.com")

	_, err := c.customerSvc.Update(context.Background(), staff(domainauth.RoleAdmin), ana.ID, &model.UpdateCustomerRequest{})
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 0, c.customers.Calls("Update"))
}

func TestCustomerService_Delete_RemovesCredential(t *testing.T) {
	ctx := context.Background()
	c := newClinic(t)
	ana := c.seedCustomer("ana@example.com")
	require.NoError(t, c.credentials.Set(ctx, model.Credential{
		SubjectID: ana.ID, SubjectKind: model.SubjectCustomer, PasswordHash: "plain:x",
	}))

	require.NoError(t, c.customerSvc.Delete(ctx, staff(domainauth.RoleSuperAdmin), ana.ID))
	_, err := c.credentials.Get(ctx, ana.ID)
	assert.ErrorIs(t, err, model.ErrCredentialNotFound)
}

func TestCustomerService_ReadRequiresSession(t *testing.T) {
	ctx := context.Background()
	c := newClinic(t)
	ana := c.seedCustomer("ana@example.com")

	_, err := c.customerSvc.Get(ctx, nil, ana.ID)
	assert.True(t, apperrors.IsUnauthenticated(err))

	_, err = c.customerSvc.List(ctx, nil, model.ListOptions{})
	assert.True(t, apperrors.IsUnauthenticated(err))
	assert.Equal(t, 0, c.customers.Calls("List"))

	got, err := c.customerSvc.List(ctx, staff(domainauth.RoleAdmin2), model.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCustomerService_MissingRecord(t *testing.T) {
	ctx := context.Background()
	c := newClinic(t)
	ana := c.seedCustomer("ana@example.com")

	// A caller who may not delete any customer learns nothing about existence.
	err := c.customerSvc.Delete(ctx, testutil.CustomerIdentity(ana.ID), "missing")
	assert.True(t, apperrors.IsForbidden(err))

	err = c.customerSvc.Delete(ctx, staff(domainauth.RoleSuperAdmin), "missing")
	assert.True(t, apperrors.IsNotFound(err))

	err = c.customerSvc.Delete(ctx, nil, "missing")
	assert.True(t, apperrors.IsUnauthenticated(err))
}
