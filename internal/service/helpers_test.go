package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
	"github.com/vetdesk/vetdesk/internal/domain/model"
	mockauth "github.com/vetdesk/vetdesk/internal/mocks/auth"
	"github.com/vetdesk/vetdesk/internal/mocks/store"
	"github.com/vetdesk/vetdesk/internal/observability/metrics"
	"github.com/vetdesk/vetdesk/internal/testutil"
)

// clinic wires every service over in-memory stores.
type clinic struct {
	customers   *store.MemoryDocuments[model.Customer, *model.Customer]
	dogs        *store.MemoryDocuments[model.Dog, *model.Dog]
	products    *store.MemoryDocuments[model.Product, *model.Product]
	categories  *store.MemoryDocuments[model.Category, *model.Category]
	services    *store.MemoryDocuments[model.ClinicService, *model.ClinicService]
	invoices    *store.MemoryDocuments[model.Invoice, *model.Invoice]
	diagnoses   *store.MemoryDocuments[model.Diagnose, *model.Diagnose]
	users       *store.MemoryDocuments[model.User, *model.User]
	credentials *store.MemoryCredentials
	now         time.Time
	metrics     *metrics.Recorder

	customerSvc *CustomerService
	dogSvc      *DogService
	catalogSvc  *CatalogService
	invoiceSvc  *InvoiceService
	diagnoseSvc *DiagnoseService
	userSvc     *UserService
	authSvc     *AuthService
	portalSvc   *PortalService
	provider    *mockauth.MockAuthProvider
}

func newClinic(t *testing.T) *clinic {
	t.Helper()
	c := &clinic{
		customers:   store.NewMemoryDocuments[model.Customer]("customer"),
		dogs:        store.NewMemoryDocuments[model.Dog]("dog"),
		products:    store.NewMemoryDocuments[model.Product]("product"),
		categories:  store.NewMemoryDocuments[model.Category]("category"),
		services:    store.NewMemoryDocuments[model.ClinicService]("service"),
		invoices:    store.NewMemoryDocuments[model.Invoice]("invoice"),
		diagnoses:   store.NewMemoryDocuments[model.Diagnose]("diagnose"),
		users:       store.NewMemoryDocuments[model.User]("user"),
		credentials: store.NewMemoryCredentials(),
		now:         time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		provider:    mockauth.NewMockAuthProvider(),
		metrics:     &metrics.Recorder{},
	}
	clock := func() time.Time { return c.now }
	c.invoices.Now = clock
	c.diagnoses.Now = clock

	accounts := AccountDeps{Credentials: c.credentials, Hasher: mockauth.PlainHasher{}}
	patients := PatientRepos{Customers: c.customers, Dogs: c.dogs}

	var err error
	c.customerSvc, err = NewCustomerService(CustomerServiceOptions{
		Repo: c.customers, Staff: c.users, Accounts: accounts, Metrics: c.metrics,
	})
	require.NoError(t, err)
	c.dogSvc, err = NewDogService(DogServiceOptions{Repo: c.dogs, Customers: c.customers, Metrics: c.metrics})
	require.NoError(t, err)
	c.catalogSvc, err = NewCatalogService(CatalogServiceOptions{Repos: CatalogRepos{
		Products:   c.products,
		Categories: c.categories,
		Services:   c.services,
	}, Metrics: c.metrics})
	require.NoError(t, err)
	c.invoiceSvc, err = NewInvoiceService(InvoiceServiceOptions{Repo: c.invoices, Patients: patients, Metrics: c.metrics})
	require.NoError(t, err)
	c.diagnoseSvc, err = NewDiagnoseService(DiagnoseServiceOptions{Repo: c.diagnoses, Patients: patients, Metrics: c.metrics})
	require.NoError(t, err)
	c.userSvc, err = NewUserService(UserServiceOptions{Repo: c.users, Accounts: accounts, Metrics: c.metrics})
	require.NoError(t, err)
	c.authSvc, err = NewAuthService(AuthServiceOptions{
		Accounts: AuthAccounts{Customers: c.customers, Users: c.users, Credentials: c.credentials},
		Collaborators: AuthCollaborators{
			Signer:   &mockauth.StaticSigner{Now: clock},
			Hasher:   mockauth.PlainHasher{},
			Provider: c.provider,
		},
		Metrics: c.metrics,
	})
	require.NoError(t, err)
	c.portalSvc, err = NewPortalService(PortalServiceOptions{Records: PortalRecords{
		Customers: c.customerSvc,
		Dogs:      c.dogSvc,
		Invoices:  c.invoiceSvc,
		Diagnoses: c.diagnoseSvc,
	}})
	require.NoError(t, err)
	return c
}

// seedCustomer stores a customer directly, bypassing the policy.
func (c *clinic) seedCustomer(email string) *model.Customer {
	return c.customers.Seed(&model.Customer{Name: "Owner " + email, Email: email})
}

// seedDog stores a dog for customerID directly.
func (c *clinic) seedDog(customerID, name string) *model.Dog {
	return c.dogs.Seed(&model.Dog{CustomerID: customerID, Name: name, Sex: model.DogSexUnknown})
}

// seedUser stores a staff user with a password.
func (c *clinic) seedUser(t *testing.T, email string, role domainauth.Role) *model.User {
	t.Helper()
	u := c.users.Seed(&model.User{Email: email, DisplayName: "Staff " + email, Role: role})
	require.NoError(t, c.credentials.Set(context.Background(), model.Credential{
		SubjectID:    u.ID,
		SubjectKind:  model.SubjectUser,
		PasswordHash: "plain:correct horse",
	}))
	return u
}

func staff(role domainauth.Role) *domainauth.Identity { return testutil.StaffIdentity(role) }

func ptr[T any](v T) *T { return &v }
