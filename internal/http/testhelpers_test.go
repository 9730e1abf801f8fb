package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vetdesk/vetdesk/internal/adapters/jwtsession"
	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
	"github.com/vetdesk/vetdesk/internal/domain/model"
	mockauth "github.com/vetdesk/vetdesk/internal/mocks/auth"
	"github.com/vetdesk/vetdesk/internal/mocks/store"
	"github.com/vetdesk/vetdesk/internal/service"
)

const testSecret = "test-session-secret"

// apiFixture is the full router over in-memory stores with a fixed clock.
type apiFixture struct {
	customers   *store.MemoryDocuments[model.Customer, *model.Customer]
	dogs        *store.MemoryDocuments[model.Dog, *model.Dog]
	categories  *store.MemoryDocuments[model.Category, *model.Category]
	invoices    *store.MemoryDocuments[model.Invoice, *model.Invoice]
	users       *store.MemoryDocuments[model.User, *model.User]
	credentials *store.MemoryCredentials
	provider    *mockauth.MockAuthProvider
	auth        *service.AuthService
	now         time.Time
	handler     http.Handler
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	f := &apiFixture{
		customers:   store.NewMemoryDocuments[model.Customer]("customer"),
		dogs:        store.NewMemoryDocuments[model.Dog]("dog"),
		categories:  store.NewMemoryDocuments[model.Category]("category"),
		invoices:    store.NewMemoryDocuments[model.Invoice]("invoice"),
		users:       store.NewMemoryDocuments[model.User]("user"),
		credentials: store.NewMemoryCredentials(),
		provider:    mockauth.NewMockAuthProvider(),
		now:         time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.invoices.Now = clock
	diagnoses := store.NewMemoryDocuments[model.Diagnose]("diagnose")
	diagnoses.Now = clock

	signer, err := jwtsession.NewManager(jwtsession.Options{Secret: testSecret, Now: clock})
	require.NoError(t, err)

	accounts := service.AccountDeps{Credentials: f.credentials, Hasher: mockauth.PlainHasher{}}
	patients := service.PatientRepos{Customers: f.customers, Dogs: f.dogs}

	customers := service.MustNewCustomerService(service.CustomerServiceOptions{
		Repo: f.customers, Staff: f.users, Accounts: accounts,
	})
	dogs := service.MustNewDogService(service.DogServiceOptions{Repo: f.dogs, Customers: f.customers})
	invoices := service.MustNewInvoiceService(service.InvoiceServiceOptions{Repo: f.invoices, Patients: patients})
	diagnoseSvc := service.MustNewDiagnoseService(service.DiagnoseServiceOptions{Repo: diagnoses, Patients: patients})
	f.auth = service.MustNewAuthService(service.AuthServiceOptions{
		Accounts: service.AuthAccounts{Customers: f.customers, Users: f.users, Credentials: f.credentials},
		Collaborators: service.AuthCollaborators{
			Signer:   signer,
			Hasher:   mockauth.PlainHasher{},
			Provider: f.provider,
		},
	})

	f.handler = NewRouter(RouterServices{
		Auth:      f.auth,
		Customers: customers,
		Dogs:      dogs,
		Catalog: service.MustNewCatalogService(service.CatalogServiceOptions{Repos: service.CatalogRepos{
			Products:   store.NewMemoryDocuments[model.Product]("product"),
			Categories: f.categories,
			Services:   store.NewMemoryDocuments[model.ClinicService]("service"),
		}}),
		Invoices:  invoices,
		Diagnoses: diagnoseSvc,
		Users:     service.MustNewUserService(service.UserServiceOptions{Repo: f.users, Accounts: accounts}),
		Portal: service.MustNewPortalService(service.PortalServiceOptions{Records: service.PortalRecords{
			Customers: customers,
			Dogs:      dogs,
			Invoices:  invoices,
			Diagnoses: diagnoseSvc,
		}}),
		Logger: discardLogger(),
	})
	return f
}

// tokenFor mints a session token for id.
func (f *apiFixture) tokenFor(t *testing.T, id domainauth.Identity) string {
	t.Helper()
	sess, err := f.auth.IssueSession(id)
	require.NoError(t, err)
	return sess.Token
}

func (f *apiFixture) staffToken(t *testing.T, role domainauth.Role) string {
	t.Helper()
	return f.tokenFor(t, domainauth.Identity{
		SubjectID:   "00000000-0000-4000-8000-0000000000" + roleSuffix(role),
		Email:       string(role) + "@clinic.example",
		DisplayName: "Staff",
		Role:        role,
	})
}

func roleSuffix(role domainauth.Role) string {
	switch role {
	case domainauth.RoleSuperAdmin:
		return "01"
	case domainauth.RoleAdmin:
		return "02"
	default:
		return "03"
	}
}

func (f *apiFixture) customerToken(t *testing.T, c *model.Customer) string {
	t.Helper()
	return f.tokenFor(t, domainauth.Identity{
		SubjectID:   c.ID,
		Email:       c.Email,
		DisplayName: c.Name,
		Role:        domainauth.RoleCustomer,
	})
}

func (f *apiFixture) seedCustomer(email string) *model.Customer {
	return f.customers.Seed(&model.Customer{Name: "Owner " + email, Email: email})
}

func (f *apiFixture) seedDog(customerID, name string) *model.Dog {
	return f.dogs.Seed(&model.Dog{CustomerID: customerID, Name: name, Sex: model.DogSexUnknown})
}

func (f *apiFixture) seedUser(t *testing.T, email string, role domainauth.Role) *model.User {
	t.Helper()
	u := f.users.Seed(&model.User{Email: email, DisplayName: "Staff " + email, Role: role})
	require.NoError(t, f.credentials.Set(context.Background(), model.Credential{
		SubjectID:    u.ID,
		SubjectKind:  model.SubjectUser,
		PasswordHash: "plain:correct horse",
	}))
	return u
}

// request describes one call against the fixture router.
type request struct {
	Method string
	Path   string
	Body   any
	Token  string
}

func (f *apiFixture) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if req.Body != nil {
		body = jsonBody(t, req.Body)
	}
	r := httptest.NewRequest(req.Method, req.Path, body)
	if req.Body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		r.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: req.Token})
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, r)
	return rec
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

// decode unmarshals a recorder body into T.
func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// errorCode returns the "error" field of a JSON error body.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[errorBody](t, rec).Error
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
