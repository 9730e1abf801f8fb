package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
	"github.com/vetdesk/vetdesk/internal/domain/model"
	"github.com/vetdesk/vetdesk/internal/observability/statsd"
	"github.com/vetdesk/vetdesk/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
// Any service left nil has its routes omitted.
type RouterServices struct {
	Auth      *service.AuthService
	Customers *service.CustomerService
	Dogs      *service.DogService
	Catalog   *service.CatalogService
	Invoices  *service.InvoiceService
	Diagnoses *service.DiagnoseService
	Users     *service.UserService
	Portal    *service.PortalService

	Cookies CookieConfig
	Logger  *slog.Logger                // Optional
	Metrics statsd.Sink                 // Optional
	Ready   func(context.Context) error // Optional: readiness probe for /readyz
}

// NewRouter creates the API router wrapped in recovery, identity and request logging.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readyHandler(services.Ready))

	if services.Auth != nil {
		registerAuthRoutes(mux, &AuthHandlers{Svc: services.Auth, Cookies: services.Cookies, Logger: logger})
	}
	registerPublicRoutes(mux, services)
	if services.Portal != nil {
		registerPortalRoutes(mux, &PortalHandlers{Svc: services.Portal, Cookies: services.Cookies})
	}
	registerCMSRoutes(mux, services)
	mux.Handle("/", http.HandlerFunc(notFoundHandler))

	var handler http.Handler = mux
	handler = RequestMetrics(services.Metrics)(handler)
	handler = Logging(logger)(handler)
	if services.Auth != nil {
		handler = Identity(services.Auth, services.Cookies.sessionName())(handler)
	}
	return Recover(logger)(handler)
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("POST /auth/login", h.Login)
	mux.HandleFunc("POST /auth/register", h.Register)
	mux.HandleFunc("GET /auth/oauth/login", h.OAuthLogin)
	mux.HandleFunc("GET /auth/oauth/callback", h.OAuthCallback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
}

// registerPublicRoutes exposes the anonymous read surface: the catalog and
// invoice/diagnosis lookups by id.
func registerPublicRoutes(mux *http.ServeMux, s RouterServices) {
	if c := s.Catalog; c != nil {
		products := productAPI(c)
		mux.HandleFunc("GET /api/products", products.list)
		mux.HandleFunc("GET /api/products/{id}", products.get)
		categories := categoryAPI(c)
		mux.HandleFunc("GET /api/categories", categories.list)
		mux.HandleFunc("GET /api/categories/{id}", categories.get)
		clinicServices := clinicServiceAPI(c)
		mux.HandleFunc("GET /api/services", clinicServices.list)
		mux.HandleFunc("GET /api/services/{id}", clinicServices.get)
	}
	if s.Invoices != nil {
		mux.HandleFunc("GET /api/invoices/{id}", invoiceAPI(s.Invoices).get)
	}
	if s.Diagnoses != nil {
		mux.HandleFunc("GET /api/diagnoses/{id}", diagnoseAPI(s.Diagnoses).get)
	}
}

func registerPortalRoutes(mux *http.ServeMux, h *PortalHandlers) {
	mux.HandleFunc("GET /api/portal/profile", h.Profile)
	mux.HandleFunc("PUT /api/portal/profile", h.UpdateProfile)
	mux.HandleFunc("DELETE /api/portal/profile", h.DeleteProfile)
	mux.HandleFunc("GET /api/portal/dogs", h.Dogs)
	mux.HandleFunc("GET /api/portal/dogs/{id}", h.Dog)
	mux.HandleFunc("PUT /api/portal/dogs/{id}", h.UpdateDog)
	mux.HandleFunc("GET /api/portal/history", h.History)
}

// registerCMSRoutes registers the staff surface. Every route sits behind RequireCMS;
// the services then apply the per-resource policy.
func registerCMSRoutes(mux *http.ServeMux, s RouterServices) {
	if s.Customers != nil {
		registerCRUD(mux, customerAPI(s.Customers).routes("/api/cms/customers"))
	}
	if s.Dogs != nil {
		h := &DogHandlers{Svc: s.Dogs}
		registerCRUD(mux, crudRoutes{
			Base:       "/api/cms/customers/{customer}/dogs",
			Create:     h.Create,
			List:       h.List,
			GetByID:    h.GetByID,
			Update:     h.Update,
			Delete:     h.Delete,
			Middleware: RequireCMS,
		})
		mux.Handle("GET /api/cms/dogs", RequireCMS(http.HandlerFunc(h.ListAll)))
	}
	if c := s.Catalog; c != nil {
		registerCRUD(mux, productAPI(c).routes("/api/cms/products"))
		registerCRUD(mux, categoryAPI(c).routes("/api/cms/categories"))
		registerCRUD(mux, clinicServiceAPI(c).routes("/api/cms/services"))
	}
	if s.Invoices != nil {
		registerCRUD(mux, invoiceAPI(s.Invoices).routes("/api/cms/invoices"))
		mux.Handle("GET /api/cms/customers/{customer}/invoices",
			RequireCMS(byCustomer("invoices", s.Invoices.ListByCustomer)))
	}
	if s.Diagnoses != nil {
		registerCRUD(mux, diagnoseAPI(s.Diagnoses).routes("/api/cms/diagnoses"))
		mux.Handle("GET /api/cms/customers/{customer}/diagnoses",
			RequireCMS(byCustomer("diagnoses", s.Diagnoses.ListByCustomer)))
	}
	if s.Users != nil {
		registerCRUD(mux, userAPI(s.Users).routes("/api/cms/users"))
	}
}

// crudRoutes describes standard CRUD routes for a resource base path.
type crudRoutes struct {
	Base       string
	Create     http.HandlerFunc
	List       http.HandlerFunc
	GetByID    http.HandlerFunc
	Update     http.HandlerFunc
	Delete     http.HandlerFunc
	Middleware func(http.Handler) http.Handler
}

// registerCRUD registers standard CRUD routes for a resource base path, applying mw if non-nil.
func registerCRUD(mux *http.ServeMux, cfg crudRoutes) {
	if cfg.Base == "" {
		panic("registerCRUD: Base must not be empty") //nolint:forbidigo // Fail fast during server setup.
	}
	if cfg.Create == nil ||
		cfg.List == nil ||
		cfg.GetByID == nil ||
		cfg.Update == nil ||
		cfg.Delete == nil {
		panic("registerCRUD: nil handler for base " + cfg.Base) //nolint:forbidigo // Fail fast during server setup.
	}

	wrap := func(h http.HandlerFunc) http.Handler {
		if cfg.Middleware != nil {
			return cfg.Middleware(h)
		}
		return h
	}

	mux.Handle("POST "+cfg.Base, wrap(cfg.Create))
	mux.Handle("GET "+cfg.Base, wrap(cfg.List))
	mux.Handle("GET "+cfg.Base+"/{id}", wrap(cfg.GetByID))
	mux.Handle("PUT "+cfg.Base+"/{id}", wrap(cfg.Update))
	mux.Handle("DELETE "+cfg.Base+"/{id}", wrap(cfg.Delete))
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: errCodeNotFound, Err: errors.New("route not found")})
}

// byCustomer serves one customer's records from a ListByCustomer service method.
func byCustomer[T any](
	key string,
	list func(context.Context, *domainauth.Identity, string, model.ListOptions) ([]T, error),
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		customerID, ok := pathID(w, r, "customer")
		if !ok {
			return
		}
		opts := listOptions(r)
		items, err := list(r.Context(), IdentityFromContext(r.Context()), customerID, opts)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeList(w, key, items, opts)
	})
}
