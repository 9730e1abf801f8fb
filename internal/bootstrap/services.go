package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vetdesk/vetdesk/config"
	"github.com/vetdesk/vetdesk/internal/adapters/jwtsession"
	"github.com/vetdesk/vetdesk/internal/adapters/passwords"
	"github.com/vetdesk/vetdesk/internal/core"
	"github.com/vetdesk/vetdesk/internal/data"
	"github.com/vetdesk/vetdesk/internal/domain/model"
	"github.com/vetdesk/vetdesk/internal/observability/statsd"
	"github.com/vetdesk/vetdesk/internal/ports"
	"github.com/vetdesk/vetdesk/internal/service"
)

// cacheNamespace prefixes every key this API writes to Redis.
const cacheNamespace = "vetdesk"

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth      *service.AuthService
	Customers *service.CustomerService
	Dogs      *service.DogService
	Catalog   *service.CatalogService
	Invoices  *service.InvoiceService
	Diagnoses *service.DiagnoseService
	Users     *service.UserService
	Portal    *service.PortalService

	// Metrics is the sink the services emit to, shared with the HTTP layer.
	Metrics statsd.Sink
}

// ServiceDeps contains the infrastructure services are built on.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient // Optional: nil or Cache.Enabled=false disables caching
	Provider    ports.AuthProvider    // Optional: external customer sign-in
	Metrics     statsd.Sink           // Optional
	Logger      *slog.Logger
}

// repositories holds one store per document kind plus the credentials table.
type repositories struct {
	customers   core.CustomerRepository
	dogs        core.DogRepository
	categories  core.CategoryRepository
	products    core.ProductRepository
	services    core.ClinicServiceRepository
	invoices    core.InvoiceRepository
	diagnoses   core.DiagnoseRepository
	users       core.UserRepository
	credentials core.CredentialRepository
}

// repoFactory builds Postgres document stores, wrapped in the Redis cache when one is configured.
type repoFactory struct {
	db     *sql.DB
	loc    *time.Location
	cache  core.CacheRepository
	ttl    time.Duration
	logger *slog.Logger
}

//nolint:ireturn // callers only see the repository port; the cache wrapper is optional.
func documents[T any, P model.DocumentPtr[T]](f repoFactory, table string) core.DocumentRepository[P] {
	repo := data.NewDocumentRepo[T, P](f.db, table, data.DocumentRepoOptions{Location: f.loc})
	if f.cache == nil {
		return repo
	}
	return core.NewCachedDocuments[T, P](repo, core.CachedDocumentsOptions{
		Cache:  f.cache,
		Kind:   table,
		TTL:    f.ttl,
		Logger: f.logger,
	})
}

func buildRepositories(f repoFactory) repositories {
	return repositories{
		customers:   documents[model.Customer](f, data.TableCustomers),
		dogs:        documents[model.Dog](f, data.TableDogs),
		categories:  documents[model.Category](f, data.TableCategories),
		products:    documents[model.Product](f, data.TableProducts),
		services:    documents[model.ClinicService](f, data.TableClinicServices),
		invoices:    documents[model.Invoice](f, data.TableInvoices),
		diagnoses:   documents[model.Diagnose](f, data.TableDiagnoses),
		users:       documents[model.User](f, data.TableUsers),
		credentials: data.NewCredentialRepo(f.db),
	}
}

// NewServices wires repositories, adapters and services from deps.
func NewServices(deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("service deps with config are required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	loc, err := cfg.Clinic.Location()
	if err != nil {
		return nil, err
	}
	factory := repoFactory{db: deps.DB, loc: loc, ttl: cfg.Cache.TTL, logger: logger}
	if cfg.Cache.Enabled && deps.RedisClient != nil {
		factory.cache = data.NewRedisCacheRepo(deps.RedisClient, data.RedisCacheRepoOptions{Namespace: cacheNamespace})
	}
	repos := buildRepositories(factory)

	secret, err := cfg.Auth.ResolveSessionSecret(cfg.IsDev)
	if err != nil {
		return nil, err
	}
	if secret == config.DevSessionSecret {
		logger.Warn("AUTH_SESSION_SECRET not set; signing sessions with the dev secret")
	}
	signer, err := jwtsession.NewManager(jwtsession.Options{Secret: secret})
	if err != nil {
		return nil, fmt.Errorf("session signer: %w", err)
	}
	hasher := passwords.NewBcryptHasher(cfg.Auth.BcryptCost)

	return buildDomainServices(repos, serviceCollaborators{
		signer:   signer,
		hasher:   hasher,
		provider: deps.Provider,
		metrics:  deps.Metrics,
		logger:   logger,
	})
}

type serviceCollaborators struct {
	signer   ports.SessionSigner
	hasher   ports.PasswordHasher
	provider ports.AuthProvider
	metrics  statsd.Sink
	logger   *slog.Logger
}

func buildDomainServices(repos repositories, c serviceCollaborators) (*ServiceContainer, error) {
	accounts := service.AccountDeps{Credentials: repos.credentials, Hasher: c.hasher}
	patients := service.PatientRepos{Customers: repos.customers, Dogs: repos.dogs}

	customers, err := service.NewCustomerService(service.CustomerServiceOptions{
		Repo: repos.customers, Staff: repos.users, Accounts: accounts, Logger: c.logger, Metrics: c.metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("customer service: %w", err)
	}
	dogs, err := service.NewDogService(service.DogServiceOptions{
		Repo: repos.dogs, Customers: repos.customers, Logger: c.logger, Metrics: c.metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("dog service: %w", err)
	}
	catalog, err := service.NewCatalogService(service.CatalogServiceOptions{
		Repos: service.CatalogRepos{
			Products:   repos.products,
			Categories: repos.categories,
			Services:   repos.services,
		},
		Logger:  c.logger,
		Metrics: c.metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("catalog service: %w", err)
	}
	invoices, err := service.NewInvoiceService(service.InvoiceServiceOptions{
		Repo: repos.invoices, Patients: patients, Logger: c.logger, Metrics: c.metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("invoice service: %w", err)
	}
	diagnoses, err := service.NewDiagnoseService(service.DiagnoseServiceOptions{
		Repo: repos.diagnoses, Patients: patients, Logger: c.logger, Metrics: c.metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("diagnose service: %w", err)
	}
	users, err := service.NewUserService(service.UserServiceOptions{
		Repo: repos.users, Accounts: accounts, Logger: c.logger, Metrics: c.metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("user service: %w", err)
	}
	portal, err := service.NewPortalService(service.PortalServiceOptions{Records: service.PortalRecords{
		Customers: customers,
		Dogs:      dogs,
		Invoices:  invoices,
		Diagnoses: diagnoses,
	}})
	if err != nil {
		return nil, fmt.Errorf("portal service: %w", err)
	}
	auth, err := service.NewAuthService(service.AuthServiceOptions{
		Accounts: service.AuthAccounts{
			Customers:   repos.customers,
			Users:       repos.users,
			Credentials: repos.credentials,
		},
		Collaborators: service.AuthCollaborators{
			Signer:   c.signer,
			Hasher:   c.hasher,
			Provider: c.provider,
		},
		Logger:  c.logger,
		Metrics: c.metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	return &ServiceContainer{
		Auth:      auth,
		Customers: customers,
		Dogs:      dogs,
		Catalog:   catalog,
		Invoices:  invoices,
		Diagnoses: diagnoses,
		Users:     users,
		Portal:    portal,
		Metrics:   c.metrics,
	}, nil
}
