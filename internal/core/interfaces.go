package core

import (
	"context"

	"github.com/vetdesk/vetdesk/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// DocumentRepository defines storage operations for one document kind.
// P is the pointer type of the document struct, e.g. *model.Customer.
type DocumentRepository[P model.Document] interface {
	Create(ctx context.Context, doc P) (P, error)
	GetByID(ctx context.Context, id string) (P, error)
	// FindByEmail is only meaningful for email-keyed kinds; others report not found.
	FindByEmail(ctx context.Context, email string) (P, error)
	List(ctx context.Context, opts model.ListOptions) ([]P, error)
	ListByOwner(ctx context.Context, ownerID string, opts model.ListOptions) ([]P, error)
	// Update replaces the stored document. Numbers assigned on create are immutable.
	Update(ctx context.Context, doc P) (P, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// CredentialRepository stores password hashes keyed by subject id.
type CredentialRepository interface {
	Set(ctx context.Context, cred model.Credential) error
	Get(ctx context.Context, subjectID string) (*model.Credential, error)
	Delete(ctx context.Context, subjectID string) error
}

// Repository aliases for each document kind.
type (
	CustomerRepository      = DocumentRepository[*model.Customer]
	DogRepository           = DocumentRepository[*model.Dog]
	CategoryRepository      = DocumentRepository[*model.Category]
	ProductRepository       = DocumentRepository[*model.Product]
	ClinicServiceRepository = DocumentRepository[*model.ClinicService]
	InvoiceRepository       = DocumentRepository[*model.Invoice]
	DiagnoseRepository      = DocumentRepository[*model.Diagnose]
	UserRepository          = DocumentRepository[*model.User]
)
