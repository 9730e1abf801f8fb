package data

import (
	"errors"

	"github.com/vetdesk/vetdesk/internal/domain/model"
)

// Shared sentinel errors for data-layer repositories.
var (
	// ErrDocumentRequired is returned when a nil document is passed to a write.
	ErrDocumentRequired = errors.New("document is required")

	// ErrCredentialNotFound is returned when no password is stored for a subject.
	ErrCredentialNotFound = model.ErrCredentialNotFound
)
