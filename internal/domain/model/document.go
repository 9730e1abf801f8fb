//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// Meta carries the storage-assigned identity and timestamps of a document.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocMeta exposes the embedded metadata to generic repositories.
func (m *Meta) DocMeta() *Meta { return m }

// Document is implemented by every stored record type.
type Document interface {
	DocMeta() *Meta
	// OwnerKey is the subject id that owns the record, or "" when unowned.
	OwnerKey() string
}

// DocumentPtr constrains generic stores to pointer types of document structs,
// so they can allocate fresh values when decoding.
type DocumentPtr[T any] interface {
	*T
	Document
}

// EmailKeyed is implemented by documents that are unique by email address.
type EmailKeyed interface {
	EmailKey() string
}

// NumberedDocument is a Document that receives a sequential daily number on insert.
type NumberedDocument interface {
	Document
	NumberPrefix() string
	DocumentNumber() string
	SetNumber(number string)
}

// ListOptions controls paging for list queries.
type ListOptions struct {
	Limit  int
	Offset int
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Normalize clamps paging values into the supported range.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
