// Package store provides in-memory repositories for service and HTTP tests.
// They mirror the Postgres repositories closely enough for unit tests: ids,
// timestamps, unique emails, daily document numbers and owner listings.
package store

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vetdesk/vetdesk/internal/domain/model"
	apperrors "github.com/vetdesk/vetdesk/internal/errors"
)

// MemoryDocuments is an in-memory document repository.
type MemoryDocuments[T any, P model.DocumentPtr[T]] struct {
	// Now overrides the clock used for timestamps. Defaults to time.Now.
	Now func() time.Time
	// Location is the calendar used for numbering. Defaults to UTC.
	Location *time.Location
	// Kind names the record in not-found messages.
	Kind string

	mu    sync.Mutex
	docs  map[string][]byte
	calls map[string]int
}

// NewMemoryDocuments creates an empty store.
func NewMemoryDocuments[T any, P model.DocumentPtr[T]](kind string) *MemoryDocuments[T, P] {
	return &MemoryDocuments[T, P]{
		Kind:  kind,
		docs:  make(map[string][]byte),
		calls: make(map[string]int),
	}
}

// Calls returns how many times method was invoked.
func (m *MemoryDocuments[T, P]) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// Len returns the number of stored documents.
func (m *MemoryDocuments[T, P]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

func (m *MemoryDocuments[T, P]) now() time.Time {
	if m.Now != nil {
		return m.Now().UTC()
	}
	return time.Now().UTC()
}

func (m *MemoryDocuments[T, P]) notFound() error {
	kind := m.Kind
	if kind == "" {
		kind = "document"
	}
	return apperrors.NotFoundf("%s record not found", kind)
}

// Seed stores doc as-is, keeping its id and timestamps.
func (m *MemoryDocuments[T, P]) Seed(doc P) P {
	m.mu.Lock()
	defer m.mu.Unlock()
	meta := doc.DocMeta()
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = m.now()
		meta.UpdatedAt = meta.CreatedAt
	}
	m.docs[meta.ID] = mustEncode(doc)
	return doc
}

// Create implements core.DocumentRepository.
func (m *MemoryDocuments[T, P]) Create(_ context.Context, doc P) (P, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["Create"]++
	if doc == nil {
		return nil, apperrors.Validation("document is required")
	}
	meta := doc.DocMeta()
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	now := m.now()
	meta.CreatedAt = now
	meta.UpdatedAt = now
	if err := m.checkEmail(doc); err != nil {
		return nil, err
	}
	if nd, ok := any(doc).(model.NumberedDocument); ok {
		nd.SetNumber(m.nextNumber(nd))
	}
	m.docs[meta.ID] = mustEncode(doc)
	return doc, nil
}

func (m *MemoryDocuments[T, P]) checkEmail(doc P) error {
	ek, ok := any(doc).(model.EmailKeyed)
	if !ok {
		return nil
	}
	email := model.NormalizeEmail(ek.EmailKey())
	if email == "" {
		return nil
	}
	for id, raw := range m.docs {
		if id == doc.DocMeta().ID {
			continue
		}
		other := decode[T, P](raw)
		if oek, ok := any(other).(model.EmailKeyed); ok && model.NormalizeEmail(oek.EmailKey()) == email {
			return &apperrors.AppError{
				Code:    apperrors.ErrCodeConflict,
				Message: "This email already exists. Please choose a different one.",
				Field:   "email",
			}
		}
	}
	return nil
}

func (m *MemoryDocuments[T, P]) nextNumber(doc model.NumberedDocument) string {
	loc := m.Location
	if loc == nil {
		loc = time.UTC
	}
	start, end := model.DayBounds(doc.DocMeta().CreatedAt, loc)
	taken := make(map[string]struct{})
	count := 0
	for _, raw := range m.docs {
		other, ok := any(decode[T, P](raw)).(model.NumberedDocument)
		if !ok {
			continue
		}
		taken[other.DocumentNumber()] = struct{}{}
		created := other.DocMeta().CreatedAt
		if !created.Before(start) && created.Before(end) {
			count++
		}
	}
	for seq := count + 1; ; seq++ {
		number := model.FormatDocumentNumber(doc.NumberPrefix(), start, seq)
		if _, ok := taken[number]; !ok {
			return number
		}
	}
}

// GetByID implements core.DocumentRepository.
func (m *MemoryDocuments[T, P]) GetByID(_ context.Context, id string) (P, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["GetByID"]++
	raw, ok := m.docs[id]
	if !ok {
		return nil, m.notFound()
	}
	return decode[T, P](raw), nil
}

// FindByEmail implements core.DocumentRepository.
func (m *MemoryDocuments[T, P]) FindByEmail(_ context.Context, email string) (P, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["FindByEmail"]++
	email = model.NormalizeEmail(email)
	if email == "" {
		return nil, m.notFound()
	}
	for _, raw := range m.docs {
		doc := decode[T, P](raw)
		if ek, ok := any(doc).(model.EmailKeyed); ok && model.NormalizeEmail(ek.EmailKey()) == email {
			return doc, nil
		}
	}
	return nil, m.notFound()
}

// List implements core.DocumentRepository.
func (m *MemoryDocuments[T, P]) List(_ context.Context, opts model.ListOptions) ([]P, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["List"]++
	return m.page(func(P) bool { return true }, opts), nil
}

// ListByOwner implements core.DocumentRepository.
func (m *MemoryDocuments[T, P]) ListByOwner(_ context.Context, ownerID string, opts model.ListOptions) ([]P, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["ListByOwner"]++
	if strings.TrimSpace(ownerID) == "" {
		return []P{}, nil
	}
	return m.page(func(doc P) bool { return doc.OwnerKey() == ownerID }, opts), nil
}

func (m *MemoryDocuments[T, P]) page(keep func(P) bool, opts model.ListOptions) []P {
	opts = opts.Normalize()
	all := make([]P, 0, len(m.docs))
	for _, raw := range m.docs {
		doc := decode[T, P](raw)
		if keep(doc) {
			all = append(all, doc)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i].DocMeta(), all[j].DocMeta()
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	if opts.Offset >= len(all) {
		return []P{}
	}
	end := min(opts.Offset+opts.Limit, len(all))
	return all[opts.Offset:end]
}

// Update implements core.DocumentRepository. Stored numbers are preserved.
func (m *MemoryDocuments[T, P]) Update(_ context.Context, doc P) (P, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["Update"]++
	if doc == nil {
		return nil, apperrors.Validation("document is required")
	}
	meta := doc.DocMeta()
	raw, ok := m.docs[meta.ID]
	if !ok {
		return nil, m.notFound()
	}
	if err := m.checkEmail(doc); err != nil {
		return nil, err
	}
	prev := decode[T, P](raw)
	meta.CreatedAt = prev.DocMeta().CreatedAt
	meta.UpdatedAt = m.now()
	if nd, ok := any(doc).(model.NumberedDocument); ok {
		if pnd, ok := any(prev).(model.NumberedDocument); ok {
			nd.SetNumber(pnd.DocumentNumber())
		}
	}
	m.docs[meta.ID] = mustEncode(doc)
	return doc, nil
}

// Delete implements core.DocumentRepository.
func (m *MemoryDocuments[T, P]) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["Delete"]++
	if _, ok := m.docs[id]; !ok {
		return false, nil
	}
	delete(m.docs, id)
	return true, nil
}

func mustEncode(v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		panic("store: encode document: " + err.Error())
	}
	return raw
}

func decode[T any, P model.DocumentPtr[T]](raw []byte) P {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		panic("store: decode document: " + err.Error())
	}
	return P(&v)
}

// MemoryCredentials is an in-memory credential repository.
type MemoryCredentials struct {
	mu    sync.Mutex
	creds map[string]model.Credential
}

// NewMemoryCredentials creates an empty credential store.
func NewMemoryCredentials() *MemoryCredentials {
	return &MemoryCredentials{creds: make(map[string]model.Credential)}
}

// Set implements core.CredentialRepository.
func (m *MemoryCredentials) Set(_ context.Context, cred model.Credential) error {
	if cred.SubjectID == "" || cred.PasswordHash == "" {
		return apperrors.Validation("subject id and password hash are required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds[cred.SubjectID] = cred
	return nil
}

// Get implements core.CredentialRepository.
func (m *MemoryCredentials) Get(_ context.Context, subjectID string) (*model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cred, ok := m.creds[subjectID]
	if !ok {
		return nil, model.ErrCredentialNotFound
	}
	return &cred, nil
}

// Delete implements core.CredentialRepository.
func (m *MemoryCredentials) Delete(_ context.Context, subjectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.creds, subjectID)
	return nil
}
