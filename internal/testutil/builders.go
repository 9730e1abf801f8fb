// Package testutil provides testing utilities and helpers for the vetdesk services.
package testutil

import (
	"github.com/google/uuid"

	"github.com/vetdesk/vetdesk/internal/domain/auth"
	"github.com/vetdesk/vetdesk/internal/domain/model"
)

// IdentityBuilder provides a fluent interface for building caller identities in tests.
type IdentityBuilder struct {
	id auth.Identity
}

// NewIdentity creates an IdentityBuilder for a customer with a random subject id.
func NewIdentity() *IdentityBuilder {
	return &IdentityBuilder{
		id: auth.Identity{
			SubjectID:   uuid.NewString(),
			Email:       "caller@example.com",
			DisplayName: "Test Caller",
			Role:        auth.RoleCustomer,
		},
	}
}

// WithSubject sets the subject id.
func (b *IdentityBuilder) WithSubject(id string) *IdentityBuilder {
	b.id.SubjectID = id
	return b
}

// WithRole sets the role.
func (b *IdentityBuilder) WithRole(role auth.Role) *IdentityBuilder {
	b.id.Role = role
	return b
}

// WithEmail sets the email address.
func (b *IdentityBuilder) WithEmail(email string) *IdentityBuilder {
	b.id.Email = email
	return b
}

// Build returns a pointer to a copy of the constructed identity.
func (b *IdentityBuilder) Build() *auth.Identity {
	out := b.id
	return &out
}

// Common identity presets

// CustomerIdentity returns a customer identity for subject id.
func CustomerIdentity(id string) *auth.Identity {
	return NewIdentity().WithSubject(id).Build()
}

// StaffIdentity returns a staff identity with role and a random subject id.
func StaffIdentity(role auth.Role) *auth.Identity {
	return NewIdentity().WithRole(role).WithEmail(string(role) + "@clinic.example").Build()
}

// CustomerRequestBuilder builds CreateCustomerRequest values.
type CustomerRequestBuilder struct {
	req model.CreateCustomerRequest
}

// NewCustomerRequest creates a CustomerRequestBuilder with valid defaults.
func NewCustomerRequest() *CustomerRequestBuilder {
	return &CustomerRequestBuilder{
		req: model.CreateCustomerRequest{
			Name:  "Ana Diaz",
			Email: "ana@example.com",
			Phone: "+51 1 555 0100",
			City:  "Lima",
		},
	}
}

// WithEmail sets the email address.
func (b *CustomerRequestBuilder) WithEmail(email string) *CustomerRequestBuilder {
	b.req.Email = email
	return b
}

// WithPassword sets the self-registration password.
func (b *CustomerRequestBuilder) WithPassword(pw string) *CustomerRequestBuilder {
	b.req.Password = pw
	return b
}

// Build returns the constructed request.
func (b *CustomerRequestBuilder) Build() *model.CreateCustomerRequest {
	out := b.req
	return &out
}

// InvoiceRequest returns a valid single-line invoice request for customerID.
func InvoiceRequest(customerID string) *model.CreateInvoiceRequest {
	return &model.CreateInvoiceRequest{
		CustomerID: customerID,
		Items:      []model.InvoiceItem{{Description: "Consultation", Quantity: 1, UnitPrice: 40}},
	}
}
