//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "strings"

// Customer is a pet owner. A customer record owns itself.
type Customer struct {
	Meta
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
}

// OwnerKey implements Document.
func (c *Customer) OwnerKey() string { return c.ID }

// EmailKey implements EmailKeyed.
func (c *Customer) EmailKey() string { return c.Email }

// CreateCustomerRequest represents parameters to create a Customer.
// Password is only used by self-registration and is never stored on the document.
type CreateCustomerRequest struct {
	Name     string `json:"name"               validate:"required,max=255"`
	Email    string `json:"email"              validate:"required,email"`
	Phone    string `json:"phone,omitempty"    validate:"max=64"`
	Address  string `json:"address,omitempty"  validate:"max=255"`
	City     string `json:"city,omitempty"     validate:"max=128"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
}

// Validate normalizes and validates CreateCustomerRequest.
func (r *CreateCustomerRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Address = strings.TrimSpace(r.Address)
	r.City = strings.TrimSpace(r.City)
	return validateStruct(r)
}

// Build returns the document described by the request.
func (r *CreateCustomerRequest) Build() *Customer {
	return &Customer{Name: r.Name, Email: r.Email, Phone: r.Phone, Address: r.Address, City: r.City}
}

// UpdateCustomerRequest represents parameters to update a Customer.
type UpdateCustomerRequest struct {
	Name    *string `json:"name,omitempty"    validate:"omitempty,min=1,max=255"`
	Email   *string `json:"email,omitempty"   validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty"   validate:"omitempty,max=64"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=255"`
	City    *string `json:"city,omitempty"    validate:"omitempty,max=128"`
}

// HasUpdates reports whether any field is set.
func (r *UpdateCustomerRequest) HasUpdates() bool {
	return r.Name != nil || r.Email != nil || r.Phone != nil || r.Address != nil || r.City != nil
}

// Validate validates UpdateCustomerRequest, ensuring at least one field is set.
func (r *UpdateCustomerRequest) Validate() error {
	if !r.HasUpdates() {
		return ErrNoUpdates
	}
	trimPtr(r.Name)
	trimPtr(r.Phone)
	trimPtr(r.Address)
	trimPtr(r.City)
	if r.Email != nil {
		*r.Email = NormalizeEmail(*r.Email)
	}
	return validateStruct(r)
}

// Apply copies the set fields onto c.
func (r *UpdateCustomerRequest) Apply(c *Customer) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Email != nil {
		c.Email = *r.Email
	}
	if r.Phone != nil {
		c.Phone = *r.Phone
	}
	if r.Address != nil {
		c.Address = *r.Address
	}
	if r.City != nil {
		c.City = *r.City
	}
}
