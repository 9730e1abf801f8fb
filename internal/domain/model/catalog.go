//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "strings"

// Category groups products in the public catalog.
type Category struct {
	Meta
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// OwnerKey implements Document; catalog entries are unowned.
func (c *Category) OwnerKey() string { return "" }

// Product is a sellable item.
type Product struct {
	Meta
	Name        string  `json:"name"`
	CategoryID  string  `json:"category_id,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Description string  `json:"description,omitempty"`
}

// OwnerKey implements Document; catalog entries are unowned.
func (p *Product) OwnerKey() string { return "" }

// ClinicService is a bookable treatment or procedure offered by the clinic.
type ClinicService struct {
	Meta
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"duration_minutes,omitempty"`
}

// OwnerKey implements Document; catalog entries are unowned.
func (s *ClinicService) OwnerKey() string { return "" }

// CategoryRequest creates or fully describes a Category.
type CategoryRequest struct {
	Name        string `json:"name"                  validate:"required,max=128"`
	Description string `json:"description,omitempty" validate:"max=2000"`
}

// Validate normalizes and validates CategoryRequest.
func (r *CategoryRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	return validateStruct(r)
}

// Build returns the document described by the request.
func (r *CategoryRequest) Build() *Category {
	return &Category{Name: r.Name, Description: r.Description}
}

// UpdateCategoryRequest represents parameters to update a Category.
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitempty,min=1,max=128"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// Validate validates UpdateCategoryRequest, ensuring at least one field is set.
func (r *UpdateCategoryRequest) Validate() error {
	if r.Name == nil && r.Description == nil {
		return ErrNoUpdates
	}
	trimPtr(r.Name)
	trimPtr(r.Description)
	return validateStruct(r)
}

// Apply copies the set fields onto c.
func (r *UpdateCategoryRequest) Apply(c *Category) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Description != nil {
		c.Description = *r.Description
	}
}

// ProductRequest represents parameters to create a Product.
type ProductRequest struct {
	Name        string  `json:"name"                  validate:"required,max=255"`
	CategoryID  string  `json:"category_id,omitempty" validate:"omitempty,uuid"`
	Price       float64 `json:"price"                 validate:"gte=0"`
	Stock       int     `json:"stock"                 validate:"gte=0"`
	Description string  `json:"description,omitempty" validate:"max=4000"`
}

// Validate normalizes and validates ProductRequest.
func (r *ProductRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.CategoryID = strings.TrimSpace(r.CategoryID)
	r.Description = strings.TrimSpace(r.Description)
	return validateStruct(r)
}

// Build returns the document described by the request.
func (r *ProductRequest) Build() *Product {
	return &Product{
		Name:        r.Name,
		CategoryID:  r.CategoryID,
		Price:       r.Price,
		Stock:       r.Stock,
		Description: r.Description,
	}
}

// UpdateProductRequest represents parameters to update a Product.
type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty"        validate:"omitempty,min=1,max=255"`
	CategoryID  *string  `json:"category_id,omitempty" validate:"omitempty,uuid"`
	Price       *float64 `json:"price,omitempty"       validate:"omitempty,gte=0"`
	Stock       *int     `json:"stock,omitempty"       validate:"omitempty,gte=0"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=4000"`
}

// Validate validates UpdateProductRequest, ensuring at least one field is set.
func (r *UpdateProductRequest) Validate() error {
	if r.Name == nil && r.CategoryID == nil && r.Price == nil && r.Stock == nil && r.Description == nil {
		return ErrNoUpdates
	}
	trimPtr(r.Name)
	trimPtr(r.CategoryID)
	trimPtr(r.Description)
	return validateStruct(r)
}

// Apply copies the set fields onto p.
func (r *UpdateProductRequest) Apply(p *Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.CategoryID != nil {
		p.CategoryID = *r.CategoryID
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
}

// ClinicServiceRequest represents parameters to create a ClinicService.
type ClinicServiceRequest struct {
	Name            string  `json:"name"                       validate:"required,max=255"`
	Description     string  `json:"description,omitempty"      validate:"max=4000"`
	Price           float64 `json:"price"                      validate:"gte=0"`
	DurationMinutes int     `json:"duration_minutes,omitempty" validate:"gte=0"`
}

// Validate normalizes and validates ClinicServiceRequest.
func (r *ClinicServiceRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	return validateStruct(r)
}

// Build returns the document described by the request.
func (r *ClinicServiceRequest) Build() *ClinicService {
	return &ClinicService{
		Name:            r.Name,
		Description:     r.Description,
		Price:           r.Price,
		DurationMinutes: r.DurationMinutes,
	}
}

// UpdateClinicServiceRequest represents parameters to update a ClinicService.
type UpdateClinicServiceRequest struct {
	Name            *string  `json:"name,omitempty"             validate:"omitempty,min=1,max=255"`
	Description     *string  `json:"description,omitempty"      validate:"omitempty,max=4000"`
	Price           *float64 `json:"price,omitempty"            validate:"omitempty,gte=0"`
	DurationMinutes *int     `json:"duration_minutes,omitempty" validate:"omitempty,gte=0"`
}

// Validate validates UpdateClinicServiceRequest, ensuring at least one field is set.
func (r *UpdateClinicServiceRequest) Validate() error {
	if r.Name == nil && r.Description == nil && r.Price == nil && r.DurationMinutes == nil {
		return ErrNoUpdates
	}
	trimPtr(r.Name)
	trimPtr(r.Description)
	return validateStruct(r)
}

// Apply copies the set fields onto s.
func (r *UpdateClinicServiceRequest) Apply(s *ClinicService) {
	if r.Name != nil {
		s.Name = *r.Name
	}
	if r.Description != nil {
		s.Description = *r.Description
	}
	if r.Price != nil {
		s.Price = *r.Price
	}
	if r.DurationMinutes != nil {
		s.DurationMinutes = *r.DurationMinutes
	}
}
