//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "strings"

// DogSex is the recorded sex of a dog.
type DogSex string

const (
	DogSexMale    DogSex = "male"
	DogSexFemale  DogSex = "female"
	DogSexUnknown DogSex = "unknown"
)

// Dog is a patient, owned by its parent customer.
type Dog struct {
	Meta
	CustomerID string  `json:"customer_id"`
	Name       string  `json:"name"`
	Breed      string  `json:"breed,omitempty"`
	Sex        DogSex  `json:"sex"`
	BirthDate  string  `json:"birth_date,omitempty"`
	WeightKg   float64 `json:"weight_kg,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

// OwnerKey implements Document.
func (d *Dog) OwnerKey() string { return d.CustomerID }

// CreateDogRequest represents parameters to create a Dog. CustomerID comes from the route.
type CreateDogRequest struct {
	CustomerID string  `json:"-"                    validate:"required,uuid"`
	Name       string  `json:"name"                 validate:"required,max=128"`
	Breed      string  `json:"breed,omitempty"      validate:"max=128"`
	Sex        DogSex  `json:"sex,omitempty"        validate:"oneof=male female unknown"`
	BirthDate  string  `json:"birth_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	WeightKg   float64 `json:"weight_kg,omitempty"  validate:"gte=0"`
	Notes      string  `json:"notes,omitempty"      validate:"max=4000"`
}

func normalizeDogSex(s DogSex) DogSex {
	v := DogSex(strings.ToLower(strings.TrimSpace(string(s))))
	if v == "" {
		return DogSexUnknown
	}
	return v
}

// Validate normalizes and validates CreateDogRequest.
func (r *CreateDogRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Breed = strings.TrimSpace(r.Breed)
	r.Sex = normalizeDogSex(r.Sex)
	r.BirthDate = strings.TrimSpace(r.BirthDate)
	return validateStruct(r)
}

// Build returns the document described by the request.
func (r *CreateDogRequest) Build() *Dog {
	return &Dog{
		CustomerID: r.CustomerID,
		Name:       r.Name,
		Breed:      r.Breed,
		Sex:        r.Sex,
		BirthDate:  r.BirthDate,
		WeightKg:   r.WeightKg,
		Notes:      r.Notes,
	}
}

// UpdateDogRequest represents parameters to update a Dog. Ownership cannot be changed.
type UpdateDogRequest struct {
	Name      *string  `json:"name,omitempty"       validate:"omitempty,min=1,max=128"`
	Breed     *string  `json:"breed,omitempty"      validate:"omitempty,max=128"`
	Sex       *DogSex  `json:"sex,omitempty"        validate:"omitempty,oneof=male female unknown"`
	BirthDate *string  `json:"birth_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	WeightKg  *float64 `json:"weight_kg,omitempty"  validate:"omitempty,gte=0"`
	Notes     *string  `json:"notes,omitempty"      validate:"omitempty,max=4000"`
}

// HasUpdates reports whether any field is set.
func (r *UpdateDogRequest) HasUpdates() bool {
	return r.Name != nil || r.Breed != nil || r.Sex != nil || r.BirthDate != nil || r.WeightKg != nil ||
		r.Notes != nil
}

// Validate validates UpdateDogRequest, ensuring at least one field is set.
func (r *UpdateDogRequest) Validate() error {
	if !r.HasUpdates() {
		return ErrNoUpdates
	}
	trimPtr(r.Name)
	trimPtr(r.Breed)
	trimPtr(r.BirthDate)
	if r.Sex != nil {
		*r.Sex = normalizeDogSex(*r.Sex)
	}
	return validateStruct(r)
}

// Apply copies the set fields onto d.
func (r *UpdateDogRequest) Apply(d *Dog) {
	if r.Name != nil {
		d.Name = *r.Name
	}
	if r.Breed != nil {
		d.Breed = *r.Breed
	}
	if r.Sex != nil {
		d.Sex = *r.Sex
	}
	if r.BirthDate != nil {
		d.BirthDate = *r.BirthDate
	}
	if r.WeightKg != nil {
		d.WeightKg = *r.WeightKg
	}
	if r.Notes != nil {
		d.Notes = *r.Notes
	}
}
