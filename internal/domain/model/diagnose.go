//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "strings"

// Diagnose records a clinical finding for a dog. Number is assigned on insert.
type Diagnose struct {
	Meta
	Number       string `json:"number"`
	CustomerID   string `json:"customer_id"`
	DogID        string `json:"dog_id"`
	Symptoms     string `json:"symptoms,omitempty"`
	Diagnosis    string `json:"diagnosis"`
	Treatment    string `json:"treatment,omitempty"`
	Veterinarian string `json:"veterinarian,omitempty"`
}

// OwnerKey implements Document.
func (d *Diagnose) OwnerKey() string { return d.CustomerID }

// NumberPrefix implements NumberedDocument.
func (d *Diagnose) NumberPrefix() string { return DiagnoseNumberPrefix }

// DocumentNumber implements NumberedDocument.
func (d *Diagnose) DocumentNumber() string { return d.Number }

// SetNumber implements NumberedDocument.
func (d *Diagnose) SetNumber(number string) { d.Number = number }

// CreateDiagnoseRequest represents parameters to create a Diagnose.
type CreateDiagnoseRequest struct {
	CustomerID   string `json:"customer_id"            validate:"required,uuid"`
	DogID        string `json:"dog_id"                 validate:"required,uuid"`
	Symptoms     string `json:"symptoms,omitempty"     validate:"max=4000"`
	Diagnosis    string `json:"diagnosis"              validate:"required,max=4000"`
	Treatment    string `json:"treatment,omitempty"    validate:"max=4000"`
	Veterinarian string `json:"veterinarian,omitempty" validate:"max=255"`
}

// Validate normalizes and validates CreateDiagnoseRequest.
func (r *CreateDiagnoseRequest) Validate() error {
	r.CustomerID = strings.TrimSpace(r.CustomerID)
	r.DogID = strings.TrimSpace(r.DogID)
	r.Diagnosis = strings.TrimSpace(r.Diagnosis)
	r.Veterinarian = strings.TrimSpace(r.Veterinarian)
	return validateStruct(r)
}

// Build returns the document described by the request.
func (r *CreateDiagnoseRequest) Build() *Diagnose {
	return &Diagnose{
		CustomerID:   r.CustomerID,
		DogID:        r.DogID,
		Symptoms:     r.Symptoms,
		Diagnosis:    r.Diagnosis,
		Treatment:    r.Treatment,
		Veterinarian: r.Veterinarian,
	}
}

// UpdateDiagnoseRequest represents parameters to update a Diagnose.
type UpdateDiagnoseRequest struct {
	Symptoms     *string `json:"symptoms,omitempty"     validate:"omitempty,max=4000"`
	Diagnosis    *string `json:"diagnosis,omitempty"    validate:"omitempty,min=1,max=4000"`
	Treatment    *string `json:"treatment,omitempty"    validate:"omitempty,max=4000"`
	Veterinarian *string `json:"veterinarian,omitempty" validate:"omitempty,max=255"`
}

// Validate validates UpdateDiagnoseRequest, ensuring at least one field is set.
func (r *UpdateDiagnoseRequest) Validate() error {
	if r.Symptoms == nil && r.Diagnosis == nil && r.Treatment == nil && r.Veterinarian == nil {
		return ErrNoUpdates
	}
	trimPtr(r.Diagnosis)
	trimPtr(r.Veterinarian)
	return validateStruct(r)
}

// Apply copies the set fields onto d.
func (r *UpdateDiagnoseRequest) Apply(d *Diagnose) {
	if r.Symptoms != nil {
		d.Symptoms = *r.Symptoms
	}
	if r.Diagnosis != nil {
		d.Diagnosis = *r.Diagnosis
	}
	if r.Treatment != nil {
		d.Treatment = *r.Treatment
	}
	if r.Veterinarian != nil {
		d.Veterinarian = *r.Veterinarian
	}
}
