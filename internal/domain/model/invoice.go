//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"math"
	"strings"
)

// InvoiceItem is a single billed line.
type InvoiceItem struct {
	Description string  `json:"description" validate:"required,max=500"`
	Quantity    int     `json:"quantity"    validate:"gt=0"`
	UnitPrice   float64 `json:"unit_price"  validate:"gte=0"`
}

// Invoice bills a customer for work on a dog. Number is assigned on insert.
type Invoice struct {
	Meta
	Number     string        `json:"number"`
	CustomerID string        `json:"customer_id"`
	DogID      string        `json:"dog_id,omitempty"`
	Items      []InvoiceItem `json:"items"`
	Total      float64       `json:"total"`
	Notes      string        `json:"notes,omitempty"`
	Paid       bool          `json:"paid"`
}

// OwnerKey implements Document.
func (i *Invoice) OwnerKey() string { return i.CustomerID }

// NumberPrefix implements NumberedDocument.
func (i *Invoice) NumberPrefix() string { return InvoiceNumberPrefix }

// DocumentNumber implements NumberedDocument.
func (i *Invoice) DocumentNumber() string { return i.Number }

// SetNumber implements NumberedDocument.
func (i *Invoice) SetNumber(number string) { i.Number = number }

// InvoiceTotal sums quantity * unit price over items, rounded to cents.
func InvoiceTotal(items []InvoiceItem) float64 {
	var total float64
	for _, it := range items {
		total += float64(it.Quantity) * it.UnitPrice
	}
	return math.Round(total*100) / 100
}

// CreateInvoiceRequest represents parameters to create an Invoice.
type CreateInvoiceRequest struct {
	CustomerID string        `json:"customer_id"       validate:"required,uuid"`
	DogID      string        `json:"dog_id,omitempty"  validate:"omitempty,uuid"`
	Items      []InvoiceItem `json:"items"             validate:"required,min=1,dive"`
	Notes      string        `json:"notes,omitempty"   validate:"max=4000"`
	Paid       bool          `json:"paid,omitempty"`
}

// Validate normalizes and validates CreateInvoiceRequest.
func (r *CreateInvoiceRequest) Validate() error {
	r.CustomerID = strings.TrimSpace(r.CustomerID)
	r.DogID = strings.TrimSpace(r.DogID)
	for i := range r.Items {
		r.Items[i].Description = strings.TrimSpace(r.Items[i].Description)
	}
	return validateStruct(r)
}

// Build returns the document described by the request, with Total computed.
func (r *CreateInvoiceRequest) Build() *Invoice {
	items := append([]InvoiceItem(nil), r.Items...)
	return &Invoice{
		CustomerID: r.CustomerID,
		DogID:      r.DogID,
		Items:      items,
		Total:      InvoiceTotal(items),
		Notes:      r.Notes,
		Paid:       r.Paid,
	}
}

// UpdateInvoiceRequest represents parameters to update an Invoice.
// Number and CustomerID are immutable once issued.
type UpdateInvoiceRequest struct {
	DogID *string       `json:"dog_id,omitempty" validate:"omitempty,uuid"`
	Items []InvoiceItem `json:"items,omitempty"  validate:"omitempty,min=1,dive"`
	Notes *string       `json:"notes,omitempty"  validate:"omitempty,max=4000"`
	Paid  *bool         `json:"paid,omitempty"`
}

// Validate validates UpdateInvoiceRequest, ensuring at least one field is set.
func (r *UpdateInvoiceRequest) Validate() error {
	if r.DogID == nil && r.Items == nil && r.Notes == nil && r.Paid == nil {
		return ErrNoUpdates
	}
	trimPtr(r.DogID)
	for i := range r.Items {
		r.Items[i].Description = strings.TrimSpace(r.Items[i].Description)
	}
	return validateStruct(r)
}

// Apply copies the set fields onto inv and recomputes the total.
func (r *UpdateInvoiceRequest) Apply(inv *Invoice) {
	if r.DogID != nil {
		inv.DogID = *r.DogID
	}
	if r.Items != nil {
		inv.Items = append([]InvoiceItem(nil), r.Items...)
	}
	if r.Notes != nil {
		inv.Notes = *r.Notes
	}
	if r.Paid != nil {
		inv.Paid = *r.Paid
	}
	inv.Total = InvoiceTotal(inv.Items)
}
