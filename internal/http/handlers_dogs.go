package httpx

import (
	"net/http"

	"github.com/vetdesk/vetdesk/internal/domain/model"
	"github.com/vetdesk/vetdesk/internal/service"
)

// DogHandlers serves dogs nested under their customer in the CMS:
// /api/cms/customers/{customer}/dogs[/{id}]. A dog addressed through the wrong
// customer is reported as missing.
type DogHandlers struct {
	Svc *service.DogService
}

// Create handles POST /api/cms/customers/{customer}/dogs.
func (h *DogHandlers) Create(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "customer")
	if !ok {
		return
	}

	var req model.CreateDogRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	dog, err := h.Svc.Create(r.Context(), IdentityFromContext(r.Context()), customerID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, dog)
}

// List handles GET /api/cms/customers/{customer}/dogs.
func (h *DogHandlers) List(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "customer")
	if !ok {
		return
	}
	opts := listOptions(r)

	dogs, err := h.Svc.ListByCustomer(r.Context(), IdentityFromContext(r.Context()), customerID, opts)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeList(w, "dogs", dogs, opts)
}

// ListAll handles GET /api/cms/dogs.
func (h *DogHandlers) ListAll(w http.ResponseWriter, r *http.Request) {
	opts := listOptions(r)

	dogs, err := h.Svc.List(r.Context(), IdentityFromContext(r.Context()), opts)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeList(w, "dogs", dogs, opts)
}

// lookup resolves {customer} and {id} and confirms the dog belongs to the customer.
func (h *DogHandlers) lookup(w http.ResponseWriter, r *http.Request) (*model.Dog, bool) {
	customerID, ok := pathID(w, r, "customer")
	if !ok {
		return nil, false
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return nil, false
	}

	dog, err := h.Svc.GetForCustomer(r.Context(), IdentityFromContext(r.Context()), customerID, id)
	if err != nil {
		writeServiceError(w, r, err)
		return nil, false
	}
	return dog, true
}

// GetByID handles GET /api/cms/customers/{customer}/dogs/{id}.
func (h *DogHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	dog, ok := h.lookup(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, dog)
}

// Update handles PUT /api/cms/customers/{customer}/dogs/{id}.
func (h *DogHandlers) Update(w http.ResponseWriter, r *http.Request) {
	dog, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req model.UpdateDogRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	updated, err := h.Svc.Update(r.Context(), IdentityFromContext(r.Context()), dog.ID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/cms/customers/{customer}/dogs/{id}.
func (h *DogHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	dog, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if err := h.Svc.Delete(r.Context(), IdentityFromContext(r.Context()), dog.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
