package httpx

import (
	"net/http"

	"github.com/vetdesk/vetdesk/internal/domain/model"
	"github.com/vetdesk/vetdesk/internal/service"
)

// PortalHandlers serves the signed-in customer's own records under /api/portal.
type PortalHandlers struct {
	Svc     *service.PortalService
	Cookies CookieConfig
}

// Profile handles GET /api/portal/profile.
func (h *PortalHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.Profile(r.Context(), IdentityFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, c)
}

// UpdateProfile handles PUT /api/portal/profile.
func (h *PortalHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateCustomerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	c, err := h.Svc.UpdateProfile(r.Context(), IdentityFromContext(r.Context()), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, c)
}

// DeleteProfile handles DELETE /api/portal/profile and signs the customer out.
func (h *PortalHandlers) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.DeleteProfile(r.Context(), IdentityFromContext(r.Context())); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.Cookies.clear(w, r, h.Cookies.sessionName())
	w.WriteHeader(http.StatusNoContent)
}

// Dogs handles GET /api/portal/dogs.
func (h *PortalHandlers) Dogs(w http.ResponseWriter, r *http.Request) {
	opts := listOptions(r)
	dogs, err := h.Svc.Dogs(r.Context(), IdentityFromContext(r.Context()), opts)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeList(w, "dogs", dogs, opts)
}

// Dog handles GET /api/portal/dogs/{id}.
func (h *PortalHandlers) Dog(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	dog, err := h.Svc.Dog(r.Context(), IdentityFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, dog)
}

// UpdateDog handles PUT /api/portal/dogs/{id}.
func (h *PortalHandlers) UpdateDog(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req model.UpdateDogRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	dog, err := h.Svc.UpdateDog(r.Context(), IdentityFromContext(r.Context()), id, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, dog)
}

// History handles GET /api/portal/history.
func (h *PortalHandlers) History(w http.ResponseWriter, r *http.Request) {
	hist, err := h.Svc.History(r.Context(), IdentityFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, hist)
}
