package httpx

import (
	"context"
	"net/http"

	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
	"github.com/vetdesk/vetdesk/internal/domain/model"
)

// resourceAPI adapts one service's CRUD methods to JSON handlers. T is the stored
// document, C and U the create and update request bodies. Services do the
// authorization; handlers only pass the caller from the request context.
type resourceAPI[T any, C any, U any] struct {
	ListKey string
	Create  func(ctx context.Context, caller *domainauth.Identity, req *C) (T, error)
	Get     func(ctx context.Context, caller *domainauth.Identity, id string) (T, error)
	List    func(ctx context.Context, caller *domainauth.Identity, opts model.ListOptions) ([]T, error)
	Update  func(ctx context.Context, caller *domainauth.Identity, id string, req *U) (T, error)
	Delete  func(ctx context.Context, caller *domainauth.Identity, id string) error
}

func (a resourceAPI[T, C, U]) create(w http.ResponseWriter, r *http.Request) {
	var req C
	if !DecodeJSON(w, r, &req) {
		return
	}

	v, err := a.Create(r.Context(), IdentityFromContext(r.Context()), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, v)
}

func (a resourceAPI[T, C, U]) list(w http.ResponseWriter, r *http.Request) {
	opts := listOptions(r)

	items, err := a.List(r.Context(), IdentityFromContext(r.Context()), opts)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeList(w, a.ListKey, items, opts)
}

func (a resourceAPI[T, C, U]) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	v, err := a.Get(r.Context(), IdentityFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, v)
}

func (a resourceAPI[T, C, U]) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req U
	if !DecodeJSON(w, r, &req) {
		return
	}

	v, err := a.Update(r.Context(), IdentityFromContext(r.Context()), id, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, v)
}

func (a resourceAPI[T, C, U]) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := a.Delete(r.Context(), IdentityFromContext(r.Context()), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// routes returns the CRUD handler set for registerCRUD.
func (a resourceAPI[T, C, U]) routes(base string) crudRoutes {
	return crudRoutes{
		Base:       base,
		Create:     a.create,
		List:       a.list,
		GetByID:    a.get,
		Update:     a.update,
		Delete:     a.remove,
		Middleware: RequireCMS,
	}
}

func writeList[T any](w http.ResponseWriter, key string, items []T, opts model.ListOptions) {
	if items == nil {
		items = []T{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		key:      items,
		"limit":  opts.Limit,
		"offset": opts.Offset,
	})
}
