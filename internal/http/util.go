package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/vetdesk/vetdesk/internal/domain/model"
)

// queryInt reads an integer query parameter. Missing or malformed values yield 0.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}

// listOptions reads ?limit and ?offset; model.ListOptions.Normalize applies the bounds.
func listOptions(r *http.Request) model.ListOptions {
	return model.ListOptions{Limit: queryInt(r, "limit"), Offset: queryInt(r, "offset")}.Normalize()
}

// pathID reads a required path value. Malformed ids are left to the services,
// which authorize before reporting a missing record.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := r.PathValue(name)
	if raw == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New(name + " is required")})
		return "", false
	}
	return raw, true
}
