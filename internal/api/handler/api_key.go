package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookdesk/platform/internal/api/request"
	"github.com/bookdesk/platform/internal/api/response"
	"github.com/bookdesk/platform/internal/core"
	"github.com/bookdesk/platform/internal/store"
)

// APIKey handles API key management endpoints.
type APIKey struct {
	svc *core.APIKeyService
}

// NewAPIKey creates a new APIKey handler.
func NewAPIKey(svc *core.APIKeyService) *APIKey {
	return &APIKey{svc: svc}
}

// Create generates a new API key. The raw key is returned once in the response.
func (h *APIKey) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateAPIKey
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := core.IdentityFromContext(r.Context())

	key, rawKey, err := h.svc.Create(r.Context(), req.Name, req.Description, id.UserID, req.Permissions, req.RateLimit, req.ExpiresAt)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Build the response with the raw key included (shown only once).
	resp := map[string]any{
		"key_id":      key.KeyID,
		"key":         rawKey,
		"name":        key.Name,
		"permissions": key.Permissions,
		"rate_limit":  key.RateLimit,
		"expires_at":  key.ExpiresAt,
		"created_at":  key.CreatedAt,
	}
	response.WriteJSON(w, http.StatusCreated, resp)
}

// List lists all API keys with cursor-based pagination.
func (h *APIKey) List(w http.ResponseWriter, r *http.Request) {
	pg := request.ParsePagination(r)

	keys, hasMore, err := h.svc.List(r.Context(), pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var nextCursor string
	if hasMore && len(keys) > 0 {
		nextCursor = keys[len(keys)-1].KeyID
	}
	response.WritePaginated(w, http.StatusOK, keys, nextCursor, hasMore)
}

// Deactivate soft-disables an API key.
func (h *APIKey) Deactivate(w http.ResponseWriter, r *http.Request) {
	keyID, err := request.RequireID(chi.URLParam(r, "keyID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Deactivate(r.Context(), keyID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.WriteError(w, http.StatusNotFound, "api key not found")
			return
		}
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
