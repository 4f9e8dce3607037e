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

// Client handles OAuth client administration endpoints.
type Client struct {
	svc *core.OAuthService
}

// NewClient creates a new Client handler.
func NewClient(svc *core.OAuthService) *Client {
	return &Client{svc: svc}
}

// Register creates a new OAuth client. The raw secret is returned once.
func (h *Client) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterClient
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := core.IdentityFromContext(r.Context())

	client, secret, err := h.svc.RegisterClient(r.Context(), req.Name, req.Description, req.RedirectURIs, req.GrantTypes, req.Scope, id.UserID)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]any{
		"id":            client.ID,
		"secret":        secret,
		"name":          client.Name,
		"redirect_uris": client.RedirectURIs,
		"grant_types":   client.GrantTypes,
		"scope":         client.Scope,
		"created_at":    client.CreatedAt,
	}
	response.WriteJSON(w, http.StatusCreated, resp)
}

// List lists registered clients with cursor-based pagination.
func (h *Client) List(w http.ResponseWriter, r *http.Request) {
	pg := request.ParsePagination(r)

	clients, hasMore, err := h.svc.ListClients(r.Context(), pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var nextCursor string
	if hasMore && len(clients) > 0 {
		nextCursor = clients[len(clients)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, clients, nextCursor, hasMore)
}

// Get retrieves a client by ID.
func (h *Client) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	client, err := h.svc.GetClient(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.WriteError(w, http.StatusNotFound, "client not found")
			return
		}
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, client)
}

// RotateSecret replaces a client's secret. The new secret is returned once.
func (h *Client) RotateSecret(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	secret, err := h.svc.RotateClientSecret(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.WriteError(w, http.StatusNotFound, "client not found")
			return
		}
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{"id": id, "secret": secret})
}

// SetActive enables or disables a client.
func (h *Client) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.SetClientActive
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.SetClientActive(r.Context(), id, *req.Active); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.WriteError(w, http.StatusNotFound, "client not found")
			return
		}
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
