package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stayharbor/channelsync/internal/logging"
	"stayharbor/channelsync/internal/models/dtos/requests"
	"stayharbor/channelsync/internal/models/dtos/responses"
	"stayharbor/channelsync/internal/services"
)

// ConnectionsHandler exposes channel connection CRUD
type ConnectionsHandler struct {
	connSvc  *services.ConnectionService
	statsSvc *services.StatsService
}

func NewConnectionsHandler(connSvc *services.ConnectionService, statsSvc *services.StatsService) *ConnectionsHandler {
	return &ConnectionsHandler{
		connSvc:  connSvc,
		statsSvc: statsSvc,
	}
}

// Create handles POST /api/v1/connections
func (h *ConnectionsHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req requests.CreateConnectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		conn, err := h.connSvc.CreateConnection(r.Context(), &req)
		if err != nil {
			h.writeServiceError(w, err, "Failed to create connection")
			return
		}

		h.statsSvc.Invalidate()

		resp := responses.NewConnectionResponse(conn)
		respondWithSuccess(w, http.StatusCreated, &resp)
	}
}

// List handles GET /api/v1/connections?property_id=
func (h *ConnectionsHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID := r.URL.Query().Get("property_id")

		conns, err := h.connSvc.ListConnections(r.Context(), propertyID)
		if err != nil {
			logging.Error("Failed to list connections", "error", err.Error())
			respondWithError(w, http.StatusInternalServerError, "Failed to list connections")
			return
		}

		items := make([]responses.ConnectionResponse, 0, len(conns))
		for i := range conns {
			items = append(items, responses.NewConnectionResponse(&conns[i]))
		}
		respondWithSuccess(w, http.StatusOK, &items)
	}
}

// Get handles GET /api/v1/connections/{id}
func (h *ConnectionsHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		conn, err := h.connSvc.GetConnection(r.Context(), id)
		if err != nil {
			logging.Error("Failed to load connection", "connection_id", id, "error", err.Error())
			respondWithError(w, http.StatusInternalServerError, "Failed to load connection")
			return
		}
		if conn == nil {
			respondWithError(w, http.StatusNotFound, "Connection not found")
			return
		}

		resp := responses.NewConnectionResponse(conn)
		respondWithSuccess(w, http.StatusOK, &resp)
	}
}

// Update handles PATCH /api/v1/connections/{id}
func (h *ConnectionsHandler) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req requests.UpdateConnectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		conn, err := h.connSvc.UpdateConnection(r.Context(), id, &req)
		if err != nil {
			h.writeServiceError(w, err, "Failed to update connection")
			return
		}
		if conn == nil {
			respondWithError(w, http.StatusNotFound, "Connection not found")
			return
		}

		h.statsSvc.Invalidate()

		resp := responses.NewConnectionResponse(conn)
		respondWithSuccess(w, http.StatusOK, &resp)
	}
}

// Delete handles DELETE /api/v1/connections/{id}
func (h *ConnectionsHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		deleted, err := h.connSvc.DeleteConnection(r.Context(), id)
		if err != nil {
			logging.Error("Failed to delete connection", "connection_id", id, "error", err.Error())
			respondWithError(w, http.StatusInternalServerError, "Failed to delete connection")
			return
		}
		if !deleted {
			respondWithError(w, http.StatusNotFound, "Connection not found")
			return
		}

		h.statsSvc.Invalidate()
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *ConnectionsHandler) writeServiceError(w http.ResponseWriter, err error, logMsg string) {
	var valErr *services.ValidationError
	var confErr *services.ConflictError

	switch {
	case errors.As(err, &valErr):
		respondWithError(w, http.StatusBadRequest, valErr.Error())
	case errors.As(err, &confErr):
		respondWithError(w, http.StatusConflict, confErr.Error())
	default:
		logging.Error("Connection request failed", "error", err.Error())
		respondWithError(w, http.StatusInternalServerError, logMsg)
	}
}
