package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"stayharbor/channelsync/internal/constants"
	"stayharbor/channelsync/internal/logging"
	"stayharbor/channelsync/internal/models/dtos/responses"
	"stayharbor/channelsync/internal/services"
	"stayharbor/channelsync/internal/syncengine"
)

const defaultLogLimit = 50
const maxLogLimit = 200

// SyncHandler exposes manual sync triggers and run history
type SyncHandler struct {
	coordinator *syncengine.Coordinator
	scheduler   *syncengine.Scheduler
	connSvc     *services.ConnectionService
	statsSvc    *services.StatsService
}

func NewSyncHandler(
	coordinator *syncengine.Coordinator,
	scheduler *syncengine.Scheduler,
	connSvc *services.ConnectionService,
	statsSvc *services.StatsService,
) *SyncHandler {
	return &SyncHandler{
		coordinator: coordinator,
		scheduler:   scheduler,
		connSvc:     connSvc,
		statsSvc:    statsSvc,
	}
}

// TriggerSync handles POST /api/v1/connections/{id}/sync
func (h *SyncHandler) TriggerSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		run, err := h.coordinator.RunSync(r.Context(), id, constants.SyncTypeManual)
		if err != nil {
			switch {
			case errors.Is(err, syncengine.ErrNotFound):
				respondWithError(w, http.StatusNotFound, "Connection not found")
			case errors.Is(err, syncengine.ErrDisabled):
				respondWithError(w, http.StatusConflict, "Connection is disabled")
			case errors.Is(err, syncengine.ErrBusy):
				respondWithError(w, http.StatusConflict, "Sync already in progress for this connection")
			default:
				logging.Error("Manual sync failed", "connection_id", id, "error", err.Error())
				respondWithError(w, http.StatusInternalServerError, "Sync failed")
			}
			return
		}

		h.statsSvc.Invalidate()
		respondWithSuccess(w, http.StatusOK, run)
	}
}

// SyncAll handles POST /api/v1/sync/all
func (h *SyncHandler) SyncAll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h.scheduler.SyncAll(r.Context())
		if err != nil {
			logging.Error("Bulk sync failed", "error", err.Error())
			respondWithError(w, http.StatusInternalServerError, "Bulk sync failed")
			return
		}

		h.statsSvc.Invalidate()
		respondWithSuccess(w, http.StatusOK, result)
	}
}

// ListLogs handles GET /api/v1/sync/logs?connection_id=&limit=
func (h *SyncHandler) ListLogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connectionID := r.URL.Query().Get("connection_id")

		limit := defaultLogLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = parsed
		}
		if limit > maxLogLimit {
			limit = maxLogLimit
		}

		logs, err := h.connSvc.ListSyncLogs(r.Context(), connectionID, limit)
		if err != nil {
			logging.Error("Failed to list sync logs", "error", err.Error())
			respondWithError(w, http.StatusInternalServerError, "Failed to list sync logs")
			return
		}

		items := make([]responses.SyncLogResponse, 0, len(logs))
		for i := range logs {
			items = append(items, responses.NewSyncLogResponse(&logs[i]))
		}
		respondWithSuccess(w, http.StatusOK, &items)
	}
}

// GetStats handles GET /api/v1/sync/stats
func (h *SyncHandler) GetStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.statsSvc.GetStats(r.Context())
		if err != nil {
			logging.Error("Failed to aggregate sync stats", "error", err.Error())
			respondWithError(w, http.StatusInternalServerError, "Failed to aggregate sync stats")
			return
		}
		respondWithSuccess(w, http.StatusOK, stats)
	}
}
