package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"stayharbor/channelsync/internal/logging"
	"stayharbor/channelsync/internal/models/dtos/requests"
	"stayharbor/channelsync/internal/providers"
)

// LodgifyHandler exposes API key validation for connection setup
type LodgifyHandler struct {
	provider *providers.LodgifyProvider
}

func NewLodgifyHandler(provider *providers.LodgifyProvider) *LodgifyHandler {
	return &LodgifyHandler{provider: provider}
}

// TestKey handles POST /api/v1/lodgify/test-key. Returns the properties
// visible to the key so the operator can pick the external property id.
// A rejected key is a normal response, not an error.
func (h *LodgifyHandler) TestKey() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req requests.TestLodgifyKeyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if strings.TrimSpace(req.APIKey) == "" {
			respondWithError(w, http.StatusBadRequest, "api_key is required")
			return
		}

		result, err := h.provider.TestKey(r.Context(), req.APIKey)
		if err != nil {
			logging.Error("Lodgify key test failed", "error", err.Error())
			respondWithError(w, http.StatusBadGateway, "Could not reach Lodgify")
			return
		}

		respondWithSuccess(w, http.StatusOK, result)
	}
}
