package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hnpham/stockpile/internal/core/domain"
	"github.com/hnpham/stockpile/internal/core/service"
)

// MigrateHandler serves the one-shot JSON import at /migrate.
type MigrateHandler struct {
	migration *service.MigrationService
}

func NewMigrateHandler(migration *service.MigrationService) *MigrateHandler {
	return &MigrateHandler{migration: migration}
}

func (h *MigrateHandler) Migrate(w http.ResponseWriter, r *http.Request) {
	countRequest("/migrate", r.Method)
	setCORSHeaders(w)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		writeJSON(w, http.StatusMethodNotAllowed, apiResponse{Error: "method not allowed"})
		return
	}

	var payload domain.MigrationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Error: "invalid request body"})
		return
	}

	writeJSON(w, http.StatusOK, h.migration.Import(r.Context(), payload))
}
