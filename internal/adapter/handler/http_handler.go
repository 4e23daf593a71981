package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/VictoriaMetrics/metrics"

	"github.com/hnpham/stockpile/internal/core/domain"
	"github.com/hnpham/stockpile/internal/core/service"
)

// HTTPHandler dispatches the /items resource: method plus the action query
// parameter select the operation. It is pure glue between HTTP shapes and
// the item service.
type HTTPHandler struct {
	items *service.ItemService
}

type apiResponse struct {
	Success  bool     `json:"success"`
	Data     any      `json:"data,omitempty"`
	Message  string   `json:"message,omitempty"`
	Error    string   `json:"error,omitempty"`
	Required []string `json:"required,omitempty"`
}

func NewHTTPHandler(items *service.ItemService) *HTTPHandler {
	return &HTTPHandler{items: items}
}

func (h *HTTPHandler) Items(w http.ResponseWriter, r *http.Request) {
	countRequest("/items", r.Method)
	setCORSHeaders(w)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPost:
		h.create(w, r)
	case http.MethodPut:
		h.update(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, apiResponse{Error: "method not allowed"})
	}
}

func (h *HTTPHandler) get(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("action") {
	case "list":
		writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: h.items.List(r.Context())})
	case "stats":
		writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: h.items.Stats(r.Context())})
	default:
		writeJSON(w, http.StatusBadRequest, apiResponse{Error: "unknown action"})
	}
}

func (h *HTTPHandler) create(w http.ResponseWriter, r *http.Request) {
	var fields domain.Record
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Error: "invalid request body"})
		return
	}

	item, err := h.items.Create(r.Context(), fields)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, apiResponse{
				Error:    "missing required fields",
				Required: verr.Missing,
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, apiResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, apiResponse{
		Success: true,
		Data:    item,
		Message: "item created",
	})
}

func (h *HTTPHandler) update(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, apiResponse{Error: "missing id"})
		return
	}

	var fields domain.Record
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Error: "invalid request body"})
		return
	}

	if err := h.items.Update(r.Context(), id, fields); err != nil {
		writeJSON(w, http.StatusInternalServerError, apiResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Message: "item updated"})
}

func (h *HTTPHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, apiResponse{Error: "missing id"})
		return
	}

	if err := h.items.Delete(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, apiResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Message: "item deleted"})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Metrics exposes the process counters in Prometheus text format.
func (h *HTTPHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics.WritePrometheus(w, true)
}

// setCORSHeaders makes every resource endpoint permissive; the UI is served
// from a different origin.
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func countRequest(path, method string) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`stockpile_http_requests_total{path=%q,method=%q}`, path, method)).Inc()
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
