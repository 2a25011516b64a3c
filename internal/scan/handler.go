// internal/scan/handler.go
package scan

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"smartbin/internal/bins"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// HandleStartScan accepts POST /bins/{binID}/scans and answers 202 with the
// scan id; the result shows up on the bin's status and inventory.
func (h *Handler) HandleStartScan(w http.ResponseWriter, r *http.Request) {
	binID := chi.URLParam(r, "binID")

	// An empty body means a quick scan.
	var req struct {
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	kind := Kind(req.Kind)
	if kind == "" {
		kind = KindQuick
	}

	scanID, err := h.service.Start(r.Context(), binID, kind)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownKind):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrRateLimited):
			http.Error(w, err.Error(), http.StatusTooManyRequests)
		case errors.Is(err, bins.ErrBinNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ErrNoImage):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"scan_id": scanID.String(),
		"kind":    string(kind),
	})
}
