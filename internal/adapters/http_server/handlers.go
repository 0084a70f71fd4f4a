// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"wayfarer/internal/app"
	"wayfarer/internal/domain"
)

type Handlers struct {
	Batch *app.RecommendationBatchResolver
	Geo   *app.GeoIdentityReconciler
	Q     *app.QueryService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/recommendations/resolve", h.resolveBatch)
	s.mux.Get("/v1/places/{id}", h.getPlace)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

type resolveRequest struct {
	Recommendations []domain.Recommendation `json:"recommendations"`
}

type resolveResponse struct {
	Results  []domain.Recommendation `json:"results"`
	Counters app.Counters            `json:"counters"`
}

// resolveBatch runs both pipeline passes: place identity resolution,
// then geo reconciliation. Individual item failures never fail the
// request; they surface as sentinel references in the results.
func (h *Handlers) resolveBatch(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "expected {\"recommendations\": [...]}")
		return
	}
	if len(req.Recommendations) == 0 {
		writeProblem(w, http.StatusBadRequest, "Empty batch", "recommendations must not be empty")
		return
	}

	results, counters := h.Batch.ResolveBatch(r.Context(), req.Recommendations)
	results = h.Geo.ReconcileGeo(r.Context(), results)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resolveResponse{Results: results, Counters: counters}); err != nil {
		log.Error().Err(err).Msg("failed to write resolveBatch body")
	}
}

func (h *Handlers) getPlace(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	resp, err := h.Q.GetPlace(r.Context(), id)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "place not found")
		return
	}

	etag, body := calcETagAndBody(resp)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getPlace body")
	}
}
