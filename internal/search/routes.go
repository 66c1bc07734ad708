package search

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/guilhermexp/memoria/internal/memstore"
)

// RegisterRoutes mounts the search API routes.
func RegisterRoutes(r chi.Router, engine *Engine) {
	r.Route("/api/memory", func(r chi.Router) {
		r.Post("/search", handleSearch(engine))
		r.Post("/hybrid-search", handleHybridSearch(engine))
	})
}

func handleSearch(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		resp, err := engine.Search(r.Context(), memstore.OrgFromRequest(r), req)
		if err != nil {
			writeSearchError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func handleHybridSearch(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req HybridRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		resp, err := engine.HybridSearch(r.Context(), memstore.OrgFromRequest(r), req)
		if err != nil {
			writeSearchError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

// writeSearchError maps validation errors to 400 and everything else
// (store failures) to 500.
func writeSearchError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, ErrEmptyQuery) || errors.Is(err, ErrInvalidLimit) {
		status = http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
