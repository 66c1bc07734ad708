package agentic

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/guilhermexp/memoria/internal/memstore"
	"github.com/guilhermexp/memoria/internal/search"
)

// RegisterRoutes mounts the agentic search routes.
func RegisterRoutes(r chi.Router, orch *Orchestrator, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	r.Route("/api/memory/agentic", func(r chi.Router) {
		r.Post("/search", handleAgenticSearch(orch))
		r.Get("/ws", handleAgenticWS(orch, logger))
	})
}

func handleAgenticSearch(orch *Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		resp, err := orch.Run(r.Context(), memstore.OrgFromRequest(r), req, nil)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, search.ErrEmptyQuery) || errors.Is(err, search.ErrInvalidLimit) {
				status = http.StatusBadRequest
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API carries no cookies or ambient credentials, so cross-origin
	// upgrades are safe to accept.
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsFrame is the envelope for every message sent over the socket.
type wsFrame struct {
	Type     string         `json:"type"` // round | done | error
	Round    *RoundProgress `json:"round,omitempty"`
	Response *Response      `json:"response,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// handleAgenticWS runs one agentic search per connection: the client sends
// a single request frame, the server streams a round frame per completed
// round and a final done frame, then closes.
func handleAgenticWS(orch *Orchestrator, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			conn.WriteJSON(wsFrame{Type: "error", Error: "invalid request frame"})
			return
		}

		resp, err := orch.Run(r.Context(), memstore.OrgFromRequest(r), req, func(p RoundProgress) {
			if err := conn.WriteJSON(wsFrame{Type: "round", Round: &p}); err != nil {
				logger.Warn("writing progress frame failed", "error", err)
			}
		})
		if err != nil {
			conn.WriteJSON(wsFrame{Type: "error", Error: err.Error()})
			return
		}
		conn.WriteJSON(wsFrame{Type: "done", Response: resp})
	}
}
