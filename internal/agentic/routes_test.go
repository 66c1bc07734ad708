package agentic

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/guilhermexp/memoria/internal/search"
)

func newRouteServer(searcher Searcher, eval ResultEvaluator) *httptest.Server {
	r := chi.NewRouter()
	RegisterRoutes(r, NewOrchestrator(searcher, eval, nil), nil)
	return httptest.NewServer(r)
}

func TestAgenticSearchRoute(t *testing.T) {
	searcher := &scriptSearcher{perRound: [][]search.SearchResult{{memResult("d1", 0.9)}}}
	eval := &scriptEvaluator{verdicts: []Verdict{{CanAnswer: true, Reasoning: "found it"}}}
	srv := newRouteServer(searcher, eval)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/memory/agentic/search", "application/json",
		strings.NewReader(`{"q": "where is the runbook", "mode": "fast"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !body.CanAnswer || body.Rounds != 1 || len(body.Results) != 1 {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestAgenticSearchRouteValidation(t *testing.T) {
	srv := newRouteServer(&scriptSearcher{}, &scriptEvaluator{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/memory/agentic/search", "application/json",
		strings.NewReader(`{"q": ""}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAgenticWebSocket(t *testing.T) {
	searcher := &scriptSearcher{perRound: [][]search.SearchResult{
		{memResult("d1", 0.9)},
		{memResult("d2", 0.7)},
	}}
	eval := &scriptEvaluator{verdicts: []Verdict{
		{CanAnswer: false, Reasoning: "more"},
		{CanAnswer: true, Reasoning: "enough"},
	}}
	srv := newRouteServer(searcher, eval)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/memory/agentic/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(Request{Query: "q", Mode: ModeBalanced}); err != nil {
		t.Fatalf("writing request frame: %v", err)
	}

	var frames []wsFrame
	for {
		var f wsFrame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("reading frame: %v", err)
		}
		frames = append(frames, f)
		if f.Type == "done" || f.Type == "error" {
			break
		}
	}

	if len(frames) != 3 {
		t.Fatalf("expected 2 round frames + done, got %d frames", len(frames))
	}
	if frames[0].Type != "round" || frames[0].Round.Round != 1 {
		t.Errorf("unexpected first frame: %+v", frames[0])
	}
	if frames[1].Type != "round" || !frames[1].Round.CanAnswer {
		t.Errorf("unexpected second frame: %+v", frames[1])
	}
	final := frames[2]
	if final.Type != "done" || final.Response == nil || final.Response.Rounds != 2 {
		t.Errorf("unexpected final frame: %+v", final)
	}
}

func TestAgenticWebSocketBadFrame(t *testing.T) {
	srv := newRouteServer(&scriptSearcher{}, &scriptEvaluator{})
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/memory/agentic/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("writing frame: %v", err)
	}
	var f wsFrame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("reading frame: %v", err)
	}
	if f.Type != "error" {
		t.Errorf("expected error frame, got %+v", f)
	}
}
