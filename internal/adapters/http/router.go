package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/docs-qa/internal/core/ports"
	"github.com/kirillkom/docs-qa/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	answerer ports.QuestionAnswerer
	ingestor ports.PageIngestor
	queue    ports.CrawlQueue
	repo     ports.ChunkRepository
	metrics  *metrics.HTTPServerMetrics
}

func NewRouter(
	answerer ports.QuestionAnswerer,
	ingestor ports.PageIngestor,
	queue ports.CrawlQueue,
	repo ports.ChunkRepository,
	serverMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		answerer: answerer,
		ingestor: ingestor,
		queue:    queue,
		repo:     repo,
		metrics:  serverMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/ask", rt.ask)
	mux.HandleFunc("/v1/crawl", rt.crawl)
	mux.HandleFunc("/v1/sources", rt.sources)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question string `json:"question"`
		TopK     int    `json:"top_k"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	start := time.Now()
	answer, err := rt.answerer.Answer(r.Context(), req.Question, req.TopK)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordQAObservation(serviceName, len(answer.Sources), len(answer.Variants), time.Since(start))
	}

	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) crawl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		URLs  []string `json:"urls"`
		Reset bool     `json:"reset"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	urls := make([]string, 0, len(req.URLs))
	for _, url := range req.URLs {
		if trimmed := strings.TrimSpace(url); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	if len(urls) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "at least one url is required"})
		return
	}

	if req.Reset {
		if err := rt.ingestor.Reset(r.Context()); err != nil {
			writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
			return
		}
	}

	queued := 0
	for _, url := range urls {
		if err := rt.queue.PublishCrawlRequest(r.Context(), url); err != nil {
			writeJSON(w, mapErrorToHTTPStatus(err), map[string]any{
				"error":  err.Error(),
				"queued": queued,
			})
			return
		}
		queued++
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"queued": queued,
		"reset":  req.Reset,
	})
}

func (rt *Router) sources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	stats, err := rt.repo.SourceStats(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": stats})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
