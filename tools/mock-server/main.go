// Package main implements a mock upstream server for local development.
// One listener stands in for the Discogs website and REST API, the
// exchange rate service and Pushbullet, so discogs-alert can run a full
// cycle without credentials by pointing every *_url setting at it.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

type listResponse struct {
	ID    int64             `json:"id"`
	Name  string            `json:"name"`
	Items []json.RawMessage `json:"items"`
}

// eurRates are units per EUR; other bases are derived from them.
var eurRates = map[string]float64{
	"EUR": 1,
	"USD": 1.08,
	"GBP": 0.85,
	"JPY": 162.5,
	"CAD": 1.47,
	"AUD": 1.64,
	"CHF": 0.95,
	"SEK": 11.4,
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	pageFile := flag.String("page", "tools/mock-server/testdata/release_marketplace.html", "marketplace page fixture")
	listFile := flag.String("list", "tools/mock-server/testdata/list.json", "list API fixture")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	page, err := os.ReadFile(*pageFile) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		logger.Error("failed to load marketplace page", "path", *pageFile, "error", err)
		os.Exit(1)
	}
	list, err := loadList(*listFile)
	if err != nil {
		logger.Error("failed to load list", "path", *listFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixtures", "page_bytes", len(page), "list_items", len(list.Items))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock upstream server", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, newMux(logger, page, list)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newMux(logger *slog.Logger, page []byte, list *listResponse) *http.ServeMux {
	pushes := &pushStore{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /sell/release/{id}", marketplaceHandler(logger, page))
	mux.HandleFunc("GET /lists/{id}", listHandler(logger, list))
	mux.HandleFunc("GET /marketplace/stats/{id}", statsHandler())
	mux.HandleFunc("GET /latest", ratesHandler(logger))
	mux.HandleFunc("GET /v2/pushes", pushes.listHandler())
	mux.HandleFunc("POST /v2/pushes", pushes.createHandler(logger))
	return mux
}

func loadList(path string) (*listResponse, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading list fixture: %w", err)
	}
	var l listResponse
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parsing list fixture: %w", err)
	}
	return &l, nil
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "The requested resource was not found."})
		return 0, false
	}
	return id, true
}

// marketplaceHandler serves the same page for every release.
func marketplaceHandler(logger *slog.Logger, page []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		w.Write(page)
		logger.Info("marketplace page", "release_id", id)
	}
}

func listHandler(logger *slog.Logger, list *listResponse) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		resp := *list
		resp.ID = id
		writeJSON(w, http.StatusOK, resp)
		logger.Info("list", "list_id", id, "items", len(list.Items))
	}
}

// statsHandler derives stable fake stats from the release id.
func statsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		n := int(id % 7)
		resp := map[string]any{
			"num_for_sale":      n,
			"blocked_from_sale": false,
			"lowest_price":      nil,
		}
		if n > 0 {
			resp["lowest_price"] = map[string]any{"currency": "EUR", "value": 10 + float64(id%40)}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func ratesHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		base := strings.ToUpper(r.URL.Query().Get("base"))
		if base == "" {
			base = "EUR"
		}
		perEUR, ok := eurRates[base]
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported base " + base})
			return
		}

		rates := make(map[string]float64, len(eurRates))
		for code, v := range eurRates {
			rates[code] = v / perEUR
		}
		writeJSON(w, http.StatusOK, map[string]any{"base": base, "rates": rates})
		logger.Info("rates", "base", base)
	}
}

type push struct {
	Iden  string `json:"iden"`
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// pushStore keeps pushes in memory, newest first like the real API.
type pushStore struct {
	mu     sync.Mutex
	pushes []push
}

const pushPageSize = 20

func (s *pushStore) listHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset := 0
		if c := r.URL.Query().Get("cursor"); c != "" {
			if v, err := strconv.Atoi(c); err == nil && v >= 0 {
				offset = v
			}
		}
		limit := pushPageSize
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
			limit = v
		}

		s.mu.Lock()
		total := len(s.pushes)
		page := []push{}
		if offset < total {
			page = append(page, s.pushes[offset:min(offset+limit, total)]...)
		}
		s.mu.Unlock()

		cursor := ""
		if offset+limit < total {
			cursor = strconv.Itoa(offset + limit)
		}

		w.Header().Set("X-Ratelimit-Remaining", "10000")
		writeJSON(w, http.StatusOK, map[string]any{"pushes": page, "cursor": cursor})
	}
}

func (s *pushStore) createHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"error": map[string]string{"type": "invalid_request", "message": "Access token is missing or invalid."},
			})
			return
		}

		var p push
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		s.mu.Lock()
		p.Iden = "mock" + strconv.Itoa(len(s.pushes)+1)
		s.pushes = append([]push{p}, s.pushes...)
		s.mu.Unlock()

		writeJSON(w, http.StatusOK, p)
		logger.Info("push", "title", p.Title, "body", p.Body)
	}
}
