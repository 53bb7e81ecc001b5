// Package main implements a mock Apple Store fulfillment server for local
// development. It serves pickup availability for any product code from a
// JSON fixture and accepts Bark and Feishu pushes, so the monitor can run
// end to end with upstream.baseURL pointed at it.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// storeFixture is one store as listed in the fixture file. The product
// entry is built per request from the requested part code.
type storeFixture struct {
	StoreName         string          `json:"storeName"`
	StoreNumber       string          `json:"storeNumber"`
	PickupDisplay     string          `json:"pickupDisplay"`
	PickupSearchQuote string          `json:"pickupSearchQuote"`
	RetailStore       json.RawMessage `json:"retailStore"`
}

type fixtureFile struct {
	Stores []storeFixture `json:"stores"`
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixturePath := flag.String("fixture", "tools/mock-server/testdata/stores.json", "path to stores fixture")
	failStatus := flag.Int("fail-status", 0, "answer every fulfillment request with this status (e.g. 541)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fixture, err := loadFixture(*fixturePath)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixturePath, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "stores", len(fixture.Stores))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /shop/fulfillment-messages", fulfillmentHandler(logger, fixture, *failStatus))
	mux.HandleFunc("POST /bark/push", barkHandler(logger))
	mux.HandleFunc("POST /feishu/hook", feishuHandler(logger))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock fulfillment server", "addr", addr,
		"bark", fmt.Sprintf("http://localhost%s/bark/push", addr),
		"feishu", fmt.Sprintf("http://localhost%s/feishu/hook", addr),
	)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func loadFixture(path string) (*fixtureFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var f fixtureFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &f, nil
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

func fulfillmentHandler(logger *slog.Logger, fixture *fixtureFile, failStatus int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if failStatus != 0 {
			logger.Warn("rejecting fulfillment request", "status", failStatus)
			w.WriteHeader(failStatus)
			return
		}

		code := r.URL.Query().Get("parts.0")
		if code == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "parts.0 is required"})
			return
		}

		stores := make([]map[string]any, 0, len(fixture.Stores))
		for _, s := range fixture.Stores {
			stores = append(stores, map[string]any{
				"storeName":   s.StoreName,
				"storeNumber": s.StoreNumber,
				"retailStore": s.RetailStore,
				"partsAvailability": map[string]any{
					code: map[string]any{
						"pickupDisplay":     s.PickupDisplay,
						"pickupSearchQuote": s.PickupSearchQuote,
						"messageTypes": map[string]any{
							"regular": map[string]any{
								"storePickupProductTitle": "iPhone " + code,
							},
						},
					},
				},
			})
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"body": map[string]any{
				"content": map[string]any{
					"pickupMessage": map[string]any{"stores": stores},
				},
			},
		})
		logger.Info("fulfillment", "part", code, "location", r.URL.Query().Get("location"), "stores", len(stores))
	}
}

func barkHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var push struct {
			DeviceKey string `json:"device_key"`
			Title     string `json:"title"`
			Body      string `json:"body"`
			Sound     string `json:"sound"`
		}
		if err := json.NewDecoder(r.Body).Decode(&push); err != nil || push.DeviceKey == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"code": 400, "message": "device_key is required"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"code": 200, "message": "success"})
		logger.Info("bark push", "title", push.Title, "body", push.Body, "sound", push.Sound)
	}
}

func feishuHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg struct {
			MsgType string `json:"msg_type"`
			Content struct {
				Text string `json:"text"`
			} `json:"content"`
			Timestamp int64  `json:"timestamp"`
			Sign      string `json:"sign"`
		}
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			writeJSON(w, http.StatusOK, map[string]any{"code": 9499, "msg": "Bad Request"})
			return
		}
		if msg.Timestamp != 0 && msg.Sign == "" {
			writeJSON(w, http.StatusOK, map[string]any{"code": 19021, "msg": "sign match fail or timestamp is not within one hour from current time"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"code": 0, "msg": "success"})
		logger.Info("feishu message", "type", msg.MsgType, "text", msg.Content.Text)
	}
}
