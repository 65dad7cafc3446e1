package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"solana-token-scanner/internal/observability"
	"solana-token-scanner/internal/orchestrator"
	"solana-token-scanner/internal/reporting"
)

// DefaultHistoryWindow is used by /tokens without a window parameter.
const DefaultHistoryWindow = 24 * time.Hour

// Server exposes the orchestrator over HTTP and on a schedule.
type Server struct {
	orch         *orchestrator.Orchestrator
	history      *reporting.Generator
	scanInterval time.Duration
	logger       *log.Logger

	// State
	mu          sync.Mutex
	startedAt   time.Time
	scanRunning bool
	scanRuns    int
	scanErrors  int
	lastScanErr string
}

// NewServer creates a Server.
func NewServer(orch *orchestrator.Orchestrator, history *reporting.Generator, scanInterval time.Duration, logger *log.Logger) *Server {
	return &Server{
		orch:         orch,
		history:      history,
		scanInterval: scanInterval,
		logger:       logger,
		startedAt:    time.Now(),
	}
}

// RunScheduler scans immediately and then every scanInterval.
// A zero interval disables scheduled scans.
func (s *Server) RunScheduler(ctx context.Context) error {
	if s.scanInterval <= 0 {
		s.logger.Println("Scheduled scans disabled")
		<-ctx.Done()
		return nil
	}

	s.logger.Printf("Starting scan scheduler (interval: %v)...", s.scanInterval)

	// Run immediately on start
	s.scan(ctx)

	ticker := time.NewTicker(s.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

// scan runs one scan and updates state. The orchestrator serializes
// concurrent callers; scanRunning only reports that one is in progress.
func (s *Server) scan(ctx context.Context) (*orchestrator.RunResult, error) {
	s.mu.Lock()
	s.scanRunning = true
	s.mu.Unlock()

	run, err := s.orch.Scan(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanRunning = false
	s.scanRuns++
	if err != nil {
		s.scanErrors++
		s.lastScanErr = err.Error()
		if !errors.Is(err, context.Canceled) {
			s.logger.Printf("Scan failed: %v", err)
		}
		return nil, err
	}
	s.lastScanErr = ""
	return run, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/scan", s.handleScan)
	mux.HandleFunc("/tokens", s.handleTokens)

	return mux
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status       string         `json:"status"`
	Uptime       string         `json:"uptime"`
	Classifier   string         `json:"classifier"`
	Parameters   map[string]any `json:"parameters"`
	ScanInterval string         `json:"scan_interval"`
	ScanRuns     int            `json:"scan_runs"`
	ScanErrors   int            `json:"scan_errors"`
	ScanRunning  bool           `json:"scan_running"`
	LastError    string         `json:"last_error,omitempty"`
	LastScan     *LastScan      `json:"last_scan,omitempty"`
}

// LastScan summarizes the most recent successful scan.
type LastScan struct {
	ScanID     string    `json:"scan_id"`
	StartedAt  time.Time `json:"started_at"`
	Duration   string    `json:"duration"`
	Scanned    int       `json:"scanned"`
	Surfaced   int       `json:"surfaced"`
	StoreError int       `json:"store_errors"`
	Published  bool      `json:"published"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:       "running",
		Uptime:       time.Since(s.startedAt).Round(time.Second).String(),
		Classifier:   s.orch.Classifier().Name(),
		Parameters:   s.orch.Classifier().Parameters(),
		ScanInterval: s.scanInterval.String(),
		ScanRuns:     s.scanRuns,
		ScanErrors:   s.scanErrors,
		ScanRunning:  s.scanRunning,
		LastError:    s.lastScanErr,
	}
	s.mu.Unlock()

	if last := s.orch.Last(); last != nil {
		resp.LastScan = &LastScan{
			ScanID:     last.ScanID,
			StartedAt:  last.StartedAt.UTC(),
			Duration:   last.Duration.Round(time.Millisecond).String(),
			Scanned:    last.Scanned,
			Surfaced:   last.Result.Count(),
			StoreError: last.StoreError,
			Published:  last.Published,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleScan runs a scan on demand. The response is the JSON report,
// or Markdown/CSV with ?format=markdown|csv.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	run, err := s.scan(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}

	switch r.URL.Query().Get("format") {
	case "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(reporting.RenderMarkdown(run.Report)))
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Write([]byte(reporting.RenderCSV(run.Report)))
	default:
		writeJSON(w, http.StatusOK, run.Report)
	}
}

// handleTokens reports tokens seen within ?window= (Go duration, default 24h).
func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	window := DefaultHistoryWindow
	if v := r.URL.Query().Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid window"})
			return
		}
		window = d
	}

	report, err := s.history.Generate(r.Context(), window)
	if err != nil {
		s.logger.Printf("History report failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(reporting.RenderHistoryMarkdown(report)))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
