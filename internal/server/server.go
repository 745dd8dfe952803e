// Package server serves the range dashboard, its JSON API and report downloads.
package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"IndexRange/internal/analyzer"
	"IndexRange/internal/chart"
	"IndexRange/internal/export"
	"IndexRange/internal/logging"
	"IndexRange/internal/model"
	"IndexRange/internal/recorder"
)

// Options configure the dashboard presentation.
type Options struct {
	Title        string
	ReportPrefix string
}

// DashboardServer serves the dashboard HTTP API.
type DashboardServer struct {
	cache    *analyzer.Cache
	period   model.PeriodFunc
	recorder recorder.Recorder
	opts     Options
	now      func() time.Time
	page     *template.Template
	log      zerolog.Logger
}

// NewDashboardServer creates a new dashboard HTTP server. A nil recorder
// serves an empty run list.
func NewDashboardServer(cache *analyzer.Cache, period model.PeriodFunc, rec recorder.Recorder, opts Options) *DashboardServer {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if opts.ReportPrefix == "" {
		opts.ReportPrefix = "report"
	}
	return &DashboardServer{
		cache:    cache,
		period:   period,
		recorder: rec,
		opts:     opts,
		now:      time.Now,
		page:     template.Must(template.New("index").Funcs(pageFuncs).Parse(indexHTML)),
		log:      logging.Component("server"),
	}
}

// RegisterRoutes registers all routes on the given mux.
func (s *DashboardServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /chart", s.handleChart)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/chart", s.handleChartData)
	mux.HandleFunc("GET /download/csv", s.handleCSV)
	mux.HandleFunc("GET /download/parquet", s.handleParquet)
	mux.HandleFunc("POST /api/cache/clear", s.handleCacheClear)
	mux.HandleFunc("GET /api/runs", s.handleRuns)
	mux.HandleFunc("GET /api/runs/{id}", s.handleRunRows)
	mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns an http.Handler with CORS and request logging.
func (s *DashboardServer) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return s.logRequests(corsMiddleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *DashboardServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Dur("took", time.Since(start)).Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encoding JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// batch returns the memoized batch for the current period.
func (s *DashboardServer) batch(r *http.Request) (*model.Batch, error) {
	p, err := s.period(s.now())
	if err != nil {
		return nil, fmt.Errorf("resolve period: %w", err)
	}
	return s.cache.Get(r.Context(), p), nil
}

func (s *DashboardServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	b, err := s.batch(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, newPageData(s.opts, b)); err != nil {
		s.log.Error().Err(err).Msg("render page")
		writeError(w, http.StatusInternalServerError, "render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *DashboardServer) handleChart(w http.ResponseWriter, r *http.Request) {
	b, err := s.batch(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	var buf bytes.Buffer
	if err := chart.Render(&buf, s.opts.Title, b); err != nil {
		s.log.Error().Err(err).Msg("render chart")
		writeError(w, http.StatusInternalServerError, "render chart")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *DashboardServer) handleSummary(w http.ResponseWriter, r *http.Request) {
	b, err := s.batch(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, newBatchResponse(b))
}

func (s *DashboardServer) handleChartData(w http.ResponseWriter, r *http.Request) {
	b, err := s.batch(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, chart.Points(b))
}

func (s *DashboardServer) handleCSV(w http.ResponseWriter, r *http.Request) {
	b, err := s.batch(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, b); err != nil {
		s.log.Error().Err(err).Msg("write csv")
		writeError(w, http.StatusInternalServerError, "write csv")
		return
	}
	s.attachment(w, "text/csv", export.FileName(s.opts.ReportPrefix, b.Period, "csv"))
	w.Write(buf.Bytes())
}

func (s *DashboardServer) handleParquet(w http.ResponseWriter, r *http.Request) {
	b, err := s.batch(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	var buf bytes.Buffer
	if err := export.WriteParquet(&buf, b); err != nil {
		s.log.Error().Err(err).Msg("write parquet")
		writeError(w, http.StatusInternalServerError, "write parquet")
		return
	}
	s.attachment(w, "application/vnd.apache.parquet", export.FileName(s.opts.ReportPrefix, b.Period, "parquet"))
	w.Write(buf.Bytes())
}

func (s *DashboardServer) attachment(w http.ResponseWriter, contentType, name string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
}

func (s *DashboardServer) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.cache.Invalidate()
	writeJSON(w, map[string]string{"status": "cleared"})
}

func (s *DashboardServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	runs, err := s.recorder.ListRuns(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []recorder.RunInfo{}
	}
	writeJSON(w, runs)
}

func (s *DashboardServer) handleRunRows(w http.ResponseWriter, r *http.Request) {
	rows, err := s.recorder.RunRows(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(rows) == 0 {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, rows)
}

func (s *DashboardServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}
