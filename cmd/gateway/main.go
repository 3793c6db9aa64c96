// Command gateway exposes the blog pipeline over HTTP: start a run, poll
// its status, list past runs, and download finished artifacts.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/draftwright/draftwright/internal/config"
	"github.com/draftwright/draftwright/internal/db"
	"github.com/draftwright/draftwright/internal/metrics"
	tlog "github.com/draftwright/draftwright/internal/temporal"
	"github.com/draftwright/draftwright/internal/workflows"
)

type server struct {
	temporal client.Client
	store    *db.Store // nil when no database is configured
	cfg      *config.Config
	logger   *zap.Logger
}

type startRequest struct {
	Topic string `json:"topic"`
	AsOf  string `json:"as_of,omitempty"`
}

type startResponse struct {
	RunID      string `json:"run_id"`
	WorkflowID string `json:"workflow_id"`
}

type statusResponse struct {
	RunID  string                `json:"run_id"`
	Status string                `json:"status"`
	Result *workflows.BlogResult `json:"result,omitempty"`
	Error  string                `json:"error,omitempty"`
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewZapAdapter(logger),
	})
	if err != nil {
		logger.Fatal("Failed to connect to Temporal", zap.Error(err))
	}
	defer temporalClient.Close()

	var store *db.Store
	if cfg.Database.Enabled {
		store, err = db.Open(cfg.Database.DSN, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer store.Close()
	}

	s := &server{temporal: temporalClient, store: store, cfg: cfg, logger: logger}

	r := mux.NewRouter()
	r.Use(s.instrument)
	r.HandleFunc("/api/v1/blogs", s.handleStart).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/blogs", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/blogs/{id}", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/blogs/{id}/download", s.handleDownload).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	port := 8080
	if v := os.Getenv("GATEWAY_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			port = p
		}
	}
	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Gateway listening", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Gateway server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown incomplete", zap.Error(err))
	}
}

func (s *server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Topic == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}

	runID := uuid.NewString()
	workflowID := "blog-" + runID
	_, err := s.temporal.ExecuteWorkflow(r.Context(), client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: s.cfg.Temporal.TaskQueue,
	}, workflows.BlogWorkflow, workflows.BlogInput{
		Topic:                 req.Topic,
		AsOf:                  req.AsOf,
		RunID:                 runID,
		MaxConcurrentSections: s.cfg.Workflow.MaxConcurrentSections,
		SectionTimeoutSeconds: int(s.cfg.Workflow.SectionTimeout.Seconds()),
		StageTimeoutSeconds:   int(s.cfg.Workflow.StageTimeout.Seconds()),
	})
	if err != nil {
		s.logger.Error("Failed to start workflow", zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to start blog run")
		return
	}

	s.logger.Info("Blog run started",
		zap.String("run_id", runID),
		zap.String("topic", req.Topic),
	)
	writeJSON(w, http.StatusAccepted, startResponse{RunID: runID, WorkflowID: workflowID})
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]
	workflowID := "blog-" + runID

	desc, err := s.temporal.DescribeWorkflowExecution(r.Context(), workflowID, "")
	if err != nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}

	status := desc.WorkflowExecutionInfo.Status
	resp := statusResponse{
		RunID:  runID,
		Status: statusLabel(status),
	}
	switch status {
	case enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED:
		var result workflows.BlogResult
		if err := s.temporal.GetWorkflow(r.Context(), workflowID, "").Get(r.Context(), &result); err == nil {
			resp.Result = &result
		}
	case enumspb.WORKFLOW_EXECUTION_STATUS_FAILED,
		enumspb.WORKFLOW_EXECUTION_STATUS_TERMINATED,
		enumspb.WORKFLOW_EXECUTION_STATUS_TIMED_OUT:
		if err := s.temporal.GetWorkflow(r.Context(), workflowID, "").Get(r.Context(), nil); err != nil {
			resp.Error = err.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "run history requires a database")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

func (s *server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "downloads require a database")
		return
	}
	run, err := s.store.GetRun(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	path := run.MarkdownPath
	if r.URL.Query().Get("format") == "zip" {
		path = run.ArchivePath
		w.Header().Set("Content-Type", "application/zip")
	} else {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	}
	http.ServeFile(w, r, path)
}

// instrument records one counter increment per request with the matched
// route template, not the raw path, to keep label cardinality bounded.
func (s *server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		metrics.HTTPRequestsTotal.WithLabelValues(
			r.Method, route, strconv.Itoa(rec.status),
		).Inc()
	})
}

// statusLabel converts the wire enum into the lowercase status the API
// reports.
func statusLabel(s enumspb.WorkflowExecutionStatus) string {
	switch s {
	case enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING:
		return "running"
	case enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED:
		return "completed"
	case enumspb.WORKFLOW_EXECUTION_STATUS_FAILED:
		return "failed"
	case enumspb.WORKFLOW_EXECUTION_STATUS_CANCELED:
		return "canceled"
	case enumspb.WORKFLOW_EXECUTION_STATUS_TERMINATED:
		return "terminated"
	case enumspb.WORKFLOW_EXECUTION_STATUS_CONTINUED_AS_NEW:
		return "continued_as_new"
	case enumspb.WORKFLOW_EXECUTION_STATUS_TIMED_OUT:
		return "timed_out"
	default:
		return "unknown"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
