// Package server exposes formula evaluation over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/zephyrtronium/formula"
	"github.com/zephyrtronium/formula/internal/logging"
	"github.com/zephyrtronium/formula/sheet"
)

// Options configures a Server.
type Options struct {
	// Columns and Rows are the dimensions of the sheet built for each request.
	Columns, Rows int
	// MaxBodyBytes limits request bodies.
	MaxBodyBytes int64
	// LogHandler receives evaluator debug logs. If nil, they are discarded.
	LogHandler slog.Handler
}

// Server handles evaluation requests. Each request gets its own sheet and
// evaluator, so a Server is safe for concurrent use.
type Server struct {
	opts   Options
	router chi.Router
}

// New creates a server with its routes installed.
func New(opts Options) *Server {
	s := &Server{opts: opts}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/evaluate", s.handleEvaluate)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// CellRequest defines one cell of the request sheet.
type CellRequest struct {
	Label   string   `json:"label"`
	Formula []string `json:"formula"`
}

// EvaluateRequest is the body of POST /v1/evaluate. Cells are computed in
// order before the formula is evaluated.
type EvaluateRequest struct {
	Cells   []CellRequest `json:"cells"`
	Formula []string      `json:"formula"`
}

// EvaluateResponse is the result of POST /v1/evaluate. Result is omitted when
// the evaluation failed or produced a value JSON cannot represent.
type EvaluateResponse struct {
	ID      string   `json:"id"`
	Result  *float64 `json:"result,omitempty"`
	Message string   `json:"message"`
	Display string   `json:"display"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	id := uuid.New().String()
	logger := logging.FromContext(r.Context()).With("eval_id", id)
	start := time.Now()

	var req EvaluateRequest
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		status := http.StatusBadRequest
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			status = http.StatusRequestEntityTooLarge
		}
		logger.Warn("bad request body", "error", err)
		writeJSON(w, status, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	sh := sheet.New(s.opts.Columns, s.opts.Rows)
	e := formula.NewEvaluator(sh, formula.LogHandler(s.opts.LogHandler))
	for _, c := range req.Cells {
		if err := sh.Set(c.Label, c.Formula); err != nil {
			logger.Warn("bad cell", "label", c.Label, "error", err)
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		if err := sh.Compute(c.Label, e); err != nil {
			// Set already validated the label.
			panic(err)
		}
	}

	e.Evaluate(req.Formula)
	resp := EvaluateResponse{
		ID:      id,
		Message: e.Message(),
	}
	if resp.Message != "" {
		resp.Display = formula.Display(resp.Message)
	} else if v := e.Result(); !math.IsInf(v, 0) && !math.IsNaN(v) {
		resp.Result = &v
	}
	logger.Info("evaluated",
		"cells", len(req.Cells),
		"tokens", len(req.Formula),
		"message", resp.Message,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
