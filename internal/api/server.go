// Package api serves suiql over HTTP.
//
// Routes:
//
//	POST /v1/query           text/plain body, JSON outcomes per expression
//	GET  /v1/fields          every entity with its field names
//	GET  /v1/fields/{entity} field names of one entity
//	GET  /healthz            liveness
//
// /v1 routes are rate limited per client address.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/compiler"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/engine"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/result"
)

// DefaultMaxBodyBytes caps the size of a query body.
const DefaultMaxBodyBytes = 1 << 20

// Runner executes a query program. *engine.Engine satisfies it.
type Runner interface {
	RunEach(ctx context.Context, source string) (*engine.Report, error)
}

// Options configures the handler.
type Options struct {
	// RateLimit is requests per second per client; 0 disables limiting.
	RateLimit    float64
	Burst        int
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// QueryResponse is the body of a successful POST /v1/query.
type QueryResponse struct {
	RunID    string    `json:"run_id"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome is one expression's rows or its error.
type Outcome struct {
	Result result.ExpressionResult `json:"result,omitempty"`
	Error  *ErrorBody              `json:"error,omitempty"`
}

// ErrorBody is the JSON error shape used by every route.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type server struct {
	runner  Runner
	maxBody int64
	logger  *slog.Logger
}

// NewHandler returns the router serving runner.
func NewHandler(runner Runner, opts Options) http.Handler {
	s := &server{runner: runner, maxBody: opts.MaxBodyBytes, logger: opts.Logger}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		if opts.RateLimit > 0 {
			r.Use(RateLimiter(RateLimitConfig{RequestsPerSecond: opts.RateLimit, Burst: opts.Burst}))
		}
		r.Post("/query", s.query)
		r.Get("/fields", s.allFields)
		r.Get("/fields/{entity}", s.entityFields)
	})
	return r
}

func (s *server) query(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "BAD_BODY", err.Error())
		return
	}
	source := string(body)
	if strings.TrimSpace(source) == "" {
		writeError(w, http.StatusBadRequest, string(compiler.ErrEmptyProgram), "empty query")
		return
	}

	report, err := s.runner.RunEach(r.Context(), source)
	if err != nil {
		status := http.StatusInternalServerError
		var pe *compiler.ParseError
		if errors.As(err, &pe) {
			status = http.StatusBadRequest
		}
		writeError(w, status, engine.Code(err), err.Error())
		return
	}

	resp := QueryResponse{RunID: report.RunID, Outcomes: make([]Outcome, len(report.Outcomes))}
	for i, o := range report.Outcomes {
		if o.Err != nil {
			resp.Outcomes[i].Error = &ErrorBody{Code: engine.Code(o.Err), Message: o.Err.Error()}
			continue
		}
		resp.Outcomes[i].Result = o.Result.Result
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) allFields(w http.ResponseWriter, _ *http.Request) {
	out := make(map[string][]string)
	for _, kind := range ir.AllEntityKinds() {
		out[kind.String()] = ir.FieldNames(kind)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) entityFields(w http.ResponseWriter, r *http.Request) {
	kind, err := ir.ParseEntityKind(chi.URLParam(r, "entity"))
	if err != nil {
		writeError(w, http.StatusNotFound, string(compiler.ErrInvalidEntity), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ir.FieldNames(kind))
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorBody{Code: code, Message: message})
}
