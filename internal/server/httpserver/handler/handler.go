package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/yndnr/atomstore/internal/telemetry/logger"
	"github.com/yndnr/atomstore/pkg/atom"
	"github.com/yndnr/atomstore/pkg/atom/middleware"
	"github.com/yndnr/atomstore/pkg/cmap"
	"github.com/yndnr/atomstore/pkg/storage"
)

// maxBodyBytes bounds PUT request bodies.
const maxBodyBytes = 1 << 20

// Config holds the handler's dependencies.
type Config struct {
	// Resolver and Target select the adapter every atom is created on.
	Resolver *storage.Resolver
	Target   storage.Target

	// Limiter, when set, is shared by every atom as a "set" guard. It is
	// added after construction, so seeding an atom spends no token.
	Limiter *rate.Limiter

	// Metrics, when set, is passed to every atom.
	Metrics *atom.Metrics

	Logger *slog.Logger
}

// Handler serves the atom API. Atoms are created on first use and kept
// for the life of the handler, so subscribers and middleware persist
// across requests.
type Handler struct {
	cfg   Config
	atoms *cmap.Map[*atom.Atom[any]]
	mux   *http.ServeMux
}

// New creates a Handler.
func New(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	h := &Handler{
		cfg:   cfg,
		atoms: cmap.New[*atom.Atom[any]](),
		mux:   http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /healthz", h.handleHealth)

	h.mux.HandleFunc("GET /v1/atoms/{key}", h.handleGetAtom)
	h.mux.HandleFunc("PUT /v1/atoms/{key}", h.handleSetAtom)
	h.mux.HandleFunc("POST /v1/atoms/{key}/reset", h.handleResetAtom)
}

// Atoms returns the keys of the atoms created so far, sorted.
func (h *Handler) Atoms() []string {
	return h.atoms.Keys("")
}

// atomFor returns the atom for key, creating it with initial when absent.
// A concurrent creator may win the race; its atom is used and ours is
// dropped. Both seeded the same slot, and seeding never overwrites.
func (h *Handler) atomFor(key string, initial any) (*atom.Atom[any], error) {
	if a, ok := h.atoms.Get(key); ok {
		return a, nil
	}

	a, err := atom.NewFromTarget(h.cfg.Resolver, h.cfg.Target, atom.Options[any]{
		Key:        key,
		Initial:    initial,
		Middleware: []atom.Middleware[any]{middleware.Log[any](h.cfg.Logger)},
		Logger:     h.cfg.Logger,
		Metrics:    h.cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	if h.cfg.Limiter != nil {
		a.AddMiddleware(middleware.RateLimit[any](h.cfg.Limiter))
	}

	if !h.atoms.SetIfAbsent(key, a) {
		if existing, ok := h.atoms.Get(key); ok {
			return existing, nil
		}
	}
	return a, nil
}

// initialParam decodes the optional ?initial=<json> query parameter.
func initialParam(r *http.Request) (any, error) {
	raw := r.URL.Query().Get("initial")
	if raw == "" {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := logger.RequestIDFromContext(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(NewResponse(requestID, data)); err != nil {
		h.cfg.Logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	requestID := logger.RequestIDFromContext(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(NewErrorResponse(requestID, code, message))
}

// writeAtomError maps an atom failure to a status code.
func (h *Handler) writeAtomError(w http.ResponseWriter, r *http.Request, err error) {
	code := atom.Code(err)
	if code == "" {
		code = CodeInternal
	}

	var status int
	switch {
	case errors.Is(err, middleware.ErrRateLimited):
		w.Header().Set("Retry-After", "1")
		status, code = http.StatusTooManyRequests, CodeRateLimited
	case errors.Is(err, atom.ErrMiddleware):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, atom.ErrDecode), errors.Is(err, atom.ErrEncode), errors.Is(err, atom.ErrEmptyKey):
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		logger.L(r.Context()).Error("atom operation failed", "error", err)
	}
	h.writeError(w, r, status, code, err.Error())
}
