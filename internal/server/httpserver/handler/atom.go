package handler

import (
	"encoding/json"
	"net/http"

	"github.com/yndnr/atomstore/internal/telemetry/logger"
	"github.com/yndnr/atomstore/pkg/atom"
)

// handleGetAtom handles GET /v1/atoms/{key}.
func (h *Handler) handleGetAtom(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	ctx := logger.WithOperation(r.Context(), "atom.get")

	initial, err := initialParam(r)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, CodeBadRequest, "initial must be JSON: "+err.Error())
		return
	}

	a, err := h.atomFor(key, initial)
	if err != nil {
		h.writeAtomError(w, r.WithContext(ctx), err)
		return
	}

	v, err := a.Get()
	if err != nil {
		h.writeAtomError(w, r.WithContext(ctx), err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, AtomView{Key: key, Value: v})
}

// handleSetAtom handles PUT /v1/atoms/{key}. The body is the new value.
func (h *Handler) handleSetAtom(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	ctx := logger.WithOperation(r.Context(), "atom.set")

	var value any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&value); err != nil {
		h.writeError(w, r, http.StatusBadRequest, CodeBadRequest, "body must be a JSON value: "+err.Error())
		return
	}

	initial, err := initialParam(r)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, CodeBadRequest, "initial must be JSON: "+err.Error())
		return
	}

	a, err := h.atomFor(key, initial)
	if err != nil {
		h.writeAtomError(w, r.WithContext(ctx), err)
		return
	}

	v, err := a.Set(atom.Value(value))
	if err != nil {
		h.writeAtomError(w, r.WithContext(ctx), err)
		return
	}

	logger.L(ctx).Debug("atom set", "key", key)
	h.writeJSON(w, r, http.StatusOK, AtomView{Key: key, Value: v})
}

// handleResetAtom handles POST /v1/atoms/{key}/reset.
func (h *Handler) handleResetAtom(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	ctx := logger.WithOperation(r.Context(), "atom.reset")

	initial, err := initialParam(r)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, CodeBadRequest, "initial must be JSON: "+err.Error())
		return
	}

	a, err := h.atomFor(key, initial)
	if err != nil {
		h.writeAtomError(w, r.WithContext(ctx), err)
		return
	}

	v, err := a.Reset()
	if err != nil {
		h.writeAtomError(w, r.WithContext(ctx), err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, AtomView{Key: key, Value: v})
}
