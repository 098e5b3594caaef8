// Package api exposes the calculator over HTTP and websocket.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/flat-stake/internal/allocator"
	"github.com/yourusername/flat-stake/internal/display"
	"github.com/yourusername/flat-stake/internal/models"
	"github.com/yourusername/flat-stake/internal/share"
)

const maxBodyBytes = 64 << 10

// Allocator computes allocations for request snapshots
type Allocator interface {
	AllocateState(state models.State) (*allocator.Allocation, error)
}

// Checker reports non-blocking warnings about a snapshot
type Checker interface {
	ValidateState(state models.State) []string
}

// Handler contains dependencies for the JSON endpoints
type Handler struct {
	allocator   Allocator
	checker     Checker
	formatter   *display.Formatter
	sharer      *share.Sharer
	validate    *validator.Validate
	logger      *logrus.Logger
	maxOutcomes int
}

// NewHandler creates a new handler
func NewHandler(alloc Allocator, checker Checker, formatter *display.Formatter, sharer *share.Sharer, log *logrus.Logger, maxOutcomes int) *Handler {
	return &Handler{
		allocator:   alloc,
		checker:     checker,
		formatter:   formatter,
		sharer:      sharer,
		validate:    validator.New(),
		logger:      log,
		maxOutcomes: maxOutcomes,
	}
}

// Allocate computes the flat-profit stakes for a budget and odds list
func (h *Handler) Allocate(w http.ResponseWriter, r *http.Request) {
	state, ok := h.decodeState(w, r)
	if !ok {
		return
	}

	result, err := h.allocator.AllocateState(state)
	if err != nil && !errors.Is(err, models.ErrNoResult) {
		h.allocationFailed(w, err)
		return
	}

	resp := AllocateResponse{
		Result: ResultOK,
		View:   h.formatter.Render(state, result, err),
	}
	if h.checker != nil {
		resp.Warnings = h.checker.ValidateState(state)
	}
	if err != nil {
		resp.Result = ResultNone
	} else {
		resp.Allocation = result
	}
	respondJSON(w, http.StatusOK, resp)
}

// Share computes the allocation and composes the share post for it
func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	state, ok := h.decodeState(w, r)
	if !ok {
		return
	}

	result, err := h.allocator.AllocateState(state)
	if errors.Is(err, models.ErrNoResult) {
		respondJSON(w, http.StatusOK, ShareResponse{Result: ResultNone})
		return
	}
	if err != nil {
		h.allocationFailed(w, err)
		return
	}

	post, err := h.sharer.Compose(result)
	if err != nil {
		h.logger.WithError(err).Error("Failed to compose share post")
		respondError(w, http.StatusInternalServerError, "share failed")
		return
	}
	respondJSON(w, http.StatusOK, ShareResponse{Result: ResultOK, Post: &post})
}

func (h *Handler) allocationFailed(w http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrOutOfRange) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.WithError(err).Error("Allocation failed")
	respondError(w, http.StatusInternalServerError, "allocation failed")
}

func (h *Handler) decodeState(w http.ResponseWriter, r *http.Request) (models.State, bool) {
	var req AllocateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return models.State{}, false
	}

	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return models.State{}, false
	}
	if h.maxOutcomes > 0 && len(req.Outcomes) > h.maxOutcomes {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("too many outcomes: %d (max %d)", len(req.Outcomes), h.maxOutcomes))
		return models.State{}, false
	}

	return req.State(), true
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}
