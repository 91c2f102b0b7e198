package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"dinehalal/internal/restaurants"
	"dinehalal/internal/verification"
	"dinehalal/internal/votes"
	"dinehalal/pkg/platform/httputil"
)

// Service defines the interface for verification operations.
type Service interface {
	Verify(ctx context.Context, r restaurants.Restaurant) verification.VerificationResult
	VerifyAll(ctx context.Context, rs []restaurants.Restaurant) map[string]verification.VerificationResult
	Upvote(ctx context.Context, placeID string) (verification.VerificationResult, error)
	Downvote(ctx context.Context, placeID string) (verification.VerificationResult, error)
	Votes(ctx context.Context, placeID string) (votes.VoteData, error)
}

// Handler wires verification endpoints to the engine.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a verification handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts verification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/verify", h.HandleVerify)
	r.Post("/verify/batch", h.HandleVerifyBatch)
	r.Post("/restaurants/{placeID}/upvote", h.HandleUpvote)
	r.Post("/restaurants/{placeID}/downvote", h.HandleDownvote)
	r.Get("/restaurants/{placeID}/votes", h.HandleVotes)
}

// HandleVerify handles POST /verify requests.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	var req VerifyRequest
	if !httputil.DecodeJSON(w, r, h.logger, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	result := h.service.Verify(ctx, req.Restaurant())

	h.logger.InfoContext(ctx, "restaurant verified",
		"place_id", req.PlaceID,
		"verified", result.IsVerified,
		"source", result.Source,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleVerifyBatch handles POST /verify/batch requests.
func (h *Handler) HandleVerifyBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	var req BatchVerifyRequest
	if !httputil.DecodeJSON(w, r, h.logger, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	results := h.service.VerifyAll(ctx, req.Restaurants())

	h.logger.InfoContext(ctx, "batch verified",
		"batch_size", len(req),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, results)
}

// HandleUpvote handles POST /restaurants/{placeID}/upvote requests.
func (h *Handler) HandleUpvote(w http.ResponseWriter, r *http.Request) {
	h.handleVote(w, r, h.service.Upvote, "upvote")
}

// HandleDownvote handles POST /restaurants/{placeID}/downvote requests.
func (h *Handler) HandleDownvote(w http.ResponseWriter, r *http.Request) {
	h.handleVote(w, r, h.service.Downvote, "downvote")
}

func (h *Handler) handleVote(
	w http.ResponseWriter,
	r *http.Request,
	vote func(context.Context, string) (verification.VerificationResult, error),
	kind string,
) {
	ctx := r.Context()

	placeID := chi.URLParam(r, "placeID")
	if placeID == "" {
		httputil.WriteBadRequest(w, "placeID is required")
		return
	}

	result, err := vote(ctx, placeID)
	if err != nil {
		h.logger.ErrorContext(ctx, "vote failed",
			"place_id", placeID,
			"kind", kind,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "vote recorded",
		"place_id", placeID,
		"kind", kind,
		"verified", result.IsVerified,
		"source", result.Source,
	)

	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleVotes handles GET /restaurants/{placeID}/votes requests.
func (h *Handler) HandleVotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	placeID := chi.URLParam(r, "placeID")
	if placeID == "" {
		httputil.WriteBadRequest(w, "placeID is required")
		return
	}

	tally, err := h.service.Votes(ctx, placeID)
	if err != nil {
		h.logger.ErrorContext(ctx, "vote lookup failed",
			"place_id", placeID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, tally)
}
