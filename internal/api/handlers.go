package api

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/jobmate/dedup-service/internal/domain"
	"github.com/jobmate/dedup-service/internal/domain/models"
	"github.com/jobmate/dedup-service/internal/logger"
	"github.com/jobmate/dedup-service/internal/services"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

type dedupRunner interface {
	Run(ctx context.Context, userID int64) (services.RunSummary, error)
}

type overrideService interface {
	Merge(ctx context.Context, canonicalID, duplicateID, userID int64) (*models.JobDuplicate, error)
	Remove(ctx context.Context, canonicalID, duplicateID, userID int64) error
	ListForJob(ctx context.Context, jobID int64) ([]models.JobDuplicate, error)
}

type handlers struct {
	runner    dedupRunner
	overrides overrideService
	limiter   *userRateLimiter
	validate  *validator.Validate
}

func newHandlers(runner dedupRunner, overrides overrideService, runsPerMinute float64) *handlers {
	return &handlers{
		runner:    runner,
		overrides: overrides,
		limiter:   newUserRateLimiter(runsPerMinute),
		validate:  validator.New(),
	}
}

func (h *handlers) runDedup(c fiber.Ctx) error {

	var req runRequest
	if err := c.Bind().Body(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, "malformed request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return failure(c, fiber.StatusBadRequest, err.Error())
	}

	if !h.limiter.Allow(req.UserID) {
		return failure(c, fiber.StatusTooManyRequests, "too many dedup runs for this user, try again later")
	}

	summary, err := h.runner.Run(c.Context(), req.UserID)
	if err != nil {
		return h.mapError(c, err)
	}

	return success(c, fiber.StatusOK, summary)
}

func (h *handlers) mergeJobs(c fiber.Ctx) error {

	var req mergeRequest
	if err := c.Bind().Body(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, "malformed request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return failure(c, fiber.StatusBadRequest, err.Error())
	}

	edge, err := h.overrides.Merge(c.Context(), req.CanonicalJobID, req.DuplicateJobID, req.UserID)
	if err != nil {
		return h.mapError(c, err)
	}

	return success(c, fiber.StatusCreated, toRelationshipResponse(*edge))
}

func (h *handlers) removeRelationship(c fiber.Ctx) error {

	var req mergeRequest
	if err := c.Bind().Body(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, "malformed request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return failure(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.overrides.Remove(c.Context(), req.CanonicalJobID, req.DuplicateJobID, req.UserID); err != nil {
		return h.mapError(c, err)
	}

	return success(c, fiber.StatusOK, nil)
}

func (h *handlers) listDuplicates(c fiber.Ctx) error {

	jobID, err := strconv.ParseInt(c.Params("jobId"), 10, 64)
	if err != nil || jobID <= 0 {
		return failure(c, fiber.StatusBadRequest, "jobId must be a positive integer")
	}

	edges, err := h.overrides.ListForJob(c.Context(), jobID)
	if err != nil {
		return h.mapError(c, err)
	}

	return success(c, fiber.StatusOK, lo.Map(edges, func(edge models.JobDuplicate, _ int) relationshipResponse {
		return toRelationshipResponse(edge)
	}))
}

func (h *handlers) health(c fiber.Ctx) error {
	return success(c, fiber.StatusOK, fiber.Map{"status": "ok"})
}

func (h *handlers) mapError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return failure(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return failure(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return failure(c, fiber.StatusConflict, err.Error())
	default:
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeApi).Errorf("request failed: %v", err)
		return failure(c, fiber.StatusInternalServerError, "internal error")
	}
}
