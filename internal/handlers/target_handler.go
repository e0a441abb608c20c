// Package handlers implements the HTTP handlers of the target API.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sebasr/target-manager/internal/middleware"
	"github.com/sebasr/target-manager/internal/models"
	"github.com/sebasr/target-manager/internal/repository"
)

// TargetHandler handles target CRUD requests
type TargetHandler struct {
	repo  repository.TargetRepository
	log   *logrus.Logger
	newID func() string
}

// NewTargetHandler creates a new target handler
func NewTargetHandler(repo repository.TargetRepository, log *logrus.Logger) *TargetHandler {
	RegisterValidators()
	return &TargetHandler{
		repo:  repo,
		log:   log,
		newID: uuid.NewString,
	}
}

// List returns every target
// GET /api/v1/targets
func (h *TargetHandler) List(c *gin.Context) {
	targets, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger(c).WithError(err).Error("failed to list targets")
		respondInternal(c)
		return
	}

	out := make([]models.Target, len(targets))
	for i, t := range targets {
		out[i] = *t
	}
	c.JSON(http.StatusOK, out)
}

// Get returns one target
// GET /api/v1/targets/:id
func (h *TargetHandler) Get(c *gin.Context) {
	id := c.Param("id")

	target, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleRepoError(c, err, "failed to get target")
		return
	}
	c.JSON(http.StatusOK, target)
}

// Create stores a new target with a server-assigned ID
// POST /api/v1/targets
func (h *TargetHandler) Create(c *gin.Context) {
	var req createTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		message, details := bindingDetails(err)
		h.logger(c).WithField("details", details).Warn("rejected target create")
		respondValidation(c, message, details)
		return
	}

	target := models.NewTarget(h.newID(), req.toModel())
	if err := h.repo.Create(c.Request.Context(), target); err != nil {
		h.logger(c).WithError(err).Error("failed to create target")
		respondInternal(c)
		return
	}

	h.logger(c).WithField("target_id", target.ID).Info("target created")
	c.JSON(http.StatusCreated, target)
}

// Update merges the supplied fields into an existing target
// PUT /api/v1/targets/:id
func (h *TargetHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req updateTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		message, details := bindingDetails(err)
		h.logger(c).WithField("details", details).Warn("rejected target update")
		respondValidation(c, message, details)
		return
	}
	update := req.toModel()
	if !update.HasUpdates() {
		respondValidation(c, "Request body is required", nil)
		return
	}

	ctx := c.Request.Context()
	existing, err := h.repo.GetByID(ctx, id)
	if err != nil {
		h.handleRepoError(c, err, "failed to load target for update")
		return
	}

	merged := update.Apply(*existing)
	if err := merged.Validate(); err != nil {
		respondValidation(c, err.Error(), nil)
		return
	}

	if err := h.repo.Update(ctx, &merged); err != nil {
		h.handleRepoError(c, err, "failed to update target")
		return
	}

	h.logger(c).WithField("target_id", id).Info("target updated")
	c.JSON(http.StatusOK, merged)
}

// Delete removes a target
// DELETE /api/v1/targets/:id
func (h *TargetHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.handleRepoError(c, err, "failed to delete target")
		return
	}

	h.logger(c).WithField("target_id", id).Info("target deleted")
	c.Status(http.StatusNoContent)
}

func (h *TargetHandler) handleRepoError(c *gin.Context, err error, msg string) {
	if errors.Is(err, repository.ErrTargetNotFound) {
		h.logger(c).WithField("target_id", c.Param("id")).Warn("target not found")
		respondNotFound(c)
		return
	}
	h.logger(c).WithError(err).Error(msg)
	respondInternal(c)
}

func (h *TargetHandler) logger(c *gin.Context) *logrus.Entry {
	return h.log.WithField("request_id", middleware.GetRequestID(c))
}
