package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tallyfin/tally/internal/apperrors"
	portssvc "github.com/tallyfin/tally/internal/core/ports/services"
	"github.com/tallyfin/tally/internal/dto"
	"github.com/tallyfin/tally/internal/middleware"
)

// ownerHandler handles HTTP requests related to ledger ownership.
type ownerHandler struct {
	guardService portssvc.GuardSvcFacade
}

// newOwnerHandler creates a new ownerHandler.
func newOwnerHandler(gs portssvc.GuardSvcFacade) *ownerHandler {
	return &ownerHandler{guardService: gs}
}

// registerOwnerRoutes registers routes related to ownership.
func registerOwnerRoutes(rg *gin.RouterGroup, gs portssvc.GuardSvcFacade) {
	h := newOwnerHandler(gs)

	owner := rg.Group("/owner")
	{
		owner.GET("", h.getOwner)
		owner.POST("/transfer", h.transferOwnership)
	}
}

// getOwner godoc
// @Summary Get the current owner
// @Description Returns the principal currently authorized to mutate the ledger.
// @Tags owner
// @Produce  json
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /owner [get]
func (h *ownerHandler) getOwner(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"owner": h.guardService.Owner()})
}

// transferOwnership godoc
// @Summary Transfer ledger ownership
// @Description Atomically hands the owner slot to another principal. Owner only.
// @Tags owner
// @Accept  json
// @Produce  json
// @Param   transfer body dto.TransferOwnershipRequest true "New owner principal"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Invalid new owner"
// @Failure 403 {object} map[string]string "Caller is not the owner"
// @Security BearerAuth
// @Router /owner/transfer [post]
func (h *ownerHandler) transferOwnership(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.TransferOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ownership transfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	caller, ok := middleware.GetCallerFromCtx(c.Request.Context())
	if !ok {
		logger.Error("Caller principal not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.guardService.TransferOwnership(c.Request.Context(), caller, req.NewOwner); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotOwner):
			logger.Warn("Ownership transfer rejected", slog.String("error", err.Error()))
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInvalidAccount):
			logger.Warn("Invalid new owner for transfer", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to transfer ownership", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to transfer ownership"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"owner": req.NewOwner})
}
