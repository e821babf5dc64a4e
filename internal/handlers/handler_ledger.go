package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tallyfin/tally/internal/apperrors"
	"github.com/tallyfin/tally/internal/core/domain"
	portssvc "github.com/tallyfin/tally/internal/core/ports/services"
	"github.com/tallyfin/tally/internal/dto"
	"github.com/tallyfin/tally/internal/middleware"
	"github.com/tallyfin/tally/internal/utils"
)

// ledgerHandler handles HTTP requests related to ledger entries and balances.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
	guardService  portssvc.GuardSvcFacade
	precision     int
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(ls portssvc.LedgerSvcFacade, gs portssvc.GuardSvcFacade, precision int) *ledgerHandler {
	return &ledgerHandler{
		ledgerService: ls,
		guardService:  gs,
		precision:     precision,
	}
}

// registerLedgerRoutes registers routes related to ledger mutation and reads.
func registerLedgerRoutes(rg *gin.RouterGroup, ls portssvc.LedgerSvcFacade, gs portssvc.GuardSvcFacade, precision int) {
	h := newLedgerHandler(ls, gs, precision)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("/:accountID/credit", h.credit)
		accounts.POST("/:accountID/debit", h.debit)
		accounts.GET("/:accountID/balance", h.getBalance)
		accounts.GET("/:accountID/entries", h.getEntries)
	}
	rg.GET("/ledger/stats", h.getStats)
}

// credit godoc
// @Summary Credit an account
// @Description Records a positive balance adjustment for an account/asset pair. Owner only.
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   accountID path string true "Account identifier"
// @Param   adjustment body dto.AdjustmentRequest true "Adjustment details"
// @Success 201 {object} dto.AdjustmentResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Caller is not the owner"
// @Security BearerAuth
// @Router /accounts/{accountID}/credit [post]
func (h *ledgerHandler) credit(c *gin.Context) {
	h.adjust(c, false)
}

// debit godoc
// @Summary Debit an account
// @Description Records a negative balance adjustment for an account/asset pair. Owner only.
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   accountID path string true "Account identifier"
// @Param   adjustment body dto.AdjustmentRequest true "Adjustment details"
// @Success 201 {object} dto.AdjustmentResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Caller is not the owner"
// @Security BearerAuth
// @Router /accounts/{accountID}/debit [post]
func (h *ledgerHandler) debit(c *gin.Context) {
	h.adjust(c, true)
}

func (h *ledgerHandler) adjust(c *gin.Context, isDebit bool) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	account := c.Param("accountID")

	var req dto.AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for adjustment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	caller, ok := middleware.GetCallerFromCtx(c.Request.Context())
	if !ok {
		logger.Error("Caller principal not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// The clock is supplied here, at the system boundary; the core never
	// reads wall time itself.
	now := time.Now().UTC()
	asset := domain.AssetCodeFor(req.Asset)

	var adjustFn = h.ledgerService.Credit
	if isDebit {
		adjustFn = h.ledgerService.Debit
	}

	entry, newBalance, err := adjustFn(c.Request.Context(), caller, account, asset, req.Amount, req.Note, now)
	if err != nil {
		h.renderAdjustError(c, logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.AdjustmentResponse{
		Account:           account,
		Entry:             dto.ToEntryResponse(entry, h.precision),
		NewBalance:        newBalance,
		NewBalanceDisplay: utils.FormatMinorUnits(newBalance, h.precision),
	})
}

func (h *ledgerHandler) renderAdjustError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotOwner):
		logger.Warn("Privileged ledger call rejected", slog.String("error", err.Error()))
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidAccount),
		errors.Is(err, apperrors.ErrInvalidAsset),
		errors.Is(err, apperrors.ErrInvalidAmount):
		logger.Warn("Invalid ledger adjustment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("Failed to record ledger adjustment", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record adjustment"})
	}
}

// getBalance godoc
// @Summary Get the balance for an account/asset pair
// @Description Returns the current balance; zero if the pair was never touched.
// @Tags ledger
// @Produce  json
// @Param   accountID path string true "Account identifier"
// @Param   asset query string true "Human-readable asset name"
// @Success 200 {object} dto.BalanceResponse
// @Failure 400 {object} map[string]string "Missing asset"
// @Security BearerAuth
// @Router /accounts/{accountID}/balance [get]
func (h *ledgerHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	account := c.Param("accountID")

	assetName := c.Query("asset")
	if assetName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "asset is a mandatory query parameter"})
		return
	}
	asset := domain.AssetCodeFor(assetName)

	balance, err := h.ledgerService.Balance(c.Request.Context(), account, asset)
	if err != nil {
		logger.Error("Failed to query balance", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query balance"})
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		Account:        account,
		Asset:          assetName,
		AssetCode:      asset.String(),
		Balance:        balance,
		BalanceDisplay: utils.FormatMinorUnits(balance, h.precision),
	})
}

// getEntries godoc
// @Summary Get the entry log for an account
// @Description Returns the account's entries in creation order; empty when none.
// @Tags ledger
// @Produce  json
// @Param   accountID path string true "Account identifier"
// @Success 200 {object} dto.EntriesResponse
// @Security BearerAuth
// @Router /accounts/{accountID}/entries [get]
func (h *ledgerHandler) getEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	account := c.Param("accountID")

	entries, err := h.ledgerService.Entries(c.Request.Context(), account)
	if err != nil {
		logger.Error("Failed to query entries", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query entries"})
		return
	}

	c.JSON(http.StatusOK, dto.EntriesResponse{
		Account: account,
		Entries: dto.ToEntryResponses(entries, h.precision),
	})
}

// getStats godoc
// @Summary Get ledger diagnostics
// @Description Returns the global entry counter and the current owner principal.
// @Tags ledger
// @Produce  json
// @Success 200 {object} dto.StatsResponse
// @Security BearerAuth
// @Router /ledger/stats [get]
func (h *ledgerHandler) getStats(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	count, err := h.ledgerService.EntryCount(c.Request.Context())
	if err != nil {
		logger.Error("Failed to query entry count", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query entry count"})
		return
	}

	c.JSON(http.StatusOK, dto.StatsResponse{
		EntryCount: count,
		Owner:      h.guardService.Owner(),
	})
}
