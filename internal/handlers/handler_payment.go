package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/idafleet/fleet-ledger/internal/core/ports/services"
	"github.com/idafleet/fleet-ledger/internal/dto"
	"github.com/idafleet/fleet-ledger/internal/middleware"
)

// paymentHandler handles HTTP requests related to repayments.
type paymentHandler struct {
	reconciliationService portssvc.ReconciliationSvcFacade
}

// newPaymentHandler creates a new paymentHandler.
func newPaymentHandler(rs portssvc.ReconciliationSvcFacade) *paymentHandler {
	return &paymentHandler{
		reconciliationService: rs,
	}
}

// registerPaymentRoutes registers routes related to repayments.
func registerPaymentRoutes(rg *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvcFacade) {
	h := newPaymentHandler(reconciliationService)

	payments := rg.Group("/payments")
	{
		payments.POST("", h.recordPayment)
	}
}

// recordPayment records a repayment against exactly one instrument and returns
// the instrument's post-payment snapshot.
func (h *paymentHandler) recordPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	operatorID, ok := middleware.GetOperatorIDFromContext(c)
	if !ok {
		logger.Error("Operator ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("operator_id", operatorID))
	logger.Info("Received request to record payment", slog.Any("amount", req.Amount))

	snapshot, err := h.reconciliationService.RecordPayment(c.Request.Context(), req, operatorID)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Payment recorded",
		slog.String("instrument_id", snapshot.InstrumentID),
		slog.String("status", string(snapshot.Status)),
	)
	c.JSON(http.StatusCreated, dto.ToSnapshotResponse(snapshot))
}
