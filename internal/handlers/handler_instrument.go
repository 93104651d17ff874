package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/idafleet/fleet-ledger/internal/core/domain"
	portssvc "github.com/idafleet/fleet-ledger/internal/core/ports/services"
	"github.com/idafleet/fleet-ledger/internal/dto"
	"github.com/idafleet/fleet-ledger/internal/middleware"
)

// instrumentHandler handles HTTP requests related to debt instruments.
type instrumentHandler struct {
	reconciliationService portssvc.ReconciliationSvcFacade
}

// newInstrumentHandler creates a new instrumentHandler.
func newInstrumentHandler(rs portssvc.ReconciliationSvcFacade) *instrumentHandler {
	return &instrumentHandler{
		reconciliationService: rs,
	}
}

// registerInstrumentRoutes registers routes related to debt instruments.
func registerInstrumentRoutes(rg *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvcFacade) {
	h := newInstrumentHandler(reconciliationService)

	instruments := rg.Group("/instruments")
	{
		instruments.POST("", h.createInstrument)
		instruments.GET("", h.listInstruments)
		instruments.GET("/:type/:id", h.getInstrument)
		instruments.GET("/:type/:id/snapshot", h.getSnapshot)
		instruments.GET("/:type/:id/payments", h.listPayments)
	}
}

// instrumentRefFromPath builds the typed reference from the :type/:id path
// segments. Type is case-insensitive in the URL.
func instrumentRefFromPath(c *gin.Context) (domain.InstrumentRef, bool) {
	instrumentType := domain.InstrumentType(strings.ToUpper(c.Param("type")))
	if !instrumentType.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown instrument type: " + c.Param("type")})
		return domain.InstrumentRef{}, false
	}
	return domain.InstrumentRef{Type: instrumentType, ID: c.Param("id")}, true
}

// createInstrument creates a debt instrument in its initial status.
func (h *instrumentHandler) createInstrument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateInstrumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateInstrument", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	operatorID, ok := middleware.GetOperatorIDFromContext(c)
	if !ok {
		logger.Error("Operator ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("operator_id", operatorID), slog.String("type", string(req.Type)))
	logger.Info("Received request to create instrument")

	created, err := h.reconciliationService.CreateInstrument(c.Request.Context(), req, operatorID)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Instrument created", slog.String("instrument_id", created.InstrumentID))
	c.JSON(http.StatusCreated, dto.ToInstrumentResponse(created))
}

// listInstruments lists all instruments of the variant named by ?type=.
func (h *instrumentHandler) listInstruments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	instrumentType := domain.InstrumentType(strings.ToUpper(c.Query("type")))

	instruments, err := h.reconciliationService.ListInstruments(c.Request.Context(), instrumentType)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"instruments": dto.ToListInstrumentResponse(instruments)})
}

// getInstrument returns the full instrument record.
func (h *instrumentHandler) getInstrument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ref, ok := instrumentRefFromPath(c)
	if !ok {
		return
	}

	instrument, err := h.reconciliationService.GetInstrument(c.Request.Context(), ref)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToInstrumentResponse(instrument))
}

// getSnapshot returns the derived balance view, recomputed from the full
// payment history on every call.
func (h *instrumentHandler) getSnapshot(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ref, ok := instrumentRefFromPath(c)
	if !ok {
		return
	}

	snapshot, err := h.reconciliationService.GetSnapshot(c.Request.Context(), ref)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSnapshotResponse(snapshot))
}

// listPayments returns the payment page for one instrument, newest first.
func (h *instrumentHandler) listPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ref, ok := instrumentRefFromPath(c)
	if !ok {
		return
	}

	var params dto.ListPaymentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	page, err := h.reconciliationService.ListPayments(c.Request.Context(), ref, params)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
