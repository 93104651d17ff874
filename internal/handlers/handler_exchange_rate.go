package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	portssvc "github.com/idafleet/fleet-ledger/internal/core/ports/services"
	"github.com/idafleet/fleet-ledger/internal/dto"
	"github.com/idafleet/fleet-ledger/internal/middleware"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateSvcFacade
}

// newExchangeRateHandler creates a new exchangeRateHandler.
func newExchangeRateHandler(ers portssvc.ExchangeRateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{
		exchangeRateService: ers,
	}
}

// registerExchangeRateRoutes registers routes related to exchange rates.
func registerExchangeRateRoutes(rg *gin.RouterGroup, exchangeRateService portssvc.ExchangeRateSvcFacade) {
	h := newExchangeRateHandler(exchangeRateService)

	exchangeRates := rg.Group("/exchange-rates")
	{
		exchangeRates.POST("", h.setExchangeRate)
		exchangeRates.GET("", h.listExchangeRates)
		exchangeRates.GET("/active", h.getActiveRatesMap)
		exchangeRates.GET("/convert", h.convertAmount)
	}
}

// setExchangeRate activates a new rate for an ordered currency pair,
// deactivating the previously active rate for that pair.
func (h *exchangeRateHandler) setExchangeRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SetExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetExchangeRate", slog.String("error", err.Error()))
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
	logger.Info("Received request to set exchange rate",
		slog.String("from", req.FromCurrencyCode),
		slog.String("to", req.ToCurrencyCode),
		slog.Any("rate", req.Rate),
	)

	activated, err := h.exchangeRateService.SetRate(c.Request.Context(), req, operatorID)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Exchange rate activated", slog.String("rate_id", activated.ExchangeRateID))
	c.JSON(http.StatusCreated, dto.ToExchangeRateResponse(activated))
}

// listExchangeRates returns rate history pages, optionally filtered to one pair.
func (h *exchangeRateHandler) listExchangeRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListExchangeRatesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	page, err := h.exchangeRateService.ListExchangeRates(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// getActiveRatesMap returns every active rate as {from: {to: rate}}.
func (h *exchangeRateHandler) getActiveRatesMap(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	rates, err := h.exchangeRateService.ActiveRatesMap(c.Request.Context())
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rates": rates})
}

// convertAmount converts an amount between two currencies using the active
// rate graph. An unresolvable pair is a 404, never a silent identity rate.
func (h *exchangeRateHandler) convertAmount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	from := c.Query("from")
	to := c.Query("to")
	rawAmount := c.Query("amount")
	if len(from) != 3 || len(to) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Currency codes must be 3 letters"})
		return
	}
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount: " + rawAmount})
		return
	}

	converted, err := h.exchangeRateService.Convert(c.Request.Context(), amount, from, to)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ConvertedAmountResponse{
		Amount:           amount,
		FromCurrencyCode: from,
		ToCurrencyCode:   to,
		Converted:        converted,
	})
}
