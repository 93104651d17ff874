package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/idafleet/fleet-ledger/internal/core/domain"
	portssvc "github.com/idafleet/fleet-ledger/internal/core/ports/services"
	"github.com/idafleet/fleet-ledger/internal/middleware"
	"github.com/idafleet/fleet-ledger/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	registerCustomValidators()

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Every ledger mutation is attributed to the operator named in the
	// request header, so the whole v1 group requires it.
	v1 := r.Group("/api/v1", middleware.IdentityMiddleware())

	registerExchangeRateRoutes(v1, services.ExchangeRate)
	registerInstrumentRoutes(v1, services.Reconciliation)
	registerPaymentRoutes(v1, services.Reconciliation)
}

// registerCustomValidators adds ledger-specific binding validators.
func registerCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("instrumenttype", func(fl validator.FieldLevel) bool {
		return domain.InstrumentType(fl.Field().String()).IsValid()
	})
}
