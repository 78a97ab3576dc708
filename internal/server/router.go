package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/novaapay/banking-core/internal/server/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(logger *slog.Logger, r *gin.Engine, h Handlers) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Login verification challenge
		auth := v1.Group("/auth")
		{
			auth.POST("/otp/send", h.Auth.SendCode)
			auth.POST("/otp/verify", h.Auth.VerifyCode)
		}

		// Account operations
		accounts := v1.Group("/accounts")
		{
			accounts.POST("", h.Account.Create)
			accounts.GET("/:id", h.Account.GetByID)
			accounts.GET("/:id/transactions", h.Transaction.GetByAccountID)

			accounts.POST("/:id/pin", h.Pin.Setup)
			accounts.POST("/:id/pin/verify", h.Pin.Verify)

			accounts.POST("/:id/savings", h.Savings.Create)
			accounts.GET("/:id/savings", h.Savings.List)
		}

		// Savings goal operations
		savings := v1.Group("/savings")
		{
			savings.POST("/:id/funds", h.Savings.AddFunds)
			savings.POST("/:id/withdraw", h.Savings.Withdraw)
		}

		// Money movement
		transfers := v1.Group("/transfers")
		{
			transfers.POST("/send", h.Transfer.Send)
			transfers.POST("/add", h.Transfer.Add)
			transfers.POST("/request", h.Transfer.Request)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
