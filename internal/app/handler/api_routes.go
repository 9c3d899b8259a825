package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the admin API. Everything under /api except signin
// needs a session and sees collections that have been loaded at least once.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/ping", h.Ping)

	api := router.Group("/api")

	// ============ Authentication ============
	auth := api.Group("/auth")
	{
		auth.POST("/signin", h.Signin)
		auth.POST("/logout", h.Auth.WithAuthCheck(), h.Logout)
		auth.GET("/profile", h.Auth.WithAuthCheck(), h.Profile)
	}

	admin := api.Group("")
	admin.Use(h.Auth.WithAuthCheck(), h.ensureLoaded)

	admin.GET("/dashboard", h.GetDashboard)
	admin.GET("/notifications", h.GetNotifications)
	admin.GET("/audit", h.GetAudit)

	// ============ Clients ============
	clients := admin.Group("/clients")
	{
		clients.GET("", h.GetClients)
		clients.GET("/:id", h.GetClient)
		clients.POST("", h.CreateClient)
		clients.PUT("/:id", h.UpdateClient)
		clients.DELETE("/:id", h.DeleteClient)
	}

	// ============ Products ============
	products := admin.Group("/products")
	{
		products.GET("", h.GetProducts)
		products.GET("/:id", h.GetProduct)
		products.POST("", h.CreateProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}

	// ============ Subscriptions ============
	subscriptions := admin.Group("/subscriptions")
	{
		subscriptions.GET("", h.GetSubscriptions)
		subscriptions.GET("/:id", h.GetSubscription)
		subscriptions.POST("", h.CreateSubscription)
		subscriptions.PUT("/:id", h.UpdateSubscription)
		subscriptions.DELETE("/:id", h.DeleteSubscription)
	}

	// ============ Licenses ============
	licenses := admin.Group("/licenses")
	{
		licenses.GET("", h.GetLicenses)
		licenses.GET("/export", h.ExportLicenses)
		licenses.GET("/:id", h.GetLicense)
		licenses.POST("", h.CreateLicense)
		licenses.PUT("/:id", h.UpdateLicense)
		licenses.DELETE("/:id", h.DeleteLicense)
		licenses.GET("/:id/renewal", h.GetLicenseRenewal)
		licenses.POST("/:id/renewal", h.RenewLicense)
		licenses.POST("/:id/update-plan", h.UpdateLicensePlan)
	}
}

// Ping
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
