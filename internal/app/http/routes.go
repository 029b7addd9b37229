package routes

import (
	"net/http"

	"agency-platform/config"
	adminapi "agency-platform/internal/api/admin"
	authapi "agency-platform/internal/api/auth"
	checkoutapi "agency-platform/internal/api/checkout"
	ordersapi "agency-platform/internal/api/orders"
	paymentsapi "agency-platform/internal/api/payments"
	projectsapi "agency-platform/internal/api/projects"
	referralsapi "agency-platform/internal/api/referrals"
	servicesapi "agency-platform/internal/api/services"
	supportapi "agency-platform/internal/api/support"
	"agency-platform/internal/app/http/middleware"
	authcore "agency-platform/internal/auth"
	"agency-platform/internal/billing"
	"agency-platform/internal/cache"
	"agency-platform/internal/domain/users"
	"agency-platform/internal/infra/paystack"
	"agency-platform/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// Deps carries the collaborators handlers need. Everything here is
// constructed once at process start and injected, never global.
type Deps struct {
	Sessions   *authcore.SessionManager
	Limiter    *ratelimit.Limiter
	Cache      cache.Cache
	Emailer    authapi.Emailer
	Resets     authapi.ResetStore
	Gateway    *paystack.Client // nil when payments are disabled
	Reconciler *billing.Reconciler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	authHandler := &authapi.Handler{Sessions: d.Sessions, Emailer: d.Emailer, Resets: d.Resets}
	ordersHandler := &ordersapi.Handler{Gateway: d.Gateway}
	paymentsHandler := &paymentsapi.Handler{Gateway: d.Gateway, Reconciler: d.Reconciler}
	projectsHandler := &projectsapi.Handler{Reconciler: d.Reconciler}
	checkoutHandler := &checkoutapi.Handler{Cache: d.Cache}
	servicesHandler := &servicesapi.Handler{Cache: d.Cache}
	referralsHandler := &referralsapi.Handler{}
	supportHandler := &supportapi.Handler{}
	adminHandler := &adminapi.Handler{}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Webhook: signature-verified, no session, no sanitizing (the raw
	// body is what gets signed).
	if config.PaymentsEnabled() {
		r.POST("/api/payments/webhook",
			middleware.RateLimit(d.Limiter, ratelimit.ActionWebhook),
			paymentsHandler.Webhook)
		r.GET("/api/payments/callback", paymentsHandler.Callback)
	}

	api := r.Group("/api")
	api.Use(middleware.ResolveSession(d.Sessions))

	public := api.Group("/")
	public.Use(middleware.SanitizeInput())

	public.POST("/auth/register",
		middleware.RateLimit(d.Limiter, ratelimit.ActionRegister),
		authHandler.Register)
	public.POST("/auth/login",
		middleware.RateLimit(d.Limiter, ratelimit.ActionLogin),
		authHandler.Login)
	public.POST("/auth/forgot-password",
		middleware.RateLimit(d.Limiter, ratelimit.ActionForgotPassword),
		authHandler.RequestPasswordReset)
	public.POST("/auth/reset-password",
		middleware.RateLimit(d.Limiter, ratelimit.ActionResetPassword),
		authHandler.CompletePasswordReset)

	api.GET("/auth/user", authHandler.CurrentUser)
	api.POST("/auth/logout", authHandler.Logout)

	if config.GoogleOAuthEnabled() {
		api.GET("/auth/google", authHandler.GoogleStart)
		api.GET("/auth/google/callback", authHandler.GoogleCallback)
	} else {
		notConfigured := func(c *gin.Context) {
			c.JSON(http.StatusNotImplemented, gin.H{"message": "OAuth provider not configured"})
		}
		api.GET("/auth/google", notConfigured)
		api.GET("/auth/google/callback", notConfigured)
	}

	api.GET("/services", servicesHandler.List)
	api.GET("/services/:slug", servicesHandler.Get)

	// Pre-auth cart: anonymous visitors start checkout before logging in.
	public.POST("/checkout-sessions", checkoutHandler.Create)
	api.GET("/checkout-sessions/:token", checkoutHandler.Get)
	public.PUT("/checkout-sessions/:token", checkoutHandler.Update)

	// Authenticated
	authed := api.Group("/")
	authed.Use(middleware.RequireAuth())

	authed.POST("/auth/change-password", authHandler.ChangePassword)

	authed.POST("/orders",
		middleware.RateLimit(d.Limiter, ratelimit.ActionOrderCreate),
		ordersHandler.Create)
	authed.GET("/orders", ordersHandler.List)
	authed.DELETE("/orders/:id", ordersHandler.Cancel)
	authed.POST("/orders/:id/reactivate-payment", ordersHandler.ReactivatePayment)

	authed.GET("/projects", projectsHandler.List)
	authed.GET("/projects/:id", projectsHandler.Get)
	authed.GET("/projects/:id/messages", projectsHandler.ListMessages)
	authed.POST("/projects/:id/messages", projectsHandler.PostMessage)

	authed.GET("/referrals/summary", referralsHandler.Summary)

	authed.POST("/support-requests", supportHandler.Create)
	authed.GET("/support-requests", supportHandler.List)

	// Admin
	admin := api.Group("/admin")
	admin.Use(middleware.RequireAuth(), middleware.RequireRole(users.RoleAdmin))
	admin.GET("/dashboard", adminHandler.Dashboard)
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/orders", adminHandler.ListOrders)
	admin.GET("/payments", adminHandler.ListPayments)
	admin.GET("/projects", adminHandler.ListProjects)
	admin.PUT("/orders/:id/status", adminHandler.UpdateOrderStatus)
	admin.DELETE("/orders/:id", adminHandler.DeleteOrder)
	admin.PUT("/projects/:id", adminHandler.UpdateProject)
	admin.PUT("/users/:id/role", adminHandler.UpdateUserRole)
}
