package main

import (
	"log"
	"time"

	"agency-platform/config"
	"agency-platform/database"
	authapi "agency-platform/internal/api/auth"
	checkoutapi "agency-platform/internal/api/checkout"
	routes "agency-platform/internal/app/http"
	authcore "agency-platform/internal/auth"
	"agency-platform/internal/billing"
	"agency-platform/internal/cache"
	"agency-platform/internal/domain/users"
	"agency-platform/internal/infra/paystack"
	"agency-platform/internal/logging"
	"agency-platform/internal/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()
	if err := logging.Init(config.IsProduction()); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logging.Sync()

	database.InitDB()
	bootstrapAdmin()

	sessionManager := authcore.NewSessionManager(
		&authcore.GormSessionStore{DB: database.DB},
		&authcore.GormUserStore{DB: database.DB},
		config.SessionSecret,
	)
	limiter := ratelimit.New(ratelimit.DefaultRules, config.RateLimitMultiplier)
	appCache := cache.New(config.REDIS_URL)

	deps := routes.Deps{
		Sessions: sessionManager,
		Limiter:  limiter,
		Cache:    appCache,
		Emailer:  authapi.SMTPEmailer{},
		Resets:   &authapi.GormResetStore{DB: database.DB},
	}

	// Project backfill needs the reconciler even when payments are disabled.
	deps.Reconciler = billing.NewReconciler(
		&billing.GormStore{DB: database.DB},
		config.ReferralCommissionPercent,
	)
	if config.PaymentsEnabled() {
		deps.Gateway = paystack.NewClient(config.PAYSTACK_SECRET_KEY)
	} else {
		logging.L().Warn("PAYSTACK_SECRET_KEY not set, payment routes disabled")
	}

	stop := make(chan struct{})
	go sessionManager.SweepLoop(10*time.Minute, stop)
	go checkoutapi.SweepLoop(database.DB, 15*time.Minute, stop)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.APP_URL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, deps)

	logging.L().Info("listening", zap.String("port", config.PORT))
	if err := r.Run(":" + config.PORT); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// bootstrapAdmin seeds the first admin account from the environment when
// none exists yet.
func bootstrapAdmin() {
	if config.ADMIN_BOOTSTRAP_PASSWORD == "" {
		return
	}

	var count int64
	database.DB.Model(&users.User{}).Where("role = ?", users.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}

	hashed, err := authcore.HashPassword(config.ADMIN_BOOTSTRAP_PASSWORD)
	if err != nil {
		log.Fatalf("Failed to hash bootstrap password: %v", err)
	}

	admin := users.User{
		Email:        "admin@localhost",
		PasswordHash: &hashed,
		Provider:     "local",
		Role:         users.RoleAdmin,
		FirstName:    "Admin",
	}
	if err := database.DB.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}
	logging.L().Info("seeded bootstrap admin user")
}
