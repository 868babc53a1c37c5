package main

import (
	"encoding/gob"
	"fmt"
	"log"
	"net/http"
	"time"

	"media-gallery-platform/internal/config"
	"media-gallery-platform/internal/database"
	"media-gallery-platform/internal/handlers"
	"media-gallery-platform/internal/middleware"
	"media-gallery-platform/internal/models"
	"media-gallery-platform/internal/repositories"
	"media-gallery-platform/internal/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
)

func main() {
	// Register types for session serialization
	gob.Register(&models.Cart{})
	gob.Register(models.LineItem{})
	gob.Register([]models.LineItem{})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize database connection
	db, err := database.NewConnection(database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()
	log.Println("Database connection established successfully")

	if err := db.RunMigrations(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Create session store
	sessionStore := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30, // 30 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}

	sessionMiddleware := middleware.NewSessionMiddleware(sessionStore)

	// Initialize repositories
	catalogRepo := repositories.NewCatalogRepository(db.DB)
	priceRepo := repositories.NewPriceRepository(db.DB)
	unlockRepo := repositories.NewUnlockRepository(db.DB)
	paymentRepo := repositories.NewPaymentRepository(db.DB)

	// Initialize payment provider
	provider, err := services.NewPaymentProvider(cfg.Payment.Method, services.SquareConfig{
		AccessToken:         cfg.Square.AccessToken,
		LocationID:          cfg.Square.LocationID,
		Environment:         cfg.Square.Environment,
		WebhookSignatureKey: cfg.Square.WebhookSignatureKey,
		CallbackURL:         cfg.Square.CallbackURL,
	})
	if err != nil {
		log.Fatal("Failed to initialize payment provider:", err)
	}
	log.Printf("Payment provider: %s", provider.Name())

	// Initialize storage service (R2 or local fallback)
	var storageService services.StorageService
	if cfg.R2.AccessKeyID != "" && cfg.R2.SecretAccessKey != "" {
		r2Service, err := services.NewR2Service(cfg.R2)
		if err != nil {
			log.Printf("Failed to initialize R2 service: %v, using fallback storage", err)
			storageService = services.NewFallbackStorageService("./uploads", "http://localhost:"+cfg.Server.Port+"/uploads")
		} else {
			storageService = r2Service
			log.Println("R2 storage service initialized successfully")
		}
	} else {
		storageService = services.NewFallbackStorageService("./uploads", "http://localhost:"+cfg.Server.Port+"/uploads")
		log.Println("Using fallback storage service (R2 credentials not configured)")
	}

	// Initialize services
	entitlementService := services.NewEntitlementService(catalogRepo, unlockRepo)
	pricingService := services.NewPricingService(catalogRepo, priceRepo)
	reconciliationService := services.NewReconciliationService(paymentRepo)
	checkoutService := services.NewCheckoutService(
		pricingService,
		entitlementService,
		paymentRepo,
		provider,
		reconciliationService,
		cfg.Square.Currency,
	)
	poller := services.NewPaymentPoller(paymentRepo, provider, reconciliationService, services.PollPolicy{
		MaxAttempts: cfg.Polling.MaxAttempts,
		Interval:    cfg.Polling.Interval,
	})
	mediaService := services.NewMediaService(catalogRepo, storageService)
	adminAuthService := services.NewAdminAuthService(cfg.Admin)

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(sessionStore)
	cartHandler := handlers.NewCartHandler(sessionStore, pricingService)
	publicHandler := handlers.NewPublicHandler(catalogRepo, entitlementService, pricingService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	paymentHandler := handlers.NewPaymentHandler(paymentRepo, provider, reconciliationService, poller, cfg.Square.WebhookURL)
	adminHandler := handlers.NewAdminHandler(
		adminAuthService,
		sessionStore,
		catalogRepo,
		mediaService,
		pricingService,
		entitlementService,
		reconciliationService,
	)

	loginLimiter := middleware.NewRateLimiter(5, 15*time.Minute)

	// Set up router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware)
	r.Use(sessionMiddleware.WithActor)

	// Webhooks authenticate by signature, not session.
	r.Post("/webhooks/square", paymentHandler.SquareWebhook)

	r.Route("/api", func(r chi.Router) {
		r.Post("/session", sessionHandler.Start)
		r.Get("/session", sessionHandler.Current)

		r.Get("/profiles", publicHandler.ListProfiles)
		r.Route("/profiles/{profileID}", func(r chi.Router) {
			r.Get("/", publicHandler.GetProfile)
			r.Get("/unlock-status", publicHandler.GetUnlockStatus)
			r.Get("/price", publicHandler.GetPrice)
			r.Get("/items/{itemIndex}/price", publicHandler.GetPrice)
			r.Get("/items/{itemIndex}/entitlement", publicHandler.GetEntitlement)
		})

		r.Get("/cart", cartHandler.Get)
		r.Post("/cart/items", cartHandler.AddItem)
		r.Delete("/cart/items", cartHandler.RemoveItem)
		r.Delete("/cart", cartHandler.Clear)

		r.Post("/checkout", checkoutHandler.CreateIntent)
		r.Post("/checkout/{reference}/charge", checkoutHandler.Charge)
		r.Get("/purchases", checkoutHandler.History)

		r.Get("/payments/{reference}", paymentHandler.GetStatus)
		r.Post("/payments/{reference}/verify", paymentHandler.Verify)

		r.Route("/admin", func(r chi.Router) {
			r.With(loginLimiter.Limit).Post("/login", adminHandler.Login)
			r.Post("/logout", adminHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(sessionMiddleware.RequireAdmin)

				r.Post("/profiles", adminHandler.CreateProfile)
				r.Route("/profiles/{profileID}", func(r chi.Router) {
					r.Patch("/", adminHandler.UpdateProfile)
					r.Delete("/", adminHandler.DeleteProfile)
					r.Post("/media", adminHandler.UploadMedia)
					r.Get("/prices", adminHandler.ListPriceOverrides)
					r.Post("/unlocks", adminHandler.GrantUnlock)
					r.Route("/items/{itemIndex}", func(r chi.Router) {
						r.Put("/lock", adminHandler.SetItemLock)
						r.Put("/cover", adminHandler.SetCover)
						r.Put("/price", adminHandler.SetItemPrice)
					})
				})
				r.Post("/payments/{reference}/refund", adminHandler.RefundPayment)
			})
		})
	})

	// Serve fallback-storage uploads in development.
	fileServer := http.FileServer(http.Dir("./uploads"))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", fileServer))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal("Server failed:", err)
	}
}
