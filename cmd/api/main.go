package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"facesense/internal/attendance"
	"facesense/internal/classes"
	"facesense/internal/config"
	"facesense/internal/httpapi"
	"facesense/internal/httpmiddleware"
	"facesense/internal/identity"
	"facesense/internal/media"
	"facesense/internal/notify"
	"facesense/internal/oauth"
	"facesense/internal/queue"
	"facesense/internal/store"
	"facesense/internal/student"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
		log.SetFormatter(&log.JSONFormatter{})
	}

	if err := runHTTP(cfg); err != nil {
		log.WithError(err).Fatal("http server failed")
	}
}

func runHTTP(cfg config.App) error {
	ctx := context.Background()

	db, err := store.NewMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(context.Background()) }()
	log.WithField("db", cfg.MongoDB).Info("connected to MongoDB")

	if err := db.EnsureIndexes(ctx); err != nil {
		return err
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "facesense:notifications")
	}

	users := identity.NewRepository(db)
	students := student.NewRepository(db)
	events := attendance.NewRepository(db)
	classRepo := classes.NewRepository(db)

	identitySvc := identity.NewService(users, identity.TokenConfig{
		Issuer: cfg.JWTIssuer,
		Key:    cfg.JWTSigningKey,
		TTL:    cfg.AccessTTL,
	})
	attendanceSvc := attendance.NewService(students, events)
	notifier := notify.NewService(q)

	// Google verifier (nil when not configured)
	var google httpapi.TokenVerifier
	if cfg.GoogleClientID != "" {
		discoverCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		verifier, err := oauth.NewGoogleVerifier(discoverCtx, cfg.GoogleClientID)
		cancel()
		if err != nil {
			log.WithError(err).Warn("google login disabled: provider discovery failed")
		} else {
			google = verifier
			log.Info("google login configured")
		}
	} else {
		log.Info("google login not configured (GOOGLE_CLIENT_ID not set)")
	}

	// Cloudinary client (nil when not configured)
	var uploader httpapi.Uploader
	if cfg.CloudinaryURL != "" {
		cdn, err := media.New(cfg.CloudinaryURL)
		if err != nil {
			log.WithError(err).Warn("photo uploads disabled: bad CLOUDINARY_URL")
		} else {
			uploader = cdn
			log.Info("cloudinary configured")
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "FaceSense API is running", "version": "1.0.0"})
	})

	r.GET("/healthz", func(c *gin.Context) {
		mongoHealthy := db.Healthy(c.Request.Context())
		redisHealthy := redisClient.Healthy(c.Request.Context())
		status := http.StatusOK
		if !mongoHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "mongo": mongoHealthy, "redis": redisHealthy})
	})

	h := httpapi.New(identitySvc, attendanceSvc, events, students, classRepo, notifier, google, uploader)
	h.Routes(r, cfg.JWTSigningKey, cfg.JWTIssuer)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server forced shutdown")
	}

	log.Info("server exited")
	return nil
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
