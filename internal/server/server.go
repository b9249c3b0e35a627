// Package server exposes the scoring engine, batch adapter and stored
// history over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Skufu/liverscreen/internal/batch"
	"github.com/Skufu/liverscreen/internal/logging"
	"github.com/Skufu/liverscreen/internal/store"
)

// Authentication is not handled here; every request acts as this user.
const defaultUserID int64 = 1

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Config struct {
	AllowedOrigins []string
	MaxBodyBytes   int64
	StaticRoot     string
}

// NewRouter builds the gin engine. db may be nil when the database is disabled.
func NewRouter(st store.Store, db HealthChecker, cfg Config) *gin.Engine {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}

	router := gin.New()
	router.Use(
		requestID(),
		requestLogger(),
		gin.Recovery(),
		limitBodySize(cfg.MaxBodyBytes),
		cors.New(corsConfig(cfg.AllowedOrigins)),
	)

	if cfg.StaticRoot != "" && fileExists(filepath.Join(cfg.StaticRoot, "index.html")) {
		router.Static("/static", cfg.StaticRoot)
		router.StaticFile("/", filepath.Join(cfg.StaticRoot, "index.html"))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", readiness(db))

	h := &handlers{
		store:  st,
		batch:  batch.New(batch.WithRecorder(store.NewRecorder(st, defaultUserID))),
		logger: logging.Logger(logging.SourceWeb),
	}

	router.GET("/dashboard", h.dashboard)

	api := router.Group("/api")
	api.GET("/evaluations/latest", h.latestEvaluation)
	api.POST("/predictions/quick", h.predictQuick)
	api.POST("/predictions/csv", h.predictCSV)
	api.GET("/predictions", h.listPredictions)
	api.POST("/patients/predict", h.predictForPatient)
	api.GET("/patients", h.listPatients)
	api.GET("/patients/:id/predictions", h.listPatientPredictions)

	return router
}

func readiness(db HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"db":     fmt.Sprintf("unhealthy: %v", err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"db":     "ok",
		})
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
		MaxAge:       12 * time.Hour,
	}

	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// DetectStaticRoot returns dir when set, otherwise the nearest of the working
// directory and its two parents that holds an index.html.
func DetectStaticRoot(dir string) string {
	if dir != "" {
		return dir
	}

	startDir, err := os.Getwd()
	if err != nil {
		return "."
	}

	candidates := []string{
		startDir,
		filepath.Dir(startDir),
		filepath.Dir(filepath.Dir(startDir)),
	}

	for _, dir := range candidates {
		if fileExists(filepath.Join(dir, "index.html")) {
			return dir
		}
	}

	return startDir
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
