package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"print-pricing/internal/api"
	"print-pricing/internal/app"
	"print-pricing/internal/services/registrar"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, logg, err := app.Bootstrap()
	if err != nil {
		log.Fatal(err)
	}
	defer logg.Sync()

	ctx := context.Background()
	svc, err := app.NewServices(ctx, cfg, logg)
	if err != nil {
		logg.Fatal("Failed to initialize services", "error", err)
	}
	defer svc.Close()

	hub := api.NewHub(logg)
	svc.Crawler.OnProgress(func(target string, done, total int) {
		step := max(total/100, 1)
		if done%step == 0 || done == total {
			hub.Publish(api.RunEvent{Kind: api.KindCrawl, Target: target, Status: "running", Done: done, Total: total})
		}
	})
	svc.Registrar.OnTransition(func(table string, s registrar.State) {
		hub.Publish(api.RunEvent{Kind: api.KindRegister, Target: table, State: string(s)})
	})

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "warehouse": cfg.WarehouseDriver, "artifact_store": cfg.ArtifactStore})
	})
	r.GET("/ws/runs", hub.ServeRuns)

	// API routes
	apiGroup := r.Group("/api/v1")
	api.SetupRoutes(apiGroup, api.Deps{
		Config:    cfg,
		Logger:    logg,
		DB:        svc.DB,
		Crawler:   svc.Crawler,
		Registrar: svc.Registrar,
		Store:     svc.Store,
		Hub:       hub,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	serveErr := make(chan error, 1)
	go func() {
		logg.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err := <-serveErr:
		logg.Error("Server stopped", "error", err)
		return
	}

	logg.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("Graceful shutdown failed", "error", err)
	}
}
