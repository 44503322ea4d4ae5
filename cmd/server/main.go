package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shatzii/ArtistTech-sub007/internal/api"
	"github.com/Shatzii/ArtistTech-sub007/internal/collab"
	"github.com/Shatzii/ArtistTech-sub007/internal/config"
	"github.com/Shatzii/ArtistTech-sub007/internal/telemetry"
)

func main() {
	log.Println("🚀 Starting ArtistTech collaboration engine...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Initialize Jaeger tracing first so all operations are traced
	jaegerShutdown, err := telemetry.InitJaeger("artisttech-collab", cfg.JaegerEndpoint)
	if err != nil {
		log.Printf("⚠️  Failed to initialize Jaeger: %v (continuing without tracing)", err)
		jaegerShutdown = func(ctx context.Context) error { return nil }
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := jaegerShutdown(ctx); err != nil {
			log.Printf("⚠️  Failed to shutdown Jaeger: %v", err)
		}
	}()

	// Initialize the session registry and its idle sweep
	registry := collab.NewRegistry(cfg.Collab())
	registry.Start()

	// WebSocket gateway for client connections
	gateway := collab.NewGateway(registry)

	// Initialize handlers with dependency injection
	handler := api.NewHandler(registry, gateway)

	// Setup routes
	router := api.SetupRoutes(handler)

	// Configure HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server in a goroutine so shutdown signals are handled
	// concurrently
	go func() {
		log.Printf("🌐 Server listening on http://%s", addr)
		log.Printf("📚 Endpoints:")
		log.Printf("   GET /ws/collab          - Collaboration WebSocket")
		log.Printf("   GET /api/sessions       - List live sessions")
		log.Printf("   GET /api/sessions/{id}  - Session detail")
		log.Printf("   GET /api/health         - Health check")
		log.Println()

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n🛑 Shutting down server...")

	// Drain in-flight HTTP requests before closing the engine
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Server forced to shutdown: %v", err)
	}

	// Stop the registry; this closes all active WebSocket connections
	registry.Stop()

	log.Println("✓ Server shutdown complete")
}
