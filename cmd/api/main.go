package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xelth-com/poslabel/internal/config"
	"github.com/xelth-com/poslabel/internal/database"
	"github.com/xelth-com/poslabel/internal/designer"
	"github.com/xelth-com/poslabel/internal/handlers"
	"github.com/xelth-com/poslabel/internal/label"
	"github.com/xelth-com/poslabel/internal/settings"
	"github.com/xelth-com/poslabel/internal/store"
	"github.com/xelth-com/poslabel/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// 3. Auto-Migrate Schema
	log.Println("🚀 Synchronizing database schema...")
	if err := db.Migrate(); err != nil {
		log.Printf("⚠️ Migration warning: %v", err)
	}

	// 4. Settings repository
	var repo settings.Repository
	switch cfg.Settings.Backend {
	case config.SettingsBackendFile:
		repo = settings.NewFile(cfg.Settings.File)
		log.Printf("⚙️ Settings: file %s", cfg.Settings.File)
	case config.SettingsBackendMemory:
		repo = settings.NewMemory()
		log.Println("⚙️ Settings: in memory (not persisted)")
	default:
		repo = settings.NewDB(db.DB)
		log.Println("⚙️ Settings: database")
	}

	// 5. Stores and built-in templates
	templates := store.NewGormTemplates(db.DB)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	if list, err := store.EnsureDefaults(ctx, templates); err != nil {
		log.Printf("⚠️ Could not load label templates: %v", err)
	} else {
		log.Printf("🏷️ %d label templates available", len(list))
	}

	// 6. Change notifications for open previews
	hub := websocket.NewHub()
	go hub.Run(ctx)

	sessions := designer.NewManager()
	sessions.MaxSessions = cfg.Designer.MaxSessions
	go sessions.Run(ctx, cfg.Designer.SessionIdleTimeout)

	router := handlers.NewRouter(handlers.Deps{
		Templates: templates,
		Products:  store.NewGormProducts(db.DB),
		PrintJobs: store.NewGormPrintJobs(db.DB),
		Settings:  repo,
		Sessions:  sessions,
		Hub:       hub,
		Store:     label.StoreInfo{Name: cfg.Store.Name, Address: cfg.Store.Address},
		Preview: label.PreviewOptions{
			Width:  cfg.Preview.WidthPx,
			Margin: cfg.Preview.MarginPx,
		},
		PDFFontFile: cfg.Render.PDFFontFile,
		JWTSecret:   cfg.JWTSecret,
		PathPrefix:  cfg.PathPrefix,
	})
	if cfg.JWTSecret == "" {
		log.Println("⚠️ JWT_SECRET not set: write routes are unauthenticated")
	}

	// 7. Start server with graceful shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("🚀 Label service (%s) starting on port %s [Prefix: '%s']", cfg.NodeEnv, cfg.Port, cfg.PathPrefix)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := <-shutdown
	log.Printf("⚠️  Received signal: %v. Shutting down gracefully...", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	stop()

	// Close database (this also stops embedded PostgreSQL)
	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}
	log.Println("✅ Shutdown complete")
}
