package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/meur/deckviewer/internal/api"
	"github.com/meur/deckviewer/internal/app"
	"github.com/meur/deckviewer/internal/charts"
	"github.com/meur/deckviewer/internal/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", getEnv("DECKVIEWER_CONFIG", "deckviewer.toml"), "TOML config file")
	port := flag.String("port", getEnv("PORT", ""), "Server port (overrides config)")
	dbPath := flag.String("db", getEnv("DB_PATH", ""), "SQLite database path (overrides config)")
	staticDir := flag.String("static", "", "Frontend build to serve at / (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != "" {
		p, err := strconv.Atoi(*port)
		if err != nil {
			log.Fatalf("Invalid port %q: %v", *port, err)
		}
		cfg.Server.Port = p
	}
	if *dbPath != "" {
		cfg.Storage.Path = *dbPath
	}
	if *staticDir != "" {
		cfg.Server.StaticDir = *staticDir
	}

	logger, err := app.NewLogger(cfg.App.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	// Initialize storage
	session, store, err := app.Open(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := session.Load(ctx); err != nil {
		logger.Warn("Starting with an empty deck list", zap.Error(err))
	}

	// Create router
	srv := api.New(session, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Chart:          charts.DefaultChartConfig(),
	}, logger.Named("http"))

	// Serve frontend static files (for production deployment)
	if cfg.Server.StaticDir != "" {
		FileServer(srv.Router(), "/", http.Dir(cfg.Server.StaticDir))
	}

	httpServer := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("Deck viewer API starting",
		zap.String("addr", "http://localhost"+httpServer.Addr),
		zap.String("database", cfg.Storage.Path),
		zap.Bool("reject_duplicates", cfg.Decks.RejectDuplicates))

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server failed", zap.Error(err))
	}
	logger.Info("Server stopped")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// FileServer conveniently sets up a http.FileServer handler to serve
// static files from a http.FileSystem.
func FileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer does not permit URL parameters.")
	}

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", 301).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, func(w http.ResponseWriter, req *http.Request) {
		rctx := chi.RouteContext(req.Context())
		pathPrefix := strings.TrimSuffix(rctx.RoutePattern(), "/*")
		fs := http.StripPrefix(pathPrefix, http.FileServer(root))
		fs.ServeHTTP(w, req)
	})
}
