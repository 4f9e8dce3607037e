package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bookdesk/platform/internal/api"
	"github.com/bookdesk/platform/internal/config"
	"github.com/bookdesk/platform/internal/core"
	"github.com/bookdesk/platform/internal/db"
	"github.com/bookdesk/platform/internal/logging"
	"github.com/bookdesk/platform/internal/metrics"
	"github.com/bookdesk/platform/internal/store"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "create-api-key":
			createAPIKey(os.Args[2:])
			return
		case "create-client":
			createClient(os.Args[2:])
			return
		}
	}

	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	migrateDirFlag := flag.String("migrate-dir", "migrations/core", "Migration files directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if *migrateFlag {
		logger.Info().Str("dir", *migrateDirFlag).Msg("running database migrations")
		if err := db.RunMigrations(cfg.DatabaseURL, *migrateDirFlag); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	metrics.RegisterPgxPoolMetrics(pool)

	srv := api.NewServer(logger, pool, core.NoSession{}, cfg)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sweeper := core.NewSweeper(store.New(pool), cfg.SweepInterval, cfg.RateLimitWindow, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting platform API server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := sweeper.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func createAPIKey(args []string) {
	fs := flag.NewFlagSet("create-api-key", flag.ExitOnError)
	name := fs.String("name", "", "Name for the API key (required)")
	userID := fs.String("user", "", "Owning user ID (required)")
	permissions := fs.String("permissions", "*", "Comma-separated permission list")
	rateLimit := fs.Int("rate-limit", 0, "Custom hourly rate limit (0 = default)")
	fs.Parse(args)

	if *name == "" || *userID == "" {
		fmt.Fprintln(os.Stderr, "error: --name and --user are required")
		fmt.Fprintln(os.Stderr, "usage: platform-api create-api-key --name <name> --user <user-id> [--permissions a,b] [--rate-limit n]")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, logger := mustConnect(ctx)
	defer pool.Close()

	var limit *int
	if *rateLimit > 0 {
		limit = rateLimit
	}

	svc := core.NewAPIKeyService(store.New(pool), logger)
	key, rawKey, err := svc.Create(ctx, *name, "", *userID, strings.Split(*permissions, ","), limit, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create API key: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("API key created successfully.\n\n")
	fmt.Printf("  Name:   %s\n", key.Name)
	fmt.Printf("  ID:     %s\n", key.KeyID)
	fmt.Printf("  Key:    %s\n\n", rawKey)
	fmt.Printf("Save this key - it will not be shown again.\n")
}

func createClient(args []string) {
	fs := flag.NewFlagSet("create-client", flag.ExitOnError)
	name := fs.String("name", "", "Name for the client (required)")
	redirectURIs := fs.String("redirect-uris", "", "Comma-separated redirect URIs (required)")
	grantTypes := fs.String("grant-types", "authorization_code,refresh_token", "Comma-separated grant types")
	scope := fs.String("scope", "", "Default scope")
	userID := fs.String("user", "", "Owning user ID")
	fs.Parse(args)

	if *name == "" || *redirectURIs == "" {
		fmt.Fprintln(os.Stderr, "error: --name and --redirect-uris are required")
		fmt.Fprintln(os.Stderr, "usage: platform-api create-client --name <name> --redirect-uris <uri,...>")
		os.Exit(1)
	}

	cfg := mustLoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	svc := core.NewOAuthService(store.New(pool), core.OAuthLifetimes{
		AuthCode:     cfg.AuthCodeLifetime,
		AccessToken:  cfg.AccessTokenLifetime,
		RefreshToken: cfg.RefreshTokenLifetime,
	})
	client, secret, err := svc.RegisterClient(ctx, *name, "",
		strings.Split(*redirectURIs, ","), strings.Split(*grantTypes, ","), *scope, *userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create client: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OAuth client created successfully.\n\n")
	fmt.Printf("  Name:    %s\n", client.Name)
	fmt.Printf("  ID:      %s\n", client.ID)
	fmt.Printf("  Secret:  %s\n\n", secret)
	fmt.Printf("Save this secret - it will not be shown again.\n")
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func mustConnect(ctx context.Context) (pool *pgxpool.Pool, logger zerolog.Logger) {
	cfg := mustLoadConfig()
	logger = logging.NewLogger(cfg)
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	return pool, logger
}
