package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/shipwise/intake/internal/archive"
	"github.com/shipwise/intake/internal/config"
	"github.com/shipwise/intake/internal/handler"
	"github.com/shipwise/intake/internal/logging"
	"github.com/shipwise/intake/internal/service/ai"
	interviewService "github.com/shipwise/intake/internal/service/interview"
	"github.com/shipwise/intake/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env is optional, system environment wins either way
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stderr, "info").Fatal().Err(err).Msg("loading configuration")
	}

	log := logging.New(os.Stdout, cfg.LogLevel)

	def, err := config.LoadDefinition(cfg.Interview)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Interview).Msg("loading interview definition")
	}

	st, closeStore, err := buildStore(cfg.Store, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initializing session store")
	}
	defer closeStore()

	archiver, err := buildArchiver(cfg.Archive, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initializing archiver")
	}

	if !cfg.AI.Enabled() {
		log.Fatal().Msg("no completion service configured, set ARK_API_KEY or GEMINI_API_KEY")
	}
	generator, err := ai.New(ctx, cfg.AI, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initializing completion service")
	}

	svc := interviewService.NewService(def, st, generator, archiver, log)
	router := handler.NewRouter(svc, log)

	log.Info().
		Str("definition", def.Name).
		Str("store", cfg.Store.Driver).
		Str("archive", cfg.Archive.Driver).
		Str("provider", cfg.AI.Provider).
		Msg("interview service configured")

	startServer(ctx, cfg.Server, router, log)
}

func buildStore(cfg config.StoreConfig, log *logging.Logger) (store.Store, func(), error) {
	switch cfg.Driver {
	case "memory":
		return store.NewMemoryStore(), func() {}, nil
	case "sqlite":
		db, err := store.Open(cfg.Path, log)
		if err != nil {
			return nil, nil, err
		}
		var st store.Store = store.NewSQLiteStore(db)
		if cfg.CacheSize > 0 {
			st, err = store.NewCachedStore(st, cfg.CacheSize)
			if err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		return st, func() { db.Close() }, nil
	default:
		return nil, nil, errors.New("unknown store driver " + cfg.Driver)
	}
}

func buildArchiver(cfg config.ArchiveConfig, log *logging.Logger) (archive.Archiver, error) {
	switch cfg.Driver {
	case "fs":
		return archive.NewFSArchiver(cfg.Dir, log)
	case "s3":
		return archive.NewObjectArchiver(archive.ObjectConfig{
			Endpoint:  cfg.Endpoint,
			Region:    cfg.Region,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			UseSSL:    cfg.UseSSL,
		}, log)
	default:
		return nil, errors.New("unknown archive driver " + cfg.Driver)
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, log *logging.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", serverCfg.Addr).Msg("intake service listening")
	if err := runServer(ctx, srv); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
