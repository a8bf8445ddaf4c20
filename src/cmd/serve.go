package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rfpdesk-server/src/api"
	"rfpdesk-server/src/db"
	sqlstore "rfpdesk-server/src/db/sql"
	"rfpdesk-server/src/llm"
	"rfpdesk-server/src/templates"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

var errMissingJWTSecret = errors.New("JWT_SECRET is required")

func newServeCmd(a *app) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	return cmd
}

func (a *app) serve(ctx context.Context, migrate bool) error {
	if a.cfg.JWTSecret == "" {
		return errMissingJWTSecret
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if migrate {
		if err := db.Migrate(ctx, pool); err != nil {
			return err
		}
		zap.L().Info("schema applied")
	}

	cache, err := db.NewCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	lib, err := templates.Load(a.cfg.TemplatesPath)
	if err != nil {
		return err
	}
	zap.L().Info("templates loaded", zap.String("path", a.cfg.TemplatesPath), zap.Int("count", len(lib.List())))

	deps := api.Deps{
		Store:          sqlstore.NewStore(pool, cache),
		Templates:      lib,
		JWTSecret:      a.cfg.JWTSecret,
		AllowedOrigins: a.cfg.AllowedOrigins,
		DemoMode:       a.cfg.DemoMode,
	}
	if a.cfg.GeminiAPIKey != "" {
		gen, err := llm.NewGeminiGenerator(ctx, a.cfg.GeminiAPIKey, a.cfg.GeminiModel)
		if err != nil {
			return err
		}
		deps.Analyzer = llm.NewAnalyzer(gen)
		deps.Assistant = llm.NewAssistant(gen)
	} else {
		zap.L().Warn("GEMINI_API_KEY not set, analysis and chat are disabled")
	}
	if a.cfg.DemoMode {
		zap.L().Info("demo mode enabled, writes are restricted to managers")
	}

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.L().Info("API server running", zap.String("port", a.cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		zap.L().Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
