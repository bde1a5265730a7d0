package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/duynguyendang/digivolve/internal/manager"
	"github.com/duynguyendang/digivolve/pkg/ai"
	"github.com/duynguyendang/digivolve/pkg/server"
)

var (
	servePort  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API server",
	Long: `Loads the dataset and serves evolution lookups over HTTP.

With --watch the dataset file is monitored and hot-reloaded on change;
requests in flight keep the table they started with.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "port to listen on (default from PORT env or 8080)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload the dataset when the file changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mgr := manager.New(cfg.DatasetPath, cfg.Dataset)
	tbl, err := mgr.Reload()
	if err != nil {
		return err
	}
	slog.Info("dataset loaded", "path", cfg.DatasetPath, "rows", tbl.Len())

	var narrator *ai.Narrator
	if cfg.GeminiAPIKey != "" {
		n, err := ai.NewNarrator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Warn("narrator disabled", "err", err)
		} else {
			narrator = n
			defer narrator.Close()
		}
	} else {
		slog.Info("GEMINI_API_KEY not set, narrative endpoint disabled")
	}

	port := servePort
	if port == "" {
		port = cfg.Port
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: server.NewServer(mgr, narrator).Handler(),
	}

	watch := cfg.Watch
	if cmd.Flags().Changed("watch") {
		watch = serveWatch
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if watch {
		g.Go(func() error {
			return mgr.Watch(ctx)
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}
