package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pders01/forumsearch/internal/debuglog"
	"github.com/pders01/forumsearch/internal/tui"
	"github.com/pders01/forumsearch/internal/web"
)

const shutdownTimeout = 10 * time.Second

var (
	serveQuiet   bool
	serveReindex bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP search service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		b, err := openBackend(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// The owner outlives the HTTP server so in-flight requests can
		// still reach it during shutdown.
		ownerCtx, stopOwner := context.WithCancel(context.Background())
		defer stopOwner()
		b.start(ownerCtx)

		if serveReindex {
			n, err := b.articles.Reindex(ctx)
			if err != nil {
				_ = b.close()
				return fmt.Errorf("reindex: %w", err)
			}
			debuglog.Infof("queued %d articles for reindex", n)
		}

		srv := web.NewServer(cfg.Server, b.articles, b.index).HTTPServer()

		if !serveQuiet && isTerminal(os.Stdout) {
			tui.ApplyTheme(cfg.UI.Colors)
			tui.ShowBanner(cmd.OutOrStdout(), Version,
				"listening on http://"+cfg.Server.Addr,
				"index "+displayPath(cfg.Index.Path),
				"database "+cfg.Database.Path)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			debuglog.Infof("http server listening on %s", cfg.Server.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			debuglog.Infof("shutting down http server")
			return srv.Shutdown(shutdownCtx)
		})

		err = g.Wait()
		stopOwner()
		return errors.Join(err, b.close())
	},
}

func init() {
	serveCmd.Flags().BoolVarP(&serveQuiet, "quiet", "q", false, "Skip startup banner")
	serveCmd.Flags().BoolVar(&serveReindex, "reindex", false, "Reindex all stored articles before serving")
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func displayPath(path string) string {
	if path == "" {
		return "(in memory)"
	}
	return path
}
