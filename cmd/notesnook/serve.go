package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/lifecycle"
	"github.com/spf13/cobra"

	lcadapter "github.com/streetwriters/notesnook-sub014/pkg/adapters/lifecycle"
	"github.com/streetwriters/notesnook-sub014/pkg/adapters/rest"
	"github.com/streetwriters/notesnook-sub014/pkg/core"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the database over HTTP",
	Long: `Serve a JSON API over the database until interrupted. Database events
and, for the fs adapter, files changed by other programs are logged.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db := openDB(ctx)
		defer closeDB(db)

		sources := []lifecycle.Source{lcadapter.BusSource(db.Bus())}
		if w, ok := db.Repository().(interface {
			Watch(context.Context) (<-chan core.Event, error)
		}); ok {
			events, err := w.Watch(ctx)
			if err != nil {
				slog.Warn("file watcher unavailable", "error", err)
			} else {
				sources = append(sources, lcadapter.NewSource(events))
			}
		}
		for _, src := range sources {
			if err := src.Start(ctx); err != nil {
				fatal("Failed to start event source", err)
			}
			go logEvents(src)
		}

		if err := rest.NewServer(db, slog.Default()).ListenAndServe(ctx, serveAddr); err != nil {
			fatal("Server failed", err)
		}
	},
}

func logEvents(src lifecycle.Source) {
	for e := range src.Events() {
		slog.Debug("event", "event", e)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "Listen address")
}
