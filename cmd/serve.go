package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/dataqa-cli/internal/answer"
	"github.com/KaramelBytes/dataqa-cli/internal/api"
	"github.com/KaramelBytes/dataqa-cli/internal/ingest"
	"github.com/spf13/cobra"
)

var (
	serveAddr        string
	serveSessionTTL  time.Duration
	serveMaxSessions int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload, preview and ask flow over HTTP",
	Example: `  dataqa serve
  dataqa serve --addr 127.0.0.1:9000 --session-ttl 30m`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = cfg.ListenAddr
		}

		var answerer *answer.Service
		svc, err := answer.NewService(answerConfig())
		if err != nil {
			logger.Warn("answer service unconfigured; questions will report the problem", slog.Any("error", err))
			answerer = answer.Unconfigured(err)
		} else {
			answerer = svc
		}

		opt := ingest.DefaultOptions()
		opt.MaxBytes = cfg.MaxUploadBytes()
		opt.Logger = logger
		sessions := api.NewSessionStore(serveMaxSessions)
		e := api.NewServer(&api.Dependencies{
			Sessions:    sessions,
			Answerer:    answerer,
			Ingest:      opt,
			PreviewRows: cfg.PreviewRows,
			Logger:      logger,
			Version:     Version,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if serveSessionTTL > 0 {
			go func() {
				ticker := time.NewTicker(cleanupInterval(serveSessionTTL))
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						if n := sessions.CleanupOlderThan(serveSessionTTL); n > 0 {
							logger.Info("expired sessions removed", slog.Int("count", n))
						}
					}
				}
			}()
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("dataqa api listening", slog.String("addr", addr), slog.String("model", answerer.Model()))
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err, ok := <-errCh:
			if ok {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			_ = e.Close()
			return err
		}
		logger.Info("dataqa api stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config listen_addr)")
	serveCmd.Flags().DurationVar(&serveSessionTTL, "session-ttl", time.Hour, "drop sessions idle longer than this (0 disables)")
	serveCmd.Flags().IntVar(&serveMaxSessions, "max-sessions", api.DefaultMaxSessions, "maximum live sessions before the least recently used is evicted")
}

// cleanupInterval sweeps twice per TTL, but never more than once a second.
func cleanupInterval(ttl time.Duration) time.Duration {
	if d := ttl / 2; d >= time.Second {
		return d
	}
	return time.Second
}
