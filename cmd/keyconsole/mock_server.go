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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"keyconsole/internal/logging"
	"keyconsole/internal/mockapi"
)

var (
	mockAddr   string
	mockSeed   bool
	mockSecret string
	mockTTL    time.Duration
)

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Serve an in-memory platform API for local development",
	Long: `Serve the platform REST API from memory. With --seed it starts with
admin@example.com and dev@example.com (password "password123") and one
project, proj_123.`,
	Args: cobra.NoArgs,
	RunE: runMockServer,
}

func init() {
	mockServerCmd.Flags().StringVar(&mockAddr, "addr", ":3000", "listen address")
	mockServerCmd.Flags().BoolVar(&mockSeed, "seed", false, "load demo users and a project")
	mockServerCmd.Flags().StringVar(&mockSecret, "secret", "", "token signing secret (default: random)")
	mockServerCmd.Flags().DurationVar(&mockTTL, "token-ttl", 24*time.Hour, "session token lifetime")
	rootCmd.AddCommand(mockServerCmd)
}

func runMockServer(cmd *cobra.Command, _ []string) error {
	level := "info"
	if verbose {
		level = "debug"
	}
	log, err := logging.NewConsole(level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	srv := mockapi.New(mockapi.Options{
		Secret:   []byte(mockSecret),
		TokenTTL: mockTTL,
		Logger:   log,
	})
	if mockSeed {
		if err := srv.Seed(); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	httpSrv := &http.Server{
		Addr:              mockAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("mock api listening", zap.String("addr", mockAddr), zap.Bool("seeded", mockSeed))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
