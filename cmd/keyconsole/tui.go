package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"keyconsole/internal/action"
	"keyconsole/internal/api"
	"keyconsole/internal/trace"
	"keyconsole/internal/ui"
)

// runConsole opens the full-screen console.
func runConsole(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	tp, err := trace.Setup(ctx)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("trace shutdown", zap.Error(err))
		}
	}()

	client, err := newClient()
	if err != nil {
		return err
	}
	logger.Info("console starting", zap.String("base_url", client.BaseURL()), zap.Bool("tracing", tp.Enabled()))

	handler := action.NewHandler(client, logger.Named("action"))
	app := ui.NewAppModel(ui.Options{
		Backend:   client,
		Submitter: action.NewSubmitter(handler, logger.Named("submit")),
		Logger:    logger.Named("ui"),
		BaseURL:   client.BaseURL(),
		Email:     cfg.Email,
		Token:     storedToken(time.Now()),
		OnLogin: func(creds *api.Credentials) {
			if err := saveSession(creds); err != nil {
				logger.Warn("persist session", zap.Error(err))
			}
		},
	})

	p := tea.NewProgram(app.AsTeaModel(),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	app.SetSender(p.Send)
	_, err = p.Run()
	return err
}
