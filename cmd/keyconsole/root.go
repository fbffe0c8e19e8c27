package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"keyconsole/internal/api"
	"keyconsole/internal/config"
	"keyconsole/internal/logging"
)

var (
	// Used for flags
	configPath string
	apiURL     string
	verbose    bool

	// Set in PersistentPreRunE.
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "keyconsole",
	Short: "Manage projects and API keys from the terminal",
	Long: `keyconsole is a terminal console for the platform's projects.

It lists the projects you belong to and lets you create and revoke API keys,
rename or delete a project, and remove members.

Examples:
  # Start a local mock platform, then open the console against it
  keyconsole mock-server --seed &
  keyconsole --api-url http://localhost:3000

  # Sign in once; the token is kept in ~/.keyconsole/config.yaml
  keyconsole login --email admin@example.com`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runConsole,
}

func init() {
	// Assigned here rather than in the literal to avoid an initialization
	// cycle: setup refers to rootCmd.
	rootCmd.PersistentPreRunE = setup
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ~/.keyconsole/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "platform API base URL (default "+api.DefaultOrigin+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging (to the log file)")
}

// setup loads the config and builds the logger for every command.
func setup(cmd *cobra.Command, _ []string) error {
	if configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		configPath = p
	}
	o := config.NewOverrides()
	if err := o.BindFlag(config.KeyBaseURL, rootCmd.PersistentFlags().Lookup("api-url")); err != nil {
		return err
	}
	c, err := config.LoadWith(configPath, o)
	if err != nil {
		return err
	}
	if verbose {
		c.LogLevel = "debug"
		if c.LogFile == "" {
			c.LogFile = filepath.Join(filepath.Dir(configPath), "keyconsole.log")
		}
	}
	cfg = c

	l, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	logger = l.With(zap.String("command", cmd.Name()))
	return nil
}

// newClient builds the API client from the loaded config.
func newClient() (*api.Client, error) {
	return api.NewClient(cfg.BaseURL,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithRateLimit(cfg.RequestsPerSecond, 1),
		api.WithSessionCookie(cfg.SessionCookie),
		api.WithLogger(logger.Named("api")),
	)
}

// storedToken returns the saved token unless it has visibly expired.
func storedToken(now time.Time) string {
	if cfg.Token == "" {
		return ""
	}
	if exp, ok := api.TokenExpiry(cfg.Token); ok && !exp.After(now) {
		logger.Info("stored token expired", zap.Time("expiry", exp))
		return ""
	}
	return cfg.Token
}

// saveSession records the signed-in account in the config file.
func saveSession(creds *api.Credentials) error {
	cfg.Email = creds.User.Email
	cfg.Token = creds.Token
	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
