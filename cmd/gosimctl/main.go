// Package main implements gosimctl, a command-line client for the GoSim
// backend API.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-sim-client/config"
	"github.com/GoSim-25-26J-441/go-sim-client/internal/apiclient"
	"github.com/GoSim-25-26J-441/go-sim-client/internal/logging"
	projectsclient "github.com/GoSim-25-26J-441/go-sim-client/internal/projects/client"
	usersclient "github.com/GoSim-25-26J-441/go-sim-client/internal/users/client"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := newRootCmd(cfg.API).Execute(); err != nil {
		os.Exit(1)
	}
}

// rootOptions holds the persistent flags and the clients built from them.
type rootOptions struct {
	server   string
	token    string
	timeout  time.Duration
	jsonOut  bool
	logLevel string
	stats    bool

	logger   *zap.Logger
	registry *prometheus.Registry
	projects *projectsclient.Client
	users    *usersclient.Client
}

func newRootCmd(defaults config.APIConfig) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "gosimctl",
		Short: "CLI for the GoSim backend API",
		Long: `gosimctl is a command-line interface for the GoSim backend.
It manages projects, their assets and processes, and the caller's API key.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.connect()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
			if opts.stats {
				return writeStats(cmd.ErrOrStderr(), opts.registry)
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.server, "server", defaults.BaseURL, "backend base URL")
	flags.StringVar(&opts.token, "token", defaults.Token, "bearer token sent with every request")
	flags.DurationVar(&opts.timeout, "timeout", defaults.Timeout, "request timeout")
	flags.BoolVar(&opts.jsonOut, "json", false, "output results as JSON")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flags.BoolVar(&opts.stats, "stats", false, "print request counts per operation to stderr")

	cmd.AddCommand(newProjectsCmd(opts))
	cmd.AddCommand(newAssetsCmd(opts))
	cmd.AddCommand(newProcessesCmd(opts))
	cmd.AddCommand(newAPIKeyCmd(opts))
	return cmd
}

func (o *rootOptions) connect() error {
	logger, err := logging.New(o.logLevel, "production")
	if err != nil {
		return err
	}
	o.logger = logger
	o.registry = prometheus.NewRegistry()

	api, err := apiclient.New(o.server,
		apiclient.WithTimeout(o.timeout),
		apiclient.WithBearerToken(o.token),
		apiclient.WithLogger(logger),
		apiclient.WithUserAgent("gosimctl/"+version),
		apiclient.WithObserver(apiclient.NewMetrics(o.registry)),
	)
	if err != nil {
		return fmt.Errorf("invalid --server: %w", err)
	}
	o.projects = projectsclient.New(api)
	o.users = usersclient.New(api)
	return nil
}
