// Package cmd implements the multishot command line interface.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/pipelab/multishot/api"
	"github.com/pipelab/multishot/internal/config"
	"github.com/pipelab/multishot/internal/logging"
	"github.com/pipelab/multishot/internal/model"
	"github.com/pipelab/multishot/internal/naming"
	"github.com/pipelab/multishot/internal/resolve"
	"github.com/pipelab/multishot/internal/tokens"
	"github.com/pipelab/multishot/internal/vcache"
)

var (
	configPath  string
	platform    string
	sessionPath string
	logLevel    string
	logFormat   string
)

var rootCmd = &cobra.Command{
	Use:           "multishot",
	Short:         "Context-aware path resolution for multi-shot scenes",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logging.New(logging.Options{Level: logLevel, Format: logFormat})
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the project config JSON")
	rootCmd.PersistentFlags().StringVarP(&platform, "platform", "p", "", "Platform key for root mapping (default: current OS)")
	rootCmd.PersistentFlags().StringVarP(&sessionPath, "session", "s", "", "Path to the sqlite session file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// engineParts bundles the pieces assembled from a validated config.
type engineParts struct {
	cfg      *api.Config
	table    *tokens.Table
	registry *tokens.Registry
	codec    *naming.Codec
	cache    *vcache.Cache
	resolver *resolve.Resolver
}

// loadEngine loads the config and assembles the runtime around it.
func loadEngine() (*engineParts, error) {
	if configPath == "" {
		return nil, errors.New("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	table, reg, codec, err := config.Assemble(cfg)
	if err != nil {
		return nil, err
	}

	plat := platform
	if plat == "" {
		plat = config.CurrentPlatform()
	}
	roots, err := config.RootsForPlatform(cfg, plat)
	if err != nil {
		return nil, err
	}

	cache := vcache.New(osfs.New("/"), codec)
	return &engineParts{
		cfg:      cfg,
		table:    table,
		registry: reg,
		codec:    codec,
		cache:    cache,
		resolver: &resolve.Resolver{
			Templates: reg,
			Cache:     cache,
			Roots:     roots,
			Static:    cfg.StaticPaths,
			Project:   cfg.Project.Code,
			Logger:    slog.Default(),
		},
	}, nil
}

// parseShotID parses an "Ep04_sq0070_SH0170" style identifier.
func parseShotID(s string) (model.ShotID, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 3 {
		return model.ShotID{}, fmt.Errorf("invalid shot identifier %q (want episode_sequence_shot)", s)
	}
	return model.ShotID{Episode: parts[0], Sequence: parts[1], Code: parts[2]}, nil
}
