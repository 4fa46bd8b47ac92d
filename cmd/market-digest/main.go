// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the market-digest CLI. It gathers
// financial headlines from configured sites and news search, analyzes them
// and prints a chat-ready digest; watch delivers it daily to subscribers.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/market-digest/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// configErr holds a config file read failure, reported before any
// subcommand runs.
var configErr error

// log is built from the log config before any subcommand runs.
var log = logrus.New()

// rootCmd is the base command for the market-digest CLI.
var rootCmd = &cobra.Command{
	Use:   "market-digest",
	Short: "Financial news digests from market sites and news search",
	Long: `market-digest collects market headlines from financial news sites and
Google News, removes duplicates, ranks them by relevance or recency, extracts
index movements and trending topics, and renders a Markdown digest sized for
a chat message.

Use digest for a one-off run, watch for the scheduled daily update, and
subscribers to manage who receives it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return configErr
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		l, err := logging.FromConfig(cfg.Log, os.Stderr)
		if err != nil {
			return err
		}
		log = l
		if f := viper.ConfigFileUsed(); f != "" {
			log.WithField("file", f).Debug("using config file")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./market-digest.yaml or ~/.config/market-digest/market-digest.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	// A missing .env is fine.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("market-digest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "market-digest"))
		}
	}

	viper.SetEnvPrefix("MARKET_DIGEST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			configErr = fmt.Errorf("reading config: %w", err)
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
