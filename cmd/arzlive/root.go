package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arzlive/arzlive/internal/config"
	"github.com/arzlive/arzlive/internal/version"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "arzlive",
		Short: "Live currency, gold and crypto prices in Toman",
		Long: `arzlive polls a market-data feed for currency, gold and cryptocurrency
prices, normalizes them to Toman, keeps a bounded price history per
instrument and serves the catalog over HTTP and WebSocket.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file (defaults and ARZLIVE_* env when empty)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCmd(opts),
		newPollCmd(opts),
		newHistoryCmd(opts),
		newWatchCmd(opts),
		newVersionCmd(),
	)

	return cmd
}

// newLogger builds the slog handler selected by the logging config.
func newLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, hopts)
	} else {
		h = slog.NewTextHandler(w, hopts)
	}
	return slog.New(h)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
