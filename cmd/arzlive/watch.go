package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arzlive/arzlive/internal/connection"
	"github.com/arzlive/arzlive/internal/server"
)

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var (
		url    string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a running server's snapshot stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig(ctx, opts)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Logging, cmd.ErrOrStderr())

			if url == "" {
				url = streamURL(cfg.Server.Addr)
			}

			wcfg := connection.DefaultWatcherConfig()
			wcfg.Client.URL = url
			out := cmd.OutOrStdout()

			w := connection.NewWatcher(wcfg, func(msg connection.TimestampedMessage) {
				if err := printEvent(out, msg.Data, asJSON); err != nil {
					logger.Warn("skipping stream message", "err", err)
				}
			}, logger)
			return w.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "stream URL (defaults to ws://<server.addr>/ws)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print each event as one JSON line")
	return cmd
}

// streamURL turns a listen address into a dialable stream URL.
func streamURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "ws://" + addr + "/ws"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "ws://" + net.JoinHostPort(host, port) + "/ws"
}

// printEvent renders one stream event.
func printEvent(w io.Writer, data []byte, asJSON bool) error {
	var ev server.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	if asJSON {
		_, err := fmt.Fprintln(w, string(data))
		return err
	}

	fmt.Fprintf(w, "%s cycle=%s assets=%d updated=%d\n",
		ev.Data.StartedAt.Format("2006-01-02 15:04:05"), ev.Data.CycleID, len(ev.Data.Assets), len(ev.Data.Updated))
	if ev.Data.Err != "" {
		fmt.Fprintln(w, ev.Data.Err)
	}
	return printCatalog(w, ev.Data)
}
