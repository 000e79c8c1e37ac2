package main

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/arzlive/arzlive/internal/fa"
	"github.com/arzlive/arzlive/internal/history"
	"github.com/arzlive/arzlive/internal/storage"
)

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "Print the persisted price history",
		Long: `Print the persisted price history of one instrument, or a summary of
every persisted series when no id is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(ctx, opts)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Logging, cmd.ErrOrStderr())

			backend, err := storage.Open(ctx, cfg.Storage, logger)
			if err != nil {
				return err
			}
			defer backend.Close()

			series, err := history.Read(ctx, backend, cfg.History.Key)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				pts, ok := series[args[0]]
				if !ok {
					return fmt.Errorf("no history for %q", args[0])
				}
				if asJSON {
					return json.NewEncoder(out).Encode(pts)
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "TIMESTAMP\tPRICE")
				for _, p := range pts {
					fmt.Fprintf(tw, "%s\t%s\n", p.Timestamp.Format(time.RFC3339), fa.FormatNumber(p.Price))
				}
				return tw.Flush()
			}

			if asJSON {
				return json.NewEncoder(out).Encode(series)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPOINTS\tFIRST\tLAST")
			for _, id := range slices.Sorted(maps.Keys(series)) {
				pts := series[id]
				if len(pts) == 0 {
					fmt.Fprintf(tw, "%s\t0\t-\t-\n", id)
					continue
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", id, len(pts),
					pts[0].Timestamp.Format(time.RFC3339), pts[len(pts)-1].Timestamp.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
