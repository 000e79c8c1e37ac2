package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arzlive/arzlive/internal/fa"
	"github.com/arzlive/arzlive/internal/snapshot"
)

func newPollCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Run one poll cycle and print the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(ctx, opts)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Logging, cmd.ErrOrStderr())

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.builder.Restore(ctx); err != nil {
				logger.Warn("history store unreadable, writes held back until it recovers", "err", err)
			}
			res := a.builder.PollOnce(ctx)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			if res.Err != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), res.Err)
			}
			return printCatalog(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}

// printCatalog writes one row per asset with Persian-formatted prices.
func printCatalog(w io.Writer, res snapshot.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tNAME\tPRICE (TOMAN)\tCHANGE %%\tUPDATED\n")
	for _, a := range res.Assets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%+.2f\t%s\n",
			a.ID, a.NameFa, fa.FormatNumber(a.Price), a.ChangePercent, a.AsOf.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
