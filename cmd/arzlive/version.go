package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arzlive/arzlive/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info := version.Get()
			fmt.Fprintf(cmd.OutOrStdout(), "arzlive %s\ncommit: %s\nbuilt: %s\ngo: %s\n",
				info.Version, info.Commit, info.BuildTime, info.GoVersion)
		},
	}
}
