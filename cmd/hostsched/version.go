package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/offlinemark/scheduler/pkg/scheduler"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info := scheduler.GetVersionInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "hostsched %s (%s)\n", info.Version, info.GoVersion)
			if info.GitCommit != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "commit %s built %s\n", info.GitCommit, info.BuildDate)
			}
		},
	}
}
