// Command hostsched solves host rotas described in YAML roster files.
//
//	hostsched solve sunday.yaml weekday.yaml --output json
//	hostsched version
//
// solve exits with status 2 when some roster has no schedule and 1 on
// any other failure.
package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// errNoSchedule reports that at least one roster has no schedule.
var errNoSchedule = errors.New("no schedule exists for some rosters")

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	logger := log.New()
	logger.SetOutput(errOut)
	logger.SetLevel(log.WarnLevel)

	rootCmd := &cobra.Command{
		Use:   "hostsched",
		Short: "Assign hosts to recurring events",
		Long: `hostsched reads roster files listing events and the hosts that can
attend them, and prints a schedule that gives every event the required number
of hosts while respecting availability and per-host caps.`,
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				logger.SetLevel(log.DebugLevel)
			}
			return nil
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newSolveCmd(logger), newVersionCmd())
	return rootCmd
}

func main() {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errNoSchedule) {
			os.Exit(2)
		}
		log.New().WithError(err).Error("hostsched failed")
		os.Exit(1)
	}
}
