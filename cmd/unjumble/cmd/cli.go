package cmd

import (
	"github.com/bastiangx/unjumble/internal/cli"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var cliCmd = &cobra.Command{
	Use:   "cli",
	Short: "Interactive prompt, one query per line (default)",
	Args:  cobra.NoArgs,
	RunE:  runCLI,
}

func runCLI(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	idx, err := s.loadIndex()
	if err != nil {
		return err
	}

	log.SetReportTimestamp(false)
	log.Debug("Input info:",
		"prompt", s.config.CLI.Prompt,
		"separator", s.config.CLI.Separator,
		"strategy", idx.Strategy())

	handler := cli.NewInputHandler(idx, cmd.InOrStdin(), cmd.OutOrStdout(), s.config.CLI.Prompt, s.config.CLI.Separator)
	return handler.Start()
}
