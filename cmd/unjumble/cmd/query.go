package cmd

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query <letters>...",
	Short: "Print the words formed from each argument, one line per argument",
	Long: "Prints one line per argument with the matching words joined by the\n" +
		"[cli] separator. A query with no matches prints an empty line.\n" +
		"Exits with code 2 if any argument has characters outside a-z.",
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	idx, err := s.loadIndex()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	invalid := 0
	for _, letters := range args {
		result, err := idx.QueryWord(letters)
		if err != nil {
			log.Errorf("%v", err)
			invalid++
			continue
		}
		fmt.Fprintln(out, result.Join(s.config.CLI.Separator))
	}
	if invalid > 0 {
		return exitError{code: 2}
	}
	return nil
}
