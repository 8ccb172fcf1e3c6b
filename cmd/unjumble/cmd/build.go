package cmd

import (
	"errors"
	"fmt"

	"github.com/bastiangx/unjumble/internal/utils"
	"github.com/bastiangx/unjumble/pkg/cache"
	"github.com/spf13/cobra"
)

var backendFlag string

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the index cache from the word lists",
	Args:  cobra.NoArgs,
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&backendFlag, "backend", "", "Cache backend: text, bolt or auto (overrides [cache] backend)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	if backendFlag != "" {
		s.config.Cache.Backend = backendFlag
	}
	store, err := s.store()
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("cache is disabled; nothing to build")
	}

	idx, stats, err := cache.Rebuild(store, s.sources, s.config.IndexOptions())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Indexed %s words from %d word lists into %s\n",
		utils.FormatWithCommas(idx.Len()), stats.Sources-stats.SkippedSources, store.Path())
	fmt.Fprintf(out, "Skipped %s invalid, %s too short, %s duplicates, %d unreadable lists\n",
		utils.FormatWithCommas(stats.Invalid),
		utils.FormatWithCommas(stats.TooShort),
		utils.FormatWithCommas(stats.Duplicates),
		stats.SkippedSources)
	return nil
}
