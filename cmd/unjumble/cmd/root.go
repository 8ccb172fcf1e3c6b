package cmd

import (
	"context"
	"fmt"

	"github.com/bastiangx/unjumble/internal/logger"
	"github.com/bastiangx/unjumble/internal/utils"
	"github.com/bastiangx/unjumble/pkg/cache"
	"github.com/bastiangx/unjumble/pkg/config"
	"github.com/bastiangx/unjumble/pkg/dictionary"
	"github.com/bastiangx/unjumble/pkg/index"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	configFlag  string
	debugFlag   bool
	wordsFlag   string
	noCacheFlag bool
)

var rootCmd = &cobra.Command{
	Use:   AppName,
	Short: "unjumble: every word you can spell from a set of letters",
	Long: "Finds all dictionary words formed from a subset of the given letters,\n" +
		"each letter used at most as often as it appears.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetDebug(debugFlag)
	},
	RunE: runCLI,
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFlag, "config", "", "Path to a custom config file")
	flags.BoolVarP(&debugFlag, "debug", "d", false, "Toggle debug mode")
	flags.StringVar(&wordsFlag, "words", "", "Directory containing the word lists (overrides [dict] words_dir)")
	flags.BoolVar(&noCacheFlag, "no-cache", false, "Build the index from the word lists and skip the cache")

	rootCmd.AddCommand(cliCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(versionCmd)
}

// session is what every command needs once flags and config are resolved.
type session struct {
	config     *config.Config
	configPath string
	wordsDir   string
	sources    []dictionary.Source
}

func newSession() (*session, error) {
	cfg, configPath := config.LoadConfigWithPriority(configFlag)
	if wordsFlag != "" {
		cfg.Dict.WordsDir = wordsFlag
	}
	if noCacheFlag {
		cfg.Cache.Enabled = false
	}

	resolver, err := utils.NewPathResolver()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize path resolver: %w", err)
	}
	wordsDir := resolver.GetWordsDir(cfg.Dict.WordsDir)
	log.Debugf("Using words dir at: %s", wordsDir)

	sources, err := dictionary.Discover(wordsDir, cfg.Dict.Patterns)
	if err != nil {
		return nil, fmt.Errorf("failed to find word lists: %w", err)
	}
	return &session{config: cfg, configPath: configPath, wordsDir: wordsDir, sources: sources}, nil
}

// store returns nil when the cache is disabled.
func (s *session) store() (cache.Store, error) {
	if !s.config.Cache.Enabled {
		return nil, nil
	}
	return cache.Open(s.config.CachePath(s.configPath), s.config.Cache.Backend)
}

// loadIndex opens the index from cache or builds it from the word lists.
func (s *session) loadIndex() (*index.Index, error) {
	store, err := s.store()
	if err != nil {
		return nil, err
	}
	idx, origin, err := cache.LoadOrBuild(store, s.sources, s.config.IndexOptions())
	if err != nil {
		return nil, err
	}
	log.Debugf("Index ready from %s: %s words", origin, utils.FormatWithCommas(idx.Len()))
	return idx, nil
}
