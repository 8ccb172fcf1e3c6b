package cmd

import (
	"os"

	"github.com/bastiangx/unjumble/internal/utils"
	"github.com/bastiangx/unjumble/pkg/index"
	"github.com/bastiangx/unjumble/pkg/server"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve msgpack queries on stdin/stdout",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	idx, err := s.loadIndex()
	if err != nil {
		return err
	}

	log.Debug("spawning IPC")
	var querier server.Querier = idx
	if size := s.config.Server.HotCache; size > 0 {
		log.Debugf("Hot cache holds up to %d results", size)
		querier = index.NewHotCache(idx, size)
	}
	srv := server.NewServer(querier, s.config, s.configPath)
	showStartupInfo(s.wordsDir, idx)
	return srv.Start(cmd.Context())
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(wordsDir string, idx *index.Index) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("===========")
	println(" Unjumble ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Infof("words dir: ( %s )", wordsDir)
	log.Infof("index: %s words, strategy %s", utils.FormatWithCommas(idx.Len()), idx.Strategy())
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
