package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// AppDirName names the per-user config and cache directory.
const AppDirName = "unjumble"

// PathResolver finds the words dir, config file and cache file relative to
// the executable, the working directory and the user config dir.
type PathResolver struct {
	executableDir string
	homeDir       string
	configDir     string
}

// NewPathResolver creates a new path resolver that determines the executable location
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executableDir: filepath.Dir(execPath),
		homeDir:       homeDir,
		configDir:     getConfigDir(homeDir),
	}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s", pr.executableDir, pr.configDir)
	return pr, nil
}

// getConfigDir returns the appropriate config directory for the platform
func getConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, AppDirName)
		}
		return filepath.Join(homeDir, ".config", AppDirName)
	case "darwin":
		return filepath.Join(homeDir, ".config", AppDirName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppDirName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", AppDirName)
	default:
		return filepath.Join(homeDir, "."+AppDirName)
	}
}

// ConfigDir returns the per-user config directory.
func (pr *PathResolver) ConfigDir() string {
	return pr.configDir
}

// wordsDirCandidates lists the places a words dir may live, most specific first.
func (pr *PathResolver) wordsDirCandidates(userSpecifiedPath string) []string {
	var candidates []string
	if filepath.IsAbs(userSpecifiedPath) {
		return append(candidates, userSpecifiedPath)
	}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, userSpecifiedPath))
	}
	return append(candidates,
		filepath.Join(pr.executableDir, userSpecifiedPath),
		filepath.Join(pr.executableDir, "words"),
		filepath.Join(filepath.Dir(pr.executableDir), "words"),
		filepath.Join(pr.configDir, "words"),
	)
}

// GetWordsDir resolves the directory holding the word lists. When no
// candidate holds any file, the first candidate is returned so the caller
// reports a meaningful path.
func (pr *PathResolver) GetWordsDir(userSpecifiedPath string) string {
	candidates := pr.wordsDirCandidates(userSpecifiedPath)
	for _, path := range candidates {
		if HasVisibleFiles(path) {
			log.Debugf("Found words directory: %s", path)
			return path
		}
		log.Debugf("Words directory candidate not valid: %s", path)
	}
	return candidates[0]
}

// GetConfigPath returns the full path for a file in the config directory,
// falling back to other writable locations.
func (pr *PathResolver) GetConfigPath(filename string) string {
	if WritableDir(pr.configDir) {
		return filepath.Join(pr.configDir, filename)
	}

	fallbackDirs := []string{
		filepath.Join(pr.homeDir, "."+AppDirName),
		filepath.Join(os.TempDir(), AppDirName),
		pr.executableDir,
	}
	for _, dir := range fallbackDirs {
		if WritableDir(dir) {
			path := filepath.Join(dir, filename)
			log.Warnf("Using fallback location: %s", path)
			return path
		}
	}

	tempPath := filepath.Join(os.TempDir(), filename)
	log.Warnf("Using temporary file: %s", tempPath)
	return tempPath
}
