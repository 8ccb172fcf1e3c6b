/*
Package config manages TOML config for unjumble.

The file is created with defaults on first run. A file that fails to decode
is parsed again section by section, so one bad value only costs that value
and everything else keeps the user's settings.

An example file (patterns defaults to every file under words_dir):

	[dict]
	words_dir = "words"
	patterns = ["english-words.*"]
	single_letter_words = ["a", "i"]
	dedupe = true
	strategy = "trie"

	[cache]
	enabled = true
	path = ""
	backend = "auto"

	[server]
	max_query_len = 64
	max_results = 0
	hot_cache = 1024
	watch_config = true

	[cli]
	prompt = "> "
	separator = ", "
*/
package config

import (
	"path/filepath"

	"github.com/bastiangx/unjumble/internal/utils"
	"github.com/bastiangx/unjumble/pkg/dictionary"
	"github.com/bastiangx/unjumble/pkg/index"
	"github.com/charmbracelet/log"
)

// FileName is the config file name inside the config dir.
const FileName = "config.toml"

// CacheFileName is the default cache file name inside the config dir.
const CacheFileName = "index.txt"

// Config holds the entire config structure
type Config struct {
	Dict   DictConfig   `toml:"dict"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	CLI    CliConfig    `toml:"cli"`
}

// DictConfig controls word list discovery and index building.
type DictConfig struct {
	WordsDir          string   `toml:"words_dir"`
	Patterns          []string `toml:"patterns"`
	SingleLetterWords []string `toml:"single_letter_words"`
	Dedupe            bool     `toml:"dedupe"`
	Strategy          string   `toml:"strategy"`
}

// CacheConfig controls index persistence.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
	Backend string `toml:"backend"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxQueryLen int  `toml:"max_query_len"`
	MaxResults  int  `toml:"max_results"`
	HotCache    int  `toml:"hot_cache"`
	WatchConfig bool `toml:"watch_config"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	Prompt    string `toml:"prompt"`
	Separator string `toml:"separator"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Dict: DictConfig{
			WordsDir:          "words",
			Patterns:          append([]string(nil), dictionary.DefaultPatterns...),
			SingleLetterWords: append([]string(nil), index.DefaultSingleLetterWords...),
			Dedupe:            true,
			Strategy:          string(index.StrategyTrie),
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    "",
			Backend: "auto",
		},
		Server: ServerConfig{
			MaxQueryLen: 64,
			MaxResults:  0,
			HotCache:    1024,
			WatchConfig: true,
		},
		CLI: CliConfig{
			Prompt:    "> ",
			Separator: ", ",
		},
	}
}

// DefaultConfigPath returns [UserConfigDir]/unjumble/config.toml, or a
// writable fallback.
func DefaultConfigPath() (string, error) {
	resolver, err := utils.NewPathResolver()
	if err != nil {
		return "", err
	}
	return resolver.GetConfigPath(FileName), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/unjumble/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string) {
	if customConfigPath != "" {
		if utils.FileExists(customConfigPath) {
			log.Debugf("Loading config from custom path: %s", customConfigPath)
			return LoadConfig(customConfigPath), customConfigPath
		}
		log.Warnf("Custom config file not found at %s. Trying default path...", customConfigPath)
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), ""
	}
	log.Debugf("Loading config from default path: %s", defaultPath)
	return InitConfig(defaultPath), defaultPath
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) *Config {
	configDir := filepath.Dir(configPath)
	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig()
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig()
		}
		log.Debugf("Created default config file at: %s", configPath)
		config.applyEnvOverrides()
		config.normalize()
		return config
	}
	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file and applies UNJUMBLE_* environment
// overrides. It never fails: unreadable or invalid values fall back to
// defaults with a warning.
func LoadConfig(configPath string) *Config {
	config := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		config = tryPartialParse(configPath)
	}
	config.applyEnvOverrides()
	config.normalize()
	return config
}

// tryPartialParse attempts to parse a TOML file section by section
func tryPartialParse(configPath string) *Config {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config
	}

	if section, ok := utils.ExtractSection(tempConfig, "dict"); ok {
		extractDictConfig(section, &config.Dict)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cache"); ok {
		extractCacheConfig(section, &config.Cache)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	return config
}

// extractDictConfig extracts dictionary configuration from a map
func extractDictConfig(data map[string]any, dict *DictConfig) {
	if val, ok := utils.ExtractString(data, "words_dir"); ok {
		dict.WordsDir = val
	}
	if val, ok := utils.ExtractStringSlice(data, "patterns"); ok {
		dict.Patterns = val
	}
	if val, ok := utils.ExtractStringSlice(data, "single_letter_words"); ok {
		dict.SingleLetterWords = val
	}
	if val, ok := utils.ExtractBool(data, "dedupe"); ok {
		dict.Dedupe = val
	}
	if val, ok := utils.ExtractString(data, "strategy"); ok {
		dict.Strategy = val
	}
}

// extractCacheConfig extracts cache configuration from a map
func extractCacheConfig(data map[string]any, cache *CacheConfig) {
	if val, ok := utils.ExtractBool(data, "enabled"); ok {
		cache.Enabled = val
	}
	if val, ok := utils.ExtractString(data, "path"); ok {
		cache.Path = val
	}
	if val, ok := utils.ExtractString(data, "backend"); ok {
		cache.Backend = val
	}
}

// extractServerConfig extracts server configuration from a map
func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_query_len"); ok {
		server.MaxQueryLen = val
	}
	if val, ok := utils.ExtractInt64(data, "max_results"); ok {
		server.MaxResults = val
	}
	if val, ok := utils.ExtractInt64(data, "hot_cache"); ok {
		server.HotCache = val
	}
	if val, ok := utils.ExtractBool(data, "watch_config"); ok {
		server.WatchConfig = val
	}
}

// extractCliConfig extracts CLI config from a map
func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractString(data, "prompt"); ok {
		cli.Prompt = val
	}
	if val, ok := utils.ExtractString(data, "separator"); ok {
		cli.Separator = val
	}
}

// normalize replaces out-of-range values with defaults.
func (c *Config) normalize() {
	defaults := DefaultConfig()
	if _, err := index.ParseStrategy(c.Dict.Strategy); err != nil {
		log.Warnf("%v, using %s", err, defaults.Dict.Strategy)
		c.Dict.Strategy = defaults.Dict.Strategy
	}
	if len(c.Dict.Patterns) == 0 {
		c.Dict.Patterns = defaults.Dict.Patterns
	}
	if c.Dict.WordsDir == "" {
		c.Dict.WordsDir = defaults.Dict.WordsDir
	}
	if c.Server.MaxQueryLen <= 0 {
		log.Warnf("max_query_len must be positive, using %d", defaults.Server.MaxQueryLen)
		c.Server.MaxQueryLen = defaults.Server.MaxQueryLen
	}
	if c.Server.MaxResults < 0 {
		c.Server.MaxResults = 0
	}
	if c.Server.HotCache < 0 {
		c.Server.HotCache = 0
	}
	if c.CLI.Separator == "" {
		c.CLI.Separator = defaults.CLI.Separator
	}
}

// IndexOptions converts the dict section into index build options.
func (c *Config) IndexOptions() index.Options {
	strategy, err := index.ParseStrategy(c.Dict.Strategy)
	if err != nil {
		strategy = index.StrategyTrie
	}
	return index.Options{
		SingleLetterWords: append([]string(nil), c.Dict.SingleLetterWords...),
		Dedupe:            c.Dict.Dedupe,
		Strategy:          strategy,
	}
}

// CachePath returns the configured cache path, or index.txt next to the
// config file when none is set.
func (c *Config) CachePath(configPath string) string {
	if c.Cache.Path != "" {
		return c.Cache.Path
	}
	if configPath != "" {
		return filepath.Join(filepath.Dir(configPath), CacheFileName)
	}
	resolver, err := utils.NewPathResolver()
	if err != nil {
		return CacheFileName
	}
	return resolver.GetConfigPath(CacheFileName)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := DefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
