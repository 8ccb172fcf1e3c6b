package config

import (
	"os"
	"strconv"

	"github.com/charmbracelet/log"
)

// Environment variables that override the config file.
const (
	EnvWordsDir  = "UNJUMBLE_WORDS_DIR"
	EnvStrategy  = "UNJUMBLE_STRATEGY"
	EnvCache     = "UNJUMBLE_CACHE"
	EnvCachePath = "UNJUMBLE_CACHE_PATH"
)

func (c *Config) applyEnvOverrides() {
	if env := os.Getenv(EnvWordsDir); env != "" {
		c.Dict.WordsDir = env
	}
	if env := os.Getenv(EnvStrategy); env != "" {
		c.Dict.Strategy = env
	}
	if env := os.Getenv(EnvCache); env != "" {
		enabled, err := strconv.ParseBool(env)
		if err != nil {
			log.Warnf("Ignoring %s=%q: %v", EnvCache, env, err)
		} else {
			c.Cache.Enabled = enabled
		}
	}
	if env := os.Getenv(EnvCachePath); env != "" {
		c.Cache.Path = env
	}
}
