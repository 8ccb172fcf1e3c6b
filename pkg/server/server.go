package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bastiangx/unjumble/internal/logger"
	"github.com/bastiangx/unjumble/pkg/config"
	"github.com/bastiangx/unjumble/pkg/index"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/vmihailenco/msgpack/v5"
)

// Querier is the part of the index the server needs.
type Querier interface {
	QueryWord(query string) (index.Result, error)
	Stats() index.Stats
}

// Server handles msgpack IPC for queries
type Server struct {
	index      Querier
	decoder    *msgpack.Decoder
	encoder    *msgpack.Encoder
	writeMu    sync.Mutex
	mu         sync.RWMutex
	settings   config.ServerConfig
	configPath string
	log        *log.Logger
	requests   int
}

// NewServer creates a server on stdin/stdout.
func NewServer(idx Querier, cfg *config.Config, configPath string) *Server {
	return NewServerWithIO(idx, cfg.Server, configPath, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server on the given streams.
func NewServerWithIO(idx Querier, settings config.ServerConfig, configPath string, r io.Reader, w io.Writer) *Server {
	return &Server{
		index:      idx,
		decoder:    msgpack.NewDecoder(r),
		encoder:    msgpack.NewEncoder(w),
		settings:   settings,
		configPath: configPath,
		log:        logger.New("server"),
	}
}

// SetLogger replaces the server's logger.
func (s *Server) SetLogger(l *log.Logger) {
	s.log = l
}

// Start announces readiness and serves requests until the input ends.
// A message that cannot be decoded is answered with an error and stops the
// server, since the stream position is no longer trustworthy.
func (s *Server) Start(ctx context.Context) error {
	s.log.Debug("Starting server")
	if s.currentSettings().WatchConfig && s.configPath != "" {
		if err := s.WatchConfig(ctx); err != nil {
			s.log.Warnf("Config hot reload disabled: %v", err)
		}
	}

	if err := s.send(StatusResponse{Status: "ready"}); err != nil {
		return err
	}

	for {
		var req Request
		if err := s.decoder.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Debug("Client disconnected (EOF)")
				return nil
			}
			s.sendError("", fmt.Sprintf("malformed request: %v", err), CodeInvalidQuery)
			return fmt.Errorf("decoding request: %w", err)
		}
		s.handleRequest(req)

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (s *Server) handleRequest(req Request) {
	s.requests++
	switch strings.ToLower(req.Action) {
	case "", ActionQuery:
		s.handleQuery(req)
	case ActionStats:
		stats := s.index.Stats()
		s.send(StatsResponse{
			ID:       req.ID,
			Entries:  stats.Entries,
			Groups:   stats.Groups,
			Strategy: string(stats.Strategy),
			Requests: s.requests,
		})
	case ActionHealth:
		s.send(StatusResponse{ID: req.ID, Status: "ok"})
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), CodeUnknownAction)
	}
}

func (s *Server) handleQuery(req Request) {
	settings := s.currentSettings()
	query := strings.TrimSpace(req.Query)

	if query == "" {
		s.log.Debug("Query is empty in request", "id", req.ID)
		s.sendError(req.ID, "missing 'q' parameter", CodeEmptyQuery)
		return
	}
	if len(query) > settings.MaxQueryLen {
		s.log.Debug("Query is too long in request", "id", req.ID, "len", len(query))
		s.sendError(req.ID, fmt.Sprintf("query exceeds maximum length of %d characters", settings.MaxQueryLen), CodeQueryTooLong)
		return
	}

	start := time.Now()
	result, err := s.index.QueryWord(query)
	elapsed := time.Since(start)
	if err != nil {
		s.sendError(req.ID, err.Error(), CodeInvalidQuery)
		return
	}

	resp := QueryResponse{
		ID:        req.ID,
		Words:     []string(result),
		Count:     len(result),
		TimeTaken: elapsed.Microseconds(),
	}
	if settings.MaxResults > 0 && len(resp.Words) > settings.MaxResults {
		resp.Words = resp.Words[:settings.MaxResults]
		resp.Truncated = true
	}
	s.log.Debugf("Took [ %v ] for '%s': %d words", elapsed, query, resp.Count)
	s.send(resp)
}

func (s *Server) send(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.encoder.Encode(v); err != nil {
		s.log.Errorf("Encoding response: %v", err)
		return err
	}
	return nil
}

func (s *Server) sendError(id, message string, code int) {
	s.send(QueryError{ID: id, Error: message, Code: code})
}

func (s *Server) currentSettings() config.ServerConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// ReloadConfig re-reads the server section of the config file. hot_cache
// and watch_config are fixed at start; changes to them are logged and kept
// for the next start.
func (s *Server) ReloadConfig() {
	cfg := config.LoadConfig(s.configPath)
	s.mu.Lock()
	old := s.settings
	if cfg.Server.HotCache != old.HotCache {
		s.log.Warn("hot_cache change needs a restart", "running", old.HotCache, "configured", cfg.Server.HotCache)
		cfg.Server.HotCache = old.HotCache
	}
	if cfg.Server.WatchConfig != old.WatchConfig {
		s.log.Warn("watch_config change needs a restart", "running", old.WatchConfig, "configured", cfg.Server.WatchConfig)
		cfg.Server.WatchConfig = old.WatchConfig
	}
	s.settings = cfg.Server
	s.mu.Unlock()
	s.log.Debug("Reloaded config",
		"max_query_len", cfg.Server.MaxQueryLen,
		"max_results", cfg.Server.MaxResults)
}

// WatchConfig reloads settings whenever the config file is written or
// replaced. The watcher stops when ctx is done.
func (s *Server) WatchConfig(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Editors often save by renaming over the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(s.configPath)); err != nil {
		watcher.Close()
		return err
	}
	target := filepath.Clean(s.configPath)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					s.ReloadConfig()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Warnf("Config watcher: %v", err)
			}
		}
	}()
	return nil
}
