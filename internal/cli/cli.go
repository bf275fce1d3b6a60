// Package cli implements the graphview command-line interface.
package cli

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphview/pkg/buildinfo"
	"github.com/matzehuels/graphview/pkg/graphsync"
	"github.com/matzehuels/graphview/pkg/source"
	"github.com/matzehuels/graphview/pkg/source/file"
	"github.com/matzehuels/graphview/pkg/source/mongo"
	"github.com/matzehuels/graphview/pkg/statecache"
	"github.com/matzehuels/graphview/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "graphview"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		Config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "graphview",
		Short:        "GraphView keeps an interactive graph in sync with its data source",
		Long:         `GraphView loads hierarchical graph data from a source (file, MongoDB), keeps an interactive view of it synchronized across reloads, and persists per-graph view state (positions, camera, selection, collapsed groups) between sessions.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/graphview/config.toml)")

	// Register all subcommands
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.reloadCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.stateCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Session Factory
// =============================================================================

// session bundles what a graph command needs: the resolved source binding,
// the synchronization engine, and the persisted-state cache.
type session struct {
	sourceType string
	descriptor string
	registry   *source.Registry
	engine     *graphsync.Engine
	states     *statecache.Cache
	store      storage.Store
}

// newSession resolves the source binding (flags override config) and opens
// the configured state store. Callers must Close the session.
func (c *CLI) newSession(sourceType, descriptor string) (*session, error) {
	st, desc := c.Config.resolveSource(sourceType, descriptor)
	if desc == "" {
		return nil, fmt.Errorf("no data source: pass one as an argument or set [source] in the config")
	}

	store, err := c.newStore()
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}

	registry := source.NewRegistry(
		file.New(),
		mongo.New(c.Config.mongoConfig()),
	)

	return &session{
		sourceType: st,
		descriptor: desc,
		registry:   registry,
		engine:     graphsync.NewEngine(c.Logger),
		states:     statecache.New(store, c.Logger),
		store:      store,
	}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// load is the session's LoadFunc, bound to the resolved source.
func (s *session) load(ctx context.Context) (*graphsync.DataSet, error) {
	return s.registry.Reload(ctx, s.sourceType, s.descriptor)
}

// stateKey identifies the persisted view state for this source. The
// descriptor is hashed so file paths and connection URIs make safe keys.
func (s *session) stateKey() string {
	sum := sha256.Sum256([]byte(s.sourceType + "\x00" + s.descriptor))
	return fmt.Sprintf("viewstate/%x", sum[:8])
}

// newStore opens the storage backend named in the config.
func (c *CLI) newStore() (storage.Store, error) {
	switch c.Config.Storage.Backend {
	case "memory":
		return storage.NewMemoryStore(), nil
	case "redis":
		return storage.NewRedisStore(context.Background(), storage.RedisOptions{
			Addr:     c.Config.Storage.Redis.Addr,
			Password: c.Config.Storage.Redis.Password,
			DB:       c.Config.Storage.Redis.DB,
			Prefix:   c.Config.Storage.Redis.Prefix,
		})
	default:
		dir := c.Config.Storage.Dir
		if dir == "" {
			var err error
			dir, err = stateDir()
			if err != nil {
				return nil, err
			}
		}
		return storage.NewFileStore(dir)
	}
}

// =============================================================================
// Paths
// =============================================================================

// stateDir returns the state directory using XDG standard (~/.local/state/graphview/).
func stateDir() (string, error) {
	if stateHome := os.Getenv("XDG_STATE_HOME"); stateHome != "" {
		return filepath.Join(stateHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/graphview/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
