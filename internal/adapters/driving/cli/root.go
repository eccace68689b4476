// Package cli wires the cobra command tree for omnibar.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omnibar-labs/omnibar-cli/internal/adapters/driven/config/file"
	"github.com/omnibar-labs/omnibar-cli/internal/adapters/driven/storage/sqlite"
	"github.com/omnibar-labs/omnibar-cli/internal/core/ports/driven"
	"github.com/omnibar-labs/omnibar-cli/internal/core/ports/driving"
	"github.com/omnibar-labs/omnibar-cli/internal/core/services"
	"github.com/omnibar-labs/omnibar-cli/internal/logger"
	"github.com/omnibar-labs/omnibar-cli/internal/sources/github"
	"github.com/omnibar-labs/omnibar-cli/internal/sources/static"
	"github.com/omnibar-labs/omnibar-cli/internal/sources/web"
)

// version is the omnibar release version.
const version = "0.1.0"

var (
	verbose   bool
	configDir string
	dataDir   string

	cfgStore    *file.ConfigStore
	watchCancel context.CancelFunc
	metaStore   *sqlite.Store
	registry    *services.SourceRegistry
	session     driving.SuggestSession
)

var rootCmd = &cobra.Command{
	Use:   "omnibar",
	Short: "Federated search suggestions in your terminal",
	Long: `Omnibar aggregates query suggestions from multiple sources
(web search, GitHub, builtin commands) into one ranked list, updating
live as you type.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return initServices(cmd.Name() == "suggest")
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		shutdown()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.omnibar)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.omnibar/data)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initServices builds the source registry and the suggest session from
// the configuration. A one-shot invocation issues a single query and
// exits, so it runs on a semaphore pool instead of resident workers.
func initServices(oneShot bool) error {
	var err error
	cfgStore, err = file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	// Reload tunables edited while the process runs; they take effect
	// on the next query.
	watchCtx, cancel := context.WithCancel(context.Background())
	watchCancel = cancel
	go func() {
		if werr := cfgStore.Watch(watchCtx); werr != nil {
			logger.Warn("config watch stopped: %v", werr)
		}
	}()

	metaStore, err = sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening metadata store: %w", err)
	}

	registry = services.NewSourceRegistry()
	registry.Register(static.NewSource(nil))

	webCfg := web.DefaultConfig()
	if u := cfgStore.GetString("web.suggest_url"); u != "" {
		webCfg.SuggestURL = u
	}
	if u := cfgStore.GetString("web.search_url"); u != "" {
		webCfg.SearchURL = u
	}
	registry.Register(web.NewSource(webCfg, nil))
	registry.SetWebSource(web.SourceID)

	// The GitHub source only participates when a token is configured.
	if token := cfgStore.GetString("github.token"); token != "" {
		registry.Register(github.NewSource(context.Background(), token))
	}

	applyEnabledOverrides()

	clicks := services.NewClickService(metaStore.ClickLog(), configPermission{cfg: cfgStore}, registry)

	settings := services.SettingsFromConfig(cfgStore)
	var pool driven.WorkerPool
	if oneShot {
		pool = services.NewSemaphorePool(settings.PoolMaxWorkers)
	} else {
		pool = services.NewBoundedPool(settings.PoolCoreWorkers, settings.PoolMaxWorkers, settings.PoolKeepAlive)
	}
	session = services.NewSessionWithPool(registry, metaStore.RankingStore(), metaStore.ShortcutStore(), clicks, cfgStore, pool)
	return nil
}

// applyEnabledOverrides disables sources the user switched off in the
// configuration.
func applyEnabledOverrides() {
	for _, src := range registry.Sources() {
		id := src.Info().ID
		key := "sources." + id.String() + ".enabled"
		if _, ok := cfgStore.Get(key); ok {
			registry.SetEnabled(id, cfgStore.GetBool(key))
		}
	}
}

// shutdown releases the config watcher, the session and the metadata
// store.
func shutdown() {
	if watchCancel != nil {
		watchCancel()
		watchCancel = nil
	}
	if session != nil {
		if err := session.Close(); err != nil {
			logger.Warn("closing session: %v", err)
		}
	}
	if metaStore != nil {
		if err := metaStore.Close(); err != nil {
			logger.Warn("closing metadata store: %v", err)
		}
	}
}

// Ensure configPermission implements the interface.
var _ driven.PermissionChecker = configPermission{}

// configPermission gates click logging on the clicklog.enabled key.
// Click logging is opt-in; an absent key means disabled.
type configPermission struct {
	cfg driven.ConfigStore
}

func (p configPermission) CanLogClicks() bool {
	return p.cfg.GetBool("clicklog.enabled")
}
