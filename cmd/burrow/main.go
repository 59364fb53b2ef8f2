package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/burrowhq/burrow/pkg/core"
	"github.com/burrowhq/burrow/pkg/deferred"
	"github.com/burrowhq/burrow/pkg/executor"
	"github.com/burrowhq/burrow/pkg/idempotency"
	"github.com/burrowhq/burrow/pkg/log"
	"github.com/burrowhq/burrow/pkg/metrics"
	"github.com/burrowhq/burrow/pkg/middleware"
	"github.com/burrowhq/burrow/pkg/module"
	"github.com/burrowhq/burrow/pkg/modules/texttemplates"
	"github.com/burrowhq/burrow/pkg/registry"
	"github.com/burrowhq/burrow/pkg/runtime"
	"github.com/burrowhq/burrow/pkg/sweeper"
	"github.com/burrowhq/burrow/pkg/types"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var (
	configDir   string
	metricsAddr string
	logLevel    string
	jsonLogs    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "burrow",
	Short: "Burrow - Multi-tenant service dispatch runtime",
	Long: `Burrow routes named service operations through per-tenant provider
bindings, wraps each call in a middleware chain with timeouts, retries,
idempotency and deferred-completion handling, and publishes lifecycle
events on an in-process bus. Tenant configuration is hot-swapped at
runtime by attaching and detaching modules.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Burrow version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "./tenants", "Directory of per-tenant YAML configs")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit JSON logs")

	serveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Prometheus metrics listen address")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(composeCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Burrow version %s\nCommit: %s\nBuilt: %s\n", Version, Commit, BuildTime)
	},
}

// buildApp wires the full runtime: core app, middleware chain, stores,
// module catalog and config manager
func buildApp() (*core.App, *runtime.ConfigManager, *sweeper.Sweeper) {
	idemStore := idempotency.NewMemoryStore()
	defStore := deferred.NewMemoryStore()

	chain := middleware.NewChain(
		middleware.Logging(log.WithComponent("dispatch")),
		middleware.Idempotency(idemStore, middleware.DefaultResultTTL, middleware.DefaultLockTTL),
	)

	app := core.New(
		executor.WithChain(chain),
		executor.WithDeferredStore(defStore),
	)

	modules := module.NewManager(app)
	modules.Register(texttemplates.New())

	manager := runtime.NewConfigManager(app, modules)

	sw := sweeper.NewSweeper(time.Minute,
		sweeper.Target{Name: "idempotency", Store: idemStore},
		sweeper.Target{Name: "deferred", Store: defStore},
	)

	return app, manager, sw
}

func initLogging() {
	log.Setup(log.Options{
		Level:   logLevel,
		Console: !jsonLogs,
	})
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dispatch runtime, watching tenant configs for changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		initLogging()

		_, manager, sw := buildApp()
		ctx := cmd.Context()

		store := runtime.NewFileConfigStore(configDir)
		tenants, err := store.ListTenants(ctx)
		if err != nil {
			return err
		}
		for _, tenantID := range tenants {
			if err := manager.ApplyFromStore(ctx, store, tenantID); err != nil {
				log.Logger.Error().Err(err).Str("tenant_id", tenantID).Msg("Failed to apply tenant config")
			}
		}

		watcher, err := runtime.NewConfigWatcher(configDir, store, manager)
		if err != nil {
			return err
		}
		watcher.Start()
		defer watcher.Stop()

		sw.Start()
		defer sw.Stop()

		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			log.Logger.Info().Str("addr", metricsAddr).Msg("Metrics server listening")
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				log.Logger.Error().Err(err).Msg("Metrics server failed")
			}
		}()

		log.Logger.Info().
			Int("tenants", len(tenants)).
			Str("config_dir", configDir).
			Msg("Burrow started")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Logger.Info().Msg("Burrow stopped")
		return nil
	},
}

var composeCmd = &cobra.Command{
	Use:   "compose <tenant> <template-key> [key=value ...]",
	Short: "Render a template through the full dispatch path",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		initLogging()

		app, manager, _ := buildApp()
		ctx := cmd.Context()

		tenantID := args[0]
		templateKey := args[1]

		store := runtime.NewFileConfigStore(configDir)
		if err := manager.ApplyFromStore(ctx, store, tenantID); err != nil {
			return err
		}

		variables := make(map[string]any)
		for _, arg := range args[2:] {
			for i := 0; i < len(arg); i++ {
				if arg[i] == '=' {
					variables[arg[:i]] = arg[i+1:]
					break
				}
			}
		}

		rc := runtime.NewContext(tenantID)
		call := rc.ServiceCall(
			runtime.WithTimeout(5*time.Second),
			runtime.WithMaxAttempts(1),
		)

		key := registry.ServiceKey[types.TextComposer]()
		composer, err := registry.ResolveAs[types.TextComposer](app.Registry, tenantID, key)
		if err != nil {
			return err
		}

		res, err := app.Executor.Call(ctx, executor.Request{
			ServiceKey: key,
			Call:       call,
			OpName:     "text_compose",
			Fn: func(ctx context.Context) (types.Result, error) {
				return composer.Compose(ctx, call, types.TextComposeIn{
					Locale:      rc.Locale,
					TemplateKey: templateKey,
					Variables:   variables,
				})
			},
		})
		if err != nil {
			return err
		}

		if res.Status != types.StatusOK {
			return fmt.Errorf("compose failed: %s (%s)", res.Err.Message, res.Err.Code)
		}

		out := res.Data.(types.TextComposeOut)
		fmt.Println(out.Text)
		return nil
	},
}
