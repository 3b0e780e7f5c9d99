package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"librarydesk/internal/cache"
	"librarydesk/internal/config"
	"librarydesk/internal/repository"
	"librarydesk/internal/storage"
)

var (
	// Global flags
	storeDriver string
	jsonOutput  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "libraryctl",
	Short: "Operator tool for the library desk",
	Long: `libraryctl manages the library store directly, without the HTTP API.

It reads the same environment (or .env file) as the server.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storeDriver, "store", "", "Store driver override (mysql, postgres, sqlite, mongo)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// env bundles what every subcommand needs.
type env struct {
	cfg   *config.Config
	store repository.Store
	cache *cache.Client

	closers []func() error
}

// Close releases everything openEnv and later helpers opened, newest first.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i]()
	}
}

func loadConfig() *config.Config {
	cfg := config.Load()
	if storeDriver != "" {
		cfg.StoreDriver = storeDriver
	}
	return cfg
}

func openEnv(ctx context.Context, migrate bool) (*env, error) {
	cfg := loadConfig()
	store, closeStore, err := storage.Open(ctx, cfg, storage.Options{Migrate: migrate})
	if err != nil {
		return nil, err
	}
	c := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	return &env{
		cfg:     cfg,
		store:   store,
		cache:   c,
		closers: []func() error{closeStore, c.Close},
	}, nil
}
