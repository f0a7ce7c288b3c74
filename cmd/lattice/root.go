package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/lattice/internal/adapters/file"
	"github.com/aretw0/lattice/internal/adapters/redis"
	"github.com/aretw0/lattice/internal/adapters/sqlite"
	"github.com/aretw0/lattice/internal/config"
	"github.com/aretw0/lattice/pkg/adapters/memory"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lattice",
	Short: "Lattice is a headless workflow canvas engine",
	Long:  `Lattice stores node-and-connection workflows and answers the geometry queries a visual editor needs: port snapping, connection paths, and toolbar placement.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "lattice.yaml", "Path to the configuration file")
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// openStore builds the persistence backend the configuration names. The
// returned closer is a no-op for backends without a connection.
func openStore(cfg config.Config) (ports.WorkflowStore, io.Closer, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nopCloser{}, nil
	case config.BackendFile:
		return file.New(cfg.Store.Path), nopCloser{}, nil
	case config.BackendRedis:
		store := redis.New(cfg.Store.Redis.Address, cfg.Store.Redis.Password, cfg.Store.Redis.DB)
		return store, store, nil
	case config.BackendSQLite:
		path := cfg.Store.Path
		if path == "" {
			path = ".lattice/workflows.db"
		}
		store, err := sqlite.New(path)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
