package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/merkleforge/merkledag/dag"
	"github.com/merkleforge/merkledag/hash"
	"github.com/merkleforge/merkledag/internal/config"
	"github.com/merkleforge/merkledag/internal/logging"
	"github.com/merkleforge/merkledag/store"
	"github.com/merkleforge/merkledag/store/boltstore"
	"github.com/merkleforge/merkledag/store/memstore"
	"github.com/merkleforge/merkledag/store/sqlstore"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "merkledagctl",
	Short: "Inspect and drive a content-addressed Merkle DAG store",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile, cmd.Flags())
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().String("backend", "", "store backend: memory, bolt, sqlite (overrides config)")
	rootCmd.PersistentFlags().String("path", "", "store path (overrides config)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
}

// openStore builds the Store named by cfg.Backend and a function that
// closes it. Callers are responsible for calling that function; for the
// file-backed backends (bolt, sqlite) it closes the store, and for memstore
// it does nothing.
func openStore() (store.Store, func() error, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memstore.New(), func() error { return nil }, nil
	case config.BackendBolt:
		s, err := boltstore.Open(cfg.Path, hash.NewXXHashWriter)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.BackendSQLite:
		s, err := sqlstore.Open(cfg.Path, hash.NewXXHashWriter)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// dagFromStore wraps st in a Merkle DAG, rebuilding the root frontier from a
// full scan when the backend supports one: the frontier is derived state
// that is never itself persisted, so a freshly-opened bolt or sqlite store
// otherwise looks empty-rooted even when it holds nodes from a prior
// invocation. nodeCount is the number of nodes seen during that scan, or -1
// if st does not support enumeration.
func dagFromStore(st store.Store) (d *dag.Merkle, nodeCount int, err error) {
	d = dag.New(st, hash.NewXXHashWriter, dag.WithLogger(logging.New(cfg.Debug)))
	nodeCount = -1
	if enum, ok := st.(store.Enumerable); ok {
		all, err := enum.All()
		if err != nil {
			return nil, -1, err
		}
		d.Rebuild(all)
		nodeCount = len(all)
	}
	return d, nodeCount, nil
}

// openDAG opens the configured store and wraps it in a Merkle DAG via
// dagFromStore.
func openDAG() (*dag.Merkle, func() error, error) {
	st, closeStore, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	d, _, err := dagFromStore(st)
	if err != nil {
		_ = closeStore()
		return nil, nil, err
	}
	return d, closeStore, nil
}
