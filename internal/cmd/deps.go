package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Caspar241/releasehub/internal/catalog"
	"github.com/Caspar241/releasehub/internal/engine"
	"github.com/Caspar241/releasehub/internal/grouping"
	"github.com/Caspar241/releasehub/internal/lifecycle"
	"github.com/Caspar241/releasehub/internal/log"
	"github.com/Caspar241/releasehub/internal/registry"
	"github.com/Caspar241/releasehub/internal/routine"
	"github.com/Caspar241/releasehub/internal/task"
)

// deps bundles the wired application services a command dispatches
// into. Close must be called when the command is done.
type deps struct {
	Catalog   catalog.Catalog
	Store     task.Store
	Broker    *task.Broker
	Engine    *engine.Engine
	Lifecycle *lifecycle.Manager
	Grouping  *grouping.Service
	Scheduler *routine.Scheduler
	Identity  registry.Identity
	Releases  registry.ReleaseRegistry
	Routines  registry.RoutineRegistry
	Logger    *log.Logger

	closers []func() error
}

// Close releases held resources, the SQLite handle in particular.
func (d *deps) Close() error {
	var firstErr error
	for _, closer := range d.closers {
		if err := closer(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// buildDeps wires the application from the persistent flags.
func buildDeps(cmd *cobra.Command) (*deps, error) {
	home, _ := cmd.Flags().GetString("home")
	dbPath, _ := cmd.Flags().GetString("db")
	templatesDir, _ := cmd.Flags().GetString("templates")
	registryPath, _ := cmd.Flags().GetString("registry")

	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		home = filepath.Join(userHome, ".releasehub")
	}
	if dbPath == "" {
		dbPath = filepath.Join(home, "tasks.db")
	}
	if registryPath == "" {
		registryPath = filepath.Join(home, "registry.yaml")
	}

	logger := log.DefaultLogger()

	cat, err := catalog.LoadCatalog(templatesDir)
	if err != nil {
		return nil, err
	}

	d := &deps{
		Catalog: cat,
		Logger:  logger,
	}

	if dbPath == "memory" {
		d.Store = task.NewMemoryStore()
	} else {
		store, err := task.NewSQLiteStore(dbPath)
		if err != nil {
			return nil, err
		}
		d.Store = store
		d.closers = append(d.closers, store.Close)
	}

	regs, err := registry.LoadFile(registryPath)
	if err != nil {
		return nil, err
	}
	d.Identity = regs.Identity
	d.Releases = regs.Releases
	d.Routines = regs.Routines

	d.Broker = task.NewBroker()
	d.Engine = engine.New(d.Catalog, d.Store, d.Broker, logger)
	d.Lifecycle = lifecycle.NewManager(d.Store, logger)
	d.Grouping = grouping.NewService(d.Store, d.Releases, d.Routines)
	d.Scheduler = routine.NewScheduler(d.Catalog, d.Engine, d.Store, d.Routines, logger)

	return d, nil
}
