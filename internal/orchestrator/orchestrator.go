// Package orchestrator implements the lifecycle orchestrator (C11): it
// builds the node's component graph, sequences migration then upgrade
// monitoring, and owns the single run loop that parks on a shutdown
// signal. Grounded on original_source's NodeBuilder/RunningNode
// sequencing (Started → migration → spawn monitor → park on
// shutdown/interrupt → ShuttingDown), expressed with the
// context.Context/os/signal idiom cmd/node/main.go uses for its own
// shutdown handling.
package orchestrator

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/dirvine/saorsa-node/internal/config"
	"github.com/dirvine/saorsa-node/internal/event"
	"github.com/dirvine/saorsa-node/internal/migration"
	"github.com/dirvine/saorsa-node/internal/upgrade"
)

// Migrator is the subset of *migration.Migrator the orchestrator drives.
type Migrator interface {
	Migrate(ctx context.Context, root string, onProgress migration.ProgressFunc) (migration.Stats, error)
}

// Monitor is the subset of *upgrade.Monitor the orchestrator drives.
type Monitor interface {
	Start(ctx context.Context)
	Stop()
}

// Node is a built, not-yet-running saorsa-node: the component graph
// constructed from config, ready for Run.
type Node struct {
	config        config.NodeConfig
	bus           *event.Bus
	migrator      Migrator
	migrationRoot string
	monitor       Monitor
	logger        *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option customizes Build beyond config.
type Option func(*Node)

// WithMigrator installs a migration engine and the legacy data root it
// should walk. Omit when migration is not configured.
func WithMigrator(m Migrator, root string) Option {
	return func(n *Node) {
		n.migrator = m
		n.migrationRoot = root
	}
}

// WithUpgradeMonitor installs the upgrade monitor. Omit when
// config.Upgrade.Enabled is false.
func WithUpgradeMonitor(m Monitor) Option {
	return func(n *Node) {
		n.monitor = m
	}
}

// WithBus installs an externally-constructed event bus instead of
// Build's default new one. Use this when a component that must be built
// before the Node (e.g. the upgrade monitor, which needs somewhere to
// publish) needs to share the same bus the Node itself publishes to.
func WithBus(bus *event.Bus) Option {
	return func(n *Node) {
		n.bus = bus
	}
}

// Build ensures the root directory exists and constructs a Node ready to
// Run, wiring whichever optional components the caller supplies via
// opts.
func Build(cfg config.NodeConfig, logger *zap.Logger, opts ...Option) (*Node, error) {
	if err := os.MkdirAll(cfg.RootDir, 0o755); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	n := &Node{
		config: cfg,
		bus:    event.New(),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Events returns a subscription to the node's lifecycle event bus.
func (n *Node) Events() <-chan event.Event {
	return n.bus.Subscribe()
}

// Bus returns the node's event bus, for components constructed outside
// Build that still need to publish (e.g. a hybrid router wired in by the
// caller).
func (n *Node) Bus() *event.Bus {
	return n.bus
}

// Run executes the node until a shutdown signal (external ctx
// cancellation or SIGINT/SIGTERM) arrives. It publishes Started, runs
// migration synchronously to completion if configured, spawns the
// upgrade monitor in the background if configured, then parks until
// shutdown, publishing ShuttingDown before returning.
func (n *Node) Run(ctx context.Context) error {
	n.bus.Publish(event.NewStarted())
	n.logger.Info("node starting", zap.String("root_dir", n.config.RootDir))

	if n.migrator != nil {
		n.runMigration(ctx)
	}

	if n.monitor != nil {
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			n.monitor.Start(ctx)
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-ctx.Done():
	case <-n.ctx.Done():
	case <-stop:
		n.logger.Info("shutdown signal received")
	}

	n.Shutdown()
	return nil
}

// runMigration drives the migration engine to completion, translating
// its outcome into MigrationComplete or Error events. Migration failure
// is non-fatal to the node per §4.10.
func (n *Node) runMigration(ctx context.Context) {
	n.logger.Info("starting legacy data migration", zap.String("root", n.migrationRoot))

	stats, err := n.migrator.Migrate(ctx, n.migrationRoot, func(migrated, total int) {
		n.bus.Publish(event.NewMigrationProgress(migrated, total))
	})
	if err != nil {
		n.logger.Warn("migration failed", zap.Error(err))
		n.bus.Publish(event.NewError("migration failed: " + err.Error()))
		return
	}

	n.logger.Info("migration complete", zap.Int("migrated", stats.Migrated), zap.Int("failed", stats.Failed))
	n.bus.Publish(event.NewMigrationComplete(stats.Migrated))
}

// Shutdown cancels all child components and publishes ShuttingDown. Safe
// to call more than once.
func (n *Node) Shutdown() {
	n.cancel()
	if n.monitor != nil {
		n.monitor.Stop()
	}
	n.wg.Wait()
	n.bus.Publish(event.NewShuttingDown())
	n.logger.Info("node shutdown complete")
}
