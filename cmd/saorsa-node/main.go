// Command saorsa-node starts a quantum-resistant P2P storage node: it
// wires the primary/legacy clients into the hybrid router, drives legacy
// migration to completion, starts the upgrade monitor, and mounts the
// admin/status HTTP surface, parking until a shutdown signal arrives.
//
// The wire-level client/server protocol that PUT/GET requests arrive
// over is deliberately out of scope here (an external collaborator per
// spec); this binary boots the core and its admin surface only, the same
// role cmd/node/main.go plays for the teacher's own node binary.
//
// Configuration is read from environment variables, mirroring
// cmd/node/main.go's getenv/mustGetenv idiom:
//
//	SAORSA_ROOT_DIR                node state root (default: OS data dir)
//	SAORSA_STATUS_ADDR             admin HTTP listen address (default: ":9090")
//	SAORSA_LOG_LEVEL               debug|info|warn|error (default: info)
//	SAORSA_UPGRADE_ENABLED         "true" to enable C9 (default: false)
//	SAORSA_UPGRADE_CHANNEL         stable|beta (default: stable)
//	SAORSA_UPGRADE_CHECK_HOURS     poll interval in hours (default: 1)
//	SAORSA_UPGRADE_REPO            release-feed repository name
//	SAORSA_UPGRADE_FEED_URL        release-feed URL template ("%s" = repo)
//	SAORSA_RELEASE_PUBLIC_KEY_HEX  embedded ML-DSA-65 release public key
//	SAORSA_MIGRATION_AUTO_DETECT   "true" to autodetect legacy data (default: false)
//	SAORSA_MIGRATION_PATH          explicit legacy data root
//	SAORSA_LEGACY_BOOTSTRAP        comma-separated legacy bootstrap peers
//	SAORSA_VERSION                 this build's version string
package main

import (
	"context"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dirvine/saorsa-node/internal/config"
	"github.com/dirvine/saorsa-node/internal/event"
	"github.com/dirvine/saorsa-node/internal/hybrid"
	"github.com/dirvine/saorsa-node/internal/legacy"
	"github.com/dirvine/saorsa-node/internal/logging"
	"github.com/dirvine/saorsa-node/internal/migration"
	"github.com/dirvine/saorsa-node/internal/orchestrator"
	"github.com/dirvine/saorsa-node/internal/primary"
	"github.com/dirvine/saorsa-node/internal/rollout"
	"github.com/dirvine/saorsa-node/internal/signature"
	"github.com/dirvine/saorsa-node/internal/statusapi"
	"github.com/dirvine/saorsa-node/internal/upgrade"
)

func main() {
	cfg := loadConfig()

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("invalid log configuration: %v", err)
	}
	defer logger.Sync()

	primaryClient := primary.New(primary.NewMemoryDHT())
	legacyClient := legacy.New(legacyConfig(), nil)
	router := hybrid.New(primaryClient, legacyClient, hybrid.Config{AutoMigrate: true})

	bus := event.New()
	opts := []orchestrator.Option{orchestrator.WithBus(bus)}

	if migrator, root, ok := buildMigrator(cfg, primaryClient); ok {
		opts = append(opts, orchestrator.WithMigrator(migrator, root))
	}

	if cfg.Upgrade.Enabled {
		opts = append(opts, orchestrator.WithUpgradeMonitor(buildUpgradeMonitor(cfg, bus, logger)))
	}

	node, err := orchestrator.Build(cfg, logger, opts...)
	if err != nil {
		log.Fatalf("failed to build node: %v", err)
	}

	status, err := statusapi.New(getenv("SAORSA_STATUS_ADDR", ":9090"), router, getenv("SAORSA_VERSION", "dev"))
	if err != nil {
		log.Fatalf("failed to build status server: %v", err)
	}
	go func() {
		if err := status.ListenAndServe(); err != nil {
			logger.Error("status server stopped", zap.Error(err))
		}
	}()

	ctx := context.Background()
	if err := node.Run(ctx); err != nil {
		logger.Error("node run loop exited with error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := status.Shutdown(shutdownCtx); err != nil {
		logger.Warn("status server shutdown error", zap.Error(err))
	}
}

func loadConfig() config.NodeConfig {
	cfg := config.Default()

	if v := os.Getenv("SAORSA_ROOT_DIR"); v != "" {
		cfg.RootDir = v
	}
	if v := os.Getenv("SAORSA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SAORSA_UPGRADE_ENABLED"); v != "" {
		cfg.Upgrade.Enabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("SAORSA_UPGRADE_CHANNEL"); v == string(config.ChannelBeta) {
		cfg.Upgrade.Channel = config.ChannelBeta
	}
	if v := os.Getenv("SAORSA_UPGRADE_CHECK_HOURS"); v != "" {
		if hours, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Upgrade.CheckIntervalHours = hours
		}
	}
	if v := os.Getenv("SAORSA_MIGRATION_AUTO_DETECT"); v != "" {
		cfg.Migration.AutoDetect, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("SAORSA_MIGRATION_PATH"); v != "" {
		cfg.Migration.AntDataPath = v
	}

	return cfg
}

// legacyConfig builds the legacy client's configuration. The legacy
// network transport itself (the ChunkFetcher) is an external
// collaborator this binary does not implement, so the client is always
// built with a nil fetcher and is permanently disabled regardless of
// bootstrap peers configured here — wiring a real fetcher is left to
// whatever consumes this core as a library.
func legacyConfig() legacy.Config {
	cfg := legacy.DefaultConfig()
	if v := os.Getenv("SAORSA_LEGACY_BOOTSTRAP"); v != "" {
		cfg.BootstrapPeers = strings.Split(v, ",")
	}
	return cfg
}

// buildMigrator resolves the legacy data root per §4.10's orchestrator
// lifecycle step 3: an explicit path takes precedence over autodetection.
func buildMigrator(cfg config.NodeConfig, putter migration.PrimaryPutter) (*migration.Migrator, string, bool) {
	root := cfg.Migration.AntDataPath
	if root == "" && cfg.Migration.AutoDetect {
		detected, ok := migration.AutoDetect()
		if !ok {
			return nil, "", false
		}
		root = detected
	}
	if root == "" {
		return nil, "", false
	}

	registry := migration.NewRegistry()
	m := migration.New(putter, registry, migration.Config{})
	return m, root, true
}

func buildUpgradeMonitor(cfg config.NodeConfig, bus *event.Bus, logger *zap.Logger) *upgrade.Monitor {
	repo := getenv("SAORSA_UPGRADE_REPO", "dirvine/saorsa-node")
	feedURL := getenv("SAORSA_UPGRADE_FEED_URL", "https://releases.saorsa.network/%s/releases.json")
	feed := upgrade.NewHTTPReleaseFeed(feedURL)

	if keyHex := os.Getenv("SAORSA_RELEASE_PUBLIC_KEY_HEX"); keyHex != "" {
		if key, err := hex.DecodeString(keyHex); err == nil {
			signature.SetReleaseSigningKey(key)
		}
	}

	nodeID := []byte(getenv("SAORSA_NODE_ID", cfg.RootDir))
	scheduler := rollout.New(nodeID, rolloutWindowHours())

	exe, _ := os.Executable()
	return upgrade.New(feed, scheduler, bus, upgrade.Config{
		Repo:           repo,
		Channel:        upgradeChannel(cfg.Upgrade.Channel),
		CheckInterval:  time.Duration(cfg.Upgrade.CheckIntervalHours) * time.Hour,
		CurrentVersion: getenv("SAORSA_VERSION", "0.0.0"),
		BinaryPath:     exe,
		RollbackDir:    cfg.RootDir + "/rollback",
	}, logger)
}

func rolloutWindowHours() uint64 {
	if v := os.Getenv("SAORSA_ROLLOUT_WINDOW_HOURS"); v != "" {
		if hours, err := strconv.ParseUint(v, 10, 64); err == nil {
			return hours
		}
	}
	return 24
}

func upgradeChannel(c config.UpgradeChannel) upgrade.Channel {
	if c == config.ChannelBeta {
		return upgrade.Beta
	}
	return upgrade.Stable
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
