// Package upgrade implements the upgrade monitor (C9): a single
// cooperative polling task that checks a release feed, applies the
// staged-rollout delay, downloads and verifies a new binary, and performs
// an atomic swap with rollback. Grounded on
// internal/coordinator.HealthMonitor's ticker/select/WaitGroup/context
// shutdown idiom in the teacher.
package upgrade

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"

	"github.com/dirvine/saorsa-node/internal/event"
	"github.com/dirvine/saorsa-node/internal/rollout"
	"github.com/dirvine/saorsa-node/internal/saorsaerr"
	"github.com/dirvine/saorsa-node/internal/signature"
)

// Channel selects which releases the monitor considers eligible.
type Channel string

const (
	Stable Channel = "stable"
	Beta   Channel = "beta"
)

// Config configures a Monitor.
type Config struct {
	Repo          string
	Channel       Channel
	CheckInterval time.Duration
	CurrentVersion string
	BinaryPath    string
	RollbackDir   string
}

// Monitor is the upgrade monitor (C9).
type Monitor struct {
	feed      ReleaseFeed
	scheduler *rollout.Scheduler
	bus       *event.Bus
	config    Config
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	downloadFn func(ctx context.Context, url, destPath string) error
}

// New builds a Monitor polling feed for config.Repo, publishing lifecycle
// events to bus and computing rollout delays from scheduler. A nil logger
// is replaced with a no-op one.
func New(feed ReleaseFeed, scheduler *rollout.Scheduler, bus *event.Bus, config Config, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Monitor{
		feed:      feed,
		scheduler: scheduler,
		bus:       bus,
		config:    config,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
	m.downloadFn = m.downloadFile
	return m
}

// Start runs the monitor's polling loop in the current goroutine. It
// blocks until ctx is canceled or Stop is called, whichever first —
// mirroring the teacher's dual-context select.
func (m *Monitor) Start(ctx context.Context) {
	m.wg.Add(1)
	defer m.wg.Done()

	if ctx == nil {
		ctx = m.ctx
	}

	interval := m.config.CheckInterval
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.tick(ctx)
		case <-ctx.Done():
			return
		case <-m.ctx.Done():
			return
		}
	}
}

// Stop cancels the monitor's internal context and waits for Start to
// return.
func (m *Monitor) Stop() {
	m.cancel()
	m.wg.Wait()
}

// tick performs one poll-evaluate-upgrade cycle. Errors at any step are
// published as Error events rather than propagated — the monitor is a
// long-lived background task and a single bad poll must not kill it.
func (m *Monitor) tick(ctx context.Context) {
	release, ok, err := m.selectRelease(ctx)
	if err != nil {
		m.bus.Publish(event.NewError(fmt.Sprintf("upgrade: poll release feed: %v", err)))
		return
	}
	if !ok {
		return
	}

	m.bus.Publish(event.NewUpgradeAvailable(release.Version))

	delay := m.scheduler.CalculateDelayForVersion(release.Version)
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return
		case <-m.ctx.Done():
			return
		}
	}

	m.bus.Publish(event.NewUpgradeStarted(release.Version))
	if err := m.applyUpgrade(ctx, release); err != nil {
		m.bus.Publish(event.NewError(fmt.Sprintf("upgrade: apply %s: %v", release.Version, err)))
		return
	}
	m.bus.Publish(event.NewUpgradeComplete(release.Version))
}

// selectRelease polls the feed and picks the newest eligible release
// strictly ahead of the current version, filtered by channel: Stable
// ignores prereleases, Beta includes them.
func (m *Monitor) selectRelease(ctx context.Context) (Release, bool, error) {
	releases, err := m.feed.FetchReleases(ctx, m.config.Repo)
	if err != nil {
		return Release{}, false, err
	}

	var best Release
	found := false
	for _, r := range releases {
		if r.Prerelease && m.config.Channel != Beta {
			continue
		}
		v := normalizeSemver(r.Version)
		if !semver.IsValid(v) {
			continue
		}
		if !found || semver.Compare(v, normalizeSemver(best.Version)) > 0 {
			best = r
			found = true
		}
	}
	if !found {
		return Release{}, false, nil
	}

	current := normalizeSemver(m.config.CurrentVersion)
	if semver.IsValid(current) && semver.Compare(normalizeSemver(best.Version), current) <= 0 {
		return Release{}, false, nil
	}
	return best, true, nil
}

// normalizeSemver prefixes a bare "x.y.z" version with "v" since
// golang.org/x/mod/semver requires the leading v.
func normalizeSemver(v string) string {
	if v == "" {
		return v
	}
	if v[0] != 'v' {
		return "v" + v
	}
	return v
}

// applyUpgrade downloads the binary and its detached signature, verifies
// the signature against the embedded release key, and atomically swaps
// the running binary, moving the previous one into the rollback
// directory. Any failure restores the prior binary and removes partial
// temp files.
func (m *Monitor) applyUpgrade(ctx context.Context, release Release) error {
	dir := filepath.Dir(m.config.BinaryPath)
	tmpBinary := filepath.Join(dir, fmt.Sprintf(".upgrade-%s.tmp", release.Version))
	tmpSig := tmpBinary + ".sig"

	defer os.Remove(tmpBinary)
	defer os.Remove(tmpSig)

	if err := m.downloadFn(ctx, release.DownloadURL, tmpBinary); err != nil {
		return saorsaerr.Wrap(saorsaerr.Network, "download release binary", err)
	}
	if err := m.downloadFn(ctx, release.SignatureURL, tmpSig); err != nil {
		return saorsaerr.Wrap(saorsaerr.Network, "download release signature", err)
	}

	if err := signature.VerifyFromSigFile(tmpBinary, tmpSig); err != nil {
		return saorsaerr.Wrap(saorsaerr.Crypto, "verify release signature", err)
	}

	if err := os.MkdirAll(m.config.RollbackDir, 0o755); err != nil {
		return saorsaerr.Wrap(saorsaerr.IO, "create rollback directory", err)
	}

	rollbackPath := filepath.Join(m.config.RollbackDir, fmt.Sprintf("%s.bak", m.config.CurrentVersion))
	if _, err := os.Stat(m.config.BinaryPath); err == nil {
		if err := os.Rename(m.config.BinaryPath, rollbackPath); err != nil {
			return saorsaerr.Wrap(saorsaerr.IO, "move current binary to rollback", err)
		}
	}

	if err := os.Chmod(tmpBinary, 0o755); err != nil {
		m.restoreRollback(rollbackPath)
		return saorsaerr.Wrap(saorsaerr.IO, "make downloaded binary executable", err)
	}

	if err := os.Rename(tmpBinary, m.config.BinaryPath); err != nil {
		m.restoreRollback(rollbackPath)
		return saorsaerr.Wrap(saorsaerr.IO, "swap in new binary", err)
	}

	return nil
}

// restoreRollback attempts to put the prior binary back in place after a
// swap failure. It is best-effort: a failure here is logged, not
// returned, since the caller is already reporting the original error.
func (m *Monitor) restoreRollback(rollbackPath string) {
	if _, err := os.Stat(rollbackPath); err != nil {
		return
	}
	if err := os.Rename(rollbackPath, m.config.BinaryPath); err != nil {
		m.logger.Error("upgrade: rollback restore failed", zap.Error(err))
	}
}

// downloadFile streams url's body to destPath, the default downloadFn.
func (m *Monitor) downloadFile(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("download %s: status %d", url, resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return err
	}
	return nil
}

// SetDownloadFunc overrides how a release artifact is fetched, for
// tests that substitute a local file copy instead of HTTP.
func (m *Monitor) SetDownloadFunc(fn func(ctx context.Context, url, destPath string) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloadFn = fn
}
