// Package browser manages single-use automated browser sessions. Every
// search launches its own browser process and drives exactly one page; the
// session is torn down before the owning call returns.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/seeker/config"
	"github.com/use-agent/seeker/models"
	"github.com/ysmood/gson"
)

const (
	// consentClickTimeout bounds the visible/enabled wait before clicking
	// an optional dialog element. Consent dialogs are regional; a page
	// without one must not pay more than this.
	consentClickTimeout = time.Second

	// heightProbeAttempts and heightProbeInterval bound the height-growth
	// poll. Infinite-scroll pages give no "done loading" signal, so
	// height stability across this window is the only available proxy.
	heightProbeAttempts = 5
	heightProbeInterval = time.Second
)

// browserBins maps a configured browser kind to candidate executable names.
var browserBins = map[string][]string{
	"chrome":   {"google-chrome", "google-chrome-stable", "chrome"},
	"chromium": {"chromium", "chromium-browser"},
	"brave":    {"brave-browser", "brave"},
	"edge":     {"microsoft-edge", "microsoft-edge-stable"},
}

// Launcher builds single-use sessions from the resolved configuration.
type Launcher struct {
	cfg config.BrowserConfig
}

// NewLauncher creates a session launcher. The configuration is resolved once
// at process start; the launcher never reads the environment.
func NewLauncher(cfg config.BrowserConfig) *Launcher {
	return &Launcher{cfg: cfg}
}

// Session is one exclusively-owned browser page. It is not safe for
// concurrent use and must never be shared between searches.
type Session struct {
	browser *rod.Browser
	page    *rod.Page // bound to the request context
	raw     *rod.Page // original reference, used for teardown
	launch  *launcher.Launcher
	cfg     config.BrowserConfig
}

// Acquire launches a browser, connects, opens one page, installs the stealth
// script and a consistent locale, and binds the request context to the page.
// Any failure before the session is usable returns a launch error.
func (l *Launcher) Acquire(ctx context.Context) (*Session, error) {
	lc := launcher.New().
		Headless(l.cfg.Headless).
		NoSandbox(true)

	if bin := resolveBin(l.cfg.Kind, l.cfg.Bin); bin != "" {
		lc = lc.Bin(bin)
	}

	// ── Stealth and locale flags ─────────────────────────────────────
	lc.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	lc.Delete(flags.Flag("enable-automation"))
	lc.Set(flags.Flag("lang"), "en-US")
	lc.Set(flags.Flag("disable-gpu"))
	lc.Set(flags.Flag("disable-dev-shm-usage"))
	lc.Set(flags.Flag("disable-extensions"))
	lc.Set(flags.Flag("disable-default-apps"))
	lc.Set(flags.Flag("no-first-run"))

	controlURL, err := lc.Launch()
	if err != nil {
		return nil, models.NewSearchError(models.ErrCodeLaunch, "launch", "failed to launch browser", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		lc.Kill()
		return nil, models.NewSearchError(models.ErrCodeLaunch, "launch", "failed to connect to browser", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		lc.Kill()
		return nil, models.NewSearchError(models.ErrCodeLaunch, "launch", "failed to open page", err)
	}

	// Stealth must be installed before the first navigation.
	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
	}

	_ = proto.NetworkSetExtraHTTPHeaders{
		Headers: toHeadersMap(map[string]string{"Accept-Language": "en-US,en;q=0.9"}),
	}.Call(page)

	slog.Debug("browser session ready",
		"kind", l.cfg.Kind,
		"headless", l.cfg.Headless,
	)

	return &Session{
		browser: browser,
		page:    page.Context(ctx),
		raw:     page,
		launch:  lc,
		cfg:     l.cfg,
	}, nil
}

// Navigate loads the given URL. Rendering readiness is the caller's concern:
// the protocol follows every navigation with an explicit container wait.
func (s *Session) Navigate(url string) error {
	return s.page.Navigate(url)
}

// WaitFor blocks until at least one element matching selector exists,
// bounded by timeout.
func (s *Session) WaitFor(selector string, timeout time.Duration) error {
	return s.page.Timeout(timeout).WaitElementsMoreThan(selector, 0)
}

// ClickFirstIfPresent queries for elements matching selector. Zero matches
// return nil immediately — many pages never show the dialog. Otherwise the
// first element gets a short budget to become visible and enabled and is
// clicked. Every failure is returned as a SoftError for the caller to log.
func (s *Session) ClickFirstIfPresent(selector string) *models.SoftError {
	els, err := s.page.Elements(selector)
	if err != nil {
		return models.NewSoftError("consent", fmt.Sprintf("query %q failed", selector), err)
	}
	if els.Empty() {
		return nil
	}

	el := els.First().Timeout(consentClickTimeout)
	if err := el.WaitVisible(); err != nil {
		return models.NewSoftError("consent", fmt.Sprintf("element %q never became visible", selector), err)
	}
	if err := el.WaitEnabled(); err != nil {
		return models.NewSoftError("consent", fmt.Sprintf("element %q never became enabled", selector), err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return models.NewSoftError("consent", fmt.Sprintf("click on %q failed", selector), err)
	}
	return nil
}

// HTML returns the rendered page markup.
func (s *Session) HTML() (string, error) {
	return s.page.HTML()
}

// ScrollToBottom triggers a scroll to the end of the document, which is what
// makes infinite-scroll result pages load the next batch.
func (s *Session) ScrollToBottom() error {
	_, err := s.page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`)
	return err
}

// PageHeight reads the document scroll height. It is a liveness signal, not
// content state: probe failures degrade to 0 rather than failing the search.
func (s *Session) PageHeight() int {
	res, err := s.page.Eval(`() => document.body.scrollHeight`)
	if err != nil {
		slog.Debug("page height probe failed", "error", err)
		return 0
	}
	return res.Value.Int()
}

// AwaitHeightIncrease polls the page height up to a fixed number of attempts,
// sleeping a fixed interval between attempts. Returns the first height
// greater than previous, or previous unchanged when no growth was observed
// within the attempt budget.
func (s *Session) AwaitHeightIncrease(previous int) int {
	for i := 0; i < heightProbeAttempts; i++ {
		select {
		case <-time.After(heightProbeInterval):
		case <-s.page.GetContext().Done():
			return previous
		}
		if h := s.PageHeight(); h > previous {
			return h
		}
	}
	return previous
}

// PersistSnapshot writes the current page markup to the snapshot directory
// when debug mode is on. A snapshot is a troubleshooting aid only: every
// failure here is logged and swallowed, never propagated.
func (s *Session) PersistSnapshot(stage string) {
	if !s.cfg.Debug {
		return
	}

	html, err := s.page.HTML()
	if err != nil {
		slog.Warn("debug snapshot: failed to read page HTML", "stage", stage, "error", err)
		return
	}

	path := filepath.Join(s.cfg.SnapshotDir, snapshotName(stage, time.Now()))
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		slog.Warn("debug snapshot: write failed", "stage", stage, "path", path, "error", err)
		return
	}
	slog.Debug("debug snapshot written", "stage", stage, "path", path)
}

// Close releases the page, the browser connection, and the browser process.
// It uses the original page reference (without the request context) so
// teardown still succeeds after the request deadline has expired. The
// orchestrator guarantees exactly one Close per session on every exit path.
func (s *Session) Close() {
	if err := s.raw.Close(); err != nil {
		slog.Warn("session close: page close failed", "error", err)
	}
	if err := s.browser.Close(); err != nil {
		slog.Warn("session close: browser close failed", "error", err)
	}
	s.launch.Kill()
	s.launch.Cleanup()
	slog.Debug("browser session closed")
}

// snapshotName embeds the stage and a millisecond timestamp so overlapping
// debug runs never collide.
func snapshotName(stage string, t time.Time) string {
	return fmt.Sprintf("seeker-%s-%d.html", stage, t.UnixMilli())
}

// resolveBin picks the browser executable for the configured kind. An
// explicit override wins; otherwise the first candidate found on PATH.
// Returns "" when nothing is found, letting rod fall back to its own
// browser lookup.
func resolveBin(kind, override string) string {
	if override != "" {
		return override
	}
	for _, name := range browserBins[kind] {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
