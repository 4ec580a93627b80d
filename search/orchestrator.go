package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/use-agent/seeker/config"
	"github.com/use-agent/seeker/extract"
	"github.com/use-agent/seeker/models"
)

// maxScrollPasses bounds the scroll loop on infinite-scroll engines. The
// loop stops earlier only when the requested link count is reached; a page
// that stopped growing still gets its remaining passes.
const maxScrollPasses = 5

// Session is the browser surface a search drives. Exactly one search owns a
// session at a time, and the orchestrator closes it before returning.
type Session interface {
	Navigate(url string) error
	WaitFor(selector string, timeout time.Duration) error
	ClickFirstIfPresent(selector string) *models.SoftError
	HTML() (string, error)
	ScrollToBottom() error
	PageHeight() int
	AwaitHeightIncrease(previous int) int
	PersistSnapshot(stage string)
	Close()
}

// SessionFactory produces one session per search.
type SessionFactory interface {
	Acquire(ctx context.Context) (Session, error)
}

// SessionFactoryFunc adapts a function to the SessionFactory interface.
type SessionFactoryFunc func(ctx context.Context) (Session, error)

// Acquire calls f.
func (f SessionFactoryFunc) Acquire(ctx context.Context) (Session, error) {
	return f(ctx)
}

// Orchestrator runs searches end to end: strategy resolution, session
// acquisition, the navigation/extraction protocol, and teardown.
type Orchestrator struct {
	sessions   SessionFactory
	strategies map[string]Strategy
	cfg        config.BrowserConfig
	active     atomic.Int32
}

// NewOrchestrator wires a session factory to the engine registry.
func NewOrchestrator(sessions SessionFactory, cfg config.BrowserConfig) *Orchestrator {
	return &Orchestrator{
		sessions:   sessions,
		strategies: Registry(),
		cfg:        cfg,
	}
}

// ActiveSearches reports how many searches currently hold a browser.
func (o *Orchestrator) ActiveSearches() int {
	return int(o.active.Load())
}

// Search performs one engine search. The request must already have its
// defaults applied. Engine validation happens before any browser work, so
// an unknown engine never costs a session.
func (o *Orchestrator) Search(ctx context.Context, req models.SearchRequest) (_ *models.SearchResult, err error) {
	start := time.Now()

	// ── 1. Resolve engine strategy ──────────────────────────────────
	strat, ok := o.strategies[strings.ToLower(strings.TrimSpace(req.Engine))]
	if !ok {
		slog.Warn("search rejected: unsupported engine", "engine", req.Engine)
		return nil, models.NewSearchError(
			models.ErrCodeInvalidEngine,
			"resolve",
			"unsupported engine "+req.Engine,
			nil,
		)
	}

	// Hard failures are logged once here, with their protocol stage.
	defer func() {
		var se *models.SearchError
		if err != nil && errors.As(err, &se) {
			slog.Error("search failed",
				"engine", strat.Name,
				"query", req.Query,
				"stage", se.Stage,
				"code", se.Code,
				"error", err,
			)
		}
	}()

	o.active.Add(1)
	defer o.active.Add(-1)

	slog.Info("search started",
		"engine", strat.Name,
		"query", req.Query,
		"max_links", req.MaxLinks,
		"include_images", req.IncludeImages,
	)

	// ── 2. Acquire browser session ──────────────────────────────────
	sess, err := o.sessions.Acquire(ctx)
	if err != nil {
		return nil, categorize(err, models.ErrCodeLaunch, "launch", "failed to acquire browser session")
	}

	// ── 3. Teardown: exactly once, on every exit path ───────────────
	defer sess.Close()

	// ── 4. Navigate to results page ─────────────────────────────────
	if err := sess.Navigate(strat.SearchURL(req.Query, req.MaxLinks)); err != nil {
		sess.PersistSnapshot("navigate")
		return nil, categorize(err, models.ErrCodeNavigation, "navigate", "failed to load results page")
	}

	// ── 5. Wait for results container ───────────────────────────────
	if err := sess.WaitFor(strat.ResultsContainer, o.cfg.WaitBudget()); err != nil {
		sess.PersistSnapshot("wait_results")
		return nil, categorize(err, models.ErrCodeWaitTimeout, "wait_results", "results container never appeared")
	}
	sess.PersistSnapshot("results")

	// ── 6. Consent dismissal (best-effort) ──────────────────────────
	if strat.ConsentSelector != "" {
		if soft := sess.ClickFirstIfPresent(strat.ConsentSelector); soft != nil {
			slog.Warn("consent dismissal failed, continuing", "engine", strat.Name, "error", soft)
		}
	}

	// ── 7. Extract answer text and links ────────────────────────────
	html, err := sess.HTML()
	if err != nil {
		sess.PersistSnapshot("extract")
		return nil, categorize(err, models.ErrCodeExtraction, "extract", "failed to read rendered page")
	}
	doc, err := extract.Parse(html)
	if err != nil {
		return nil, categorize(err, models.ErrCodeExtraction, "extract", "failed to parse rendered page")
	}
	text, err := extract.Text(doc, strat.TextSelectors)
	if err != nil {
		return nil, categorize(err, models.ErrCodeExtraction, "extract", "text extraction failed")
	}
	links, err := extract.Links(doc, strat.LinksSelector, strat.BaseURL)
	if err != nil {
		return nil, categorize(err, models.ErrCodeExtraction, "extract", "link extraction failed")
	}

	// ── 8. Scroll for more links (engine-dependent) ─────────────────
	if strat.LoadMoreOnScroll && len(links) < req.MaxLinks {
		links = o.scrollForMore(sess, strat, links, req.MaxLinks)
	}
	if len(links) > req.MaxLinks {
		links = links[:req.MaxLinks]
	}

	// ── 9. Image sub-search ─────────────────────────────────────────
	images := []string{}
	if req.IncludeImages {
		images, err = o.searchImages(sess, strat, req.Query)
		if err != nil {
			return nil, categorize(err, models.ErrCodeExtraction, "images", "image search failed")
		}
	}

	slog.Info("search completed",
		"engine", strat.Name,
		"query", req.Query,
		"links", len(links),
		"images", len(images),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &models.SearchResult{
		Results: text,
		Links:   links,
		Images:  images,
	}, nil
}

// scrollForMore drives the infinite-scroll loop: scroll, wait for the page
// to grow, re-extract. Re-extraction reads the whole grown list, so links
// are merged rather than appended blindly. Failures inside the loop keep
// whatever was collected so far instead of failing the search.
func (o *Orchestrator) scrollForMore(sess Session, strat Strategy, have []string, want int) []string {
	links := have
	height := sess.PageHeight()

	for pass := 0; pass < maxScrollPasses && len(links) < want; pass++ {
		if err := sess.ScrollToBottom(); err != nil {
			slog.Warn("scroll failed, keeping collected links", "pass", pass, "error", err)
			return links
		}
		height = sess.AwaitHeightIncrease(height)

		html, err := sess.HTML()
		if err != nil {
			slog.Warn("post-scroll read failed, keeping collected links", "pass", pass, "error", err)
			return links
		}
		doc, err := extract.Parse(html)
		if err != nil {
			slog.Warn("post-scroll parse failed, keeping collected links", "pass", pass, "error", err)
			return links
		}
		more, err := extract.Links(doc, strat.LinksSelector, strat.BaseURL)
		if err != nil {
			slog.Warn("post-scroll extraction failed, keeping collected links", "pass", pass, "error", err)
			return links
		}
		links = mergeLinks(links, more)
	}
	return links
}

// searchImages navigates the same session to the engine's image results and
// extracts up to the configured maximum of image URLs. Unlike consent
// handling, the container wait here is strict: the caller asked for images,
// so an image page that never renders is a failure.
func (o *Orchestrator) searchImages(sess Session, strat Strategy, query string) ([]string, error) {
	if err := sess.Navigate(strat.ImagesURL(query)); err != nil {
		sess.PersistSnapshot("navigate_images")
		return nil, models.NewSearchError(models.ErrCodeNavigation, "images", "failed to load image results page", err)
	}
	if err := sess.WaitFor(strat.ImagesContainer, o.cfg.WaitBudget()); err != nil {
		sess.PersistSnapshot("wait_images")
		return nil, models.NewSearchError(models.ErrCodeWaitTimeout, "images", "image results container never appeared", err)
	}
	sess.PersistSnapshot("images")

	html, err := sess.HTML()
	if err != nil {
		sess.PersistSnapshot("extract_images")
		return nil, models.NewSearchError(models.ErrCodeExtraction, "images", "failed to read image results page", err)
	}
	doc, err := extract.Parse(html)
	if err != nil {
		return nil, models.NewSearchError(models.ErrCodeExtraction, "images", "failed to parse image results page", err)
	}
	return extract.Images(doc, strat.ImagesSelector, strat.ImageSourceAttrs, strat.BaseURL, o.cfg.MaxImages)
}

// mergeLinks appends entries of more that are not already in have,
// preserving first-seen order.
func mergeLinks(have, more []string) []string {
	seen := make(map[string]struct{}, len(have))
	for _, l := range have {
		seen[l] = struct{}{}
	}
	merged := have
	for _, l := range more {
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		merged = append(merged, l)
	}
	return merged
}

// categorize maps an arbitrary failure onto a SearchError. Errors that are
// already categorized pass through; context expiry beats the fallback code
// since a deadline hit mid-stage is a timeout regardless of the stage.
func categorize(err error, fallbackCode, stage, message string) *models.SearchError {
	var se *models.SearchError
	if errors.As(err, &se) {
		return se
	}
	code := fallbackCode
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		code = models.ErrCodeWaitTimeout
	}
	return models.NewSearchError(code, stage, message, err)
}
