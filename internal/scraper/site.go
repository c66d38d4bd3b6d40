package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hotelwatch/rate-scraper/internal/browser"
	"github.com/hotelwatch/rate-scraper/internal/models"
	"github.com/hotelwatch/rate-scraper/internal/normalize"
	"github.com/hotelwatch/rate-scraper/internal/ratelimit"
)

// SessionFactory opens a fresh browser session for one scrape. The session
// is owned exclusively by the scrape that created it.
type SessionFactory func() (browser.Session, error)

// SiteFlow is the per-site half of an adapter: where to search, what a
// rendered results page looks like, and how to pull raw rate entries out of
// it. The shared orchestration in SiteScraper handles the rest (validation,
// pacing, bounded waits, normalization).
type SiteFlow interface {
	// SearchURL builds the results-page URL for a query.
	SearchURL(query models.RateQuery) string
	// ResultsMarker locates the element whose presence means results have
	// rendered. Absence after the wait budget is a layout change.
	ResultsMarker() browser.Locator
	// ExtractRates reads the rendered page and returns raw entries plus an
	// optional opaque payload kept on the record for audit. Zero entries is
	// a legitimate sold-out result, not an error.
	ExtractRates(ctx context.Context, session browser.Session) ([]models.RawRateEntry, json.RawMessage, error)
}

// Environment carries the collaborators shared by every site adapter. A new
// OTA flow plugs in through Flows and picks these up via NewScraper; each
// adapter still gets its own limiter from LimiterFor so pacing stays
// per-instance.
type Environment struct {
	Sessions   SessionFactory
	Normalizer *normalize.Normalizer
	LimiterFor func(ota string) ratelimit.Limiter
	// Flows holds the implemented per-site flows keyed by OTA identifier.
	// Whitelisted OTAs without a flow register as placeholders.
	Flows      map[string]SiteFlow
	WaitBudget time.Duration
	Deadline   time.Duration
}

// NewScraper builds the adapter for one OTA from the shared environment.
func (e Environment) NewScraper(ota string, flow SiteFlow) *SiteScraper {
	return NewSiteScraper(SiteScraperConfig{
		OTA:        ota,
		Flow:       flow,
		Sessions:   e.Sessions,
		Limiter:    e.LimiterFor(ota),
		Normalizer: e.Normalizer,
		WaitBudget: e.WaitBudget,
		Deadline:   e.Deadline,
	})
}

// SiteScraper runs the orchestration contract for one OTA. It validates
// before touching the network, gates session creation and navigation through
// its own limiter, bounds every element wait, tracks the overall deadline
// cooperatively, and hands raw output to the normalizer.
type SiteScraper struct {
	ota        string
	flow       SiteFlow
	sessions   SessionFactory
	limiter    ratelimit.Limiter
	normalizer *normalize.Normalizer
	waitBudget time.Duration
	deadline   time.Duration
	logger     *slog.Logger
}

type SiteScraperConfig struct {
	OTA        string
	Flow       SiteFlow
	Sessions   SessionFactory
	Limiter    ratelimit.Limiter
	Normalizer *normalize.Normalizer
	// WaitBudget bounds each single element wait.
	WaitBudget time.Duration
	// Deadline bounds the whole scrape. Zero disables the check.
	Deadline time.Duration
}

func NewSiteScraper(cfg SiteScraperConfig) *SiteScraper {
	if cfg.WaitBudget <= 0 {
		cfg.WaitBudget = 10 * time.Second
	}
	return &SiteScraper{
		ota:        cfg.OTA,
		flow:       cfg.Flow,
		sessions:   cfg.Sessions,
		limiter:    cfg.Limiter,
		normalizer: cfg.Normalizer,
		waitBudget: cfg.WaitBudget,
		deadline:   cfg.Deadline,
		logger:     slog.Default().With("component", "scraper", "ota", cfg.OTA),
	}
}

func (s *SiteScraper) OTA() string { return s.ota }

func (s *SiteScraper) ScrapeRates(ctx context.Context, query models.RateQuery) (*models.RateRecord, error) {
	if err := query.Validate(); err != nil {
		// A bad query never touched the site, so it does not count against
		// the pacing window either.
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	record, err := s.scrape(ctx, query)
	s.recordOutcome(err)
	return record, err
}

func (s *SiteScraper) scrape(ctx context.Context, query models.RateQuery) (*models.RateRecord, error) {
	started := time.Now()
	s.logger.Info("scraping rates",
		"hotel", query.HotelName,
		"check_in", query.CheckIn,
		"check_out", query.CheckOut,
		"adults", query.Adults)

	var session browser.Session
	err := s.limiter.Gate(ctx, func() error {
		var err error
		session, err = s.sessions()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	defer session.Close()

	url := s.flow.SearchURL(query)
	err = s.limiter.Gate(ctx, func() error {
		return session.Navigate(url)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	if err := s.checkDeadline(ctx, started); err != nil {
		return nil, err
	}

	marker := s.flow.ResultsMarker()
	ready, err := browser.WaitForPresence(ctx, session, marker, s.waitBudget)
	if err != nil {
		return nil, fmt.Errorf("waiting for results: %w", err)
	}
	if ready == nil {
		return nil, fmt.Errorf("%w: marker %s absent after %s", ErrSiteLayoutChanged, marker, s.waitBudget)
	}

	if err := s.checkDeadline(ctx, started); err != nil {
		return nil, err
	}

	entries, rawPayload, err := s.flow.ExtractRates(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("extracting rates: %w", err)
	}

	if err := s.checkDeadline(ctx, started); err != nil {
		return nil, err
	}

	record, err := s.normalizer.Normalize(s.ota, query, entries, rawPayload)
	if err != nil {
		return nil, err
	}

	s.logger.Info("scrape complete", "hotel", query.HotelName, "rates", len(record.Rates), "elapsed", time.Since(started))
	return record, nil
}

// recordOutcome feeds the scrape result back into the limiter when it is an
// adaptive one, so repeated failures against a site widen its pacing window
// and sustained successes narrow it again.
func (s *SiteScraper) recordOutcome(err error) {
	rec, ok := s.limiter.(interface {
		RecordSuccess()
		RecordError()
	})
	if !ok {
		return
	}
	if err != nil {
		rec.RecordError()
		return
	}
	rec.RecordSuccess()
}

// checkDeadline is the cooperative overall-budget check between steps;
// session operations can block on network I/O we cannot preempt, so the
// budget is enforced at step boundaries.
func (s *SiteScraper) checkDeadline(ctx context.Context, started time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.deadline > 0 && time.Since(started) > s.deadline {
		return fmt.Errorf("%w: budget %s", ErrScrapeDeadline, s.deadline)
	}
	return nil
}
