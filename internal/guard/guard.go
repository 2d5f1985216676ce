// Package guard runs one user action end to end: resolve the request mode
// from settings, extract page content, apply the enterprise domain check,
// dispatch to the safety service and hand back the normalized verdict. Steps
// always execute in that order; every failure is terminal for the action.
package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pageguard/pageguard/internal/cache"
	"github.com/pageguard/pageguard/internal/extract"
	"github.com/pageguard/pageguard/internal/firewall"
	"github.com/pageguard/pageguard/internal/policy"
	"github.com/pageguard/pageguard/internal/settings"
)

// Hooks are invoked after a verdict is produced, cached or fresh. They exist
// for SIEM-style event forwarding and must not block for long.
type Hooks struct {
	OnBlocked func(*firewall.Verdict)
	OnAllowed func(*firewall.Verdict)
}

// ClientFactory builds the dispatcher for the settings in effect. Replaced in
// tests.
type ClientFactory func(settings.Settings) *firewall.Client

// Guard orchestrates user actions.
type Guard struct {
	store     *settings.Store
	extractor *extract.Extractor
	verdicts  *cache.Verdicts
	hooks     Hooks
	timeout   time.Duration
	newClient ClientFactory
}

// Option configures a Guard.
type Option func(*Guard)

// WithHooks installs verdict hooks.
func WithHooks(h Hooks) Option {
	return func(g *Guard) { g.hooks = h }
}

// WithVerdictCache enables verdict caching for scan-only actions.
func WithVerdictCache(vc *cache.Verdicts) Option {
	return func(g *Guard) { g.verdicts = vc }
}

// WithTimeout overrides the dispatch timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Guard) { g.timeout = d }
}

// WithClientFactory overrides dispatcher construction.
func WithClientFactory(f ClientFactory) Option {
	return func(g *Guard) { g.newClient = f }
}

// New creates a Guard reading settings from store and pages through
// extractor.
func New(store *settings.Store, extractor *extract.Extractor, opts ...Option) *Guard {
	g := &Guard{
		store:     store,
		extractor: extractor,
		timeout:   firewall.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.newClient == nil {
		g.newClient = func(s settings.Settings) *firewall.Client {
			return firewall.NewClient(firewall.Config{
				Endpoint: s.Endpoint(),
				APIKey:   s.APIKey,
				Timeout:  g.timeout,
			})
		}
	}
	return g
}

// Ask fetches the page at target and performs a full-answer action. When
// settings force a scan-only mode the query is not sent and a plain safety
// verdict comes back; a local toggle can never override that downgrade.
func (g *Guard) Ask(ctx context.Context, target, query string) (*firewall.Verdict, error) {
	return g.run(ctx, target, query)
}

// Scan fetches the page at target and performs a scan-only action.
func (g *Guard) Scan(ctx context.Context, target string) (*firewall.Verdict, error) {
	return g.run(ctx, target, "")
}

// AskPage performs a full-answer action for already-extracted content.
func (g *Guard) AskPage(ctx context.Context, page *extract.PageContent, query string) (*firewall.Verdict, error) {
	s, err := g.store.Load()
	if err != nil {
		return nil, err
	}
	return g.perform(ctx, s, page, query)
}

// ScanPage performs a scan-only action for already-extracted content.
func (g *Guard) ScanPage(ctx context.Context, page *extract.PageContent) (*firewall.Verdict, error) {
	return g.AskPage(ctx, page, "")
}

func (g *Guard) run(ctx context.Context, target, query string) (*firewall.Verdict, error) {
	// Settings are re-read for every action so a change in one surface is
	// visible on the next action in any other.
	s, err := g.store.Load()
	if err != nil {
		return nil, err
	}

	page, err := g.extractor.FromURL(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("extract page: %w", err)
	}

	return g.perform(ctx, s, page, query)
}

// perform executes DomainCheck → SizeCheck → Dispatch → Normalize for one
// page. The size check and normalization live inside the dispatcher client.
func (g *Guard) perform(ctx context.Context, s settings.Settings, page *extract.PageContent, query string) (*firewall.Verdict, error) {
	mode := policy.Resolve(s)
	askMode := mode == policy.ModeNormal && query != ""

	logger := log.With().
		Str("mode", mode.String()).
		Str("url", page.URL).
		Logger()

	// The allow-list is an enterprise governance control; it is not applied
	// in the other modes.
	if mode == policy.ModeEnterpriseScanOnly {
		entries := policy.CleanEntries(s.AllowedDomains)
		if !policy.URLAllowed(page.URL, entries) {
			logger.Info().Msg("domain not on enterprise allow-list")
			return nil, &firewall.Error{
				Kind:    firewall.KindDomainNotAllowed,
				Message: fmt.Sprintf("%s is not on the enterprise allow-list", page.URL),
			}
		}
	}

	if !askMode && g.verdicts != nil {
		if v, found := g.verdicts.Get(page.URL, page.HTML); found {
			logger.Debug().Msg("verdict served from cache")
			g.fire(v)
			return v, nil
		}
	}

	client := g.newClient(s)

	var v *firewall.Verdict
	var err error
	if askMode {
		v, err = client.Ask(ctx, page.URL, page.HTML, query)
	} else {
		v, err = client.Scan(ctx, page.URL, page.HTML)
	}
	if err != nil {
		logger.Warn().Str("kind", string(firewall.KindOf(err))).Msg("action failed")
		return nil, err
	}

	if !askMode && g.verdicts != nil {
		if cerr := g.verdicts.Put(page.URL, page.HTML, v); cerr != nil {
			logger.Debug().Err(cerr).Msg("verdict cache write failed")
		}
	}

	logger.Info().Str("outcome", string(v.Outcome)).Msg("action completed")
	g.fire(v)
	return v, nil
}

func (g *Guard) fire(v *firewall.Verdict) {
	switch v.Outcome {
	case firewall.OutcomeBlocked:
		if g.hooks.OnBlocked != nil {
			g.hooks.OnBlocked(v)
		}
	case firewall.OutcomeSafe:
		if g.hooks.OnAllowed != nil {
			g.hooks.OnAllowed(v)
		}
	}
}
