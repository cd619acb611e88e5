package job

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/internal/repository"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

var (
	// ErrSearchNotFound is returned by RunSearch for an unknown search id
	ErrSearchNotFound = errors.New("job: search not found")

	// ErrNoFetcher means no fetcher is registered for a search's provider
	ErrNoFetcher = errors.New("job: no fetcher for provider")
)

// FetchError is a fatal failure while fetching a page
type FetchError struct {
	Page int
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch page %d: %v", e.Page, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// State is a step of a search run
type State string

const (
	StateIdle          State = "idle"
	StateFetching      State = "fetching"
	StateEarlyExit     State = "early_exit"
	StateExhausted     State = "exhausted"
	StateFetchFailed   State = "fetch_failed"
	StateCancelled     State = "cancelled"
	StateEnriching     State = "enriching"
	StatePersisting    State = "persisting"
	StateDeduplicating State = "deduplicating"
	StateRunRecorded   State = "run_recorded"
)

// RunResult describes one finished search run
type RunResult struct {
	Run domain.SearchRun

	// FetchState is how pagination ended: early exit, exhausted, failed or cancelled
	FetchState    State
	Pages         int
	ExistingFound bool
	Cancelled     bool
	NewJobIDs     []domain.JobID

	// Err is the cause of a failed run. The run itself is still recorded.
	Err error
}

// SweepResult summarizes running every enabled search of a provider
type SweepResult struct {
	Provider  string
	Succeeded int
	Failed    int
}

// Service runs saved searches end to end
type Service interface {
	// RunSearch runs one search regardless of its enabled flag
	RunSearch(ctx context.Context, id domain.SearchID) (RunResult, error)

	// RunProvider runs every enabled search of a provider one after another
	RunProvider(ctx context.Context, provider string) (SweepResult, error)
}

// Settings holds plain values the service needs
type Settings struct {
	// BaseURL is where job detail pages live, used in alert links
	BaseURL string
}

// Option configures Service
type Option func(*config)

type config struct {
	repo       Repository
	fetchers   []Fetcher
	enrichers  []Enricher
	duplicates DuplicateChecker
	alerts     AlertSink
	mirror     Mirror
	logger     *logging.Logger
	clock      func() time.Time
	settings   Settings
}

// WithRepository sets the repository
func WithRepository(repo Repository) Option {
	return func(c *config) {
		c.repo = repo
	}
}

// WithFetchers sets job fetchers, one per provider
func WithFetchers(fetchers ...Fetcher) Option {
	return func(c *config) {
		c.fetchers = fetchers
	}
}

// WithEnrichers sets result enrichers
func WithEnrichers(enrichers ...Enricher) Option {
	return func(c *config) {
		c.enrichers = enrichers
	}
}

// WithDuplicateChecker enables duplicate detection after persistence
func WithDuplicateChecker(d DuplicateChecker) Option {
	return func(c *config) {
		c.duplicates = d
	}
}

// WithAlertSink sets where alerts go
func WithAlertSink(a AlertSink) Option {
	return func(c *config) {
		c.alerts = a
	}
}

// WithMirror sets a secondary sink for persisted batches
func WithMirror(m Mirror) Option {
	return func(c *config) {
		c.mirror = m
	}
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithClock sets a custom clock
func WithClock(clock func() time.Time) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithSettings sets plain configuration values
func WithSettings(s Settings) Option {
	return func(c *config) {
		c.settings = s
	}
}

// NewService builds Service from options
func NewService(opts ...Option) (Service, error) {
	cfg := &config{
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return newService(cfg)
}

// NewServiceWithDeps creates a Service with direct dependencies (Wire-compatible)
func NewServiceWithDeps(
	repo Repository,
	fetchers []Fetcher,
	enrichers []Enricher,
	duplicates DuplicateChecker,
	alerts AlertSink,
	mirror Mirror,
	logger *logging.Logger,
	settings Settings,
) (Service, error) {
	return newService(&config{
		repo:       repo,
		fetchers:   fetchers,
		enrichers:  enrichers,
		duplicates: duplicates,
		alerts:     alerts,
		mirror:     mirror,
		logger:     logger,
		clock:      time.Now,
		settings:   settings,
	})
}

func newService(cfg *config) (*service, error) {
	if cfg.repo == nil {
		return nil, fmt.Errorf("job.Service: repository is required")
	}
	if len(cfg.fetchers) == 0 {
		return nil, fmt.Errorf("job.Service: at least one fetcher is required")
	}

	s := &service{
		repo:       cfg.repo,
		fetchers:   make(map[string]Fetcher, len(cfg.fetchers)),
		enrichers:  make(map[string]Enricher, len(cfg.enrichers)),
		duplicates: cfg.duplicates,
		alerts:     cfg.alerts,
		mirror:     cfg.mirror,
		logger:     cfg.logger,
		clock:      cfg.clock,
		settings:   cfg.settings,
		converter:  md.NewConverter("", true, nil),
	}

	for _, f := range cfg.fetchers {
		name := providerKey(f.Name())
		if _, dup := s.fetchers[name]; dup {
			return nil, fmt.Errorf("job.Service: fetcher %q registered twice", name)
		}
		s.fetchers[name] = f
	}
	for _, e := range cfg.enrichers {
		s.enrichers[providerKey(e.Provider())] = e
	}

	if s.alerts == nil {
		s.alerts = nopAlerts{}
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.clock == nil {
		s.clock = time.Now
	}

	return s, nil
}

type service struct {
	repo       Repository
	fetchers   map[string]Fetcher
	enrichers  map[string]Enricher
	duplicates DuplicateChecker
	alerts     AlertSink
	mirror     Mirror
	logger     *logging.Logger
	clock      func() time.Time
	settings   Settings
	converter  *md.Converter
}

// RunSearch loads a search and runs it
func (s *service) RunSearch(ctx context.Context, id domain.SearchID) (RunResult, error) {
	search, err := s.repo.FindSearch(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return RunResult{}, fmt.Errorf("%w: %s", ErrSearchNotFound, id)
	}
	if err != nil {
		return RunResult{}, fmt.Errorf("job: load search %s: %w", id, err)
	}

	return s.run(ctx, search)
}

// RunProvider runs enabled searches sequentially. A failing or panicking
// search does not stop the sweep; cancellation stops new searches starting.
func (s *service) RunProvider(ctx context.Context, provider string) (SweepResult, error) {
	provider = providerKey(provider)
	sweep := SweepResult{Provider: provider}

	searches, err := s.repo.ListEnabledSearches(ctx, provider)
	if err != nil {
		return sweep, fmt.Errorf("job: list searches for %s: %w", provider, err)
	}

	s.logger.Info("provider sweep started", "provider", provider, "searches", len(searches))

	for _, search := range searches {
		if ctx.Err() != nil {
			s.logger.Info("provider sweep cancelled", "provider", provider, "remaining", len(searches)-sweep.Succeeded-sweep.Failed)
			break
		}

		res, err := s.runGuarded(ctx, search)
		if err != nil || !res.Run.Success {
			sweep.Failed++
			if err != nil {
				s.logger.Error("search run error", "search_id", search.ID.String(), "err", err)
			}
			continue
		}
		sweep.Succeeded++
	}

	s.logger.Info("provider sweep finished",
		"provider", provider,
		"succeeded", sweep.Succeeded,
		"failed", sweep.Failed,
	)

	return sweep, nil
}

// runGuarded runs a search and records a panic as a failed run
func (s *service) runGuarded(ctx context.Context, search domain.Search) (res RunResult, err error) {
	r := s.newRunner(search)
	defer func() {
		if p := recover(); p != nil {
			res, err = r.fail(context.WithoutCancel(ctx), fmt.Errorf("job: search %s panicked: %v", search.ID, p))
		}
	}()
	return r.execute(ctx)
}

func (s *service) run(ctx context.Context, search domain.Search) (RunResult, error) {
	return s.newRunner(search).execute(ctx)
}

func (s *service) newRunner(search domain.Search) *runner {
	return &runner{
		svc:     s,
		search:  search,
		log:     s.logger.With("search_id", search.ID.String(), "provider", search.Provider),
		started: s.clock(),
		state:   StateIdle,
	}
}

func (s *service) jobURL(id domain.JobID) string {
	return strings.TrimSuffix(s.settings.BaseURL, "/") + "/jobs/" + id.String()
}

func providerKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type nopAlerts struct{}

func (nopAlerts) Create(context.Context, domain.Alert) {}
