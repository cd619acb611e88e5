package job

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/internal/repository"
)

// memStore is an in-memory Repository
type memStore struct {
	mu        sync.Mutex
	searches  map[domain.SearchID]domain.Search
	jobs      map[string]domain.Job
	companies []domain.Company
	runs      []domain.SearchRun
	lastRun   map[domain.SearchID]bool
}

func newMemStore(searches ...domain.Search) *memStore {
	s := &memStore{
		searches: make(map[domain.SearchID]domain.Search),
		jobs:     make(map[string]domain.Job),
		lastRun:  make(map[domain.SearchID]bool),
	}
	for _, search := range searches {
		s.searches[search.ID] = search
	}
	return s
}

func jobKey(provider, providerID string) string {
	return provider + "/" + providerID
}

func (s *memStore) FindSearch(_ context.Context, id domain.SearchID) (domain.Search, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	search, ok := s.searches[id]
	if !ok {
		return domain.Search{}, repository.ErrNotFound
	}
	return search, nil
}

func (s *memStore) ListEnabledSearches(_ context.Context, provider string) ([]domain.Search, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Search
	for _, search := range s.searches {
		if search.Enabled && search.Provider == provider {
			out = append(out, search)
		}
	}
	return out, nil
}

func (s *memStore) UpdateLastRun(_ context.Context, id domain.SearchID, _ time.Time, success bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun[id] = success
	return nil
}

func (s *memStore) RecordRun(_ context.Context, run domain.SearchRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return nil
}

func (s *memStore) ListRuns(_ context.Context, searchID domain.SearchID, _ int) ([]domain.SearchRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.SearchRun
	for _, r := range s.runs {
		if r.SearchID == searchID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) JobExists(_ context.Context, provider, providerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[jobKey(provider, providerID)]
	return ok, nil
}

func (s *memStore) FindCompanyByName(_ context.Context, name string) (domain.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.companies {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
		for _, alt := range c.AlternateNames {
			if strings.EqualFold(alt, name) {
				return c, nil
			}
		}
	}
	return domain.Company{}, repository.ErrNotFound
}

func (s *memStore) Begin(context.Context) (repository.UnitOfWork, error) {
	return &memTx{store: s}, nil
}

func (s *memStore) jobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *memStore) job(provider, providerID string) (domain.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobKey(provider, providerID)]
	return j, ok
}

type memTx struct {
	store     *memStore
	companies []domain.Company
	jobs      []domain.Job
}

func (t *memTx) InsertCompanies(_ context.Context, companies []domain.Company) error {
	t.companies = append(t.companies, companies...)
	return nil
}

func (t *memTx) InsertJobs(_ context.Context, jobs []domain.Job) ([]domain.Job, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	var inserted []domain.Job
	for _, j := range jobs {
		if _, ok := t.store.jobs[jobKey(j.Provider, j.ProviderID)]; ok {
			continue
		}
		inserted = append(inserted, j)
	}
	t.jobs = append(t.jobs, inserted...)
	return inserted, nil
}

func (t *memTx) Commit(context.Context) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.companies = append(t.store.companies, t.companies...)
	for _, j := range t.jobs {
		t.store.jobs[jobKey(j.Provider, j.ProviderID)] = j
	}
	return nil
}

func (t *memTx) Rollback(context.Context) error {
	return nil
}

// stubFetcher serves fixed pages
type stubFetcher struct {
	pages  [][]domain.JobResult
	failAt int

	// beforeServe runs before page n (1-based) is returned
	beforeServe func(n int)

	served int
}

func (f *stubFetcher) Name() string { return "stub" }

func (f *stubFetcher) Pages(search domain.Search) Pager {
	if search.Query == "panic" {
		panic("provider exploded")
	}
	return &stubPager{f: f}
}

type stubPager struct {
	f    *stubFetcher
	next int
}

func (p *stubPager) Next(context.Context) (Page, bool, error) {
	n := p.next + 1
	if p.f.failAt == n {
		return Page{}, false, errors.New("upstream returned 502")
	}
	if p.next >= len(p.f.pages) {
		return Page{}, false, nil
	}
	if p.f.beforeServe != nil {
		p.f.beforeServe(n)
	}
	p.next++
	p.f.served++
	return Page{Number: n, Results: p.f.pages[n-1]}, true, nil
}

type countingEnricher struct {
	calls int
}

func (e *countingEnricher) Provider() string { return "stub" }

func (e *countingEnricher) Enrich(_ context.Context, results []domain.JobResult) bool {
	e.calls++
	for i := range results {
		if results[i].NeedsSalary() {
			results[i].FormattedSalary = "£30,000 a year"
		}
	}
	return true
}

type countingChecker struct {
	calls int
	seen  []domain.Job
}

func (c *countingChecker) Enabled() bool { return true }

func (c *countingChecker) Check(_ context.Context, jobs []domain.Job) ([]domain.Job, error) {
	c.calls++
	c.seen = append(c.seen, jobs...)
	out := make([]domain.Job, len(jobs))
	copy(out, jobs)
	for i := range out {
		out[i].CheckedForDuplicate = true
	}
	return out, nil
}

type recordingAlerts struct {
	mu     sync.Mutex
	alerts []domain.Alert
}

func (a *recordingAlerts) Create(_ context.Context, alert domain.Alert) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = append(a.alerts, alert)
}

type recordingMirror struct {
	jobs []domain.Job
}

func (m *recordingMirror) MirrorBatch(_ context.Context, jobs []domain.Job, _ []domain.Company) error {
	m.jobs = append(m.jobs, jobs...)
	return nil
}

func makeResults(prefix string, n int, employer string) []domain.JobResult {
	out := make([]domain.JobResult, n)
	for i := range out {
		out[i] = domain.JobResult{
			ProviderID:   fmt.Sprintf("%s-%d", prefix, i+1),
			Title:        fmt.Sprintf("Go Engineer %s-%d", prefix, i+1),
			EmployerName: employer,
			URL:          "https://example.com/" + prefix,
		}
	}
	return out
}

func newSearch(query string) domain.Search {
	return domain.Search{
		ID:       uuid.New(),
		Provider: "stub",
		Query:    query,
		Enabled:  true,
	}
}

type harness struct {
	store    *memStore
	fetcher  *stubFetcher
	enricher *countingEnricher
	checker  *countingChecker
	alerts   *recordingAlerts
	mirror   *recordingMirror
	svc      Service
}

func newHarness(t *testing.T, fetcher *stubFetcher, searches ...domain.Search) *harness {
	t.Helper()

	h := &harness{
		store:    newMemStore(searches...),
		fetcher:  fetcher,
		enricher: &countingEnricher{},
		checker:  &countingChecker{},
		alerts:   &recordingAlerts{},
		mirror:   &recordingMirror{},
	}

	svc, err := NewService(
		WithRepository(h.store),
		WithFetchers(fetcher),
		WithEnrichers(h.enricher),
		WithDuplicateChecker(h.checker),
		WithAlertSink(h.alerts),
		WithMirror(h.mirror),
		WithSettings(Settings{BaseURL: "https://jobs.example/"}),
	)
	require.NoError(t, err)
	h.svc = svc

	return h
}

func TestNewService_RequiresRepositoryAndFetcher(t *testing.T) {
	_, err := NewService(WithFetchers(&stubFetcher{}))
	require.Error(t, err)

	_, err = NewService(WithRepository(newMemStore()))
	require.Error(t, err)
}

func TestRunSearch_UnknownSearch(t *testing.T) {
	h := newHarness(t, &stubFetcher{})

	_, err := h.svc.RunSearch(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrSearchNotFound)
}

func TestRunSearch_StopsAfterPageWithStoredJob(t *testing.T) {
	search := newSearch("golang")
	fetcher := &stubFetcher{pages: [][]domain.JobResult{
		makeResults("p1", 10, "Acme"),
		makeResults("p2", 10, "Acme"),
	}}
	h := newHarness(t, fetcher, search)
	h.store.jobs[jobKey("stub", "p1-5")] = domain.Job{Provider: "stub", ProviderID: "p1-5"}

	res, err := h.svc.RunSearch(context.Background(), search.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.served, "page 2 must not be fetched")
	assert.True(t, res.ExistingFound)
	assert.Equal(t, StateEarlyExit, res.FetchState)
	assert.True(t, res.Run.Success)
	assert.Equal(t, 9, res.Run.NewJobs)
	assert.Equal(t, 10, h.store.jobCount())
}

func TestRunSearch_SecondRunIsNoop(t *testing.T) {
	search := newSearch("golang")
	fetcher := &stubFetcher{pages: [][]domain.JobResult{
		makeResults("p1", 5, "Acme"),
		makeResults("p2", 5, "Acme"),
	}}
	h := newHarness(t, fetcher, search)

	first, err := h.svc.RunSearch(context.Background(), search.ID)
	require.NoError(t, err)
	assert.Equal(t, StateExhausted, first.FetchState)
	assert.Equal(t, 10, first.Run.NewJobs)
	assert.Equal(t, 1, first.Run.NewCompanies)

	second, err := h.svc.RunSearch(context.Background(), search.ID)
	require.NoError(t, err)

	assert.True(t, second.Run.Success)
	assert.Zero(t, second.Run.NewJobs)
	assert.Zero(t, second.Run.NewCompanies)
	assert.Equal(t, 10, h.store.jobCount())
	assert.Len(t, h.store.companies, 1)
	assert.Equal(t, 1, h.enricher.calls, "no enrichment without new jobs")
	assert.Equal(t, 1, h.checker.calls, "no duplicate check without new jobs")
	assert.Len(t, h.store.runs, 2)
}

func TestRunSearch_ZeroResults(t *testing.T) {
	search := newSearch("cobol")
	h := newHarness(t, &stubFetcher{}, search)

	res, err := h.svc.RunSearch(context.Background(), search.ID)
	require.NoError(t, err)

	assert.True(t, res.Run.Success)
	assert.Zero(t, res.Run.NewJobs)
	assert.Equal(t, StateExhausted, res.FetchState)
	assert.Zero(t, h.enricher.calls)
	assert.Zero(t, h.checker.calls)
	assert.Len(t, h.store.runs, 1)
	assert.True(t, h.store.lastRun[search.ID])
}

func TestRunSearch_CancelledKeepsAccumulatedPages(t *testing.T) {
	search := newSearch("golang")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &stubFetcher{
		pages: [][]domain.JobResult{
			makeResults("p1", 3, "Acme"),
			makeResults("p2", 3, "Acme"),
			makeResults("p3", 3, "Acme"),
		},
		beforeServe: func(n int) {
			if n == 2 {
				cancel()
			}
		},
	}
	h := newHarness(t, fetcher, search)

	res, err := h.svc.RunSearch(ctx, search.ID)
	require.NoError(t, err)

	assert.True(t, res.Cancelled)
	assert.Equal(t, StateCancelled, res.FetchState)
	assert.Equal(t, 2, fetcher.served)
	assert.Equal(t, 3, res.Run.NewJobs, "the interrupted page is discarded")
	assert.Equal(t, 3, h.store.jobCount())
	_, ok := h.store.job("stub", "p2-1")
	assert.False(t, ok)

	require.Len(t, h.store.runs, 1)
	assert.Contains(t, h.store.runs[0].Message, "Cancelled")
	assert.Equal(t, 1, h.enricher.calls, "accumulated results are still enriched")
	assert.Equal(t, 1, h.checker.calls)
}

func TestRunSearch_FetchFailurePersistsNothing(t *testing.T) {
	search := newSearch("golang")
	fetcher := &stubFetcher{
		pages:  [][]domain.JobResult{makeResults("p1", 4, "Acme"), makeResults("p2", 4, "Acme")},
		failAt: 2,
	}
	h := newHarness(t, fetcher, search)

	res, err := h.svc.RunSearch(context.Background(), search.ID)
	require.NoError(t, err)

	assert.False(t, res.Run.Success)
	assert.Equal(t, StateFetchFailed, res.FetchState)
	assert.Zero(t, h.store.jobCount())

	var fe *FetchError
	require.ErrorAs(t, res.Err, &fe)
	assert.Equal(t, 2, fe.Page)

	require.Len(t, h.alerts.alerts, 1)
	assert.Equal(t, domain.AlertError, h.alerts.alerts[0].Type)
	assert.Contains(t, h.alerts.alerts[0].Message, "page 2")

	require.Len(t, h.store.runs, 1)
	assert.False(t, h.store.runs[0].Success)
	assert.False(t, h.store.lastRun[search.ID])
}

func TestRunSearch_NoFetcherForProvider(t *testing.T) {
	search := newSearch("golang")
	search.Provider = "monster"
	h := newHarness(t, &stubFetcher{}, search)

	res, err := h.svc.RunSearch(context.Background(), search.ID)
	require.NoError(t, err)

	assert.False(t, res.Run.Success)
	assert.ErrorIs(t, res.Err, ErrNoFetcher)
	assert.Len(t, h.alerts.alerts, 1)
}

func TestRunSearch_WatchedAndBlacklistedCompanies(t *testing.T) {
	search := newSearch("golang")
	watched := domain.Company{ID: uuid.New(), Name: "Acme", Watched: true}
	blocked := domain.Company{ID: uuid.New(), Name: "Spam Co", Blacklisted: true, AlternateNames: []string{"Spam Company"}}

	page := []domain.JobResult{
		{ProviderID: "w1", Title: "Backend Engineer", EmployerName: "ACME"},
		{ProviderID: "b1", Title: "Data Entry", EmployerName: "spam company"},
	}
	h := newHarness(t, &stubFetcher{pages: [][]domain.JobResult{page}}, search)
	h.store.companies = []domain.Company{watched, blocked}

	res, err := h.svc.RunSearch(context.Background(), search.ID)
	require.NoError(t, err)
	require.Equal(t, 2, res.Run.NewJobs)
	assert.Zero(t, res.Run.NewCompanies)

	w, ok := h.store.job("stub", "w1")
	require.True(t, ok)
	require.NotNil(t, w.CompanyID)
	assert.Equal(t, watched.ID, *w.CompanyID)
	assert.False(t, w.Archived)

	b, ok := h.store.job("stub", "b1")
	require.True(t, ok)
	assert.True(t, b.Archived)

	require.Len(t, h.alerts.alerts, 1)
	alert := h.alerts.alerts[0]
	assert.Equal(t, domain.AlertWatched, alert.Type)
	assert.Equal(t, "https://jobs.example/jobs/"+w.ID.String(), alert.URL)
	assert.Contains(t, alert.Title, "Acme")
}

func TestRunSearch_OneCompanyPerEmployer(t *testing.T) {
	search := newSearch("golang")
	page := makeResults("p1", 3, "Globex")
	page[1].EmployerName = "  globex "
	h := newHarness(t, &stubFetcher{pages: [][]domain.JobResult{page}}, search)

	res, err := h.svc.RunSearch(context.Background(), search.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Run.NewCompanies)
	require.Len(t, h.store.companies, 1)

	companyID := h.store.companies[0].ID
	for _, r := range page {
		j, ok := h.store.job("stub", r.ProviderID)
		require.True(t, ok)
		require.NotNil(t, j.CompanyID)
		assert.Equal(t, companyID, *j.CompanyID)
	}
}

func TestRunSearch_SkipsJobsOlderThanCutoff(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	days := 7
	search := newSearch("golang")
	search.MaxAgeDays = &days

	page := makeResults("p1", 3, "Acme")
	page[0].PostedAt = now.Add(-24 * time.Hour)
	page[1].PostedAt = now.AddDate(0, 0, -10)
	page[2].PostedAt = now.Add(-48 * time.Hour)

	fetcher := &stubFetcher{pages: [][]domain.JobResult{page, makeResults("p2", 3, "Acme")}}
	store := newMemStore(search)
	svc, err := NewService(
		WithRepository(store),
		WithFetchers(fetcher),
		WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)

	res, err := svc.RunSearch(context.Background(), search.ID)
	require.NoError(t, err)

	assert.Equal(t, StateEarlyExit, res.FetchState)
	assert.Equal(t, 1, fetcher.served)
	assert.Equal(t, 2, res.Run.NewJobs)
	_, ok := store.job("stub", "p1-2")
	assert.False(t, ok)
}

func TestRunSearch_RepeatedResultIngestedOnce(t *testing.T) {
	search := newSearch("golang")
	p1 := makeResults("p1", 2, "Acme")
	p2 := append(makeResults("p2", 1, "Acme"), p1[1])
	h := newHarness(t, &stubFetcher{pages: [][]domain.JobResult{p1, p2}}, search)

	res, err := h.svc.RunSearch(context.Background(), search.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Run.NewJobs)
	assert.Equal(t, 3, h.store.jobCount())
}

func TestRunSearch_EnrichesConvertsAndChecksDuplicates(t *testing.T) {
	search := newSearch("golang")
	page := []domain.JobResult{{
		ProviderID:      "x1",
		Title:           "Platform Engineer",
		HTMLDescription: "<p>Build <strong>things</strong></p>",
		EmployerName:    "Initech",
	}}
	h := newHarness(t, &stubFetcher{pages: [][]domain.JobResult{page}}, search)

	res, err := h.svc.RunSearch(context.Background(), search.ID)
	require.NoError(t, err)
	require.Len(t, res.NewJobIDs, 1)

	j, ok := h.store.job("stub", "x1")
	require.True(t, ok)
	assert.Equal(t, "Build **things**", j.Description)
	assert.Equal(t, "£30,000 a year", j.FormattedSalary)
	require.NotNil(t, j.SourceSearchID)
	assert.Equal(t, search.ID, *j.SourceSearchID)

	assert.Equal(t, 1, h.enricher.calls)
	require.Len(t, h.checker.seen, 1)
	assert.Equal(t, j.ID, h.checker.seen[0].ID)

	require.Len(t, h.mirror.jobs, 1)
	assert.True(t, h.mirror.jobs[0].CheckedForDuplicate)
}

func TestRunProvider_IsolatesFailures(t *testing.T) {
	ok := newSearch("golang")
	bad := newSearch("panic")
	disabled := newSearch("rust")
	disabled.Enabled = false

	fetcher := &stubFetcher{pages: [][]domain.JobResult{makeResults("p1", 2, "Acme")}}
	h := newHarness(t, fetcher, ok, bad, disabled)

	sweep, err := h.svc.RunProvider(context.Background(), "STUB")
	require.NoError(t, err)

	assert.Equal(t, "stub", sweep.Provider)
	assert.Equal(t, 1, sweep.Succeeded)
	assert.Equal(t, 1, sweep.Failed)
	assert.Len(t, h.store.ListRunsFor(ok.ID), 1)
	assert.Empty(t, h.store.ListRunsFor(disabled.ID))

	badRuns := h.store.ListRunsFor(bad.ID)
	require.Len(t, badRuns, 1)
	assert.False(t, badRuns[0].Success)
	assert.Contains(t, badRuns[0].Message, "panicked")

	success, recorded := h.store.lastRun[bad.ID]
	assert.True(t, recorded)
	assert.False(t, success)

	var errorAlerts []domain.Alert
	for _, a := range h.alerts.alerts {
		if a.Type == domain.AlertError {
			errorAlerts = append(errorAlerts, a)
		}
	}
	require.Len(t, errorAlerts, 1)
	assert.Contains(t, errorAlerts[0].Title, "panic")
}

func TestRunProvider_CancelledBeforeStart(t *testing.T) {
	h := newHarness(t, &stubFetcher{}, newSearch("golang"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sweep, err := h.svc.RunProvider(ctx, "stub")
	require.NoError(t, err)
	assert.Zero(t, sweep.Succeeded+sweep.Failed)
}

func (s *memStore) ListRunsFor(id domain.SearchID) []domain.SearchRun {
	runs, _ := s.ListRuns(context.Background(), id, 0)
	return runs
}
