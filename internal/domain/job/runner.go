package job

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/internal/domain/company"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

const maxMessageLen = 300

// runner holds the state of a single search run
type runner struct {
	svc     *service
	search  domain.Search
	log     *logging.Logger
	started time.Time
	state   State
	result  RunResult
}

// batch is what a run hands to the unit of work
type batch struct {
	jobs      []domain.Job
	companies []domain.Company

	// watched maps job ids to the watched company they belong to
	watched map[domain.JobID]string
}

func (r *runner) transition(to State) {
	r.log.Debug("search run state", "from", string(r.state), "to", string(to))
	r.state = to
}

func (r *runner) execute(ctx context.Context) (RunResult, error) {
	// Everything after fetching runs detached so a cancelled run still
	// persists what it accumulated and is recorded.
	durable := context.WithoutCancel(ctx)

	fetcher, ok := r.svc.fetchers[providerKey(r.search.Provider)]
	if !ok {
		return r.fail(durable, fmt.Errorf("%w: %q", ErrNoFetcher, r.search.Provider))
	}

	r.log.Info("search run started", "query", r.search.Query, "location", r.search.Location)

	r.transition(StateFetching)
	results, err := r.fetch(ctx, fetcher)
	if err != nil {
		r.end(StateFetchFailed)
		return r.fail(durable, err)
	}

	var notes []string
	if r.result.Cancelled {
		notes = append(notes, fmt.Sprintf("Cancelled after %d page(s)", r.result.Pages))
	}

	if len(results) == 0 {
		return r.finish(durable, true, summary(0, 0, notes), 0, 0)
	}

	// Cancellation only stops fetching; what was accumulated is still
	// enriched, persisted and checked.
	if e, ok := r.svc.enrichers[providerKey(r.search.Provider)]; ok {
		r.transition(StateEnriching)
		if !e.Enrich(durable, results) {
			notes = append(notes, "Enrichment incomplete")
		}
	}

	r.transition(StatePersisting)
	b, err := r.materialize(durable, results)
	if err != nil {
		return r.fail(durable, err)
	}

	inserted, err := r.persist(durable, b)
	if err != nil {
		return r.fail(durable, err)
	}

	if r.svc.duplicates != nil && r.svc.duplicates.Enabled() && len(inserted) > 0 {
		r.transition(StateDeduplicating)
		checked, err := r.svc.duplicates.Check(durable, inserted)
		if err != nil {
			r.log.Warn("duplicate check incomplete", "err", err)
			notes = append(notes, "Duplicate check incomplete")
		}
		if len(checked) == len(inserted) {
			inserted = checked
		}
	}

	if r.svc.mirror != nil && len(inserted) > 0 {
		if err := r.svc.mirror.MirrorBatch(durable, inserted, b.companies); err != nil {
			r.log.Warn("mirror batch failed", "err", err)
		}
	}

	r.alertWatched(durable, inserted, b.watched)

	for _, j := range inserted {
		r.result.NewJobIDs = append(r.result.NewJobIDs, j.ID)
	}

	return r.finish(durable, true, summary(len(inserted), len(b.companies), notes), len(inserted), len(b.companies))
}

// fetch walks pages until a page holds a job older than the cutoff or one
// already stored, the provider runs out, the context is cancelled or a
// page fails. A page interrupted by cancellation is dropped whole.
func (r *runner) fetch(ctx context.Context, fetcher Fetcher) ([]domain.JobResult, error) {
	cutoff, hasCutoff := r.search.Cutoff(r.started)
	pager := fetcher.Pages(r.search)
	seen := make(map[string]struct{})

	var results []domain.JobResult

	for {
		if r.cancelled(ctx) {
			return results, nil
		}

		page, ok, err := pager.Next(ctx)
		if err != nil {
			if r.cancelled(ctx) {
				return results, nil
			}
			return nil, &FetchError{Page: r.result.Pages + 1, Err: err}
		}
		if !ok {
			r.end(StateExhausted)
			return results, nil
		}
		r.result.Pages++

		var kept []domain.JobResult
		for _, res := range page.Results {
			if r.cancelled(ctx) {
				return results, nil
			}

			if res.ProviderID == "" {
				r.log.Warn("result without provider id skipped", "title", res.Title)
				continue
			}
			if res.Provider == "" {
				res.Provider = providerKey(fetcher.Name())
			}
			if _, dup := seen[res.ProviderID]; dup {
				continue
			}

			if hasCutoff && !res.PostedAt.IsZero() && res.PostedAt.Before(cutoff) {
				r.result.ExistingFound = true
				continue
			}

			exists, err := r.svc.repo.JobExists(ctx, res.Provider, res.ProviderID)
			if err != nil {
				if r.cancelled(ctx) {
					return results, nil
				}
				return nil, fmt.Errorf("job: check %s/%s: %w", res.Provider, res.ProviderID, err)
			}
			if exists {
				r.result.ExistingFound = true
				continue
			}

			seen[res.ProviderID] = struct{}{}
			kept = append(kept, res)
		}

		results = append(results, kept...)
		r.log.Debug("page fetched",
			"page", page.Number,
			"results", len(page.Results),
			"new", len(kept),
		)

		if r.result.ExistingFound {
			r.end(StateEarlyExit)
			return results, nil
		}
	}
}

// cancelled checks ctx at a suspension point and latches the outcome
func (r *runner) cancelled(ctx context.Context) bool {
	if r.result.Cancelled {
		return true
	}
	if ctx.Err() == nil {
		return false
	}
	r.result.Cancelled = true
	if r.state == StateFetching {
		r.end(StateCancelled)
	}
	r.log.Info("search run cancelled", "state", string(r.state), "pages", r.result.Pages)
	return true
}

// end records how pagination finished
func (r *runner) end(s State) {
	r.result.FetchState = s
	r.transition(s)
}

func (r *runner) materialize(ctx context.Context, results []domain.JobResult) (batch, error) {
	resolver := company.NewResolver(r.svc.repo)
	b := batch{watched: make(map[domain.JobID]string)}

	for _, res := range results {
		resolution, err := resolver.Resolve(ctx, res)
		if err != nil {
			return batch{}, err
		}

		j := r.newJob(res)
		if resolution.Found() {
			id := resolution.Company.ID
			j.CompanyID = &id
			if resolution.Company.Blacklisted {
				j.Archived = true
			}
			if resolution.Company.Watched && !j.Archived {
				b.watched[j.ID] = resolution.Company.Name
			}
		}
		b.jobs = append(b.jobs, j)
	}

	b.companies = resolver.Staged()
	return b, nil
}

func (r *runner) newJob(res domain.JobResult) domain.Job {
	searchID := r.search.ID
	posted := res.PostedAt
	if posted.IsZero() {
		posted = r.started
	}

	return domain.Job{
		ID:              uuid.New(),
		Title:           strings.TrimSpace(res.Title),
		Description:     r.svc.markdown(res.HTMLDescription),
		FormattedSalary: res.FormattedSalary,
		AvgYearlySalary: res.AvgYearlySalary,
		Location:        res.Location,
		Latitude:        res.Latitude,
		Longitude:       res.Longitude,
		Remote:          res.Remote,
		URL:             res.URL,
		PostedAt:        posted,
		Provider:        res.Provider,
		ProviderID:      res.ProviderID,
		SourceSearchID:  &searchID,
		Tags:            res.Tags,
		CreatedAt:       r.started,
	}
}

// persist writes companies and jobs in one unit of work and returns the jobs
// that were actually inserted
func (r *runner) persist(ctx context.Context, b batch) ([]domain.Job, error) {
	uow, err := r.svc.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("job: begin unit of work: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := uow.Rollback(ctx); err != nil {
				r.log.Warn("rollback failed", "err", err)
			}
		}
	}()

	if len(b.companies) > 0 {
		if err := uow.InsertCompanies(ctx, b.companies); err != nil {
			return nil, fmt.Errorf("job: insert companies: %w", err)
		}
	}

	inserted, err := uow.InsertJobs(ctx, b.jobs)
	if err != nil {
		return nil, fmt.Errorf("job: insert jobs: %w", err)
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, fmt.Errorf("job: commit: %w", err)
	}
	committed = true

	if skipped := len(b.jobs) - len(inserted); skipped > 0 {
		r.log.Info("jobs already stored by a concurrent run", "count", skipped)
	}

	return inserted, nil
}

func (r *runner) alertWatched(ctx context.Context, jobs []domain.Job, watched map[domain.JobID]string) {
	for _, j := range jobs {
		name, ok := watched[j.ID]
		if !ok {
			continue
		}
		r.svc.alerts.Create(ctx, domain.Alert{
			ID:        uuid.New(),
			Type:      domain.AlertWatched,
			Title:     fmt.Sprintf("New job at %s", name),
			Message:   j.Title,
			URL:       r.svc.jobURL(j.ID),
			CreatedAt: r.svc.clock(),
		})
	}
}

func (r *runner) fail(ctx context.Context, cause error) (RunResult, error) {
	r.result.Err = cause
	msg := failureMessage(cause)

	r.log.Error("search run failed", "err", cause)

	r.svc.alerts.Create(ctx, domain.Alert{
		ID:        uuid.New(),
		Type:      domain.AlertError,
		Title:     fmt.Sprintf("Search %q failed", r.search.Query),
		Message:   msg,
		CreatedAt: r.svc.clock(),
	})

	return r.finish(ctx, false, msg, 0, 0)
}

func (r *runner) finish(ctx context.Context, success bool, message string, newJobs, newCompanies int) (RunResult, error) {
	run := domain.SearchRun{
		ID:             uuid.New(),
		SearchID:       r.search.ID,
		Timestamp:      r.started,
		Success:        success,
		Message:        message,
		NewJobs:        newJobs,
		NewCompanies:   newCompanies,
		ElapsedSeconds: r.svc.clock().Sub(r.started).Seconds(),
	}

	if err := r.svc.repo.RecordRun(ctx, run); err != nil {
		return r.result, fmt.Errorf("job: record run: %w", err)
	}
	r.transition(StateRunRecorded)

	if err := r.svc.repo.UpdateLastRun(ctx, r.search.ID, r.started, success); err != nil {
		r.log.Warn("update last run failed", "err", err)
	}

	r.result.Run = run
	r.log.Info("search run finished",
		"success", success,
		"new_jobs", newJobs,
		"new_companies", newCompanies,
		"pages", r.result.Pages,
		"elapsed", run.ElapsedSeconds,
	)

	return r.result, nil
}

func summary(jobs, companies int, notes []string) string {
	msg := fmt.Sprintf("Found %d new job(s) and %d new company(ies)", jobs, companies)
	if len(notes) > 0 {
		msg += ". " + strings.Join(notes, ". ")
	}
	return msg
}

func failureMessage(err error) string {
	var fe *FetchError
	var msg string
	switch {
	case errors.As(err, &fe):
		msg = fmt.Sprintf("Fetching page %d failed: %v", fe.Page, fe.Err)
	case errors.Is(err, ErrNoFetcher):
		msg = err.Error()
	default:
		msg = fmt.Sprintf("Run failed: %v", err)
	}

	if len(msg) > maxMessageLen {
		cut := maxMessageLen
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut] + "..."
	}
	return msg
}

func (s *service) markdown(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	out, err := s.converter.ConvertString(html)
	if err != nil {
		s.logger.Debug("description conversion failed", "err", err)
		return html
	}
	return strings.TrimSpace(out)
}
