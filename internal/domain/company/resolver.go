// Package company maps employer names from fetched jobs to Company records.
package company

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/internal/repository"
)

// Source tells where a resolved company came from
type Source int

const (
	SourceNone Source = iota
	SourcePersisted
	SourceStaged
	SourceNew
)

// Resolution is the outcome of resolving one job's employer
type Resolution struct {
	Company domain.Company
	Source  Source
}

// Found reports whether the job has a company at all
func (r Resolution) Found() bool {
	return r.Source != SourceNone
}

// Resolver resolves employers for one batch. Companies created during the
// batch are staged in memory and flushed together with the jobs.
type Resolver struct {
	repo repository.CompanyRepository

	// persisted caches store lookups by key; a nil entry records a miss
	persisted map[string]*domain.Company

	staged []domain.Company
	index  map[string]int
}

// NewResolver creates a Resolver with an empty staging area
func NewResolver(repo repository.CompanyRepository) *Resolver {
	return &Resolver{
		repo:      repo,
		persisted: make(map[string]*domain.Company),
		index:     make(map[string]int),
	}
}

// Resolve returns the company for a fetched job: a stored company matched by
// name or alternate name, else a company already staged in this batch, else a
// newly staged one.
func (r *Resolver) Resolve(ctx context.Context, result domain.JobResult) (Resolution, error) {
	names := candidateNames(result)
	if len(names) == 0 {
		return Resolution{}, nil
	}

	for _, name := range names {
		c, err := r.lookup(ctx, name)
		if err != nil {
			return Resolution{}, err
		}
		if c != nil {
			return Resolution{Company: *c, Source: SourcePersisted}, nil
		}
	}

	for _, name := range names {
		if i, ok := r.index[Key(name)]; ok {
			return Resolution{Company: r.staged[i], Source: SourceStaged}, nil
		}
	}

	c := domain.Company{
		ID:        uuid.New(),
		Name:      names[0],
		Location:  result.Location,
		Latitude:  result.Latitude,
		Longitude: result.Longitude,
		Recruiter: strings.TrimSpace(result.EmployerName) == "",
	}
	r.index[Key(c.Name)] = len(r.staged)
	r.staged = append(r.staged, c)

	return Resolution{Company: c, Source: SourceNew}, nil
}

// Staged returns companies created during this batch in first-seen order
func (r *Resolver) Staged() []domain.Company {
	out := make([]domain.Company, len(r.staged))
	copy(out, r.staged)
	return out
}

func (r *Resolver) lookup(ctx context.Context, name string) (*domain.Company, error) {
	key := Key(name)
	if c, ok := r.persisted[key]; ok {
		return c, nil
	}

	c, err := r.repo.FindCompanyByName(ctx, name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		r.persisted[key] = nil
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("company: find %q: %w", name, err)
	}

	r.persisted[key] = &c
	return &c, nil
}

// Key normalizes a company name for identity comparison
func Key(name string) string {
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}

func candidateNames(result domain.JobResult) []string {
	var names []string
	seen := make(map[string]struct{}, 2)
	for _, n := range []string{result.EmployerName, result.AdvertisedBy} {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		k := Key(n)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		names = append(names, n)
	}
	return names
}
