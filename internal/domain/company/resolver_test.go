package company

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/internal/repository"
)

type fakeCompanies struct {
	companies []domain.Company
	calls     int
	err       error
}

func (f *fakeCompanies) FindCompanyByName(_ context.Context, name string) (domain.Company, error) {
	f.calls++
	if f.err != nil {
		return domain.Company{}, f.err
	}
	for _, c := range f.companies {
		if Key(c.Name) == Key(name) {
			return c, nil
		}
		for _, alt := range c.AlternateNames {
			if Key(alt) == Key(name) {
				return c, nil
			}
		}
	}
	return domain.Company{}, repository.ErrNotFound
}

func TestResolveStagesOneCompanyPerName(t *testing.T) {
	r := NewResolver(&fakeCompanies{})
	ctx := context.Background()

	first, err := r.Resolve(ctx, domain.JobResult{EmployerName: "Acme Ltd", Location: "Leeds"})
	require.NoError(t, err)
	second, err := r.Resolve(ctx, domain.JobResult{EmployerName: "  ACME   ltd ", Location: "York"})
	require.NoError(t, err)

	assert.Equal(t, SourceNew, first.Source)
	assert.Equal(t, SourceStaged, second.Source)
	assert.Equal(t, first.Company.ID, second.Company.ID)

	staged := r.Staged()
	require.Len(t, staged, 1)
	assert.Equal(t, "Acme Ltd", staged[0].Name)
	assert.Equal(t, "Leeds", staged[0].Location)
}

func TestResolvePrefersPersistedCompany(t *testing.T) {
	existing := domain.Company{ID: uuid.New(), Name: "Globex", AlternateNames: []string{"Globex Corporation"}, Watched: true}
	repo := &fakeCompanies{companies: []domain.Company{existing}}
	r := NewResolver(repo)

	res, err := r.Resolve(context.Background(), domain.JobResult{EmployerName: "globex corporation"})
	require.NoError(t, err)

	assert.Equal(t, SourcePersisted, res.Source)
	assert.Equal(t, existing.ID, res.Company.ID)
	assert.True(t, res.Company.Watched)
	assert.Empty(t, r.Staged())
}

func TestResolveCachesLookups(t *testing.T) {
	repo := &fakeCompanies{}
	r := NewResolver(repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := r.Resolve(ctx, domain.JobResult{EmployerName: "Initech"})
		require.NoError(t, err)
	}

	assert.Equal(t, 1, repo.calls)
	assert.Len(t, r.Staged(), 1)
}

func TestResolveFallsBackToAdvertisedBy(t *testing.T) {
	agency := domain.Company{ID: uuid.New(), Name: "Hays", Recruiter: true}
	r := NewResolver(&fakeCompanies{companies: []domain.Company{agency}})

	res, err := r.Resolve(context.Background(), domain.JobResult{EmployerName: "Unknown Client", AdvertisedBy: "Hays"})
	require.NoError(t, err)
	assert.Equal(t, SourcePersisted, res.Source)
	assert.Equal(t, agency.ID, res.Company.ID)

	res, err = r.Resolve(context.Background(), domain.JobResult{AdvertisedBy: "Reed"})
	require.NoError(t, err)
	assert.Equal(t, SourceNew, res.Source)
	assert.Equal(t, "Reed", res.Company.Name)
	assert.True(t, res.Company.Recruiter)
}

func TestResolveWithoutEmployer(t *testing.T) {
	r := NewResolver(&fakeCompanies{})

	res, err := r.Resolve(context.Background(), domain.JobResult{Title: "Anonymous"})
	require.NoError(t, err)
	assert.False(t, res.Found())
	assert.Empty(t, r.Staged())
}

func TestResolvePropagatesStoreErrors(t *testing.T) {
	r := NewResolver(&fakeCompanies{err: errors.New("connection reset")})

	_, err := r.Resolve(context.Background(), domain.JobResult{EmployerName: "Acme"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
