package adzuna

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/pkg/adzuna"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

type fakeClient struct {
	count int
	pages []int
}

func (f *fakeClient) PageSize() int { return 25 }

func (f *fakeClient) SearchJobs(_ context.Context, params adzuna.SearchParams) (adzuna.SearchPage, error) {
	f.pages = append(f.pages, params.Page)

	start := (params.Page - 1) * 25
	n := min(25, f.count-start)
	page := adzuna.SearchPage{Count: f.count}
	for i := 0; i < n; i++ {
		page.Jobs = append(page.Jobs, adzuna.Job{
			ID:          fmt.Sprint(start + i),
			Title:       "Go Engineer",
			CompanyName: "Initech",
			SalaryMin:   40000,
			SalaryMax:   50000,
		})
	}
	return page, nil
}

func TestPager_WalksPageNumbers(t *testing.T) {
	client := &fakeClient{count: 60}
	p, err := NewProvider(client, "GBP", nil)
	require.NoError(t, err)

	pager := p.Pages(domain.Search{Query: "go"})

	var total int
	for {
		page, ok, err := pager.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		total += len(page.Results)
	}

	assert.Equal(t, 60, total)
	assert.Equal(t, []int{1, 2, 3}, client.pages)
}

func TestPager_NoResults(t *testing.T) {
	p, err := NewProvider(&fakeClient{}, "GBP", nil)
	require.NoError(t, err)

	_, ok, err := p.Pages(domain.Search{Query: "go"}).Next(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestToResult_Salary(t *testing.T) {
	p, err := NewProvider(&fakeClient{}, "GBP", nil)
	require.NoError(t, err)

	r := p.toResult(adzuna.Job{ID: "1", CompanyName: " Initech ", SalaryMin: 40000, SalaryMax: 50000, Category: "IT Jobs"})
	assert.Equal(t, ProviderName, r.Provider)
	assert.Equal(t, "Initech", r.EmployerName)
	assert.Equal(t, "£40,000 - £50,000 a year", r.FormattedSalary)
	require.NotNil(t, r.AvgYearlySalary)
	assert.Equal(t, 45000, *r.AvgYearlySalary)
	assert.Equal(t, []string{"IT Jobs"}, r.Tags)

	predicted := p.toResult(adzuna.Job{ID: "2", SalaryMin: 40000, SalaryMax: 40000, SalaryPredicted: true})
	assert.Empty(t, predicted.FormattedSalary)
	assert.Nil(t, predicted.AvgYearlySalary)
}

func TestNewProvider_RequiresClient(t *testing.T) {
	_, err := NewProvider(nil, "GBP", nil)
	require.Error(t, err)
}

func TestCurrencyFor(t *testing.T) {
	assert.Equal(t, "USD", CurrencyFor("US"))
	assert.Equal(t, "EUR", CurrencyFor("de"))
	assert.Equal(t, "GBP", CurrencyFor("xx"))
}

func TestPages_EmployerOnlyWarnsOncePerSearch(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p, err := NewProvider(&fakeClient{count: 3}, "GBP", logging.NewWithCore(core))
	require.NoError(t, err)

	search := domain.Search{ID: uuid.New(), Query: "go", EmployerOnly: true}
	p.Pages(search)
	p.Pages(search)
	p.Pages(domain.Search{ID: uuid.New(), Query: "go"})

	assert.Equal(t, 1, logs.FilterMessageSnippet("employer-only").Len())

	page, ok, err := p.Pages(search).Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, page.Results, 3, "results are not filtered")
}
