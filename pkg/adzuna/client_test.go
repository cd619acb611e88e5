package adzuna

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchJobs_BuildsPagedRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/api/jobs/gb/search/3", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "id", q.Get("app_id"))
		assert.Equal(t, "golang", q.Get("what"))
		assert.Equal(t, "date", q.Get("sort_by"))
		assert.Equal(t, "25", q.Get("results_per_page"))
		assert.Equal(t, "10", q.Get("max_days_old"))
		assert.Equal(t, "1", q.Get("full_time"))

		_, _ = w.Write([]byte(`{"count":80,"results":[
			{"id":"42","title":"Go Engineer","company":{"display_name":"Initech"},
			 "location":{"display_name":"Leeds"},"created":"2026-02-01T09:30:00Z",
			 "redirect_url":"https://adzuna.example/42","salary_min":40000,"salary_max":50000,
			 "salary_is_predicted":"0","latitude":53.8,"longitude":-1.55},
			{"id":"","title":"no id"}
		]}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{AppID: "id", AppKey: "key", BaseURL: srv.URL, HTTPClient: srv.Client()})
	require.NoError(t, err)

	page, err := client.SearchJobs(context.Background(), SearchParams{
		Query:      "golang",
		MaxDaysOld: 10,
		JobType:    "full-time",
		Page:       3,
	})
	require.NoError(t, err)

	assert.Equal(t, 80, page.Count)
	require.Len(t, page.Jobs, 1)

	job := page.Jobs[0]
	assert.Equal(t, "42", job.ID)
	assert.Equal(t, "Initech", job.CompanyName)
	assert.Equal(t, time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC), job.PostedAt)
	assert.False(t, job.SalaryPredicted)
	require.NotNil(t, job.Latitude)
	assert.InDelta(t, 53.8, *job.Latitude, 0.001)
}

func TestSearchJobs_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "api error", status: http.StatusUnauthorized, body: `{"display":"bad key"}`},
		{name: "bad json", status: http.StatusOK, body: `not json`},
		{name: "missing count", status: http.StatusOK, body: `{"results":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client, err := NewClient(Config{AppID: "id", AppKey: "key", BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = client.SearchJobs(context.Background(), SearchParams{Query: "go", Page: 1})
			require.Error(t, err)
		})
	}
}

func TestSearchJobs_RequiresQuery(t *testing.T) {
	client, err := NewClient(Config{AppID: "id", AppKey: "key"})
	require.NoError(t, err)

	_, err = client.SearchJobs(context.Background(), SearchParams{})
	require.Error(t, err)
}
