package adzuna

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL  = "https://api.adzuna.com"
	defaultCountry  = "gb"
	defaultPageSize = 25
)

// NewClient instantiates an Adzuna API client
func NewClient(cfg Config) (*Client, error) {
	if cfg.AppID == "" || cfg.AppKey == "" {
		return nil, fmt.Errorf("adzuna: app_id and app_key are required")
	}

	country := strings.ToLower(cfg.Country)
	if country == "" {
		country = defaultCountry
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return &Client{
		appID:      cfg.AppID,
		appKey:     cfg.AppKey,
		country:    country,
		baseURL:    baseURL,
		httpClient: httpClient,
		pageSize:   pageSize,
	}, nil
}

// SearchJobs fetches one page of results, newest first
func (c *Client) SearchJobs(ctx context.Context, params SearchParams) (SearchPage, error) {
	if c == nil {
		return SearchPage{}, fmt.Errorf("adzuna: client is nil")
	}

	u, err := c.buildSearchURL(params)
	if err != nil {
		return SearchPage{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return SearchPage{}, fmt.Errorf("adzuna: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SearchPage{}, fmt.Errorf("adzuna: request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return SearchPage{}, fmt.Errorf("adzuna: API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload jobSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return SearchPage{}, fmt.Errorf("adzuna: decode response: %w", err)
	}
	if payload.Count == nil {
		return SearchPage{}, fmt.Errorf("adzuna: decode response: missing count")
	}

	page := SearchPage{Count: *payload.Count}
	for _, posting := range payload.Results {
		if posting.ID == "" {
			continue
		}
		page.Jobs = append(page.Jobs, mapPosting(posting))
	}

	return page, nil
}

// PageSize is the number of results requested per page
func (c *Client) PageSize() int {
	return c.pageSize
}

func (c *Client) buildSearchURL(params SearchParams) (string, error) {
	if params.Query == "" {
		return "", fmt.Errorf("adzuna: query is required")
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("adzuna: parse base url: %w", err)
	}

	country := c.country
	if params.Country != "" {
		country = strings.ToLower(params.Country)
	}
	page := params.Page
	if page < 1 {
		page = 1
	}

	u.Path = path.Join(u.Path, "v1", "api", "jobs", country, "search", strconv.Itoa(page))

	values := url.Values{}
	values.Set("app_id", c.appID)
	values.Set("app_key", c.appKey)
	values.Set("what", params.Query)
	values.Set("results_per_page", strconv.Itoa(c.pageSize))
	values.Set("sort_by", "date")
	values.Set("content-type", "application/json")

	if params.Location != "" {
		values.Set("where", params.Location)
	}
	if params.DistanceKM > 0 {
		values.Set("distance", strconv.Itoa(params.DistanceKM))
	}
	if params.MaxDaysOld > 0 {
		values.Set("max_days_old", strconv.Itoa(params.MaxDaysOld))
	}

	switch strings.ToLower(strings.ReplaceAll(params.JobType, "-", "")) {
	case "fulltime":
		values.Set("full_time", "1")
	case "parttime":
		values.Set("part_time", "1")
	case "contract":
		values.Set("contract", "1")
	case "permanent":
		values.Set("permanent", "1")
	}

	u.RawQuery = values.Encode()
	return u.String(), nil
}

func mapPosting(posting jobPosting) Job {
	job := Job{
		ID:              posting.ID,
		Title:           posting.Title,
		CompanyName:     posting.Company.DisplayName,
		Location:        posting.Location.DisplayName,
		Latitude:        posting.Latitude,
		Longitude:       posting.Longitude,
		URL:             posting.RedirectURL,
		Description:     posting.Description,
		Category:        posting.Category.Label,
		ContractTime:    posting.ContractTime,
		ContractType:    posting.ContractType,
		SalaryMin:       posting.SalaryMin,
		SalaryMax:       posting.SalaryMax,
		SalaryPredicted: posting.SalaryIsPredicted == "1",
	}

	if posting.Created != "" {
		if ts, err := time.Parse(time.RFC3339, posting.Created); err == nil {
			job.PostedAt = ts.UTC()
		}
	}

	return job
}
