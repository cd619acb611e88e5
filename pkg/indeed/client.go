package indeed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultGraphQLURL = "https://apis.indeed.com/graphql"
	defaultLegacyURL  = "https://api.indeed.com"
	defaultSalaryURL  = "https://{domain}/api/salary"
	defaultLimit      = 25

	maxBodySize    = 10 << 20
	maxPayloadEcho = 512
)

// NewClient instantiates an Indeed API client
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" && cfg.PublisherID == "" {
		return nil, fmt.Errorf("indeed: api key or publisher id is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		apiKey:      cfg.APIKey,
		publisherID: cfg.PublisherID,
		graphqlURL:  orDefault(cfg.GraphQLURL, defaultGraphQLURL),
		legacyURL:   strings.TrimSuffix(orDefault(cfg.LegacyURL, defaultLegacyURL), "/"),
		salaryURL:   orDefault(cfg.SalaryURL, defaultSalaryURL),
		httpClient:  httpClient,
	}, nil
}

// Search fetches one GraphQL search page, newest first. An empty cursor
// requests the first page.
func (c *Client) Search(ctx context.Context, params SearchParams, cursor string) (SearchPage, error) {
	vars := map[string]any{
		"what":  params.Query,
		"limit": limitOrDefault(params.Limit),
	}
	setIf(vars, "where", params.Location, params.Location != "")
	setIf(vars, "country", strings.ToUpper(params.Country), params.Country != "")
	setIf(vars, "radius", params.Radius, params.Radius > 0)
	setIf(vars, "fromAge", params.MaxAgeDays, params.MaxAgeDays > 0)
	setIf(vars, "jobType", params.JobType, params.JobType != "")
	setIf(vars, "directHire", true, params.EmployerOnly)
	setIf(vars, "cursor", cursor, cursor != "")

	var payload graphqlSearchResponse
	if err := c.graphql(ctx, searchQuery, vars, &payload); err != nil {
		return SearchPage{}, err
	}
	if len(payload.Errors) > 0 {
		return SearchPage{}, fmt.Errorf("%w: %s", ErrMalformedPayload, joinErrors(payload.Errors))
	}
	if payload.Data == nil || payload.Data.JobSearch == nil {
		return SearchPage{}, fmt.Errorf("%w: missing jobSearch", ErrMalformedPayload)
	}

	page := SearchPage{NextCursor: payload.Data.JobSearch.PageInfo.NextCursor}
	for _, r := range payload.Data.JobSearch.Results {
		page.Postings = append(page.Postings, r.Job.posting())
	}
	return page, nil
}

// JobData fetches full job details for the given keys in one call
func (c *Client) JobData(ctx context.Context, keys []string) ([]Posting, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	var payload graphqlJobDataResponse
	if err := c.graphql(ctx, jobDataQuery, map[string]any{"keys": keys}, &payload); err != nil {
		return nil, err
	}
	if payload.Data == nil || payload.Data.JobData == nil {
		if len(payload.Errors) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, joinErrors(payload.Errors))
		}
		return nil, fmt.Errorf("%w: missing jobData", ErrMalformedPayload)
	}

	out := make([]Posting, 0, len(payload.Data.JobData.Results))
	for _, r := range payload.Data.JobData.Results {
		if r.Job.Key == "" {
			continue
		}
		out = append(out, r.Job.posting())
	}
	return out, nil
}

// LegacySearch fetches one page of the legacy publisher search, newest first
func (c *Client) LegacySearch(ctx context.Context, params SearchParams, start int) (LegacyPage, error) {
	values := c.legacyValues()
	values.Set("q", params.Query)
	values.Set("sort", "date")
	values.Set("start", strconv.Itoa(start))
	values.Set("limit", strconv.Itoa(limitOrDefault(params.Limit)))
	values.Set("latlong", "1")
	if params.Location != "" {
		values.Set("l", params.Location)
	}
	if params.Country != "" {
		values.Set("co", strings.ToLower(params.Country))
	}
	if params.Radius > 0 {
		values.Set("radius", strconv.Itoa(params.Radius))
	}
	if params.MaxAgeDays > 0 {
		values.Set("fromage", strconv.Itoa(params.MaxAgeDays))
	}
	if params.JobType != "" {
		values.Set("jt", params.JobType)
	}
	if params.EmployerOnly {
		values.Set("sr", "directhire")
	}

	var payload legacySearchResponse
	if err := c.get(ctx, c.legacyURL+"/ads/apisearch?"+values.Encode(), &payload); err != nil {
		return LegacyPage{}, err
	}
	if payload.TotalResults == nil {
		return LegacyPage{}, fmt.Errorf("%w: missing totalResults", ErrMalformedPayload)
	}

	page := LegacyPage{TotalResults: *payload.TotalResults}
	for _, r := range payload.Results {
		if r.Expired {
			continue
		}
		p := r.posting()
		// search snippets are truncated; descriptions come from LegacyJobs
		p.Description = ""
		page.Postings = append(page.Postings, p)
	}
	return page, nil
}

// LegacyJobs fetches full legacy records, including descriptions, by job key
func (c *Client) LegacyJobs(ctx context.Context, keys []string) ([]Posting, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	values := c.legacyValues()
	values.Set("jobkeys", strings.Join(keys, ","))

	var payload legacyJobsResponse
	if err := c.get(ctx, c.legacyURL+"/ads/apigetjobs?"+values.Encode(), &payload); err != nil {
		return nil, err
	}

	out := make([]Posting, 0, len(payload.Results))
	for _, r := range payload.Results {
		out = append(out, r.posting())
	}
	return out, nil
}

// LegacySalary fetches the salary estimate of one job on its regional domain.
// A job without salary data yields a zero LegacySalary and no error.
func (c *Client) LegacySalary(ctx context.Context, domain, key string) (LegacySalary, error) {
	if domain == "" {
		return LegacySalary{}, fmt.Errorf("indeed: salary lookup for %s: domain is required", key)
	}

	values := url.Values{}
	values.Set("jk", key)
	if c.publisherID != "" {
		values.Set("publisher", c.publisherID)
	}
	u := strings.ReplaceAll(c.salaryURL, "{domain}", domain) + "?" + values.Encode()

	var payload legacySalaryResponse
	if err := c.get(ctx, u, &payload); err != nil {
		return LegacySalary{}, err
	}
	if payload.Salary == nil {
		return LegacySalary{}, nil
	}

	return LegacySalary{
		Average:   payload.Salary.Average,
		Range:     payload.Salary.Range,
		Formatted: payload.Salary.Formatted,
		Unit:      payload.Salary.Unit,
		Currency:  payload.Salary.Currency,
	}, nil
}

func (c *Client) graphql(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("indeed: encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("indeed: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("indeed-api-key", c.apiKey)
	}

	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("indeed: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("indeed: request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("indeed: read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("indeed: API error (%d): %s", resp.StatusCode, echo(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("indeed: decode response: %w (payload: %s)", err, echo(body))
	}
	return nil
}

func (c *Client) legacyValues() url.Values {
	values := url.Values{}
	values.Set("publisher", c.publisherID)
	values.Set("format", "json")
	values.Set("v", "2")
	return values
}

func (j gqlJob) posting() Posting {
	p := Posting{
		Key:   j.Key,
		Title: j.Title,
		URL:   j.URL,
	}
	if j.DatePublished > 0 {
		p.PublishedAt = time.UnixMilli(j.DatePublished).UTC()
	}
	if j.Description != nil {
		p.Description = j.Description.HTML
	}
	if j.Location != nil {
		p.Location = j.Location.Formatted.Long
		p.Latitude = j.Location.Latitude
		p.Longitude = j.Location.Longitude
	}
	if j.Employer != nil {
		p.Employer = j.Employer.Name
	}
	if j.Source != nil {
		p.Source = j.Source.Name
	}
	for _, a := range j.Attributes {
		p.Attributes = append(p.Attributes, a.Label)
	}

	if j.Compensation != nil && j.Compensation.BaseSalary != nil && j.Compensation.BaseSalary.Range != nil {
		r := j.Compensation.BaseSalary.Range
		p.Compensation = &Compensation{
			Variant:   r.Typename,
			Min:       deref(r.Min),
			Max:       deref(r.Max),
			Value:     deref(r.Value),
			Unit:      j.Compensation.BaseSalary.UnitOfWork,
			Currency:  j.Compensation.CurrencyCode,
			Formatted: j.Compensation.FormattedText,
		}
	}

	return p
}

func (r legacyResult) posting() Posting {
	p := Posting{
		Key:         r.JobKey,
		Title:       r.JobTitle,
		URL:         r.URL,
		Description: r.Description,
		Location:    r.FormattedLocation,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Employer:    r.Company,
		Source:      r.Source,
	}
	if p.Description == "" {
		p.Description = r.Snippet
	}
	if r.Date != "" {
		if ts, err := time.Parse(time.RFC1123, r.Date); err == nil {
			p.PublishedAt = ts.UTC()
		}
	}
	return p
}

func setIf(vars map[string]any, key string, value any, ok bool) {
	if ok {
		vars[key] = value
	}
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return limit
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func joinErrors(errs []graphqlError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

func echo(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxPayloadEcho {
		return s[:maxPayloadEcho] + "..."
	}
	return s
}
