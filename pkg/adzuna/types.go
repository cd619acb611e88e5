package adzuna

import (
	"net/http"
	"time"
)

// Config defines Adzuna API client settings
type Config struct {
	AppID      string
	AppKey     string
	Country    string
	BaseURL    string
	HTTPClient *http.Client
	PageSize   int
}

// Client queries Adzuna job search API
type Client struct {
	appID      string
	appKey     string
	country    string
	baseURL    string
	httpClient *http.Client
	pageSize   int
}

// SearchParams describe one page request. Page numbers start at 1.
type SearchParams struct {
	Query      string
	Country    string
	Location   string
	DistanceKM int
	MaxDaysOld int
	JobType    string
	Page       int
}

// SearchPage is one page of results
type SearchPage struct {
	Jobs  []Job
	Count int
}

type jobSearchResponse struct {
	Count   *int         `json:"count"`
	Results []jobPosting `json:"results"`
}

type jobPosting struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Company      companySummary  `json:"company"`
	Location     locationSummary `json:"location"`
	Description  string          `json:"description"`
	Created      string          `json:"created"`
	RedirectURL  string          `json:"redirect_url"`
	ContractTime string          `json:"contract_time"`
	ContractType string          `json:"contract_type"`
	Category     struct {
		Label string `json:"label"`
	} `json:"category"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	SalaryMin         float64  `json:"salary_min"`
	SalaryMax         float64  `json:"salary_max"`
	SalaryIsPredicted string   `json:"salary_is_predicted"`
}

type companySummary struct {
	DisplayName string `json:"display_name"`
}

type locationSummary struct {
	DisplayName string `json:"display_name"`
}

// Job represents a normalized Adzuna job posting.
type Job struct {
	ID              string
	Title           string
	CompanyName     string
	Location        string
	Latitude        *float64
	Longitude       *float64
	URL             string
	Description     string
	Category        string
	ContractTime    string
	ContractType    string
	PostedAt        time.Time
	SalaryMin       float64
	SalaryMax       float64
	SalaryPredicted bool
}
