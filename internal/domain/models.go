package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobID uniquely identifies a job
type JobID = uuid.UUID

// CompanyID uniquely identifies a company
type CompanyID = uuid.UUID

// SearchID uniquely identifies a saved search
type SearchID = uuid.UUID

// Search is a saved query configuration for one provider
type Search struct {
	ID           SearchID
	Provider     string
	Query        string
	Country      string
	Location     string
	Radius       *int // miles or km, provider dependent
	MaxAgeDays   *int
	JobType      string
	EmployerOnly bool // excludes recruiter-posted jobs
	Enabled      bool

	LastRun        *time.Time
	LastRunSuccess *bool
}

// Cutoff returns the oldest posting time accepted by the search
func (s Search) Cutoff(now time.Time) (time.Time, bool) {
	if s.MaxAgeDays == nil || *s.MaxAgeDays <= 0 {
		return time.Time{}, false
	}
	return now.AddDate(0, 0, -*s.MaxAgeDays), true
}

// SearchRun is the audit record of one orchestration run
type SearchRun struct {
	ID             uuid.UUID
	SearchID       SearchID
	Timestamp      time.Time
	Success        bool
	Message        string
	NewJobs        int
	NewCompanies   int
	ElapsedSeconds float64
}

// Company is an employer identity
type Company struct {
	ID             CompanyID
	Name           string
	Location       string
	Latitude       *float64
	Longitude      *float64
	Watched        bool
	Blacklisted    bool
	Recruiter      bool
	AlternateNames []string
}

// Job is a persisted job posting
type Job struct {
	ID                  JobID
	Title               string
	Description         string // markdown
	FormattedSalary     string
	AvgYearlySalary     *int
	Location            string
	Latitude            *float64
	Longitude           *float64
	Remote              bool
	URL                 string
	CompanyID           *CompanyID
	PostedAt            time.Time
	Provider            string
	ProviderID          string
	SourceSearchID      *SearchID
	DuplicateJobID      *JobID
	CheckedForDuplicate bool
	Archived            bool
	Seen                bool
	Saved               bool
	Tags                []string
	Categories          []int64
	CreatedAt           time.Time
}

// JobResult is the provider-agnostic form of one fetched posting.
// It carries everything enrichment and company resolution need.
type JobResult struct {
	Provider        string
	ProviderID      string
	Title           string
	URL             string
	HTMLDescription string
	Remote          bool
	Location        string
	Latitude        *float64
	Longitude       *float64
	EmployerName    string
	AdvertisedBy    string
	PostedAt        time.Time
	Tags            []string
	FormattedSalary string
	AvgYearlySalary *int

	// Domain is the regional host the job was advertised under, e.g. uk.indeed.com
	Domain string
}

// NeedsDescription reports whether enrichment should look up a description
func (r JobResult) NeedsDescription() bool {
	return r.HTMLDescription == ""
}

// NeedsSalary reports whether enrichment should look up salary data
func (r JobResult) NeedsSalary() bool {
	return r.FormattedSalary == "" && r.AvgYearlySalary == nil
}

// AlertType classifies an alert
type AlertType string

const (
	AlertInfo    AlertType = "info"
	AlertError   AlertType = "error"
	AlertWatched AlertType = "watched"
)

// Alert is a durable notification
type Alert struct {
	ID        uuid.UUID
	Type      AlertType
	Title     string
	Message   string
	URL       string
	Read      bool
	CreatedAt time.Time
}
