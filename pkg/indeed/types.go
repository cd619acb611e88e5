package indeed

import (
	"errors"
	"net/http"
	"time"
)

// ErrMalformedPayload is returned when a response decodes but lacks the expected data
var ErrMalformedPayload = errors.New("indeed: malformed payload")

// Config defines Indeed API client settings
type Config struct {
	APIKey      string
	PublisherID string

	GraphQLURL string
	LegacyURL  string

	// SalaryURL is the per-domain salary endpoint; {domain} is replaced by
	// the regional host, e.g. uk.indeed.com
	SalaryURL string

	HTTPClient *http.Client
}

// Client talks to both the GraphQL and the legacy publisher API
type Client struct {
	apiKey      string
	publisherID string
	graphqlURL  string
	legacyURL   string
	salaryURL   string
	httpClient  *http.Client
}

// SearchParams describe one page request
type SearchParams struct {
	Query        string
	Country      string
	Location     string
	Radius       int
	MaxAgeDays   int
	JobType      string
	EmployerOnly bool
	Limit        int
}

// Posting is a job as returned by either API flavor
type Posting struct {
	Key          string
	Title        string
	URL          string
	Description  string // HTML
	Location     string
	Latitude     *float64
	Longitude    *float64
	Employer     string
	Source       string
	Attributes   []string
	PublishedAt  time.Time
	Compensation *Compensation
}

// Compensation is the structured salary of a GraphQL posting. Variant is the
// range type reported by the API: AtLeast, AtMost, Exactly or Range.
type Compensation struct {
	Variant   string
	Min       float64
	Max       float64
	Value     float64
	Unit      string
	Currency  string
	Formatted string
}

// SearchPage is one GraphQL search result page
type SearchPage struct {
	Postings   []Posting
	NextCursor string
}

// LegacyPage is one legacy search result page
type LegacyPage struct {
	Postings     []Posting
	TotalResults int
}

// LegacySalary is the per-job salary estimate of the legacy API
type LegacySalary struct {
	Average   float64
	Range     string
	Formatted string
	Unit      string
	Currency  string
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlSearchResponse struct {
	Data *struct {
		JobSearch *struct {
			PageInfo struct {
				NextCursor string `json:"nextCursor"`
			} `json:"pageInfo"`
			Results []struct {
				Job gqlJob `json:"job"`
			} `json:"results"`
		} `json:"jobSearch"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

type graphqlJobDataResponse struct {
	Data *struct {
		JobData *struct {
			Results []struct {
				Job gqlJob `json:"job"`
			} `json:"results"`
		} `json:"jobData"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

type gqlJob struct {
	Key           string `json:"key"`
	Title         string `json:"title"`
	URL           string `json:"url"`
	DatePublished int64  `json:"datePublished"` // unix millis
	Description   *struct {
		HTML string `json:"html"`
	} `json:"description"`
	Location *struct {
		Formatted struct {
			Long string `json:"long"`
		} `json:"formatted"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"location"`
	Employer *struct {
		Name string `json:"name"`
	} `json:"employer"`
	Source *struct {
		Name string `json:"name"`
	} `json:"source"`
	Attributes []struct {
		Label string `json:"label"`
	} `json:"attributes"`
	Compensation *struct {
		BaseSalary *struct {
			UnitOfWork string `json:"unitOfWork"`
			Range      *struct {
				Typename string   `json:"__typename"`
				Min      *float64 `json:"min"`
				Max      *float64 `json:"max"`
				Value    *float64 `json:"value"`
			} `json:"range"`
		} `json:"baseSalary"`
		CurrencyCode  string `json:"currencyCode"`
		FormattedText string `json:"formattedText"`
	} `json:"compensation"`
}

type legacySearchResponse struct {
	TotalResults *int           `json:"totalResults"`
	Results      []legacyResult `json:"results"`
}

type legacyJobsResponse struct {
	Results []legacyResult `json:"results"`
}

type legacyResult struct {
	JobKey            string   `json:"jobkey"`
	JobTitle          string   `json:"jobtitle"`
	Company           string   `json:"company"`
	Source            string   `json:"source"`
	FormattedLocation string   `json:"formattedLocation"`
	Date              string   `json:"date"`
	Snippet           string   `json:"snippet"`
	Description       string   `json:"description"`
	URL               string   `json:"url"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	Expired           bool     `json:"expired"`
}

type legacySalaryResponse struct {
	Salary *struct {
		Average   float64 `json:"average"`
		Range     string  `json:"range"`
		Formatted string  `json:"formatted"`
		Unit      string  `json:"unit"`
		Currency  string  `json:"currency"`
	} `json:"salary"`
}
