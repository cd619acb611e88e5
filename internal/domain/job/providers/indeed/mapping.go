package indeed

import (
	"net/url"
	"strings"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/internal/domain/salary"
	"github.com/honeycarbs/jobscout/pkg/indeed"
)

func toResult(p indeed.Posting, fallbackDomain string) domain.JobResult {
	r := domain.JobResult{
		Provider:        ProviderName,
		ProviderID:      p.Key,
		Title:           p.Title,
		URL:             p.URL,
		HTMLDescription: p.Description,
		Remote:          isRemote(p),
		Location:        p.Location,
		Latitude:        p.Latitude,
		Longitude:       p.Longitude,
		EmployerName:    strings.TrimSpace(p.Employer),
		PostedAt:        p.PublishedAt,
		Tags:            p.Attributes,
		Domain:          domainOf(p.URL, fallbackDomain),
	}

	if src := strings.TrimSpace(p.Source); src != "" && !strings.EqualFold(src, r.EmployerName) {
		r.AdvertisedBy = src
	}

	if p.Compensation != nil {
		applySalary(&r, compensationSalary(*p.Compensation))
	}

	return r
}

func compensationSalary(c indeed.Compensation) salary.Result {
	var r salary.Range
	switch c.Variant {
	case "AtLeast":
		r = salary.AtLeast(c.Min)
	case "AtMost":
		r = salary.AtMost(c.Max)
	case "Exactly":
		r = salary.Exactly(c.Value)
	case "Range":
		r = salary.Between(c.Min, c.Max)
	default:
		return salary.Result{}
	}

	unit, ok := salary.ParseUnit(c.Unit)
	if !ok {
		unit = salary.UnitYear
	}
	return salary.Normalize(r, unit, c.Currency, c.Formatted)
}

func legacySalary(s indeed.LegacySalary) salary.Result {
	unit, ok := salary.ParseUnit(s.Unit)
	if !ok {
		unit = salary.UnitYear
	}
	return salary.NormalizeLegacy(salary.Legacy{
		Average:   s.Average,
		RangeText: s.Range,
		Formatted: s.Formatted,
		Unit:      unit,
		Currency:  s.Currency,
	})
}

// applySalary fills salary fields that are still missing
func applySalary(r *domain.JobResult, s salary.Result) {
	if s.Empty() {
		return
	}
	if r.FormattedSalary == "" {
		r.FormattedSalary = s.Formatted
	}
	if r.AvgYearlySalary == nil {
		r.AvgYearlySalary = s.AvgYearly
	}
}

func isRemote(p indeed.Posting) bool {
	for _, a := range p.Attributes {
		if strings.EqualFold(strings.TrimSpace(a), "remote") {
			return true
		}
	}
	return strings.Contains(strings.ToLower(p.Location), "remote")
}

// domainOf returns the regional Indeed host a job was advertised under
func domainOf(rawURL, fallback string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return fallback
	}
	host := strings.ToLower(u.Hostname())
	if host == "indeed.com" || strings.HasSuffix(host, ".indeed.com") || strings.Contains(host, ".indeed.") {
		return host
	}
	return fallback
}
