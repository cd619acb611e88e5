package indeed

// breaker counts consecutive failures per domain and opens once a domain
// reaches the limit. It lives for a single enrichment pass.
type breaker struct {
	limit    int
	failures map[string]int
}

func newBreaker(limit int) *breaker {
	return &breaker{limit: limit, failures: make(map[string]int)}
}

func (b *breaker) allow(domain string) bool {
	return b.failures[domain] < b.limit
}

func (b *breaker) success(domain string) {
	b.failures[domain] = 0
}

// failure records a failed call and reports whether it opened the breaker
func (b *breaker) failure(domain string) bool {
	b.failures[domain]++
	return b.failures[domain] == b.limit
}
