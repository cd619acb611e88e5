package httpclient

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/honeycarbs/jobscout/pkg/logging"
)

const (
	defaultMaxRetries = 3
	defaultTimeout    = 30 * time.Second
	defaultWaitMin    = 500 * time.Millisecond
	defaultWaitMax    = 10 * time.Second
)

// Config tunes retry behaviour of outbound provider calls
type Config struct {
	MaxRetries int
	Timeout    time.Duration
	WaitMin    time.Duration
	WaitMax    time.Duration
}

// New returns an *http.Client that retries transport errors and 5xx/429
// responses with exponential backoff
func New(cfg Config, log *logging.Logger) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = defaultMaxRetries
	if cfg.MaxRetries > 0 {
		rc.RetryMax = cfg.MaxRetries
	}
	rc.RetryWaitMin = defaultWaitMin
	if cfg.WaitMin > 0 {
		rc.RetryWaitMin = cfg.WaitMin
	}
	rc.RetryWaitMax = defaultWaitMax
	if cfg.WaitMax > 0 {
		rc.RetryWaitMax = cfg.WaitMax
	}
	rc.Backoff = retryablehttp.DefaultBackoff

	rc.Logger = nil
	if log != nil {
		rc.Logger = log
	}

	client := rc.StandardClient()
	client.Timeout = defaultTimeout
	if cfg.Timeout > 0 {
		client.Timeout = cfg.Timeout
	}
	return client
}
