package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains runtime settings for the server and its collaborators
type Config struct {
	LogLevel string
	Host     string // default 0.0.0.0
	Port     string // default 8080
	BaseURL  string // public app URL used in alert links

	DatabaseURL string
	RedisURL    string // optional, enables alert pub/sub

	Neo4j struct {
		URI      string
		Username string
		Password string
	} // optional graph mirror

	Indeed struct {
		APIKey        string
		PublisherID   string
		Flavor        string // graphql or legacy
		GraphQLURL    string
		LegacyURL     string
		DefaultDomain string
	}

	Adzuna struct {
		AppID   string
		AppKey  string
		Country string
	}

	Schedule struct {
		Spec       string
		Providers  []string
		RunOnStart bool
	}

	Duplicates struct {
		Enabled              bool
		TitleThreshold       float64
		DescriptionThreshold float64
		Window               time.Duration
	}

	HTTP struct {
		MaxRetries int
		Timeout    time.Duration
	}

	Telegram struct {
		BotToken string
		ChatID   int64
	}

	SheetsCredentialsPath string
}

// IndeedEnabled reports whether Indeed credentials are present
func (c Config) IndeedEnabled() bool {
	return c.Indeed.APIKey != "" || c.Indeed.PublisherID != ""
}

// AdzunaEnabled reports whether Adzuna credentials are present
func (c Config) AdzunaEnabled() bool {
	return c.Adzuna.AppID != "" && c.Adzuna.AppKey != ""
}

// Load populates config from environment variables. A .env file in the
// working directory is read first when present; real env vars win.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	var problems []string

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.Host = getEnv("MCP_HOST", "0.0.0.0")
	cfg.Port = getEnv("PORT", "8080")
	cfg.BaseURL = getEnv("APP_BASE_URL", "http://localhost:8080")

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.RedisURL = os.Getenv("REDIS_URL")

	cfg.Neo4j.URI = os.Getenv("NEO4J_URI")
	cfg.Neo4j.Username = os.Getenv("NEO4J_USERNAME")
	cfg.Neo4j.Password = os.Getenv("NEO4J_PASSWORD")

	cfg.Indeed.APIKey = os.Getenv("INDEED_API_KEY")
	cfg.Indeed.PublisherID = os.Getenv("INDEED_PUBLISHER_ID")
	cfg.Indeed.Flavor = strings.ToLower(getEnv("INDEED_FLAVOR", "graphql"))
	cfg.Indeed.GraphQLURL = os.Getenv("INDEED_GRAPHQL_URL")
	cfg.Indeed.LegacyURL = os.Getenv("INDEED_LEGACY_URL")
	cfg.Indeed.DefaultDomain = getEnv("INDEED_DEFAULT_DOMAIN", "uk.indeed.com")

	cfg.Adzuna.AppID = os.Getenv("ADZUNA_APP_ID")
	cfg.Adzuna.AppKey = os.Getenv("ADZUNA_APP_KEY")
	cfg.Adzuna.Country = strings.ToLower(getEnv("ADZUNA_COUNTRY", "gb"))

	cfg.Schedule.Spec = getEnv("SCHEDULE_SPEC", "@every 6h")
	cfg.Schedule.Providers = splitList(os.Getenv("SCHEDULE_PROVIDERS"))
	cfg.Schedule.RunOnStart = getBool("SCHEDULE_RUN_ON_START", false, &problems)

	cfg.Duplicates.Enabled = getBool("DUPLICATES_ENABLED", true, &problems)
	cfg.Duplicates.TitleThreshold = getFloat("DUPLICATES_TITLE_THRESHOLD", 0.7, &problems)
	cfg.Duplicates.DescriptionThreshold = getFloat("DUPLICATES_DESCRIPTION_THRESHOLD", 0.6, &problems)
	cfg.Duplicates.Window = time.Duration(getInt("DUPLICATES_WINDOW_DAYS", 30, &problems)) * 24 * time.Hour

	cfg.HTTP.MaxRetries = getInt("HTTP_MAX_RETRIES", 3, &problems)
	cfg.HTTP.Timeout = time.Duration(getInt("HTTP_TIMEOUT_SECONDS", 30, &problems)) * time.Second

	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			problems = append(problems, "TELEGRAM_CHAT_ID must be an integer")
		}
		cfg.Telegram.ChatID = id
	}

	cfg.SheetsCredentialsPath = os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH")

	var missingVars []string
	if cfg.DatabaseURL == "" {
		missingVars = append(missingVars, "DATABASE_URL")
	}
	if cfg.Neo4j.URI != "" {
		if cfg.Neo4j.Username == "" {
			missingVars = append(missingVars, "NEO4J_USERNAME")
		}
		if cfg.Neo4j.Password == "" {
			missingVars = append(missingVars, "NEO4J_PASSWORD")
		}
	}
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID == 0 {
		missingVars = append(missingVars, "TELEGRAM_CHAT_ID")
	}
	if len(missingVars) > 0 {
		problems = append(problems, "missing required environment variables: "+strings.Join(missingVars, ", "))
	}

	if cfg.Indeed.Flavor != "graphql" && cfg.Indeed.Flavor != "legacy" {
		problems = append(problems, fmt.Sprintf("INDEED_FLAVOR must be graphql or legacy, got %q", cfg.Indeed.Flavor))
	}
	if !cfg.IndeedEnabled() && !cfg.AdzunaEnabled() {
		problems = append(problems, "no provider configured: set INDEED_API_KEY/INDEED_PUBLISHER_ID or ADZUNA_APP_ID/ADZUNA_APP_KEY")
	}

	if len(cfg.Schedule.Providers) == 0 {
		if cfg.IndeedEnabled() {
			cfg.Schedule.Providers = append(cfg.Schedule.Providers, "indeed")
		}
		if cfg.AdzunaEnabled() {
			cfg.Schedule.Providers = append(cfg.Schedule.Providers, "adzuna")
		}
	}

	if len(problems) > 0 {
		return cfg, fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool, problems *[]string) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*problems = append(*problems, fmt.Sprintf("%s must be a boolean", key))
		return def
	}
	return b
}

func getInt(key string, def int, problems *[]string) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		*problems = append(*problems, fmt.Sprintf("%s must be a non-negative integer", key))
		return def
	}
	return n
}

func getFloat(key string, def float64, problems *[]string) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > 1 {
		*problems = append(*problems, fmt.Sprintf("%s must be a number between 0 and 1", key))
		return def
	}
	return f
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
