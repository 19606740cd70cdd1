package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	Slack     SlackConfig
	PagerDuty PagerDutyConfig
	GitHub    GitHubConfig
	Workspace WorkspaceConfig
	Search    SearchConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
}

type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

type AuthConfig struct {
	JWTSecret         string
	JWTAccessTTL      string
	AdminLoginID      string
	AdminPasswordHash string
}

type SlackConfig struct {
	WebhookURL string
	Channel    string
}

type PagerDutyConfig struct {
	APIToken string
	APIBase  string
}

type GitHubConfig struct {
	Token  string
	Repo   string
	Server string
}

type WorkspaceConfig struct {
	APIURL      string
	Name        string
	APIToken    string
	FrontendURL string
	CacheTTL    time.Duration
}

type SearchConfig struct {
	Persona             string
	ConfidenceThreshold float64
	RunSessionPrefix    string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Addr:           getenv("LISTEN_ADDR", ":8080"),
			AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		},
		Auth: AuthConfig{
			JWTSecret:         os.Getenv("JWT_SECRET"),
			JWTAccessTTL:      getenv("JWT_ACCESS_TTL", "15m"),
			AdminLoginID:      getenv("ADMIN_LOGIN_ID", "admin"),
			AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		},
		Slack: SlackConfig{
			WebhookURL: os.Getenv("SLACK_WEBHOOK_URL"),
			Channel:    os.Getenv("SLACK_CHANNEL"),
		},
		PagerDuty: PagerDutyConfig{
			APIToken: os.Getenv("PAGERDUTY_API_TOKEN"),
			APIBase:  os.Getenv("PAGERDUTY_API_BASE"),
		},
		GitHub: GitHubConfig{
			Token:  os.Getenv("GITHUB_TOKEN"),
			Repo:   os.Getenv("GITHUB_REPO"),
			Server: os.Getenv("GITHUB_SERVER"),
		},
		Workspace: WorkspaceConfig{
			APIURL:      os.Getenv("WORKSPACE_API_URL"),
			Name:        os.Getenv("WORKSPACE_NAME"),
			APIToken:    os.Getenv("WORKSPACE_API_TOKEN"),
			FrontendURL: os.Getenv("WORKSPACE_FRONTEND_URL"),
			CacheTTL:    getenvDuration("SLX_CACHE_TTL", time.Minute),
		},
		Search: SearchConfig{
			Persona:             getenv("SEARCH_PERSONA", "default"),
			ConfidenceThreshold: getenvFloat("CONFIDENCE_THRESHOLD", 0.7),
			RunSessionPrefix:    getenv("RUNSESSION_PREFIX", "webhook"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getenvInt("REDIS_DB", 0),
		},
	}
}

func splitList(raw string) []string {
	var list []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
