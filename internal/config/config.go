package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	TelegramBotToken string
	DBPath           string
	FundsCSVPath     string
	RedisURL         string
	AdminToken       string

	CatalogPollSecs int
	SessionTTLSecs  int

	MCPTransport          string
	MCPHTTPEnabled        bool
	MCPHTTPBind           string
	MCPHTTPPort           int
	MCPAuthToken          string
	MCPRequestTimeoutSecs int
	MCPRateLimitPerMin    int

	SSHEnabled       bool
	SSHBind          string
	SSHPort          int
	SSHHostKeyPath   string
	SSHAuthorizedKey string

	AnomalyThreshold  float64
	AnomalyTrees      int
	AnomalySampleSize int
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DBPath:           os.Getenv("ROBO_DB_PATH"),
		FundsCSVPath:     os.Getenv("FUNDS_CSV_PATH"),
		RedisURL:         os.Getenv("REDIS_URL"),
		AdminToken:       os.Getenv("ADMIN_TOKEN"),
		MCPAuthToken:     os.Getenv("MCP_AUTH_TOKEN"),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.DBPath == "" {
		log.Println("Warning: ROBO_DB_PATH not set, defaulting to /app/data/robo_advisor.db")
		cfg.DBPath = "/app/data/robo_advisor.db"
	}
	if cfg.FundsCSVPath == "" {
		log.Println("Warning: FUNDS_CSV_PATH not set, defaulting to data/funds.csv")
		cfg.FundsCSVPath = "data/funds.csv"
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.AdminToken == "" {
		log.Println("Warning: ADMIN_TOKEN not set, admin endpoints will be disabled")
	}

	cfg.CatalogPollSecs = 60
	if v := os.Getenv("CATALOG_POLL_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CatalogPollSecs = n
		}
	}

	cfg.SessionTTLSecs = 1800
	if v := os.Getenv("SESSION_TTL_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SessionTTLSecs = n
		}
	}

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		log.Printf("Warning: unsupported MCP_TRANSPORT=%q, defaulting to stdio", cfg.MCPTransport)
		cfg.MCPTransport = "stdio"
	}

	cfg.MCPHTTPEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("MCP_HTTP_ENABLED")), "true")

	cfg.MCPHTTPBind = strings.TrimSpace(os.Getenv("MCP_HTTP_BIND"))
	if cfg.MCPHTTPBind == "" {
		cfg.MCPHTTPBind = "127.0.0.1"
	}

	cfg.MCPHTTPPort = 8090
	if v := strings.TrimSpace(os.Getenv("MCP_HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPHTTPPort = n
		}
	}

	cfg.MCPRequestTimeoutSecs = 5
	if v := strings.TrimSpace(os.Getenv("MCP_REQUEST_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPRequestTimeoutSecs = n
		}
	}

	cfg.MCPRateLimitPerMin = 60
	if v := strings.TrimSpace(os.Getenv("MCP_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPRateLimitPerMin = n
		}
	}

	cfg.SSHEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("ADMIN_SSH_ENABLED")), "true")

	cfg.SSHBind = strings.TrimSpace(os.Getenv("ADMIN_SSH_BIND"))
	if cfg.SSHBind == "" {
		cfg.SSHBind = "127.0.0.1"
	}

	cfg.SSHPort = 2222
	if v := strings.TrimSpace(os.Getenv("ADMIN_SSH_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SSHPort = n
		}
	}

	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("ADMIN_SSH_HOST_KEY"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/admin_host_key"
	}

	cfg.SSHAuthorizedKey = strings.TrimSpace(os.Getenv("ADMIN_SSH_AUTHORIZED_KEY"))
	if cfg.SSHEnabled && cfg.SSHAuthorizedKey == "" {
		log.Println("Warning: ADMIN_SSH_AUTHORIZED_KEY not set, SSH dashboard will accept no clients")
	}

	cfg.AnomalyThreshold = 0.62
	if v := strings.TrimSpace(os.Getenv("ANOMALY_THRESHOLD")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 && n < 1 {
			cfg.AnomalyThreshold = n
		}
	}

	cfg.AnomalyTrees = 200
	if v := strings.TrimSpace(os.Getenv("ANOMALY_TREES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AnomalyTrees = n
		}
	}

	cfg.AnomalySampleSize = 256
	if v := strings.TrimSpace(os.Getenv("ANOMALY_SAMPLE_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AnomalySampleSize = n
		}
	}

	return cfg
}
