package config

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	infisical "github.com/infisical/go-sdk"
)

type Config struct {
	Port            string
	DatabaseURL     string
	RedisURL        string
	RedisPassword   string
	FrontendOrigin  string
	CurveAPIURL     string
	SubgraphURL     string
	EtherscanAPIKey string

	RetentionDays     int
	IngestInterval    time.Duration
	IngestMaxAttempts int
}

func Load() Config {
	cfg := Config{
		Port:            envOr("PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		FrontendOrigin:  envOr("FRONTEND_ORIGIN", "*"),
		CurveAPIURL:     os.Getenv("CURVE_API_URL"),
		SubgraphURL:     os.Getenv("SUBGRAPH_URL"),
		EtherscanAPIKey: os.Getenv("ETHERSCAN_API_KEY"),

		RetentionDays:     envIntOr("RETENTION_DAYS", 30),
		IngestInterval:    time.Duration(envIntOr("INGEST_INTERVAL_SECONDS", 28800)) * time.Second,
		IngestMaxAttempts: envIntOr("INGEST_MAX_ATTEMPTS", 3),
	}

	// If Infisical credentials are available, fetch secrets from Infisical
	clientID := os.Getenv("INFISICAL_CLIENT_ID")
	clientSecret := os.Getenv("INFISICAL_CLIENT_SECRET")
	if clientID != "" && clientSecret != "" {
		loadFromInfisical(&cfg, clientID, clientSecret)
	}

	return cfg
}

func loadFromInfisical(cfg *Config, clientID, clientSecret string) {
	siteURL := envOr("INFISICAL_SITE_URL", "https://app.infisical.com")
	projectID := os.Getenv("INFISICAL_PROJECT_ID")
	envSlug := envOr("INFISICAL_ENV", "prod")

	if projectID == "" {
		slog.Warn("INFISICAL_PROJECT_ID not set, skipping Infisical")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := infisical.NewInfisicalClient(ctx, infisical.Config{
		SiteUrl:          siteURL,
		AutoTokenRefresh: false,
	})

	_, err := client.Auth().UniversalAuthLogin(clientID, clientSecret)
	if err != nil {
		slog.Error("infisical auth failed", "error", err)
		return
	}

	secrets := map[string]*string{
		"DATABASE_URL":      &cfg.DatabaseURL,
		"REDIS_PASSWORD":    &cfg.RedisPassword,
		"ETHERSCAN_API_KEY": &cfg.EtherscanAPIKey,
	}

	for key, target := range secrets {
		if *target != "" {
			continue // env var already set, skip
		}
		secret, err := client.Secrets().Retrieve(infisical.RetrieveSecretOptions{
			SecretKey:   key,
			Environment: envSlug,
			ProjectID:   projectID,
			SecretPath:  "/",
		})
		if err != nil {
			slog.Warn("failed to retrieve secret from infisical", "key", key, "error", err)
			continue
		}
		*target = secret.SecretValue
		slog.Info("loaded secret from infisical", "key", key)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}
