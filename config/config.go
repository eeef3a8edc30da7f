package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// MinSecretLength is the shortest accepted token-signing secret.
const MinSecretLength = 16

type Config struct {
	Host                 string   `json:"host"`
	Port                 int      `json:"port"`
	AllowedOrigins       []string `json:"allowed_origins"`
	RequireDirectoryAuth bool     `json:"require_directory_auth"`
	Env                  string   `json:"-"`
	DatabaseUrl          string   `json:"-"`
	Secret               []byte   `json:"-"`
	Database             struct {
		MaxOpenConns   int      `json:"max_open_conns"`
		MaxIdleConns   int      `json:"max_idle_conns"`
		ConnMaxIdle    Duration `json:"conn_max_idle"`
		ConnectRetries uint64   `json:"connect_retries"`
		HealthInterval Duration `json:"health_interval"`
		QueryTimeout   Duration `json:"query_timeout"`
	} `json:"database"`
}

// Duration reads "5s"-style strings from JSON.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func Default() *Config {
	cfg := &Config{
		Host: "",
		Port: 3000,
	}
	cfg.Database.MaxOpenConns = 10
	cfg.Database.MaxIdleConns = 2
	cfg.Database.ConnMaxIdle = Duration{5 * time.Minute}
	cfg.Database.ConnectRetries = 5
	cfg.Database.HealthInterval = Duration{15 * time.Second}
	cfg.Database.QueryTimeout = Duration{5 * time.Second}
	return cfg
}

/* Файл конфигурации не обязателен: без него берутся значения по умолчанию.
 * Секрет и доступ к базе читаются только из окружения и не имеют
 * значений по умолчанию. */
func Load(filePath string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(filePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %q: %w", filePath, err)
	default:
		if err = json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", filePath, err)
		}
	}

	cfg.Env = os.Getenv("GO_ENV")
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		if cfg.Port, err = strconv.Atoi(port); err != nil {
			return nil, fmt.Errorf("PORT: %w", err)
		}
	}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitCSV(origins)
	}
	if raw := os.Getenv("REQUIRE_DIRECTORY_AUTH"); raw != "" {
		if cfg.RequireDirectoryAuth, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("REQUIRE_DIRECTORY_AUTH: %w", err)
		}
	}

	cfg.Secret = []byte(os.Getenv("JWT_SECRET"))
	if len(cfg.Secret) == 0 {
		return nil, errors.New("JWT_SECRET is required")
	}
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretLength)
	}

	if cfg.DatabaseUrl, err = databaseUrl(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Address() string {
	return net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
}

func (cfg *Config) IsDev() bool {
	return cfg.Env == "DEV"
}

/* DATABASE_URL имеет приоритет над DB_* переменными.
 * Пароль обязателен в обоих случаях. */
func databaseUrl() (string, error) {
	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
		parsed, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("DATABASE_URL: %w", err)
		}
		if _, ok := parsed.User.Password(); !ok {
			return "", errors.New("DATABASE_URL must include a password")
		}
		return dsn, nil
	}

	password := os.Getenv("DB_PASSWORD")
	if password == "" {
		return "", errors.New("DB_PASSWORD or DATABASE_URL is required")
	}
	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(getEnv("DB_USER", "postgres"), password),
		Host:   net.JoinHostPort(getEnv("DB_HOST", "localhost"), getEnv("DB_PORT", "5432")),
		Path:   "/" + getEnv("DB_NAME", "escuela"),
	}
	query := url.Values{}
	query.Set("sslmode", getEnv("DB_SSLMODE", "disable"))
	dsn.RawQuery = query.Encode()
	return dsn.String(), nil
}

func WriteTemplate(filePath string) error {
	data, err := json.MarshalIndent(Default(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode config template: %w", err)
	}
	if err = os.WriteFile(filePath, data, 0666); err != nil {
		return fmt.Errorf("write config template: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func splitCSV(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
