package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret string

	AIProvider  string
	AIEndpoint  string
	AIAPIKey    string
	AITimeout   time.Duration
	GeminiKey   string
	GeminiModel string

	AllowedOrigins []string

	LogLevel string
	LogJSON  bool

	ErrorLogSize int
}

const (
	ProviderProxy  = "proxy"
	ProviderGemini = "gemini"
)

// Load reads the environment, after applying any .env files found in the
// working directory. Variables already set in the environment win.
func Load(envFiles ...string) *Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f) // missing file is fine
	}

	provider := strings.ToLower(getenv("AI_PROVIDER", ProviderProxy))
	if provider != ProviderGemini {
		provider = ProviderProxy
	}

	return &Config{
		Port: getenv("PORT", "8080"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getint("DB_PORT", 5432),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		AIProvider:  provider,
		AIEndpoint:  getenv("AI_ENDPOINT", "http://localhost:3001/api/generate"),
		AIAPIKey:    os.Getenv("AI_API_KEY"),
		AITimeout:   getduration("AI_TIMEOUT", 60*time.Second),
		GeminiKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel: getenv("GEMINI_MODEL", "gemini-2.0-flash"),

		AllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "*")),

		LogLevel: getenv("LOG_LEVEL", "info"),
		LogJSON:  getbool("LOG_JSON", false),

		ErrorLogSize: getint("ERROR_LOG_SIZE", 100),
	}
}

// AnalyticsEnabled reports whether a database is configured.
func (c *Config) AnalyticsEnabled() bool {
	return c.DBHost != ""
}

func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getbool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getduration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
