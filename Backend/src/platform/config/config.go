package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const ShutdownGrace = 10 * time.Second

type Config struct {
	ServiceName string
	ServiceEnv  string
	HTTPAddr    string
	GRPCAddr    string

	// sqlite | mongo | firestore
	StoreDriver     string
	SQLitePath      string
	MongoURI        string
	MongoDB         string
	FirestoreProjID string
	GCPCredentials  string

	// jwt | firebase
	AuthMode          string
	JWTSecret         string
	JWTSecretResource string

	RabbitURL      string
	RabbitExchange string

	CORSOrigins    []string
	RequestTimeout time.Duration
	SeedOnStart    bool
	LogLevel       string
	LogFormat      string
}

// Load reads the environment, after an optional .env file in the working
// directory. Missing keys fall back to local-development defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env present but unreadable")
	}
	return Config{
		ServiceName: getenv("SERVICE_NAME", "smartkart"),
		ServiceEnv:  getenv("SERVICE_ENV", "dev"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8000"),
		GRPCAddr:    getenv("GRPC_ADDR", ":50051"),

		StoreDriver:     strings.ToLower(getenv("STORE_DRIVER", "sqlite")),
		SQLitePath:      getenv("SQLITE_PATH", "./data/smartkart.db"),
		MongoURI:        getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getenv("MONGO_DB", "smartkart"),
		FirestoreProjID: firstNonEmpty(os.Getenv("FIRESTORE_PROJECT_ID"), os.Getenv("GOOGLE_CLOUD_PROJECT")),
		GCPCredentials:  os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		AuthMode:          strings.ToLower(getenv("AUTH_MODE", "jwt")),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		JWTSecretResource: os.Getenv("JWT_SECRET_RESOURCE"),

		RabbitURL:      os.Getenv("RABBITMQ_URL"),
		RabbitExchange: getenv("RABBIT_EXCHANGE", "smartkart.events"),

		CORSOrigins:    splitList(getenv("CORS_ORIGINS", "*")),
		RequestTimeout: getenvDuration("REQUEST_TIMEOUT", 10*time.Second),
		SeedOnStart:    getenvBool("SEED_ON_START", true),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogFormat:      os.Getenv("LOG_FORMAT"),
	}
}

// ResolveSecrets replaces secrets that point at Secret Manager with their
// values. It is a no-op when no resource is configured.
func (c *Config) ResolveSecrets(ctx context.Context) error {
	if c.JWTSecretResource == "" {
		return nil
	}
	v, err := accessSecret(ctx, c.JWTSecretResource, c.GCPCredentials)
	if err != nil {
		return err
	}
	c.JWTSecret = v
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
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

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
