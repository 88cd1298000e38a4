package bootstrap

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	StorageMySQL  = "mysql"
	StorageMemory = "memory"
)

// Config is loaded from the environment, optionally seeded from .env.
type Config struct {
	AppEnv     string `env:"APP_ENV" envDefault:"development"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"mysql"`
	DBUser        string `env:"DB_USER"`
	DBPassword    string `env:"DB_PASSWORD"`
	DBHost        string `env:"DB_HOST"`
	DBPort        string `env:"DB_PORT"`
	DBName        string `env:"DB_NAME"`
	// MemoryRoomIDs seeds rooms when STORAGE_DRIVER=memory, since no room
	// service writes to the in-process store.
	MemoryRoomIDs []string `env:"MEMORY_ROOM_IDS" envSeparator:","`

	RedisAddr     string `env:"REDIS_ADDR,required,notEmpty"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	KeyPrefix     string `env:"REDIS_KEY_PREFIX" envDefault:"debate:"`

	JWTSecret       string        `env:"JWT_SECRET,required,notEmpty"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"100"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1s"`
	AllowedOrigin   string        `env:"CORS_ALLOWED_ORIGIN" envDefault:"http://localhost:3000"`

	MongoURI      string `env:"MONGODB_URI"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"debate_arena"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL"`

	CollaboratorTimeout time.Duration `env:"COLLABORATOR_TIMEOUT" envDefault:"10s"`
	AISendThreshold     float64       `env:"AI_SEND_THRESHOLD" envDefault:"0.65"`
	AIQueryThreshold    float64       `env:"AI_QUERY_THRESHOLD" envDefault:"0.7"`

	ModeratorIDs           []string `env:"MODERATOR_IDS" envSeparator:","`
	StandingsAuditSchedule string   `env:"STANDINGS_AUDIT_SCHEDULE" envDefault:"@every 5m"`
}

// LoadConfig reads .env if present, then the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}
	switch cfg.StorageDriver {
	case StorageMySQL:
		if cfg.DBUser == "" || cfg.DBName == "" {
			return nil, fmt.Errorf("DB_USER and DB_NAME must be set when STORAGE_DRIVER=%s", StorageMySQL)
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	for name, v := range map[string]float64{"AI_SEND_THRESHOLD": cfg.AISendThreshold, "AI_QUERY_THRESHOLD": cfg.AIQueryThreshold} {
		if v <= 0 || v > 1 {
			return nil, fmt.Errorf("%s must be within (0,1], got %v", name, v)
		}
	}
	return cfg, nil
}

// ArchiveEnabled reports whether finished debates are copied to Mongo.
func (c *Config) ArchiveEnabled() bool { return c.MongoURI != "" }
