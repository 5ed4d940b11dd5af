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
	DB       DBConfig
	Telegram TelegramConfig
	Redis    RedisConfig
	HTTP     HTTPConfig
	Ordering OrderingConfig
	Storage  StorageConfig
}

type DBConfig struct {
	URL      string // DATABASE_URL wins over the individual fields when set
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the connection string for pgxpool and golang-migrate.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

type TelegramConfig struct {
	Token string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type HTTPConfig struct {
	Addr string // empty disables the report API
}

type OrderingConfig struct {
	LunchCutoff  time.Duration // offset from local midnight
	DinnerCutoff time.Duration
	Location     *time.Location
	MaxQuantity  int
	PageSize     int
	VocabFile    string
	AdminIDs     []string // empty means every user may administer
}

// IsAdmin reports whether the platform user may change the vendor of the day.
func (c OrderingConfig) IsAdmin(userID string) bool {
	if len(c.AdminIDs) == 0 {
		return true
	}
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
)

type StorageConfig struct {
	Store       string // postgres | memory
	Session     string // memory | redis
	MenuFile    string
	DrinkFile   string
	AutoMigrate bool
	AutoImport  bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	lunch, err := ParseCutoff(getEnv("LUNCH_CUTOFF", "09:00"))
	if err != nil {
		return nil, fmt.Errorf("LUNCH_CUTOFF: %w", err)
	}
	dinner, err := ParseCutoff(getEnv("DINNER_CUTOFF", "17:00"))
	if err != nil {
		return nil, fmt.Errorf("DINNER_CUTOFF: %w", err)
	}
	if lunch >= dinner {
		return nil, fmt.Errorf("LUNCH_CUTOFF must be before DINNER_CUTOFF")
	}
	loc, err := time.LoadLocation(getEnv("TIMEZONE", "Asia/Taipei"))
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}

	maxQty := getEnvInt("MAX_QUANTITY", 5)
	pageSize := getEnvInt("PAGE_SIZE", 12)
	if maxQty < 1 || maxQty > 12 {
		return nil, fmt.Errorf("MAX_QUANTITY must be between 1 and 12")
	}
	if pageSize < 1 || pageSize > 12 {
		return nil, fmt.Errorf("PAGE_SIZE must be between 1 and 12")
	}

	cfg := &Config{
		DB: DBConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "meals"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Telegram: TelegramConfig{
			Token: getEnv("TOKEN", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		HTTP: HTTPConfig{
			Addr: os.Getenv("HTTP_ADDR"),
		},
		Ordering: OrderingConfig{
			LunchCutoff:  lunch,
			DinnerCutoff: dinner,
			Location:     loc,
			MaxQuantity:  maxQty,
			PageSize:     pageSize,
			VocabFile:    getEnv("VOCAB_FILE", "vocab.yaml"),
			AdminIDs:     splitList(os.Getenv("ADMIN_IDS")),
		},
		Storage: StorageConfig{
			Store:       getEnv("STORE_BACKEND", BackendPostgres),
			Session:     getEnv("SESSION_BACKEND", BackendMemory),
			MenuFile:    getEnv("MENU_FILE", "menu.md"),
			DrinkFile:   getEnv("DRINK_FILE", "drink.md"),
			AutoMigrate: getEnvBool("AUTO_MIGRATE"),
			AutoImport:  getEnvBool("AUTO_IMPORT"),
		},
	}
	switch cfg.Storage.Store {
	case BackendPostgres, BackendMemory:
	default:
		return nil, fmt.Errorf("STORE_BACKEND: unknown backend %q", cfg.Storage.Store)
	}
	switch cfg.Storage.Session {
	case BackendMemory, BackendRedis:
	default:
		return nil, fmt.Errorf("SESSION_BACKEND: unknown backend %q", cfg.Storage.Session)
	}
	return cfg, nil
}

// ParseCutoff parses "HH:MM" into an offset from midnight.
func ParseCutoff(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid cutoff %q, want HH:MM", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string) bool {
	v := strings.TrimSpace(os.Getenv(key))
	return v == "1" || strings.EqualFold(v, "true")
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
