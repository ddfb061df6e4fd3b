package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerPort      string        `yaml:"server_port"`
	BackendURL      string        `yaml:"backend_url"`
	BackendTimeout  time.Duration `yaml:"backend_timeout"`
	JWTSecret       string        `yaml:"jwt_secret"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	RestoreOnCancel bool          `yaml:"restore_on_cancel"`

	// ActivationDistance is the pointer travel, in pixels, that turns a press into a drag
	ActivationDistance float64 `yaml:"activation_distance"`

	SessionIdleTTL   time.Duration `yaml:"session_idle_ttl"`
	SessionSweepSpec string        `yaml:"session_sweep_spec"`

	DBDriver   string `yaml:"db_driver"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBPath     string `yaml:"db_path"`
}

// Load reads .env, then the environment, then the optional YAML file named
// by CONFIG_FILE, which overrides whatever it sets.
func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		BackendURL:         getEnv("BACKEND_URL", "http://localhost:4000/api"),
		BackendTimeout:     getDuration("BACKEND_TIMEOUT", 10*time.Second),
		JWTSecret:          getEnv("JWT_SECRET", "supersecretkey"),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		RestoreOnCancel:    getBool("RESTORE_ON_CANCEL", false),
		ActivationDistance: getFloat("ACTIVATION_DISTANCE", 8),
		SessionIdleTTL:     getDuration("SESSION_IDLE_TTL", 30*time.Minute),
		SessionSweepSpec:   getEnv("SESSION_SWEEP_SPEC", "@every 1m"),
		DBDriver:           getEnv("DB_DRIVER", "postgres"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5431"),
		DBUser:             getEnv("DB_USER", "taskboard_user"),
		DBPassword:         getEnv("DB_PASSWORD", "taskboard_pass"),
		DBName:             getEnv("DB_NAME", "taskboard_db"),
		DBPath:             getEnv("DB_PATH", "taskboard.db"),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.MergeFile(path); err != nil {
			log.Printf("⚠️  Ignoring config file: %v", err)
		}
	}
	return cfg
}

// MergeFile overlays the values set in a YAML file.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// PostgresDSN builds the connection string for the journal database.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

// MySQLDSN builds the go-sql-driver DSN for the journal database.
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// MigrateURL is the pgx5:// form golang-migrate expects.
func (c *Config) MigrateURL() string {
	return fmt.Sprintf("pgx5://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using %s", key, value, defaultVal)
		return defaultVal
	}
	return d
}

func getBool(key string, defaultVal bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultVal
	}
	return b
}

func getFloat(key string, defaultVal float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		log.Printf("⚠️  Invalid %s=%q, using %v", key, value, defaultVal)
		return defaultVal
	}
	return f
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
