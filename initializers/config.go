package initializers

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the runtime settings of the API server.
type Config struct {
	Port           string
	DatabaseURL    string
	MigrationsPath string
	RunMigrations  bool
	Env            string
	DBDebug        bool
	DBMaxOpenConns int

	StorageBackend string
	UploadDir      string
	MaxUploadBytes int64

	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string

	ElasticsearchURL   string
	ElasticsearchIndex string

	RateLimitGlobal int
	RateLimitStrict int
	RateLimitWindow time.Duration

	OrphanSweepSchedule string
	CORSOrigins         []string

	ShutdownTimeout time.Duration
}

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Port = "3001"
	c.MigrationsPath = "file://db/migrations"
	c.RunMigrations = true
	c.Env = "development"
	c.DBMaxOpenConns = 10
	c.StorageBackend = StorageLocal
	c.UploadDir = "uploads"
	c.MaxUploadBytes = 10 << 20
	c.S3Region = "us-east-1"
	c.ElasticsearchIndex = "documenti"
	c.RateLimitGlobal = 100
	c.RateLimitStrict = 10
	c.RateLimitWindow = time.Minute
	c.ShutdownTimeout = 10 * time.Second
}

// LoadConfig applies defaults, then the environment (a .env file in the
// working directory fills variables that are not already set), then the
// command-line flags in args.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := LoadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	str("PORT", &c.Port)
	str("DIRECT_URL", &c.DatabaseURL)
	str("MIGRATIONS_PATH", &c.MigrationsPath)
	boolean("RUN_MIGRATIONS", &c.RunMigrations)
	str("APP_ENV", &c.Env)
	boolean("DB_DEBUG", &c.DBDebug)
	integer("DB_MAX_OPEN_CONNS", &c.DBMaxOpenConns)

	str("STORAGE_BACKEND", &c.StorageBackend)
	str("UPLOAD_DIR", &c.UploadDir)
	if v, ok := lookup("MAX_UPLOAD_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES: %w", err))
		} else {
			c.MaxUploadBytes = n
		}
	}

	str("SUPABASE_REGION", &c.S3Region)
	str("SUPABASE_S3_ENDPOINT", &c.S3Endpoint)
	str("SUPABASE_ACCESS_KEY", &c.S3AccessKey)
	str("SUPABASE_SECRET_KEY", &c.S3SecretKey)
	str("SUPABASE_BUCKET", &c.S3Bucket)

	str("ELASTICSEARCH_URL", &c.ElasticsearchURL)
	str("ELASTICSEARCH_INDEX", &c.ElasticsearchIndex)

	integer("RATE_LIMIT_GLOBAL", &c.RateLimitGlobal)
	integer("RATE_LIMIT_STRICT", &c.RateLimitStrict)

	str("ORPHAN_SWEEP_SCHEDULE", &c.OrphanSweepSchedule)
	if v, ok := lookup("CORS_ORIGINS"); ok {
		c.CORSOrigins = splitList(v)
	}
	return errors.Join(errs...)
}

func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet("workflowpro", flag.ContinueOnError)
	fs.StringVar(&c.Port, "port", c.Port, "HTTP listen port")
	fs.StringVar(&c.DatabaseURL, "db", c.DatabaseURL, "PostgreSQL connection URL")
	fs.StringVar(&c.MigrationsPath, "migrations", c.MigrationsPath, "migrations source URL")
	fs.BoolVar(&c.RunMigrations, "migrate", c.RunMigrations, "apply migrations at startup")
	fs.StringVar(&c.Env, "env", c.Env, "runtime environment (development|production)")
	fs.StringVar(&c.StorageBackend, "storage", c.StorageBackend, "storage backend (local|s3)")
	fs.StringVar(&c.UploadDir, "upload-dir", c.UploadDir, "local upload directory")
	fs.StringVar(&c.OrphanSweepSchedule, "orphan-sweep", c.OrphanSweepSchedule, "cron schedule for orphan removal")
	return fs.Parse(args)
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("env variable DIRECT_URL is empty")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	switch c.StorageBackend {
	case StorageLocal:
		if c.UploadDir == "" {
			return errors.New("UPLOAD_DIR is required for local storage")
		}
	case StorageS3:
		if c.S3Bucket == "" || c.S3Endpoint == "" {
			return errors.New("SUPABASE_BUCKET and SUPABASE_S3_ENDPOINT are required for s3 storage")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
