package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"dgii_fiscal/internal/config/connections/mongo"
	"dgii_fiscal/internal/config/connections/postgres"
	"dgii_fiscal/internal/config/connections/redis"
	"dgii_fiscal/internal/config/connections/s3"
	"dgii_fiscal/internal/config/connections/sqlite"
	"dgii_fiscal/internal/services/importer"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	LockAuto     = "auto"
	LockRedis    = "redis"
	LockPostgres = "postgres"
	LockNone     = "none"
)

// Settings is everything read from the environment. Loading settings never
// opens a connection.
type Settings struct {
	Port           string
	RegistryDriver string
	RegistryTable  string
	SQLitePath     string
	Postgres       postgres.ConnectionInfo

	MongoEnabled bool
	Mongo        mongo.ConnectionInfo

	S3Enabled bool
	S3        s3.ConnectionInfo

	RedisURL   string
	LockDriver string
	LockTTL    time.Duration

	Import      importer.Options
	ImportType  string
	RulesFile   string
	SourceDir   string
	ReportsDir  string
	ReportsPath string
	APITokens   string
}

// Load reads .env (when present) and the process environment.
func Load() (*Settings, error) {
	_ = godotenv.Load()

	s := &Settings{
		Port:           getenv("SERVER_PORT", "8070"),
		RegistryDriver: strings.ToLower(getenv("REGISTRY_DRIVER", DriverPostgres)),
		RegistryTable:  getenv("REGISTRY_TABLE", "taxpayers"),
		SQLitePath:     getenv("SQLITE_PATH", "dgii_fiscal.db"),
		Postgres: postgres.ConnectionInfo{
			Host:     getenv("PG_HOST", "127.0.0.1"),
			Port:     getenv("PG_PORT", "5432"),
			User:     getenv("PG_USER", "root"),
			Password: getenv("PG_PASSWORD", "hello-world"),
			DB:       getenv("PG_DB", "dgii_fiscal"),
			SSLMode:  getenv("PG_SSLMODE", "disable"),
			MaxConns: int32(getenvInt("PG_MAX_CONNS", 4)),
		},
		Mongo: mongo.ConnectionInfo{
			Scheme:     getenv("MONGO_SCHEME", "mongodb"),
			User:       getenv("MONGO_USER", "root"),
			Password:   getenv("MONGO_PASSWORD", "secret"),
			Host:       getenv("MONGO_HOST", "127.0.0.1"),
			Port:       getenv("MONGO_PORT", "27017"),
			DB:         getenv("MONGO_DB", "import_db"),
			AuthSource: getenv("MONGO_AUTH_SOURCE", "admin"),
		},
		S3: s3.ConnectionInfo{
			Endpoint:  getenv("AWS_ENDPOINT", "http://localhost:9000"),
			AccessKey: getenv("AWS_ACCESS_KEY_ID", "minioadmin"),
			SecretKey: getenv("AWS_SECRET_ACCESS_KEY", "minioadmin"),
			Region:    getenv("AWS_DEFAULT_REGION", "us-east-1"),
			Bucket:    getenv("AWS_BUCKET", "dgii"),
			UseSSL:    getenvBool("AWS_USE_SSL", false),
		},
		RedisURL:    getenv("REDIS_URL", ""),
		LockDriver:  strings.ToLower(getenv("IMPORT_LOCK", LockAuto)),
		LockTTL:     getenvDuration("IMPORT_LOCK_TTL", 2*time.Hour),
		ImportType:  getenv("IMPORT_TYPE", "taxpayers"),
		RulesFile:   getenv("CLASSIFICATION_RULES_FILE", ""),
		SourceDir:   getenv("IMPORT_SOURCE_DIR", ""),
		ReportsDir:  getenv("REPORTS_DIR", "reports"),
		ReportsPath: getenv("REPORTS_S3_PREFIX", "reports"),
		APITokens:   getenv("API_TOKENS", ""),
	}

	switch s.RegistryDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("REGISTRY_DRIVER must be %s or %s, got %q", DriverPostgres, DriverSQLite, s.RegistryDriver)
	}
	switch s.LockDriver {
	case LockAuto, LockRedis, LockPostgres, LockNone:
	default:
		return nil, fmt.Errorf("IMPORT_LOCK must be auto, redis, postgres or none, got %q", s.LockDriver)
	}
	server := s.RegistryDriver == DriverPostgres
	s.MongoEnabled = getenvBool("MONGO_ENABLED", server)
	s.S3Enabled = getenvBool("S3_ENABLED", server)

	opts, err := importOptions()
	if err != nil {
		return nil, err
	}
	s.Import = opts
	return s, nil
}

// importOptions starts from IMPORT_PROFILE and lets individual variables
// override it.
func importOptions() (importer.Options, error) {
	o := importer.Options{}.WithDefaults()
	if name := getenv("IMPORT_PROFILE", ""); name != "" {
		p, err := importer.Profile(name)
		if err != nil {
			return o, err
		}
		o = p
	}
	o.SessionRowLimit = getenvInt("IMPORT_SESSION_ROW_LIMIT", o.SessionRowLimit)
	o.BatchSize = getenvInt("IMPORT_BATCH_SIZE", o.BatchSize)
	o.InterBatchDelay = getenvDuration("IMPORT_BATCH_DELAY", o.InterBatchDelay)
	o.WriteRetries = getenvInt("IMPORT_WRITE_RETRIES", o.WriteRetries)
	o.MaxErrors = getenvInt("IMPORT_MAX_ERRORS", o.MaxErrors)
	o.Encoding = getenv("IMPORT_SOURCE_ENCODING", o.Encoding)
	o.KnownSourceSize = int64(getenvInt("IMPORT_KNOWN_SOURCE_SIZE", int(o.KnownSourceSize)))
	o = o.WithDefaults()
	if err := o.Validate(); err != nil {
		return o, err
	}
	return o, nil
}

type Config struct {
	Settings *Settings
	Port     string
	S3       *s3.S3
	Mongo    *mongo.Mongo
	Postgres *postgres.Postgres
	SQLite   *sqlite.SQLite
	Redis    *redis.Redis
}

// Connect opens the stores the settings ask for.
func Connect(ctx context.Context, s *Settings) (*Config, error) {
	c := &Config{Settings: s, Port: s.Port}
	var err error

	switch s.RegistryDriver {
	case DriverPostgres:
		if c.Postgres, err = postgres.NewConnection(ctx, s.Postgres); err != nil {
			return c, fmt.Errorf("postgres connect: %w", err)
		}
	case DriverSQLite:
		if c.SQLite, err = sqlite.NewConnection(sqlite.ConnectionInfo{Path: s.SQLitePath}); err != nil {
			return c, fmt.Errorf("sqlite open: %w", err)
		}
	}

	if s.MongoEnabled {
		if c.Mongo, err = mongo.NewConnection(ctx, s.Mongo); err != nil {
			return c, fmt.Errorf("mongo connect: %w", err)
		}
	}
	if s.S3Enabled {
		if c.S3, err = s3.NewConnection(s.S3); err != nil {
			return c, fmt.Errorf("s3 connect: %w", err)
		}
	}
	if s.LockDriver == LockRedis || (s.LockDriver == LockAuto && s.RedisURL != "") {
		if c.Redis, err = redis.NewConnection(ctx, redis.ConnectionInfo{URL: s.RedisURL, DialTimeout: 5 * time.Second}); err != nil {
			return c, fmt.Errorf("redis connect: %w", err)
		}
		if c.Redis == nil {
			return c, errors.New("IMPORT_LOCK=redis needs REDIS_URL")
		}
	}
	return c, nil
}

func (c *Config) CheckConnections(ctx context.Context) error {
	var errs []error

	switch c.Settings.RegistryDriver {
	case DriverPostgres:
		if c.Postgres == nil || c.Postgres.Pool == nil {
			errs = append(errs, errors.New("postgres not initialized"))
		} else if err := c.Postgres.Pool.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("postgres ping failed: %w", err))
		}
	case DriverSQLite:
		if c.SQLite == nil || c.SQLite.DB == nil {
			errs = append(errs, errors.New("sqlite not initialized"))
		} else if sqlDB, err := c.SQLite.DB.DB(); err != nil {
			errs = append(errs, fmt.Errorf("sqlite handle: %w", err))
		} else if err := sqlDB.PingContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("sqlite ping failed: %w", err))
		}
	}

	if c.Settings.MongoEnabled {
		if c.Mongo == nil || c.Mongo.Client == nil {
			errs = append(errs, errors.New("mongo not initialized"))
		} else if err := c.Mongo.Client.Ping(ctx, nil); err != nil {
			errs = append(errs, fmt.Errorf("mongo ping failed: %w", err))
		}
	}

	if c.Settings.S3Enabled {
		if c.S3 == nil || c.S3.Client == nil {
			errs = append(errs, errors.New("s3 not initialized"))
		} else if ok, err := c.S3.Client.BucketExists(ctx, c.S3.Bucket); err != nil {
			errs = append(errs, fmt.Errorf("s3 bucket check failed: %w", err))
		} else if !ok {
			errs = append(errs, fmt.Errorf("s3 bucket %q not found", c.S3.Bucket))
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Client.Ping(ctx).Err(); err != nil {
			errs = append(errs, fmt.Errorf("redis ping failed: %w", err))
		}
	}

	if len(errs) == 0 {
		return nil
	}

	return errors.Join(errs...)
}

func (c *Config) Close(ctx context.Context) {
	if c.Postgres != nil {
		c.Postgres.Close()
	}
	if c.SQLite != nil {
		_ = c.SQLite.Close()
	}
	if c.Mongo != nil {
		_ = c.Mongo.Close(ctx)
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		log.Printf("[CONFIG][WARN] %s=%q is not an integer; using %d", k, v, def)
		return def
	}
	return n
}

func getenvDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		log.Printf("[CONFIG][WARN] %s=%q is not a duration; using %s", k, v, def)
		return def
	}
	return d
}

func getenvBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		log.Printf("[CONFIG][WARN] %s=%q is not a boolean; using %t", k, v, def)
		return def
	}
	return b
}
