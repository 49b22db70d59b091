package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "strings" // strings splits list-valued variables
    "time"    // time parses duration-valued variables

    "github.com/joho/godotenv" // godotenv loads a local .env file into the environment
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
    Env            string        // application environment (e.g. "dev", "prod")
    Port           string        // HTTP port to listen on
    DBDriver       string        // "mysql" or "sqlite"
    DBUser         string        // database username
    DBPass         string        // database password (optional)
    DBHost         string        // database host address
    DBPort         string        // database port number
    DBName         string        // database name
    DBPath         string        // sqlite file path when DBDriver is "sqlite"
    JWTSecret      string        // secret used to sign unlock tokens
    UnlockTTLMin   int           // unlock token time‑to‑live in minutes
    BcryptCost     int           // bcrypt cost for PIN hashing
    StoreTimeout   time.Duration // upper bound for a single repository call
    NoteMaxLen     int           // maximum note length in runes
    SummaryTTL     time.Duration // lifetime of the post-stamp summary
    AMQPURL        string        // broker URL for stamp events; empty disables publishing
    AllowedOrigins []string      // CORS origins
    Log            LogConfig
}

// LogConfig controls the zap logger and its rotating file sink.
type LogConfig struct {
    Level      string
    Path       string
    MaxSizeMB  int
    MaxBackups int
    MaxAgeDays int
    Compress   bool
}

// Load reads a .env file when present, then builds a Config from the
// environment.  Required variables are enforced by must() and missing
// values cause the program to exit with a fatal log message.
func Load() Config {
    // A missing .env is normal outside local development.
    _ = godotenv.Load()

    cfg := Config{
        Env:            envStr("APP_ENV", "dev"),
        Port:           envStr("APP_PORT", "8080"),
        DBDriver:       strings.ToLower(envStr("DB_DRIVER", "mysql")),
        JWTSecret:      must("JWT_SECRET"),
        UnlockTTLMin:   envInt("UNLOCK_TOKEN_TTL_MIN", 15),
        BcryptCost:     envInt("BCRYPT_COST", 10),
        StoreTimeout:   envDur("STORE_TIMEOUT", 5*time.Second),
        NoteMaxLen:     envInt("NOTE_MAX_LEN", 1000),
        SummaryTTL:     envDur("SUMMARY_TTL", 5*time.Minute),
        AMQPURL:        AMQPURL(),
        AllowedOrigins: envList("CORS_ALLOWED_ORIGINS", "*"),
        Log:            LoadLogConfig(),
    }
    loadDB(&cfg)
    return cfg
}

// LoadDB reads only the database and logging settings.  Commands that do
// not serve HTTP (migrate) use it so they do not require JWT_SECRET.
func LoadDB() Config {
    _ = godotenv.Load()
    cfg := Config{
        Env:      envStr("APP_ENV", "dev"),
        DBDriver: strings.ToLower(envStr("DB_DRIVER", "mysql")),
        Log:      LoadLogConfig(),
    }
    loadDB(&cfg)
    return cfg
}

func loadDB(cfg *Config) {
    switch cfg.DBDriver {
    case "sqlite":
        cfg.DBPath = envStr("DB_PATH", "data/daily-stamp.db")
    default:
        cfg.DBDriver = "mysql"
        cfg.DBUser = must("DB_USER")
        cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
        cfg.DBHost = must("DB_HOST")
        cfg.DBPort = envStr("DB_PORT", "3306")
        cfg.DBName = must("DB_NAME")
    }
}

// LoadLogConfig reads LOG_* variables.
func LoadLogConfig() LogConfig {
    return LogConfig{
        Level:      envStr("LOG_LEVEL", "info"),
        Path:       os.Getenv("LOG_PATH"),
        MaxSizeMB:  envInt("LOG_MAX_SIZE_MB", 100),
        MaxBackups: envInt("LOG_MAX_BACKUPS", 3),
        MaxAgeDays: envInt("LOG_MAX_AGE_DAYS", 7),
        Compress:   envBool("LOG_COMPRESS", false),
    }
}

// AMQPURL returns the broker URL from RABBITMQ_URL or AMQP_URL.  It is
// empty when neither is set, which disables event publishing.
func AMQPURL() string {
    if url := os.Getenv("RABBITMQ_URL"); url != "" {
        return url
    }
    return os.Getenv("AMQP_URL")
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

func envStr(k, d string) string {
    if v := os.Getenv(k); v != "" {
        return v
    }
    return d
}

func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" { return d }
    switch strings.ToLower(v) {
    case "1", "true", "yes", "on": return true
    case "0", "false", "no", "off": return false
    }
    return d
}

func envInt(k string, d int) int {
    v := os.Getenv(k); if v == "" { return d }
    if n, err := strconv.Atoi(v); err == nil { return n }
    return d
}

func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k); if v == "" { return d }
    if dur, err := time.ParseDuration(v); err == nil { return dur }
    return d
}

func envList(k, d string) []string {
    var out []string
    for _, p := range strings.Split(envStr(k, d), ",") {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    return out
}
