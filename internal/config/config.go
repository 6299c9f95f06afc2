package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types
    "time"     // time expresses durations derived from numeric env vars
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, durations for
// booking and chat tunables.
type Config struct {
    Env             string        // application environment (e.g. "dev", "prod")
    Port            string        // HTTP port to listen on
    DBUser          string        // database username
    DBPass          string        // database password (optional)
    DBHost          string        // database host address
    DBPort          string        // database port number
    DBName          string        // database name
    JWTSecret       string        // secret used to verify JWTs issued by the identity service
    SlotGranularity time.Duration // length of a bookable slot (whole hours by convention)
    PendingTTL      time.Duration // how long a PENDING booking may wait for confirmation
    LockWait        time.Duration // how long a booking attempt may wait on the field lock before Busy
    HistoryLimit    int           // number of messages replayed when a client joins a room
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Domain tunables
// fall back to sensible defaults so a minimal .env still boots.
func Load() Config {
    return Config{
        Env:             must("APP_ENV"),      // environment (dev/test/prod)
        Port:            must("APP_PORT"),     // port to bind the HTTP server
        DBUser:          must("DB_USER"),      // database user
        DBPass:          os.Getenv("DB_PASS"), // database password (empty allowed)
        DBHost:          must("DB_HOST"),      // database host
        DBPort:          must("DB_PORT"),      // database port
        DBName:          must("DB_NAME"),      // database name
        JWTSecret:       must("JWT_SECRET"),   // secret used for verifying JWTs
        SlotGranularity: time.Duration(optInt("SLOT_GRANULARITY_MIN", 60)) * time.Minute,
        PendingTTL:      time.Duration(optInt("PENDING_TTL_MIN", 720)) * time.Minute,
        LockWait:        time.Duration(optInt("LOCK_WAIT_MS", 3000)) * time.Millisecond,
        HistoryLimit:    optInt("CHAT_HISTORY_LIMIT", 50),
    }
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

// optInt retrieves an optional integer environment variable, returning the
// provided default when the variable is unset.  An unparseable value is a
// configuration mistake and exits like must().
func optInt(key string, def int) int {
    s, ok := os.LookupEnv(key)
    if !ok || s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
