package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// CacheConfig tunes the response cache middleware.  Availability and
// field listings are the hot read paths; a short TTL keeps them fast
// without letting a freed slot look taken for long.
type CacheConfig struct {
    Enabled      bool            // master switch; also off whenever the Redis client is nil
    Methods      map[string]bool // HTTP methods eligible for caching, upper-cased
    TTL          time.Duration   // entry lifetime
    KeyStrategy  string          // which request parts form the cache key
    Prefix       string          // Redis key namespace
    MaxBodyBytes int             // bodies larger than this are not cached
}

// LoadCacheConfig reads the CACHE_* environment variables, falling back
// to defaults sized for the availability endpoint.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      getenv("CACHE_ENABLED", "true") == "true",
        Methods:      parseMethods(getenv("CACHE_METHODS", "GET")),
        TTL:          parseDur(getenv("CACHE_TTL", "30s")),
        KeyStrategy:  getenv("CACHE_KEY_STRATEGY", "route_query"),
        Prefix:       getenv("CACHE_PREFIX", "cache"),
        MaxBodyBytes: atoi(getenv("CACHE_MAX_BODY_BYTES", "1048576")),
    }
}

func parseMethods(s string) map[string]bool {
    m := map[string]bool{}
    for _, p := range strings.Split(s, ",") {
        p = strings.TrimSpace(strings.ToUpper(p))
        if p != "" {
            m[p] = true
        }
    }
    return m
}

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func atoi(s string) int {
    i, _ := strconv.Atoi(s)
    return i
}

func parseDur(s string) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil {
        return time.Second
    }
    return d
}
