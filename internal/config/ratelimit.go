package config

import (
    "os"
    "strconv"
    "time"
)

// RateLimitConfig tunes the Redis token-bucket limiter that guards the
// public endpoints.  One bucket per key (ip + user + route by default)
// with Capacity tokens, refilled RefillTokens at a time every
// RefillInterval.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration // idle bucket expiry in Redis
    KeyStrategy    string
    Prefix         string
    Debug          bool
}

// LoadRateLimitConfig reads the RATE_LIMIT_* environment variables.
// RATE_LIMIT_BURST and RATE_LIMIT_REFILL_EVERY are accepted as aliases
// for capacity and a one-token refill interval.  Out-of-range values
// are clamped rather than rejected; the TTL is floored at five refill
// intervals so a live bucket never expires mid-window.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    getenv("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
        Prefix:         getenv("RATE_LIMIT_PREFIX", "rl"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
    if burst := envInt("RATE_LIMIT_BURST", -1); burst > 0 {
        cfg.Capacity = burst
    }
    if every := envDur("RATE_LIMIT_REFILL_EVERY", 0); every > 0 {
        cfg.RefillTokens = 1
        cfg.RefillInterval = every
    }
    if cfg.Capacity < 1 {
        cfg.Capacity = 1
    }
    if cfg.RefillTokens < 1 {
        cfg.RefillTokens = 1
    }
    if cfg.RefillInterval <= 0 {
        cfg.RefillInterval = time.Second
    }
    if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL {
        cfg.TTL = minTTL
    }
    return cfg
}

func envBool(key string, def bool) bool {
    switch os.Getenv(key) {
    case "":
        return def
    case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
        return true
    case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
        return false
    }
    return def
}

func envInt(key string, def int) int {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return def
}

func envDur(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    if d, err := time.ParseDuration(v); err == nil {
        return d
    }
    return def
}
