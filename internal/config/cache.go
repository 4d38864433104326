package config

import (
	"strings"
	"time"
)

// CacheConfig controls the Redis response cache.  The cache sits in front
// of the read-heavy list endpoints (projects, phases, templates); write
// endpoints and per-task history are never cached.  With Enabled false or
// no Redis client available the middleware is simply not installed.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool // HTTP methods eligible for caching
	TTL          time.Duration   // entry lifetime
	KeyStrategy  string          // which request parts form the cache key
	Prefix       string          // Redis key namespace
	MaxBodyBytes int             // responses larger than this are not cached
}

// LoadCacheConfig builds a CacheConfig from the environment, falling back
// to defaults tuned for list endpoints that change rarely within a session.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      methodSet(envStr("CACHE_METHODS", "GET")),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}

func methodSet(csv string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(csv, ",") {
		if p = strings.TrimSpace(strings.ToUpper(p)); p != "" {
			m[p] = true
		}
	}
	return m
}
