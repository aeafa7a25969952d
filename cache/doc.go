// Package cache provides the report-memoization store used by the health
// orchestrator.
//
// The Cache interface stores opaque byte values under string keys with a
// per-entry TTL; the orchestrator chooses the TTL from the severity of the
// report it is caching. MemoryCache is the in-process default; RedisCache
// shares the cache across processes.
package cache
