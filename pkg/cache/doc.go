// Package cache provides a generic, thread-safe time-expiring map.
//
// Entries live for a fixed duration after Put; once that duration has
// passed they are treated exactly like absent entries. The cache backs
// the profile lookups in the auth layer, where a stale profile must be
// refetched rather than served:
//
//	profiles := cache.NewTTL[uuid.UUID, Profile](5 * time.Minute)
//	profiles.Put(id, p)
//	if p, ok := profiles.Get(id); ok {
//		// younger than 5 minutes
//	}
//
// Expired entries are evicted lazily on Get; WithCleanupInterval adds a
// background sweeper for long-lived processes that care about memory.
package cache
