// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

/*
Package cache provides a small thread-safe TTL cache for API responses.

The HTTP API caches the sync status document, which joins watermarks, table
counts and newest dates in several queries. Entries are keyed by the id of
the last completed run, so a finished sync makes the old entry unreachable
immediately; the TTL bounds staleness for anything else.

# Usage

	c := cache.New[*models.SyncStatusResponse](30 * time.Second)
	if v, ok := c.Get(key); ok {
	    return v
	}
	v := build()
	c.Set(key, v)

Expiry is lazy: Get drops an expired entry, Set sweeps all expired entries.
There is no background goroutine to stop.
*/
package cache
