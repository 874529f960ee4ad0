// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

package udp

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// dedupKey identifies one (peer, msg-id) delivery for the at-most-once
// cache of §4.3.3.
type dedupKey struct {
	peer  string
	msgID uint64
}

// dedupCache suppresses re-delivery of retransmitted DATA frames. It
// layers a TTL on top of hashicorp/golang-lru/v2's size-bounded cache,
// since that cache is size-bounded but not itself TTL-aware; the spec's
// "4096 entries or 60 seconds, whichever occurs first" bound is the
// intersection of the two.
type dedupCache struct {
	cache *lru.Cache[dedupKey, time.Time]
	ttl   time.Duration
}

func newDedupCache(size int, ttl time.Duration) *dedupCache {
	c, err := lru.New[dedupKey, time.Time](size)
	if err != nil {
		// Only returns an error for a non-positive size, which our
		// callers never pass.
		panic(err)
	}
	return &dedupCache{cache: c, ttl: ttl}
}

// seenRecently reports whether (peer, msgID) was marked within the TTL,
// and marks it as seen now regardless of the prior state.
func (d *dedupCache) seenRecently(peer string, msgID uint64) bool {
	key := dedupKey{peer: peer, msgID: msgID}

	if ts, ok := d.cache.Get(key); ok && now().Sub(ts) < d.ttl {
		d.cache.Add(key, now())
		return true
	}

	d.cache.Add(key, now())
	return false
}

var now = time.Now
