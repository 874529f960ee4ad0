// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import "time"

// DialTuning controls the TCP dial timeout and keepalive behavior stream.Dial
// uses when connecting. This is the stream transport's own tuning surface,
// distinct from pkg/udp.Config's AckTimeout/MaxRetries knobs: a session-
// oriented transport (§4.4) expects to hold one TCP connection open across
// many DATA frames, so its dead-peer detection is driven by TCP keepalive
// rather than by an application-level ACK loop.
type DialTuning struct {
	// Timeout bounds the TCP three-way handshake itself.
	Timeout time.Duration

	// KeepIdle is the number of idle seconds before the first keepalive
	// probe is sent.
	KeepIdle int

	// KeepIntvl is the number of seconds between keepalive probes.
	KeepIntvl int

	// KeepCnt is the number of unanswered probes tolerated before the
	// connection is considered dead.
	KeepCnt int

	// UserTimeoutMillis bounds, on Linux, how long transmitted data may sit
	// unacknowledged before the kernel force-closes the connection. It has
	// no portable equivalent and is ignored on other platforms.
	UserTimeoutMillis int
}

// DefaultDialTuning returns VSTP's default stream-dial tuning: one long-lived
// connection carrying many DATA frames can tolerate a slower keepalive cadence
// than a single fire-and-forget transfer, while still surfacing a dead peer
// within a handful of seconds rather than relying on the OS defaults (which on
// Linux default to a 2-hour idle time).
func DefaultDialTuning() DialTuning {
	return DialTuning{
		Timeout:           3 * time.Second,
		KeepIdle:          10,
		KeepIntvl:         5,
		KeepCnt:           3,
		UserTimeoutMillis: 10000,
	}
}
