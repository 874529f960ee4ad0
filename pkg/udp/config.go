// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package udp implements the VSTP reliable-datagram layer (§4.3): optional
// at-most-once delivery over an unreliable transport via message-IDs, ACK
// frames, and exponential-backoff retransmission, plus the plain datagram
// receive loop that feeds the fragmentation engine (pkg/frag).
package udp

import (
	"time"

	"github.com/vishuRizz/vstp-demo/pkg/vstp"
)

// Config enumerates the reliable-datagram tuning knobs, with the defaults
// from §4.3.
type Config struct {
	// MaxRetries is the number of retransmissions attempted after the
	// first send before send-with-ack gives up.
	MaxRetries int
	// InitialRetryDelay is the base of the exponential backoff: after the
	// n-th retransmission, send-with-ack waits InitialRetryDelay*2^n
	// (capped by MaxRetryDelay) for an ACK.
	InitialRetryDelay time.Duration
	// MaxRetryDelay caps the exponential backoff delay.
	MaxRetryDelay time.Duration
	// AckTimeout is how long send-with-ack waits for an ACK after the
	// first transmission before retrying or giving up.
	AckTimeout time.Duration
	// UseCRC sets the CRC flag on outgoing DATA frames.
	UseCRC bool
	// AllowFrag permits the client to fragment oversized payloads.
	AllowFrag bool
	// MaxFrameSize bounds the total encoded size of any decoded frame,
	// defaulting to vstp.DefaultMaxFrameSize when zero. A single datagram
	// can never reach it, but the decoder contract requires the bound.
	MaxFrameSize int
}

// DefaultConfig returns the §4.3 default configuration.
func DefaultConfig() Config {
	return Config{
		MaxRetries:        3,
		InitialRetryDelay: 100 * time.Millisecond,
		MaxRetryDelay:     5 * time.Second,
		AckTimeout:        2 * time.Second,
		UseCRC:            true,
		AllowFrag:         true,
		MaxFrameSize:      vstp.DefaultMaxFrameSize,
	}
}

// DedupCacheSize and DedupTTL bound the at-most-once cache of recently
// seen (peer, msg-id) pairs (§4.3.3): whichever limit is hit first.
const (
	DedupCacheSize = 4096
	DedupTTL       = 60 * time.Second
)
