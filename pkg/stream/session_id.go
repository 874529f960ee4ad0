// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import "github.com/google/uuid"

// SessionId is the 128-bit, process-unique identifier assigned by a
// Server to each accepted connection (§3). It is backed by a UUIDv7,
// which embeds a millisecond timestamp in its high bits, giving the
// "monotonically increasing... scoped to the server process lifetime"
// property without a separate counter-plus-nonce scheme.
type SessionId [16]byte

// newSessionId generates a fresh SessionId.
func newSessionId() SessionId {
	id := uuid.Must(uuid.NewV7())
	var s SessionId
	copy(s[:], id[:])
	return s
}

func (s SessionId) String() string {
	return uuid.UUID(s).String()
}
