// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

package udp

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies that no goroutine started by a Client (receive loop,
// sweep loop, pending-ACK waits) outlives Close. The pending-ACK wait and
// reassembly sweep are exactly the retry/timeout machinery goleak exists to
// catch a leak in.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
