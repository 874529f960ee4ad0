// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies that no goroutine started by a Server (accept loop) or
// a per-connection handler outlives the test, the way the teacher's own
// CLA lifecycle tests expect a clean Close.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
