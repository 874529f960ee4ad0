// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build !linux
// +build !linux

package stream

import (
	"net"
	"time"
)

// dialTCP on non-Linux platforms: a plain dialer with tuning's timeout and
// the portable net.Dialer.KeepAlive option, since the TCP_USER_TIMEOUT/
// TCP_KEEPCNT-style fine tuning in dial_linux.go has no portable equivalent.
// Grounded on the teacher's pkg/cla/mtcp/client_dial.go, generalized to take
// its values from DialTuning.
func dialTCP(address string, tuning DialTuning) (net.Conn, error) {
	dialer := &net.Dialer{
		Timeout:   tuning.Timeout,
		KeepAlive: time.Duration(tuning.KeepIdle) * time.Second,
	}
	return dialer.Dial("tcp", address)
}
