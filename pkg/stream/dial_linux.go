// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build linux
// +build linux

package stream

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// dialControl builds the net.Dialer Control function that applies tuning's
// keepalive/TCP_USER_TIMEOUT socket options, grounded on the teacher's
// pkg/cla/mtcp/client_dial_linux.go shape (the Control callback plus an
// opt->value map applied through a single rawConn.Control call), generalized
// to take its values from DialTuning instead of the teacher's hardcoded
// bundle-relay constants.
func dialControl(tuning DialTuning) func(_, _ string, rawConn syscall.RawConn) error {
	return func(_, _ string, rawConn syscall.RawConn) (err error) {
		opts := map[int]int{
			unix.TCP_KEEPCNT:      tuning.KeepCnt,
			unix.TCP_KEEPIDLE:     tuning.KeepIdle,
			unix.TCP_KEEPINTVL:    tuning.KeepIntvl,
			unix.TCP_USER_TIMEOUT: tuning.UserTimeoutMillis,
		}

		err = rawConn.Control(func(fd uintptr) {
			for opt, value := range opts {
				if err = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, opt, value); err != nil {
					return
				}
			}
		})
		return
	}
}

func dialTCP(address string, tuning DialTuning) (net.Conn, error) {
	dialer := &net.Dialer{
		Timeout: tuning.Timeout,
		Control: dialControl(tuning),
	}
	return dialer.Dial("tcp", address)
}
