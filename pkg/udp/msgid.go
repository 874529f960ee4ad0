// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

package udp

import (
	"encoding/binary"

	"github.com/vishuRizz/vstp-demo/pkg/vstp"
)

// headerMsgID is the reliable-datagram ACK correlation header (§6). Per
// SPEC_FULL.md's Open Question resolution, it is encoded as 8 raw
// big-endian bytes, not decimal ASCII.
const headerMsgID = "msg-id"

func putMsgIDHeader(headers vstp.Headers, id uint64) vstp.Headers {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], id)
	return append(headers, vstp.Header{Key: []byte(headerMsgID), Value: b[:]})
}

func getMsgIDHeader(headers vstp.Headers) (uint64, bool) {
	v, ok := headers.Get(headerMsgID)
	if !ok || len(v) != 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(v), true
}
