// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vstp

import (
	"encoding/binary"

	"github.com/vishuRizz/vstp-demo/internal/vstperr"
)

// Varint and length-prefixed string helpers. The varint pair is exported so
// extension-header producers outside this package can reuse one
// space-efficient integer encoding inside header values instead of
// inventing their own. The header section itself does not use these
// helpers: it has its own key_len|value_len|key|value layout (codec.go).

// PutUvarint appends the LEB128 varint encoding of v to buf and returns the
// extended slice. It is used by extension headers that want to carry a
// variable-length integer inside a header value, rather than the fixed u8
// length prefix used for the key/value lengths themselves.
func PutUvarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

// Uvarint reads a LEB128 varint from the front of buf, returning the value
// and the number of bytes consumed. n is 0 if buf does not yet hold a
// complete varint.
func Uvarint(buf []byte) (v uint64, n int) {
	return binary.Uvarint(buf)
}

// putLengthPrefixedBytes appends a single-byte length prefix followed by
// b to buf. b must be at most HeaderFieldMax bytes; callers are expected to
// have validated this already.
func putLengthPrefixedBytes(buf []byte, b []byte) []byte {
	buf = append(buf, byte(len(b)))
	return append(buf, b...)
}

// readLengthPrefixedBytes reads a single-byte-length-prefixed byte string
// from the front of buf. It reports vstperr.Incomplete if buf does not
// hold a complete field.
func readLengthPrefixedBytes(buf []byte) (value []byte, rest []byte, err error) {
	if len(buf) < 1 {
		return nil, buf, &vstperr.Incomplete{Needed: 1}
	}
	l := int(buf[0])
	if len(buf) < 1+l {
		return nil, buf, &vstperr.Incomplete{Needed: 1 + l - len(buf)}
	}
	value = buf[1 : 1+l]
	rest = buf[1+l:]
	return value, rest, nil
}
