// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package frag implements the VSTP datagram fragmentation and reassembly
// engine (§4.2): splitting a logical frame whose payload would overflow
// the 1200-byte datagram wire budget into bounded fragment frames, and
// reassembling fragments arriving out of order at a peer back into the
// original frame.
//
// Header carriage across fragments (Open Question #1 in SPEC_FULL.md) is
// resolved here as: duplicate the application headers onto every
// fragment, and recover them from fragment index 0 only at assembly time.
// Fragment control headers (Open Question #2) are raw bytes, not decimal
// ASCII: frag-id/frag-index/frag-total are each a single byte.
package frag

import (
	"github.com/vishuRizz/vstp-demo/internal/vstperr"
	"github.com/vishuRizz/vstp-demo/pkg/vstp"
)

const (
	// DatagramBudget is the maximum size, including codec overhead, of a
	// single transmitted datagram.
	DatagramBudget = 1200

	// MaxFragments is the largest number of fragments a single logical
	// frame may be split into (frag-total is a single byte).
	MaxFragments = 255
)

const (
	headerFragID    = "frag-id"
	headerFragIndex = "frag-index"
	headerFragTotal = "frag-total"
)

// controlHeaderOverhead returns the encoded size of one fragment control
// header carrying a single-byte value.
func controlHeaderOverhead(key string) int {
	// key_len(1) + value_len(1) + key + value(1)
	return 2 + len(key) + 1
}

// fragmentHeaderOverhead is the total wire cost of the three control
// headers attached to every fragment.
func fragmentHeaderOverhead() int {
	return controlHeaderOverhead(headerFragID) + controlHeaderOverhead(headerFragIndex) + controlHeaderOverhead(headerFragTotal)
}

// Split breaks f into one or more fragment frames addressed by fragID, a
// sender-chosen per-message identifier that must be unique per logical
// frame per destination peer. If the payload already fits within a single
// datagram, Split returns a one-element slice containing f unmodified
// (without the FRAG flag set), per §4.2.1 step 4.
func Split(f vstp.Frame, fragID byte) ([]vstp.Frame, error) {
	appHeaderSize, err := vstp.HeaderSectionSize(f.Headers)
	if err != nil {
		return nil, err
	}

	budget := DatagramBudget - vstp.FixedHeaderSize - appHeaderSize - fragmentHeaderOverhead() - vstp.CrcSize
	if budget < 1 {
		return nil, vstperr.ErrProtocolLimit
	}

	if len(f.Payload) <= budget {
		return []vstp.Frame{f}, nil
	}

	n := (len(f.Payload) + budget - 1) / budget
	if n > MaxFragments {
		return nil, vstperr.ErrProtocolLimit
	}

	fragments := make([]vstp.Frame, 0, n)
	for i := 0; i < n; i++ {
		start := i * budget
		end := start + budget
		if end > len(f.Payload) {
			end = len(f.Payload)
		}

		headers := make(vstp.Headers, 0, len(f.Headers)+3)
		headers = append(headers, f.Headers.Clone()...)
		headers = append(headers,
			vstp.Header{Key: []byte(headerFragID), Value: []byte{fragID}},
			vstp.Header{Key: []byte(headerFragIndex), Value: []byte{byte(i)}},
			vstp.Header{Key: []byte(headerFragTotal), Value: []byte{byte(n)}},
		)

		fragments = append(fragments, vstp.Frame{
			Version: f.Version,
			Type:    f.Type,
			Flags:   f.Flags.Known().Set(vstp.FlagFrag),
			Headers: headers,
			Payload: append([]byte(nil), f.Payload[start:end]...),
		})
	}

	return fragments, nil
}

// fragmentControl extracts the three fragment-control headers from a
// fragment's header list. ok is false if any are missing or malformed
// (wrong length, or index >= total), in which case the fragment must be
// dropped per §4.2.2 step 1.
func fragmentControl(headers vstp.Headers) (id, index, total byte, ok bool) {
	idVal, found := headers.Get(headerFragID)
	if !found || len(idVal) != 1 {
		return 0, 0, 0, false
	}
	indexVal, found := headers.Get(headerFragIndex)
	if !found || len(indexVal) != 1 {
		return 0, 0, 0, false
	}
	totalVal, found := headers.Get(headerFragTotal)
	if !found || len(totalVal) != 1 {
		return 0, 0, 0, false
	}

	id, index, total = idVal[0], indexVal[0], totalVal[0]
	if index >= total {
		return 0, 0, 0, false
	}
	return id, index, total, true
}

// stripControlHeaders returns headers with the three fragment-control
// entries removed, recovering the application's original header list.
func stripControlHeaders(headers vstp.Headers) vstp.Headers {
	out := make(vstp.Headers, 0, len(headers))
	for _, h := range headers {
		switch string(h.Key) {
		case headerFragID, headerFragIndex, headerFragTotal:
			continue
		default:
			out = append(out, h)
		}
	}
	return out
}
