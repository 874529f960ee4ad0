// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package stream implements the VSTP stream client/server (§4.4): framing
// applied directly over a reliable, ordered byte stream, a session
// lifecycle FSM, and a per-connection accept loop assigning a process-
// unique SessionId to every accepted connection.
package stream

import (
	"net"
	"sync"

	"github.com/vishuRizz/vstp-demo/internal/vstperr"
	"github.com/vishuRizz/vstp-demo/pkg/vstp"
)

// Conn wraps a bidirectional byte stream (net.Conn satisfies §6's "read,
// write, and close" contract exactly) with frame-at-a-time I/O. Reads
// accumulate into a growable buffer bounded by MaxFrameSize plus one
// frame in progress (§5); writes are serialized by a mutex so concurrent
// senders never interleave partial frames on the wire, satisfying the
// ordering guarantee in §5 without requiring every caller to run its own
// dedicated writer task.
type Conn struct {
	conn         net.Conn
	maxFrameSize int

	readBuf []byte

	writeMu sync.Mutex

	id    SessionId
	state State

	// Strict, when true, makes Receive treat a frame type disallowed by
	// the current State as fatal: an ERR frame is sent and the
	// connection closed. When false (the default), such frames are
	// merely logged and passed through to the caller.
	Strict bool
}

// NewConn wraps conn for frame I/O with the given maximum frame size. Its
// initial state is StateStart and its SessionId is freshly generated; a
// Server assigns each accepted connection its SessionId this way.
func NewConn(conn net.Conn, maxFrameSize int) *Conn {
	return &Conn{
		conn:         conn,
		maxFrameSize: maxFrameSize,
		id:           newSessionId(),
		state:        StateStart,
	}
}

// SessionId returns this connection's assigned session identifier.
func (c *Conn) SessionId() SessionId { return c.id }

// State returns the connection's current lifecycle state.
func (c *Conn) State() State { return c.state }

// WriteFrame encodes f and writes it to the underlying stream as a single
// contiguous segment. Concurrent WriteFrame calls on the same Conn are
// serialized.
func (c *Conn) WriteFrame(f vstp.Frame) error {
	encoded, err := vstp.Encode(f)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if _, err := c.conn.Write(encoded); err != nil {
		// A partially sent frame leaves the peer with a partial frame
		// that cannot be resumed (§5); the connection must be torn down.
		_ = c.conn.Close()
		return vstperr.NewIo(err)
	}
	return nil
}

// ReadFrame reads from the stream, accumulating into the connection's
// growable buffer, until exactly one complete frame can be decoded. It
// returns vstperr.ErrConnectionClosed if the peer closes the stream
// before a complete frame arrives.
func (c *Conn) ReadFrame() (vstp.Frame, error) {
	readChunk := make([]byte, 4096)

	for {
		res, skip, err := vstp.Decode(c.readBuf, c.maxFrameSize)
		if err == nil {
			c.readBuf = c.readBuf[res.Consumed:]
			return res.Frame, nil
		}
		if _, ok := err.(*vstperr.Incomplete); !ok {
			// Malformed framing: fatal to this connection (§7). Unlike the
			// datagram transport there is no next-datagram boundary to
			// resynchronize on; the skip hint only drops the bad bytes
			// from the buffer before the error is returned.
			if skip > 0 {
				c.readBuf = c.readBuf[skip:]
			}
			return vstp.Frame{}, err
		}

		n, rerr := c.conn.Read(readChunk)
		if n > 0 {
			c.readBuf = append(c.readBuf, readChunk[:n]...)
		}
		if rerr != nil {
			if n == 0 {
				return vstp.Frame{}, vstperr.ErrConnectionClosed
			}
			// Deliver what we already buffered on the next loop
			// iteration; only report the read error once no further
			// bytes can complete a frame.
			continue
		}
	}
}

// Close shuts the underlying stream down.
func (c *Conn) Close() error {
	return c.conn.Close()
}
