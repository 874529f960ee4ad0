// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import (
	"net"
	"time"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
)

// ConnHandler processes one accepted connection. It is invoked in its own
// goroutine per connection and should drive the server side of the
// handshake (AwaitHello, then Welcome), then use the Conn's Receive/
// WriteFrame methods for the session and Close it when done.
type ConnHandler func(*Conn)

// Server accepts stream connections and spawns a handler goroutine per
// connection, assigning each a process-unique SessionId. Its accept-loop
// shape — a poll-with-deadline loop guarded by a stop/stop-ack channel
// pair — is grounded on the teacher's pkg/cla/mtcp.MTCPServer.
type Server struct {
	ln           net.Listener
	maxFrameSize int
	handler      ConnHandler

	stopSyn chan struct{}
	stopAck chan struct{}
}

// NewServer starts accepting connections on ln. handler is invoked once
// per accepted connection.
func NewServer(ln net.Listener, maxFrameSize int, handler ConnHandler) *Server {
	s := &Server{
		ln:           ln,
		maxFrameSize: maxFrameSize,
		handler:      handler,
		stopSyn:      make(chan struct{}),
		stopAck:      make(chan struct{}),
	}
	go s.acceptLoop()
	return s
}

type deadlineListener interface {
	SetDeadline(t time.Time) error
}

func (s *Server) acceptLoop() {
	defer close(s.stopAck)

	dl, supportsDeadline := s.ln.(deadlineListener)

	for {
		select {
		case <-s.stopSyn:
			return
		default:
		}

		if supportsDeadline {
			_ = dl.SetDeadline(time.Now().Add(200 * time.Millisecond))
		}

		conn, err := s.ln.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-s.stopSyn:
				return
			default:
				log.WithFields(log.Fields{"error": err}).Warn("vstp/stream: accept failed")
				continue
			}
		}

		c := NewConn(conn, s.maxFrameSize)
		log.WithFields(log.Fields{
			"session": c.SessionId().String(),
			"remote":  conn.RemoteAddr(),
		}).Info("vstp/stream: accepted connection")

		go s.handler(c)
	}
}

// Close stops accepting new connections and closes the listener. It does
// not close already-accepted connections; their handlers own that.
func (s *Server) Close() error {
	close(s.stopSyn)
	var result *multierror.Error
	if err := s.ln.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	<-s.stopAck
	return result.ErrorOrNil()
}
