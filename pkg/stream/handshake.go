// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import (
	"fmt"
	"net"

	log "github.com/sirupsen/logrus"

	"github.com/vishuRizz/vstp-demo/internal/vstperr"
	"github.com/vishuRizz/vstp-demo/pkg/vstp"
)

// Dial connects to addr using DefaultDialTuning. See DialWithTuning.
func Dial(network, addr string, maxFrameSize int) (*Conn, error) {
	return DialWithTuning(network, addr, maxFrameSize, DefaultDialTuning())
}

// DialWithTuning connects to addr and wraps the connection for frame I/O.
// The returned Conn starts in StateStart; callers drive the handshake with
// Hello/AwaitWelcome. Over "tcp", the connection gets the platform-specific
// keepalive tuning in dial_linux.go/dial_other.go, parameterized by tuning;
// any other network falls back to a plain net.Dial.
func DialWithTuning(network, addr string, maxFrameSize int, tuning DialTuning) (*Conn, error) {
	var conn net.Conn
	var err error
	if network == "tcp" {
		conn, err = dialTCP(addr, tuning)
	} else {
		conn, err = net.Dial(network, addr)
	}
	if err != nil {
		return nil, vstperr.NewIo(err)
	}
	return NewConn(conn, maxFrameSize), nil
}

// Hello sends a HELLO frame and advances the session to StateOpening.
// It is only valid from StateStart.
func (c *Conn) Hello(headers vstp.Headers) error {
	if c.state != StateStart {
		return vstperr.ErrUnexpectedFrame
	}
	if err := c.WriteFrame(vstp.New(vstp.TypeHello, 0, headers, nil)); err != nil {
		return err
	}
	c.state = StateOpening
	return nil
}

// AwaitWelcome reads the next frame, expecting WELCOME, and advances the
// session to StateOpen on success.
func (c *Conn) AwaitWelcome() (vstp.Frame, error) {
	f, err := c.ReadFrame()
	if err != nil {
		return f, err
	}
	if f.Type != vstp.TypeWelcome {
		return f, vstperr.ErrUnexpectedFrame
	}
	c.state = StateOpen
	return f, nil
}

// AwaitHello reads the next frame, expecting HELLO, from StateStart.
func (c *Conn) AwaitHello() (vstp.Frame, error) {
	f, err := c.ReadFrame()
	if err != nil {
		return f, err
	}
	if f.Type != vstp.TypeHello {
		return f, vstperr.ErrUnexpectedFrame
	}
	c.state = StateOpening
	return f, nil
}

// Welcome sends a WELCOME frame and advances the session to StateOpen.
// It is only valid from StateOpening.
func (c *Conn) Welcome(headers vstp.Headers) error {
	if c.state != StateOpening {
		return vstperr.ErrUnexpectedFrame
	}
	if err := c.WriteFrame(vstp.New(vstp.TypeWelcome, 0, headers, nil)); err != nil {
		return err
	}
	c.state = StateOpen
	return nil
}

// SendData writes a DATA frame. Valid only while StateOpen.
func (c *Conn) SendData(headers vstp.Headers, payload []byte) error {
	if c.state != StateOpen {
		return vstperr.ErrUnexpectedFrame
	}
	return c.WriteFrame(vstp.New(vstp.TypeData, 0, headers, payload))
}

// Ping sends a PING frame and waits for the answering PONG. Any other
// frame type arriving first is reported as vstperr.ErrUnexpectedFrame.
// Valid only while StateOpen.
func (c *Conn) Ping(headers vstp.Headers) error {
	if c.state != StateOpen {
		return vstperr.ErrUnexpectedFrame
	}
	if err := c.WriteFrame(vstp.New(vstp.TypePing, 0, headers, nil)); err != nil {
		return err
	}
	f, err := c.ReadFrame()
	if err != nil {
		return err
	}
	if f.Type != vstp.TypePong {
		return vstperr.ErrUnexpectedFrame
	}
	return nil
}

// Pong answers a received PING, echoing its headers so a peer can
// correlate liveness probes. Valid only while StateOpen.
func (c *Conn) Pong(headers vstp.Headers) error {
	if c.state != StateOpen {
		return vstperr.ErrUnexpectedFrame
	}
	return c.WriteFrame(vstp.New(vstp.TypePong, 0, headers, nil))
}

// Receive reads the next frame and updates session state on BYE. A frame
// type the current State does not expect is tolerated (logged) unless
// Strict is set, in which case an ERR frame is sent and the connection is
// closed per §4.4's "handlers may either tolerate it or emit ERR and
// close."
func (c *Conn) Receive() (vstp.Frame, error) {
	f, err := c.ReadFrame()
	if err != nil {
		return f, err
	}

	if !c.state.Allowed(f.Type) {
		if c.Strict {
			cause := fmt.Sprintf("unexpected frame type %s in state %s", f.Type, c.state)
			_ = c.WriteFrame(vstp.New(vstp.TypeErr, 0, nil, []byte(cause)))
			c.state = StateClosed
			_ = c.Close()
			return f, vstperr.ErrUnexpectedFrame
		}
		log.WithFields(log.Fields{
			"session": c.SessionId().String(),
			"type":    f.Type.String(),
			"state":   c.state.String(),
		}).Warn("vstp/stream: tolerating unexpected frame type")
	}

	if f.Type == vstp.TypeBye {
		c.state = StateClosing
	}
	return f, nil
}

// Bye sends a BYE frame, if one has not already been sent or received,
// and advances the session to StateClosing. After Bye, the caller must
// not send further non-BYE frames (§4.4).
func (c *Conn) Bye() error {
	if c.state == StateClosing || c.state == StateClosed {
		return nil
	}
	if err := c.WriteFrame(vstp.New(vstp.TypeBye, 0, nil, nil)); err != nil {
		return err
	}
	c.state = StateClosing
	return nil
}

// CloseGraceful sends BYE (if not already done) and shuts the stream
// down, advancing the session to StateClosed.
func (c *Conn) CloseGraceful() error {
	_ = c.Bye()
	c.state = StateClosed
	return c.Close()
}
