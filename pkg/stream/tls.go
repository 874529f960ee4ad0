// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import (
	"crypto/tls"
	"net"
	"time"

	"github.com/vishuRizz/vstp-demo/internal/vstperr"
)

// TLSSurface is the opaque-to-core TLS configuration surface of §6. The
// core never inspects certificates; it only turns these four fields into
// a listener or dialer for the byte stream it consumes. Everything beyond
// that — certificate management, rotation, trust policy — belongs to the
// external collaborator that produced the files.
type TLSSurface struct {
	CertificatePath  string
	PrivateKeyPath   string
	VerifyClient     bool
	HandshakeTimeout time.Duration
}

// Enabled reports whether the surface carries a certificate at all.
func (s TLSSurface) Enabled() bool {
	return s.CertificatePath != "" && s.PrivateKeyPath != ""
}

func (s TLSSurface) listenerConfig() (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(s.CertificatePath, s.PrivateKeyPath)
	if err != nil {
		return nil, vstperr.NewIo(err)
	}
	conf := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	if s.VerifyClient {
		conf.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return conf, nil
}

// ListenTLS opens a TLS-terminated stream listener on addr. The returned
// listener completes each connection's handshake eagerly, bounded by the
// surface's HandshakeTimeout, so a stalled peer cannot park an accepted
// connection in a half-handshaken state indefinitely.
func ListenTLS(network, addr string, surface TLSSurface) (net.Listener, error) {
	conf, err := surface.listenerConfig()
	if err != nil {
		return nil, err
	}
	inner, err := net.Listen(network, addr)
	if err != nil {
		return nil, vstperr.NewIo(err)
	}
	return &tlsListener{
		Listener:         tls.NewListener(inner, conf),
		handshakeTimeout: surface.HandshakeTimeout,
	}, nil
}

// DialTLS connects to a TLS-terminated stream peer and wraps the
// connection for frame I/O, verifying the server against the system trust
// store. The TCP dial itself gets the same tuning as DialWithTuning.
func DialTLS(addr string, maxFrameSize int, surface TLSSurface, tuning DialTuning) (*Conn, error) {
	raw, err := dialTCP(addr, tuning)
	if err != nil {
		return nil, vstperr.NewIo(err)
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	tc := tls.Client(raw, &tls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
	})

	if surface.HandshakeTimeout > 0 {
		_ = tc.SetDeadline(time.Now().Add(surface.HandshakeTimeout))
	}
	if err := tc.Handshake(); err != nil {
		_ = tc.Close()
		return nil, vstperr.NewIo(err)
	}
	_ = tc.SetDeadline(time.Time{})

	return NewConn(tc, maxFrameSize), nil
}

// tlsListener forces the TLS handshake at accept time under a deadline,
// instead of the lazy first-read handshake tls.NewListener gives.
type tlsListener struct {
	net.Listener
	handshakeTimeout time.Duration
}

func (l *tlsListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}

	tc, ok := conn.(*tls.Conn)
	if !ok {
		return conn, nil
	}

	if l.handshakeTimeout > 0 {
		_ = tc.SetDeadline(time.Now().Add(l.handshakeTimeout))
	}
	if err := tc.Handshake(); err != nil {
		_ = tc.Close()
		return nil, err
	}
	_ = tc.SetDeadline(time.Time{})
	return tc, nil
}
