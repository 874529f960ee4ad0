// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Command vstpd runs a VSTP daemon exposing both the stream transport
// (§4.4) and the reliable-datagram transport (§4.3) described by a TOML
// configuration file, mirroring the teacher's cmd/dtnd entry point.
package main

import (
	"net"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"

	"github.com/vishuRizz/vstp-demo/internal/config"
	"github.com/vishuRizz/vstp-demo/pkg/stream"
	"github.com/vishuRizz/vstp-demo/pkg/udp"
	"github.com/vishuRizz/vstp-demo/pkg/vstp"
)

func waitSigint() {
	signalSyn := make(chan os.Signal, 1)
	signalAck := make(chan struct{})

	signal.Notify(signalSyn, os.Interrupt)

	go func() {
		<-signalSyn
		close(signalAck)
	}()

	<-signalAck
}

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("Usage: %s configuration.toml", os.Args[0])
	}

	watcher, conf, err := config.Watch(os.Args[1])
	if err != nil {
		log.WithField("error", err).Fatal("Failed to parse config")
	}
	applyLogging(conf.Logging)

	var streamServer *stream.Server
	if conf.Stream.Listen != "" {
		var ln net.Listener
		if surface := conf.TLSSurface(); surface.Enabled() {
			ln, err = stream.ListenTLS("tcp", conf.Stream.Listen, surface)
		} else {
			ln, err = net.Listen("tcp", conf.Stream.Listen)
		}
		if err != nil {
			log.WithField("error", err).Fatal("Failed to open stream listener")
		}
		streamServer = stream.NewServer(ln, conf.Core.MaxFrameSize, handleSession)
		log.WithField("addr", conf.Stream.Listen).Info("vstpd: stream transport listening")
	}

	var udpClient *udp.Client
	if conf.Datagram.Listen != "" {
		sock, err := net.ListenPacket("udp", conf.Datagram.Listen)
		if err != nil {
			log.WithField("error", err).Fatal("Failed to open datagram socket")
		}
		udpClient = udp.NewClient(sock, conf.UdpConfig(), handleDatagram)
		log.WithField("addr", conf.Datagram.Listen).Info("vstpd: datagram transport listening")
	}

	go func() {
		for newConf := range watcher.Updates {
			applyLogging(newConf.Logging)
			log.Info("vstpd: configuration reloaded")
		}
	}()

	waitSigint()
	log.Info("vstpd: shutting down")

	_ = watcher.Close()
	if streamServer != nil {
		_ = streamServer.Close()
	}
	if udpClient != nil {
		_ = udpClient.Close()
	}
}

// handleSession drives one accepted stream connection through the server
// side of the §4.4 handshake and logs DATA frames until BYE or an error.
func handleSession(c *stream.Conn) {
	defer func() { _ = c.Close() }()

	if _, err := c.AwaitHello(); err != nil {
		log.WithField("error", err).Warn("vstpd: handshake failed")
		return
	}
	if err := c.Welcome(nil); err != nil {
		log.WithField("error", err).Warn("vstpd: failed to send WELCOME")
		return
	}

	for {
		f, err := c.Receive()
		if err != nil {
			log.WithFields(log.Fields{
				"session": c.SessionId().String(),
				"error":   err,
			}).Debug("vstpd: session ended")
			return
		}

		switch f.Type {
		case vstp.TypeData:
			log.WithFields(log.Fields{
				"session": c.SessionId().String(),
				"bytes":   len(f.Payload),
			}).Debug("vstpd: received DATA")
		case vstp.TypePing:
			if err := c.Pong(f.Headers); err != nil {
				return
			}
		case vstp.TypeBye:
			return
		}
	}
}

func handleDatagram(peer net.Addr, f vstp.Frame) {
	log.WithFields(log.Fields{
		"peer": peer.String(),
		"type": f.Type.String(),
	}).Debug("vstpd: received datagram frame")
}
