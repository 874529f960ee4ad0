// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Command vstp-tool is a thin demonstration CLI over pkg/stream and
// pkg/udp, structured as a urfave/cli App with subcommands, grounded on
// the teacher's external cmd/vandrare "app"/"ssh" command-tree shape. It
// is explicitly out of scope for the protocol itself (§1 Non-goals) and
// exists only to exercise the client-facing API surface end to end.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/vishuRizz/vstp-demo/pkg/stream"
	"github.com/vishuRizz/vstp-demo/pkg/udp"
	"github.com/vishuRizz/vstp-demo/pkg/vstp"
)

func main() {
	app := &cli.App{
		Name:  "vstp-tool",
		Usage: "exercise a VSTP peer over the stream or datagram transport",
		Commands: []*cli.Command{
			sendStreamCmd(),
			sendDatagramCmd(),
		},
	}
	if err := app.RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func sendStreamCmd() *cli.Command {
	var addr, payload string
	var dialTimeout time.Duration
	return &cli.Command{
		Name:  "send-stream",
		Usage: "dial a stream peer, perform the HELLO/WELCOME handshake, and send one DATA frame",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Destination: &addr, Required: true},
			&cli.StringFlag{Name: "payload", Destination: &payload, Value: "hello"},
			&cli.DurationFlag{Name: "dial-timeout", Destination: &dialTimeout, Value: stream.DefaultDialTuning().Timeout},
		},
		Action: func(ctx *cli.Context) error {
			tuning := stream.DefaultDialTuning()
			tuning.Timeout = dialTimeout
			conn, err := stream.DialWithTuning("tcp", addr, vstp.DefaultMaxFrameSize, tuning)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			if err := conn.Hello(nil); err != nil {
				return err
			}
			if _, err := conn.AwaitWelcome(); err != nil {
				return err
			}
			if err := conn.SendData(nil, []byte(payload)); err != nil {
				return err
			}
			return conn.CloseGraceful()
		},
	}
}

func sendDatagramCmd() *cli.Command {
	var addr, payload string
	var requireAck bool
	return &cli.Command{
		Name:  "send-datagram",
		Usage: "send one DATA frame over the reliable-datagram transport",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Destination: &addr, Required: true},
			&cli.StringFlag{Name: "payload", Destination: &payload, Value: "hello"},
			&cli.BoolFlag{Name: "ack", Destination: &requireAck, Value: true},
		},
		Action: func(ctx *cli.Context) error {
			sock, err := net.ListenPacket("udp", ":0")
			if err != nil {
				return err
			}
			client := udp.NewClient(sock, udp.DefaultConfig(), nil)
			defer func() { _ = client.Close() }()

			dest, err := net.ResolveUDPAddr("udp", addr)
			if err != nil {
				return err
			}

			f := vstp.New(vstp.TypeData, 0, nil, []byte(payload))
			if !requireAck {
				return client.Send(dest, f)
			}

			rctx, cancel := context.WithTimeout(ctx.Context, 10*time.Second)
			defer cancel()
			return client.SendWithAck(rctx, dest, f)
		},
	}
}
