// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

package udp

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"github.com/vishuRizz/vstp-demo/internal/vstperr"
	"github.com/vishuRizz/vstp-demo/pkg/frag"
	"github.com/vishuRizz/vstp-demo/pkg/vstp"
)

// Handler is invoked once, at most, per (peer, msg-id) for every frame
// delivered to the application (§4.3.3). ACK frames and dropped/duplicate
// DATA frames never reach a Handler.
type Handler func(peer net.Addr, frame vstp.Frame)

// Client is a VSTP reliable-datagram endpoint: it sends and receives over
// a caller-supplied net.PacketConn (§6's "bound datagram socket"), doing
// its own fragmentation, ACK bookkeeping/retransmission, and duplicate
// suppression. It acts as both the client and server role of §4.3, which
// is symmetric over UDP; the accept-loop shape is grounded on the
// teacher's pkg/cla/mtcp server.
type Client struct {
	sock net.PacketConn
	cfg  Config

	nextMsgID   uint64
	fragCounter uint32

	pending *pendingTable
	frag    *frag.Engine
	dedup   *dedupCache

	handler Handler

	stopSyn chan struct{}
	stopAck chan struct{}
}

// NewClient wraps sock and immediately starts its receive loop, which
// delivers application frames to handler (which may be nil if this
// Client is only ever used to send).
func NewClient(sock net.PacketConn, cfg Config, handler Handler) *Client {
	if cfg.MaxFrameSize <= 0 {
		cfg.MaxFrameSize = vstp.DefaultMaxFrameSize
	}
	c := &Client{
		sock:    sock,
		cfg:     cfg,
		pending: newPendingTable(),
		frag:    frag.NewEngine(),
		dedup:   newDedupCache(DedupCacheSize, DedupTTL),
		handler: handler,
		stopSyn: make(chan struct{}),
		stopAck: make(chan struct{}),
	}
	go c.serve()
	go c.sweepLoop()
	return c
}

// Close shuts the Client's socket down and stops its background
// goroutines, aggregating any errors encountered the way the teacher
// aggregates multi-CLA shutdown failures.
func (c *Client) Close() error {
	close(c.stopSyn)
	var result *multierror.Error
	if err := c.sock.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	<-c.stopAck
	return result.ErrorOrNil()
}

func (c *Client) sweepLoop() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopSyn:
			return
		case <-ticker.C:
			c.frag.Sweep()
		}
	}
}

func (c *Client) serve() {
	defer close(c.stopAck)
	buf := make([]byte, 65536)

	for {
		n, peer, err := c.sock.ReadFrom(buf)
		if err != nil {
			select {
			case <-c.stopSyn:
				return
			default:
			}
			log.WithFields(log.Fields{"error": err}).Warn("vstp/udp: read failed, socket remains open")
			continue
		}

		data := append([]byte(nil), buf[:n]...)
		res, _, err := vstp.Decode(data, c.cfg.MaxFrameSize)
		if err != nil {
			log.WithFields(log.Fields{
				"peer":  peer,
				"error": err,
			}).Debug("vstp/udp: dropping undecodable datagram")
			continue
		}

		c.handleIncoming(peer, res.Frame)
	}
}

func (c *Client) handleIncoming(peer net.Addr, f vstp.Frame) {
	if f.Type == vstp.TypeAck {
		if msgID, ok := getMsgIDHeader(f.Headers); ok {
			c.pending.ack(msgID)
		}
		return
	}

	assembled := f
	if f.Flags.Has(vstp.FlagFrag) {
		af, ok := c.frag.Arrive(peer.String(), f)
		if !ok {
			return
		}
		assembled = af
	}

	if assembled.Flags.Has(vstp.FlagReqAck) {
		if msgID, ok := getMsgIDHeader(assembled.Headers); ok {
			c.sendAck(peer, msgID)
		}
	}

	if msgID, ok := getMsgIDHeader(assembled.Headers); ok {
		if c.dedup.seenRecently(peer.String(), msgID) {
			return
		}
	}

	if c.handler != nil {
		c.handler(peer, assembled)
	}
}

func (c *Client) sendAck(dest net.Addr, msgID uint64) {
	ack := vstp.New(vstp.TypeAck, 0, putMsgIDHeader(nil, msgID), nil)
	encoded, err := vstp.Encode(ack)
	if err != nil {
		log.WithFields(log.Fields{"error": err}).Error("vstp/udp: failed to encode ACK")
		return
	}
	if _, err := c.sock.WriteTo(encoded, dest); err != nil {
		log.WithFields(log.Fields{"dest": dest, "error": err}).Warn("vstp/udp: failed to send ACK")
	}
}

// Send transmits f to dest without requesting an ACK, fragmenting it
// first if needed and allowed by cfg.
func (c *Client) Send(dest net.Addr, f vstp.Frame) error {
	if c.cfg.UseCRC && f.Type == vstp.TypeData {
		f.Flags = f.Flags.Set(vstp.FlagCRC)
	}
	datagrams, err := c.buildDatagrams(f)
	if err != nil {
		return err
	}
	return c.transmit(dest, datagrams)
}

func (c *Client) buildDatagrams(f vstp.Frame) ([][]byte, error) {
	fragID := byte(atomic.AddUint32(&c.fragCounter, 1))

	var frames []vstp.Frame
	if c.cfg.AllowFrag {
		split, err := frag.Split(f, fragID)
		if err != nil {
			return nil, err
		}
		frames = split
	} else {
		frames = []vstp.Frame{f}
	}

	datagrams := make([][]byte, 0, len(frames))
	for _, fr := range frames {
		encoded, err := vstp.Encode(fr)
		if err != nil {
			return nil, err
		}
		if len(encoded) > frag.DatagramBudget && !c.cfg.AllowFrag {
			return nil, vstperr.ErrProtocolLimit
		}
		datagrams = append(datagrams, encoded)
	}
	return datagrams, nil
}

func (c *Client) transmit(dest net.Addr, datagrams [][]byte) error {
	for _, dg := range datagrams {
		if _, err := c.sock.WriteTo(dg, dest); err != nil {
			return vstperr.NewIo(err)
		}
	}
	return nil
}

// SendWithAck implements §4.3.1: it assigns a message-id, transmits f
// (fragmenting if needed), and waits for a matching ACK, retransmitting
// with exponential backoff up to cfg.MaxRetries times before failing with
// vstperr.ErrTimeout. Cancelling ctx aborts the wait and stops
// retransmission.
func (c *Client) SendWithAck(ctx context.Context, dest net.Addr, f vstp.Frame) error {
	msgID := atomic.AddUint64(&c.nextMsgID, 1)

	headers := putMsgIDHeader(f.Headers.Clone(), msgID)
	f.Headers = headers
	f.Flags = f.Flags.Known().Set(vstp.FlagReqAck)
	if c.cfg.UseCRC {
		f.Flags = f.Flags.Set(vstp.FlagCRC)
	}

	datagrams, err := c.buildDatagrams(f)
	if err != nil {
		return err
	}

	p := &pendingAck{
		dest:        dest,
		datagrams:   datagrams,
		retriesLeft: c.cfg.MaxRetries,
		ackCh:       make(chan struct{}, 1),
	}
	c.pending.register(msgID, p)
	defer c.pending.remove(msgID)

	if err := c.transmit(dest, datagrams); err != nil {
		return err
	}

	delay := c.cfg.AckTimeout
	for {
		timer := time.NewTimer(delay)
		select {
		case <-p.ackCh:
			timer.Stop()
			return nil

		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()

		case <-timer.C:
			if p.retriesLeft <= 0 {
				return vstperr.ErrTimeout
			}
			p.retriesLeft--
			p.attempt++
			if err := c.transmit(dest, datagrams); err != nil {
				return err
			}
			delay = backoffDelay(c.cfg, p.attempt)
		}
	}
}

func backoffDelay(cfg Config, attempt int) time.Duration {
	d := cfg.InitialRetryDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d > cfg.MaxRetryDelay {
			return cfg.MaxRetryDelay
		}
	}
	return d
}
