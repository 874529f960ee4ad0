// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

package udp

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishuRizz/vstp-demo/internal/vstperr"
	"github.com/vishuRizz/vstp-demo/pkg/vstp"
)

func listenLoopback(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	return conn
}

func TestSendWithAckSucceedsOverLoopback(t *testing.T) {
	var received atomic.Int32
	serverSock := listenLoopback(t)
	server := NewClient(serverSock, DefaultConfig(), func(peer net.Addr, f vstp.Frame) {
		received.Add(1)
	})
	defer func() { _ = server.Close() }()

	clientSock := listenLoopback(t)
	client := NewClient(clientSock, DefaultConfig(), nil)
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	f := vstp.New(vstp.TypeData, 0, nil, []byte("hello"))
	err := client.SendWithAck(ctx, serverSock.LocalAddr(), f)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return received.Load() == 1 }, time.Second, 10*time.Millisecond)
}

func TestSendWithAckTimesOutAfterExactlyRPlusOneTransmissions(t *testing.T) {
	var sent atomic.Int32
	sinkSock := listenLoopback(t)
	defer func() { _ = sinkSock.Close() }()

	// Drain every datagram the sink receives without ever ACKing, counting
	// how many transmission attempts the client made.
	stop := make(chan struct{})
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		buf := make([]byte, 2048)
		for {
			_ = sinkSock.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
			n, _, err := sinkSock.ReadFrom(buf)
			if err != nil {
				select {
				case <-stop:
					return
				default:
					continue
				}
			}
			if n > 0 {
				sent.Add(1)
			}
		}
	}()

	clientSock := listenLoopback(t)
	cfg := DefaultConfig()
	cfg.MaxRetries = 2
	cfg.AckTimeout = 50 * time.Millisecond
	cfg.InitialRetryDelay = 10 * time.Millisecond
	cfg.MaxRetryDelay = 20 * time.Millisecond
	client := NewClient(clientSock, cfg, nil)
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	f := vstp.New(vstp.TypeData, 0, nil, []byte("dropped"))
	err := client.SendWithAck(ctx, sinkSock.LocalAddr(), f)
	assert.ErrorIs(t, err, vstperr.ErrTimeout)

	close(stop)
	<-drained
	assert.Equal(t, int32(cfg.MaxRetries+1), sent.Load())
}

func TestAtMostOnceDeliveryUnderDuplication(t *testing.T) {
	var mu sync.Mutex
	var delivered []uint64

	serverSock := listenLoopback(t)
	server := NewClient(serverSock, DefaultConfig(), func(peer net.Addr, f vstp.Frame) {
		id, ok := getMsgIDHeader(f.Headers)
		require.True(t, ok)
		mu.Lock()
		delivered = append(delivered, id)
		mu.Unlock()
	})
	defer func() { _ = server.Close() }()

	// A raw socket standing in for a lossy link that duplicates every
	// datagram it forwards to the server.
	rawSock := listenLoopback(t)
	defer func() { _ = rawSock.Close() }()

	f := vstp.New(vstp.TypeData, vstp.FlagReqAck, nil, []byte("dup-me"))
	f.Headers = putMsgIDHeader(nil, 7)
	encoded, err := vstp.Encode(f)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := rawSock.WriteToUDP(encoded, serverSock.LocalAddr().(*net.UDPAddr))
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(delivered) >= 1
	}, time.Second, 10*time.Millisecond)

	time.Sleep(200 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, delivered, 1, "duplicate datagrams must be delivered at most once")
	assert.Equal(t, uint64(7), delivered[0])
}

func TestSendWithAckFragmentsLargePayloadOverLoopback(t *testing.T) {
	payload := make([]byte, 50000)
	for i := range payload {
		payload[i] = byte(i * 7)
	}

	type delivery struct {
		payload []byte
	}
	deliveries := make(chan delivery, 4)

	serverSock := listenLoopback(t)
	server := NewClient(serverSock, DefaultConfig(), func(peer net.Addr, f vstp.Frame) {
		deliveries <- delivery{payload: f.Payload}
	})
	defer func() { _ = server.Close() }()

	clientSock := listenLoopback(t)
	client := NewClient(clientSock, DefaultConfig(), nil)
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	f := vstp.New(vstp.TypeData, 0, nil, payload)
	require.NoError(t, client.SendWithAck(ctx, serverSock.LocalAddr(), f))

	select {
	case d := <-deliveries:
		assert.Equal(t, payload, d.payload)
	case <-time.After(2 * time.Second):
		t.Fatal("receiver never delivered the assembled frame")
	}

	select {
	case <-deliveries:
		t.Fatal("assembled frame delivered more than once")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSendWithAckCancellationStopsRetransmission(t *testing.T) {
	sinkSock := listenLoopback(t)
	defer func() { _ = sinkSock.Close() }()

	clientSock := listenLoopback(t)
	cfg := DefaultConfig()
	cfg.AckTimeout = 2 * time.Second
	client := NewClient(clientSock, cfg, nil)
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	f := vstp.New(vstp.TypeData, 0, nil, []byte("cancel-me"))
	err := client.SendWithAck(ctx, sinkSock.LocalAddr(), f)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, ok := client.pending.get(1)
	assert.False(t, ok, "cancellation must remove the pending-ACK record")
}
