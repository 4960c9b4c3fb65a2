package listener

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/danmuck/armwire/internal/protocol"
	"github.com/danmuck/armwire/internal/protocol/packets"
	"github.com/danmuck/armwire/internal/testutil/testlog"
	"github.com/stretchr/testify/require"
)

func dialUDP(t *testing.T, addr string) net.Conn {
	t.Helper()
	conn, err := net.Dial("udp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestUDPDeliveryMatchesArrivalOrder(t *testing.T) {
	testlog.Start(t)

	ctl, err := ListenUDP("127.0.0.1:0", Options[packets.TakeItem]{
		Name:            "udp-order",
		Size:            packets.TakeItemSize,
		Decode:          packets.TakeItemCodec.Decode,
		InterruptOnStop: true,
	})
	require.NoError(t, err)
	addr := waitReady(t, ctl)
	defer stopAndWait(t, ctl)

	peers := []net.Conn{dialUDP(t, addr), dialUDP(t, addr), dialUDP(t, addr)}
	const total = 150
	for i := 0; i < total; i++ {
		pkt := packets.EncodeTakeItem(packets.TakeItem{ID: uint32(i)})
		_, err := peers[(i*7)%len(peers)].Write(pkt[:])
		require.NoError(t, err)
		// pace sends so the loopback socket buffer never drops
		if i%25 == 24 {
			require.Eventually(t, func() bool { return len(ctl.recv) >= i+1 }, waitFor, time.Millisecond)
		}
	}

	for want := 0; want < total; want++ {
		info := receiveOne(t, ctl)
		require.NoError(t, info.Err)
		require.Equal(t, uint32(want), info.Data.ID)
	}
}

func TestUDPFixedBufferClearsPreviousDatagram(t *testing.T) {
	testlog.Start(t)

	ctl, err := ListenUDP("127.0.0.1:0", Options[packets.NewItem]{
		Name:            "udp-fixed",
		Size:            packets.NewItemSize,
		Decode:          packets.NewItemCodec.Decode,
		FixedBuffer:     true,
		InterruptOnStop: true,
	})
	require.NoError(t, err)
	addr := waitReady(t, ctl)
	defer stopAndWait(t, ctl)

	peer := dialUDP(t, addr)
	full := packets.EncodeNewItem(packets.NewItem{ID: 1, Location: 0xffffffff})
	_, err = peer.Write(full[:])
	require.NoError(t, err)
	first := receiveOne(t, ctl)
	require.Equal(t, packets.NewItem{ID: 1, Location: 0xffffffff}, first.Data)

	_, err = peer.Write([]byte{0, 0, 0, 2})
	require.NoError(t, err)
	second := receiveOne(t, ctl)
	require.NoError(t, second.Err)
	require.Equal(t, packets.NewItem{ID: 2, Location: 0}, second.Data)
}

func TestUDPShortDatagramVariableLength(t *testing.T) {
	testlog.Start(t)

	ctl, err := ListenUDP("127.0.0.1:0", Options[packets.ItemStatus]{
		Name:            "udp-short",
		Size:            packets.ItemReachSize,
		Decode:          packets.ItemReachCodec.Decode,
		InterruptOnStop: true,
	})
	require.NoError(t, err)
	addr := waitReady(t, ctl)
	defer stopAndWait(t, ctl)

	peer := dialUDP(t, addr)
	_, err = peer.Write([]byte{2, 0, 0, 0, 0})
	require.NoError(t, err)

	info := receiveOne(t, ctl)
	var lenErr *protocol.LengthError
	require.ErrorAs(t, info.Err, &lenErr)
	require.Equal(t, packets.ItemReachSize, lenErr.Expected)
	require.Equal(t, 5, lenErr.Actual)
	require.Equal(t, peer.LocalAddr().String(), info.Addr.String())
}

func TestUDPStopKeepsQueuedPackets(t *testing.T) {
	testlog.Start(t)

	ctl, err := ListenUDP("127.0.0.1:0", Options[packets.PickUpItem]{
		Name:   "udp-stop",
		Size:   packets.PickUpItemSize,
		Decode: packets.PickUpItemCodec.Decode,
	})
	require.NoError(t, err)
	addr := waitReady(t, ctl)

	peer := dialUDP(t, addr)
	for i := uint32(1); i <= 2; i++ {
		pkt := packets.EncodePickUpItem(packets.PickUpItem{ID: i})
		_, err := peer.Write(pkt[:])
		require.NoError(t, err)
	}
	require.Eventually(t, func() bool { return len(ctl.recv) == 2 }, waitFor, 5*time.Millisecond)

	h := ctl.Stop()
	select {
	case <-h.Done():
		t.Fatalf("loop finished while still blocked in receive")
	case <-time.After(100 * time.Millisecond):
	}

	// this datagram only wakes the loop; it is not delivered
	late := packets.EncodePickUpItem(packets.PickUpItem{ID: 99})
	_, err = peer.Write(late[:])
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	require.NoError(t, h.Wait(ctx))

	for want := uint32(1); want <= 2; want++ {
		info, err := ctl.TryReceive()
		require.NoError(t, err)
		require.Equal(t, want, info.Data.ID)
	}
	require.Eventually(t, func() bool {
		_, err := ctl.TryReceive()
		return err == ErrClosed
	}, waitFor, 5*time.Millisecond)
}

func TestReceiveBlocksUntilContextEnds(t *testing.T) {
	testlog.Start(t)

	ctl, err := ListenUDP("127.0.0.1:0", Options[packets.TakeItem]{
		Name:            "udp-receive",
		Size:            packets.TakeItemSize,
		Decode:          packets.TakeItemCodec.Decode,
		InterruptOnStop: true,
	})
	require.NoError(t, err)
	waitReady(t, ctl)
	defer stopAndWait(t, ctl)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = ctl.Receive(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUDPOversizedDatagramReportsLength(t *testing.T) {
	testlog.Start(t)

	ctl, err := ListenUDP("127.0.0.1:0", newItemOptions("udp-oversized"))
	require.NoError(t, err)
	addr := waitReady(t, ctl)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), waitFor)
		defer cancel()
		require.NoError(t, ctl.Abort().Wait(ctx))
	}()

	peer := dialUDP(t, addr)
	_, err = peer.Write([]byte{0, 0, 0, 7, 0, 0, 0, 42, 0xde, 0xad, 0xbe, 0xef, 1, 2, 3})
	require.NoError(t, err)

	info := receiveOne(t, ctl)
	var lenErr *protocol.LengthError
	require.ErrorAs(t, info.Err, &lenErr)
	require.Equal(t, packets.NewItemSize, lenErr.Expected)
	require.Equal(t, 15, lenErr.Actual)
}

func TestUDPFixedBufferCutsOversizedDatagram(t *testing.T) {
	testlog.Start(t)

	opts := newItemOptions("udp-oversized-fixed")
	opts.FixedBuffer = true
	opts.InterruptOnStop = true
	ctl, err := ListenUDP("127.0.0.1:0", opts)
	require.NoError(t, err)
	addr := waitReady(t, ctl)
	defer stopAndWait(t, ctl)

	peer := dialUDP(t, addr)
	_, err = peer.Write([]byte{0, 0, 0, 7, 0, 0, 0, 42, 0xde, 0xad, 0xbe, 0xef})
	require.NoError(t, err)

	info := receiveOne(t, ctl)
	require.NoError(t, info.Err)
	require.Equal(t, packets.NewItem{ID: 7, Location: 42}, info.Data)
}
