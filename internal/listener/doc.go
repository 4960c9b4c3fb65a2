// Package listener runs background TCP/UDP loops that decode fixed-width
// packets and hand them to a consumer.
//
// A Controller owns three independent pieces: the one-shot shutdown signal,
// the receive side of the delivery queue, and the Handle of the background
// loop. Every listener is constructed and torn down on its own; nothing is
// shared between instances.
//
// Shutdown is observed between accept/receive events. A loop blocked waiting
// for the next connection or datagram keeps waiting after Stop unless
// Options.InterruptOnStop is set, in which case Stop also closes the socket.
//
// TCP handlers perform exactly one Read per connection. A peer that delivers a
// packet in several segments is decoded from whatever that first Read
// returned; see Options.FixedBuffer for how the short buffer is presented to
// the decoder.
package listener
