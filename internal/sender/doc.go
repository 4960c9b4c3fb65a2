// Package sender delivers single encoded packets to a listening peer.
//
// One packet per TCP connection: dial, write the whole packet, close. UDP
// sends one datagram per packet. There is no acknowledgement; a nil error only
// means the bytes were handed to the kernel.
package sender
