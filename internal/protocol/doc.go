// Package protocol owns the fixed-width packet contract.
//
// Ownership boundary:
// - big-endian field cursor
// - length and discriminant errors
// - codec/decoder contract shared by every packet format
//
// Every packet is a fixed number of bytes with no length prefix or delimiter.
// Multi-byte integers are big-endian. Sum-typed formats carry a one-byte
// discriminant first, followed by the same fixed run of u32 fields for every
// variant; fields a variant does not use are written as zero.
package protocol
