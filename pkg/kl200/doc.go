// Package kl200 provides the serial protocol of the XKC-KL200 laser
// distance sensor.
package kl200

// Every message on the wire is a 9-byte frame in both directions:
//
//   [cmdHigh, cmdLow, 0x09, 0xFF, 0xFF, p0, p1, p2, checksum]
//
// The third byte is a format tag rather than a real length. The two
// address bytes are always 0xFF (broadcast), even after the module
// address has been changed. The checksum is the XOR of the first 8 bytes.
// There are no delimiters and no escaping, so a frame is either accepted
// as a whole or dropped; no resynchronization is attempted.
//
// Configuration commands are not acknowledged by the module. The only
// command with a reply is ReadDistance, whose reply echoes the command id
// and carries the distance (mm, big-endian) in p0/p1.
//
// Producer: host (commands), KL200 module (distance reports)
// Consumer: KL200 module (commands), host (distance reports)
