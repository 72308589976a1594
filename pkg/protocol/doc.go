// Package protocol implements the binary frames of the live preview
// channel.
//
// A client sends HTML documents as text messages; the server answers every
// document with one frame describing the hydration result. A connection
// starts with a hello frame carrying its connection ID.
//
// # Wire Format
//
// Every frame is a 6-byte header followed by a payload:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Kind        │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (4 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// The payload is, in order:
//
//	[Seq: uvarint][Conn: string][HTML: string]
//	[Diagnostics: uvarint count, then strings]
//	[Stats: 7 uvarints, Create Move Remove SetAttr RemoveAttr SetStyle SetText]
//
// Strings are prefixed with their uvarint length. When FlagCompressed is set
// the payload is brotli-compressed; the header length is the compressed
// length.
//
// Malformed or truncated input fails with E060, oversized frames with E061.
package protocol
