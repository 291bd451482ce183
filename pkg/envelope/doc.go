// Package envelope encodes and decodes the wire unit exchanged with the
// server: one JSON object per text frame.
//
//	{"type":"connection:ready","payload":{"recoveryCode":"abc123"},"timestampSent":1700000000000}
//
// The receive timestamp is stamped locally by Decode and is never written
// by Encode.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package envelope
