// Package protocol ties the wire layers together.
//
// Ownership boundary:
// - frame: fixed header, auth block, payload bounds
// - tlv: payload fields and typed values
// - schema: required fields per message type
// - compress: zstd payloads behind FlagCompressed
//
// This package turns frames into Messages and Messages into typed bodies.
package protocol
