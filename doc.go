// Package safebuf reads values out of a byte cursor without panicking.
//
// Every function takes a Buf, the raw cursor capability, and checks the
// remaining length before it touches the cursor. A failed read returns an error
// and leaves the cursor exactly where it was, so callers can give up, wait for
// more input, or retry from a fresh cursor.
//
// Types that know their own encoding implement Decodable and are read with
// Extract, which lets structured decoders nest on top of the primitive reads.
// Call CheckExhausted once an object is complete to reject trailing bytes.
package safebuf
