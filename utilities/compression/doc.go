// Package compression gzips web pages for embedding in firmware.
//
// The firmware serves the embedded bytes as-is with `Content-Encoding: gzip`, so
// the output must be a plain RFC 1952 stream any browser can inflate. We don't
// write a file name into the header and the modification time is always zero,
// which makes the output a pure function of the input and the compression level.
// Rebuilding an unchanged page therefore produces an identical array and no diff
// in the firmware sources.
//
// An empty page still compresses to a non-empty stream: the 10-byte header, an
// empty final deflate block, and the 8-byte CRC32/size trailer.
package compression
