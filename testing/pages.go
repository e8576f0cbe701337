package testing

import (
	"bytes"
	"io"
	"testing"

	"github.com/dargueta/progmem/utilities/compression"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

// LoadPage takes a gzipped page and returns a stream to access the uncompressed
// data.
//
//   - Writes to the stream do not affect `compressedPage`.
//   - While the stream can be written to, its size is fixed to `expectedSize`.
//     Attempting to write past the end of this buffer will trigger an error.
func LoadPage(t *testing.T, compressedPage []byte, expectedSize int) io.ReadWriteSeeker {
	require.Greater(t, len(compressedPage), 0, "compressed page is empty")

	page, err := compression.DecompressPageToBytes(bytes.NewReader(compressedPage))
	require.NoError(t, err)
	require.Equal(t, expectedSize, len(page), "uncompressed page is wrong size")

	return bytesextra.NewReadWriteSeeker(page)
}

// SamplePage returns a small but realistic HTML page of roughly `approxSize` bytes.
func SamplePage(approxSize int) []byte {
	var buffer bytes.Buffer
	buffer.WriteString("<!DOCTYPE html>\n<html><head><title>OTA</title></head><body>\n")
	for i := 0; buffer.Len() < approxSize; i++ {
		buffer.WriteString("<div class=\"row\"><span>firmware</span><input id=\"f")
		buffer.WriteByte(byte('a' + i%26))
		buffer.WriteString("\" type=\"file\"></div>\n")
	}
	buffer.WriteString("</body></html>\n")
	return buffer.Bytes()
}
