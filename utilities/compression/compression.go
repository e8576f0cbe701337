package compression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dargueta/progmem"
	"github.com/klauspost/compress/gzip"
)

// DefaultLevel is the compression level used when none is given. Pages are small
// so the speed difference between the default and highest levels isn't noticeable.
const DefaultLevel = gzip.BestCompression

// CompressPage gzips a web page with the highest compression level available.
//
// The returned int64 gives the number of bytes read from the input. If an error
// occurred, the value is undefined and should not be used.
func CompressPage(input io.Reader, output io.Writer) (int64, error) {
	return CompressPageLevel(input, output, DefaultLevel)
}

// CompressPageLevel is like CompressPage but with an explicit gzip level from 1
// to 9.
func CompressPageLevel(input io.Reader, output io.Writer, level int) (int64, error) {
	if level < gzip.BestSpeed || level > gzip.BestCompression {
		return 0, progmem.ErrInvalidConfig.WithMessage(
			fmt.Sprintf("compression level must be between 1 and 9, got %d", level))
	}

	gzWriter, err := gzip.NewWriterLevel(output, level)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(gzWriter, input)
	if err != nil {
		gzWriter.Close()
		return n, fmt.Errorf("failed to compress page: %w", err)
	}

	// Close flushes the final block and the trailer, so its error matters.
	if err := gzWriter.Close(); err != nil {
		return n, fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return n, nil
}

// CompressPageToBytes is a convenience function wrapping [CompressPageLevel]. It
// returns the compressed data in a new byte slice.
func CompressPageToBytes(page []byte, level int) ([]byte, error) {
	buffer := bytes.Buffer{}
	_, err := CompressPageLevel(bytes.NewReader(page), &buffer, level)
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// DecompressPage takes a gzipped web page and decompresses it to the original
// raw bytes.
//
// The returned int64 gives the number of bytes written to the output (i.e. the
// decompressed size of the page). Any problem with the gzip stream itself is
// reported as [progmem.ErrDecompressionFailed].
func DecompressPage(input io.Reader, output io.Writer) (int64, error) {
	gzReader, err := gzip.NewReader(input)
	if err != nil {
		return 0, progmem.ErrDecompressionFailed.Wrap(err)
	}
	defer gzReader.Close()

	// Only one member is expected, anything after it is garbage.
	gzReader.Multistream(false)

	n, err := io.Copy(output, gzReader)
	if err != nil {
		return n, progmem.ErrDecompressionFailed.Wrap(err)
	}
	return n, nil
}

// DecompressPageToBytes is a convenience function wrapping [DecompressPage]. It
// returns the decompressed page in a new byte slice.
func DecompressPageToBytes(input io.Reader) ([]byte, error) {
	buffer := bytes.Buffer{}
	_, err := DecompressPage(input, &buffer)
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
