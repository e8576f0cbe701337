// Package report records compression statistics as CSV, one row per compressed
// page, so size changes of the embedded page can be tracked across builds.
package report

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/dargueta/progmem/utilities/atomicfile"
	"github.com/gocarina/gocsv"
	"github.com/zeebo/blake3"
)

// Entry is one row of the report.
type Entry struct {
	Page           string  `csv:"page"`
	Array          string  `csv:"array"`
	OriginalSize   int     `csv:"original_size"`
	CompressedSize int     `csv:"compressed_size"`
	Ratio          float64 `csv:"ratio_percent"`
	Digest         string  `csv:"blake3"`
}

// NewEntry fills in the sizes, ratio and digest for a compressed page.
func NewEntry(pagePath, arrayName string, page []byte, compressedSize int) Entry {
	ratio := 0.0
	if len(page) > 0 {
		ratio = float64(compressedSize) / float64(len(page)) * 100
	}
	return Entry{
		Page:           pagePath,
		Array:          arrayName,
		OriginalSize:   len(page),
		CompressedSize: compressedSize,
		Ratio:          ratio,
		Digest:         Digest(page),
	}
}

// Digest returns the hex-encoded BLAKE3 hash of `data`.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Read loads all entries from the report at `path`. A missing file is an empty
// report.
func Read(path string) ([]*Entry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var entries []*Entry
	if len(data) == 0 {
		return entries, nil
	}
	if err := gocsv.UnmarshalBytes(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing report %s: %w", path, err)
	}
	return entries, nil
}

// Append adds `entry` to the end of the report at `path`, creating it if needed.
// The whole file is rewritten atomically.
func Append(path string, entry Entry) error {
	entries, err := Read(path)
	if err != nil {
		return err
	}
	entries = append(entries, &entry)

	data, err := gocsv.MarshalBytes(&entries)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return atomicfile.WriteFile(path, data, 0o644)
}
