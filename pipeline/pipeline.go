// Package pipeline runs the file-level steps of embedding a page: compressing it
// into an array file, splicing that array into the generated source, updating
// the header's size declaration, and extracting the page back out again.
//
// Every file is replaced atomically. A step that fails leaves all of its target
// files untouched.
package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/dargueta/progmem"
	"github.com/dargueta/progmem/config"
	"github.com/dargueta/progmem/splice"
	"github.com/dargueta/progmem/utilities/atomicfile"
	"github.com/dargueta/progmem/utilities/compression"
	"github.com/dargueta/progmem/utilities/literal"
	"github.com/dargueta/progmem/utilities/report"
)

// CompressResult describes a compressed page.
type CompressResult struct {
	OriginalSize   int
	CompressedSize int
	// Array is the rendered array definition written to the array file.
	Array string
}

// Ratio returns the compressed size as a percentage of the original size.
func (r CompressResult) Ratio() float64 {
	if r.OriginalSize == 0 {
		return 0
	}
	return float64(r.CompressedSize) / float64(r.OriginalSize) * 100
}

// VerifyResult describes the outcome of comparing an embedded page against the
// page on disk.
type VerifyResult struct {
	EmbeddedSize   int
	PageSize       int
	EmbeddedDigest string
	PageDigest     string
}

// Matches is true if the embedded page is identical to the page on disk.
func (r VerifyResult) Matches() bool {
	return r.EmbeddedDigest == r.PageDigest && r.EmbeddedSize == r.PageSize
}

// Compress reads the page, gzips it, and writes the rendered array to the array
// file. If a report path is configured, a row is appended to it.
func Compress(cfg *config.Config) (CompressResult, error) {
	result, page, err := compressPage(cfg)
	if err != nil {
		return result, err
	}

	if err := atomicfile.WriteFile(cfg.Paths.Array, []byte(result.Array), 0o644); err != nil {
		return result, err
	}
	return result, appendReport(cfg, page, result)
}

// Splice replaces the array in the source file with the contents of the array
// file.
func Splice(cfg *config.Config) error {
	replacement, err := readFile(cfg.Paths.Array)
	if err != nil {
		return err
	}
	source, err := readFile(cfg.Paths.Source)
	if err != nil {
		return err
	}

	updated, err := spliceSource(cfg, source, replacement)
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(cfg.Paths.Source, []byte(updated), 0o644)
}

// UpdateHeader sets the size in the header's extern declaration to `size`.
func UpdateHeader(cfg *config.Config, size int) error {
	header, err := readFile(cfg.Paths.Header)
	if err != nil {
		return err
	}

	updated, err := updateHeader(cfg, header, size)
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(cfg.Paths.Header, []byte(updated), 0o644)
}

// Update compresses the page, then updates both the header and the source.
//
// The new header and source texts are both computed before either file is
// written, so a source file without a recognizable array can't leave the header
// declaring a size that doesn't match.
func Update(cfg *config.Config) (CompressResult, error) {
	result, page, err := compressPage(cfg)
	if err != nil {
		return result, err
	}

	header, err := readFile(cfg.Paths.Header)
	if err != nil {
		return result, err
	}
	source, err := readFile(cfg.Paths.Source)
	if err != nil {
		return result, err
	}

	newHeader, err := updateHeader(cfg, header, result.CompressedSize)
	if err != nil {
		return result, err
	}
	newSource, err := spliceSource(cfg, source, result.Array)
	if err != nil {
		return result, err
	}

	if err := atomicfile.WriteFile(cfg.Paths.Array, []byte(result.Array), 0o644); err != nil {
		return result, err
	}
	if err := atomicfile.WriteFile(cfg.Paths.Header, []byte(newHeader), 0o644); err != nil {
		return result, err
	}
	if err := atomicfile.WriteFile(cfg.Paths.Source, []byte(newSource), 0o644); err != nil {
		return result, err
	}
	return result, appendReport(cfg, page, result)
}

// Decode returns the page embedded in the source file.
func Decode(cfg *config.Config) ([]byte, error) {
	source, err := readFile(cfg.Paths.Source)
	if err != nil {
		return nil, err
	}

	compressed, err := literal.Extract(source, cfg.Array)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Paths.Source, err)
	}

	page, err := compression.DecompressPageToBytes(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Paths.Source, err)
	}
	return page, nil
}

// Extract decodes the page embedded in the source file and writes it to
// `outputPath`. It returns the size of the page.
func Extract(cfg *config.Config, outputPath string) (int, error) {
	page, err := Decode(cfg)
	if err != nil {
		return 0, err
	}
	return len(page), atomicfile.WriteFile(outputPath, page, 0o644)
}

// Verify decodes the page embedded in the source file and compares it with the
// page on disk. A mismatch returns [progmem.ErrVerificationFailed] along with the
// result describing both pages.
func Verify(cfg *config.Config) (VerifyResult, error) {
	embedded, err := Decode(cfg)
	if err != nil {
		return VerifyResult{}, err
	}
	page, err := readBytes(cfg.Paths.Page)
	if err != nil {
		return VerifyResult{}, err
	}

	result := VerifyResult{
		EmbeddedSize:   len(embedded),
		PageSize:       len(page),
		EmbeddedDigest: report.Digest(embedded),
		PageDigest:     report.Digest(page),
	}
	if !result.Matches() {
		return result, progmem.ErrVerificationFailed.WithMessage(
			fmt.Sprintf(
				"%s has %d bytes (%.12s), %s has %d bytes (%.12s)",
				cfg.Paths.Source, result.EmbeddedSize, result.EmbeddedDigest,
				cfg.Paths.Page, result.PageSize, result.PageDigest))
	}
	return result, nil
}

func compressPage(cfg *config.Config) (CompressResult, []byte, error) {
	page, err := readBytes(cfg.Paths.Page)
	if err != nil {
		return CompressResult{}, nil, err
	}

	compressed, err := compression.CompressPageToBytes(page, cfg.CompressionLevel)
	if err != nil {
		return CompressResult{}, nil, err
	}

	return CompressResult{
		OriginalSize:   len(page),
		CompressedSize: len(compressed),
		Array:          literal.RenderToString(cfg.Array, compressed),
	}, page, nil
}

func spliceSource(cfg *config.Config, source, replacement string) (string, error) {
	updated, err := splice.ReplaceArray(
		source, replacement, cfg.Array, splice.Options{Sentinels: cfg.Sentinels})
	if err != nil {
		return "", fmt.Errorf("%s: %w", cfg.Paths.Source, err)
	}
	return updated, nil
}

func updateHeader(cfg *config.Config, header string, size int) (string, error) {
	updated, err := splice.UpdateSizeDeclaration(header, cfg.Array, cfg.PreviousSize, size)
	if err != nil {
		return "", fmt.Errorf("%s: %w", cfg.Paths.Header, err)
	}
	return updated, nil
}

func appendReport(cfg *config.Config, page []byte, result CompressResult) error {
	if cfg.Paths.Report == "" {
		return nil
	}
	entry := report.NewEntry(cfg.Paths.Page, cfg.Array.Name, page, result.CompressedSize)
	return report.Append(cfg.Paths.Report, entry)
}

func readFile(path string) (string, error) {
	data, err := readBytes(path)
	return string(data), err
}

func readBytes(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, progmem.ErrNotFound.WithMessage(path).Wrap(err)
	} else if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
