package pipeline_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dargueta/progmem"
	"github.com/dargueta/progmem/config"
	"github.com/dargueta/progmem/pipeline"
	"github.com/dargueta/progmem/splice"
	ptesting "github.com/dargueta/progmem/testing"
	"github.com/dargueta/progmem/utilities/literal"
	"github.com/dargueta/progmem/utilities/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sourceTemplate = `#include <Arduino.h>
#include "elop.h"

const uint8_t ELEGANT_HTML[4] PROGMEM = {
  1, 2, 3, 4
};
`

const headerTemplate = `#ifndef ELOP_H
#define ELOP_H
#include <Arduino.h>

extern const uint8_t ELEGANT_HTML[10667];

#endif
`

// newProject creates a scratch firmware tree and returns a configuration
// pointing at it.
func newProject(t *testing.T, page []byte) *config.Config {
	directory := t.TempDir()
	cfg := config.Default()
	cfg.Paths = config.PathsConfig{
		Page:   filepath.Join(directory, "elegant_ota.html"),
		Array:  filepath.Join(directory, "compressed_array.txt"),
		Source: filepath.Join(directory, "elop.cpp"),
		Header: filepath.Join(directory, "elop.h"),
	}

	if page != nil {
		require.NoError(t, os.WriteFile(cfg.Paths.Page, page, 0o644))
	}
	require.NoError(t, os.WriteFile(cfg.Paths.Source, []byte(sourceTemplate), 0o644))
	require.NoError(t, os.WriteFile(cfg.Paths.Header, []byte(headerTemplate), 0o644))
	return cfg
}

func readString(t *testing.T, path string) string {
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCompress(t *testing.T) {
	page := ptesting.SamplePage(3000)
	cfg := newProject(t, page)

	result, err := pipeline.Compress(cfg)
	require.NoError(t, err)

	assert.Equal(t, len(page), result.OriginalSize)
	assert.Less(t, result.CompressedSize, result.OriginalSize)
	assert.Greater(t, result.Ratio(), 0.0)

	arrayText := readString(t, cfg.Paths.Array)
	assert.Equal(t, result.Array, arrayText)
	assert.True(t, strings.HasPrefix(arrayText, cfg.Array.Header(result.CompressedSize)))

	data, err := literal.Extract(arrayText, cfg.Array)
	require.NoError(t, err)
	assert.Len(t, data, result.CompressedSize)

	// Only the array file is written.
	assert.Equal(t, sourceTemplate, readString(t, cfg.Paths.Source))
	assert.Equal(t, headerTemplate, readString(t, cfg.Paths.Header))
}

func TestCompress__MissingPage(t *testing.T) {
	cfg := newProject(t, nil)

	_, err := pipeline.Compress(cfg)
	assert.ErrorIs(t, err, progmem.ErrNotFound)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoFileExists(t, cfg.Paths.Array)
}

func TestCompress__Report(t *testing.T) {
	page := ptesting.SamplePage(1000)
	cfg := newProject(t, page)
	cfg.Paths.Report = filepath.Join(filepath.Dir(cfg.Paths.Page), "sizes.csv")

	result, err := pipeline.Compress(cfg)
	require.NoError(t, err)

	entries, err := report.Read(cfg.Paths.Report)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, result.CompressedSize, entries[0].CompressedSize)
	assert.Equal(t, report.Digest(page), entries[0].Digest)
}

func TestSplice(t *testing.T) {
	cfg := newProject(t, ptesting.SamplePage(500))

	_, err := pipeline.Compress(cfg)
	require.NoError(t, err)
	require.NoError(t, pipeline.Splice(cfg))

	source := readString(t, cfg.Paths.Source)
	assert.True(t, strings.HasPrefix(source, "#include <Arduino.h>\n#include \"elop.h\"\n\n"))
	assert.Contains(t, source, readString(t, cfg.Paths.Array))
	assert.NotContains(t, source, "1, 2, 3, 4")
}

func TestSplice__NoArrayLeavesSourceUntouched(t *testing.T) {
	cfg := newProject(t, ptesting.SamplePage(500))
	original := "#include <Arduino.h>\n// nothing generated here\n"
	require.NoError(t, os.WriteFile(cfg.Paths.Source, []byte(original), 0o644))

	_, err := pipeline.Compress(cfg)
	require.NoError(t, err)

	err = pipeline.Splice(cfg)
	assert.ErrorIs(t, err, progmem.ErrArrayNotFound)
	assert.Equal(t, original, readString(t, cfg.Paths.Source))
}

func TestUpdateHeader(t *testing.T) {
	cfg := newProject(t, nil)

	require.NoError(t, pipeline.UpdateHeader(cfg, 321))
	assert.Equal(
		t,
		strings.Replace(headerTemplate, "[10667]", "[321]", 1),
		readString(t, cfg.Paths.Header),
	)
}

func TestUpdateHeader__NoDeclaration(t *testing.T) {
	cfg := newProject(t, nil)
	require.NoError(t, os.WriteFile(cfg.Paths.Header, []byte("#pragma once\n"), 0o644))

	err := pipeline.UpdateHeader(cfg, 321)
	assert.ErrorIs(t, err, progmem.ErrSizeDeclarationNotFound)
	assert.Equal(t, "#pragma once\n", readString(t, cfg.Paths.Header))
}

func TestUpdateAndVerify(t *testing.T) {
	page := ptesting.SamplePage(5000)
	cfg := newProject(t, page)

	result, err := pipeline.Update(cfg)
	require.NoError(t, err)

	size, err := splice.CurrentSize(readString(t, cfg.Paths.Header), cfg.Array)
	require.NoError(t, err)
	assert.Equal(t, result.CompressedSize, size, "header and source disagree on size")

	verified, err := pipeline.Verify(cfg)
	require.NoError(t, err)
	assert.True(t, verified.Matches())
	assert.Equal(t, len(page), verified.EmbeddedSize)

	decoded, err := pipeline.Decode(cfg)
	require.NoError(t, err)
	assert.Equal(t, page, decoded)
}

func TestUpdate__EmptyPage(t *testing.T) {
	cfg := newProject(t, []byte{})

	result, err := pipeline.Update(cfg)
	require.NoError(t, err)
	assert.Zero(t, result.OriginalSize)
	assert.Greater(t, result.CompressedSize, 0)

	decoded, err := pipeline.Decode(cfg)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestUpdate__AllOrNothing(t *testing.T) {
	cfg := newProject(t, ptesting.SamplePage(500))
	brokenSource := "#include <Arduino.h>\n"
	require.NoError(t, os.WriteFile(cfg.Paths.Source, []byte(brokenSource), 0o644))

	_, err := pipeline.Update(cfg)
	assert.ErrorIs(t, err, progmem.ErrArrayNotFound)

	assert.Equal(t, headerTemplate, readString(t, cfg.Paths.Header), "header changed")
	assert.Equal(t, brokenSource, readString(t, cfg.Paths.Source))
	assert.NoFileExists(t, cfg.Paths.Array)
}

func TestUpdate__Sentinels(t *testing.T) {
	cfg := newProject(t, ptesting.SamplePage(800))
	cfg.Sentinels = true

	_, err := pipeline.Update(cfg)
	require.NoError(t, err)

	// A stray terminator after the array no longer affects later splices.
	source := readString(t, cfg.Paths.Source) + "// }; trailing\n"
	require.NoError(t, os.WriteFile(cfg.Paths.Source, []byte(source), 0o644))

	require.NoError(t, os.WriteFile(cfg.Paths.Page, ptesting.SamplePage(900), 0o644))
	_, err = pipeline.Update(cfg)
	require.NoError(t, err)

	updated := readString(t, cfg.Paths.Source)
	assert.True(t, strings.HasSuffix(updated, "// progmem:end ELEGANT_HTML\n// }; trailing\n"))
	assert.Equal(t, 1, strings.Count(updated, "// progmem:begin ELEGANT_HTML"))

	_, err = pipeline.Verify(cfg)
	require.NoError(t, err)
}

func TestVerify__Mismatch(t *testing.T) {
	cfg := newProject(t, ptesting.SamplePage(800))

	_, err := pipeline.Update(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfg.Paths.Page, []byte("<html>changed</html>"), 0o644))

	result, err := pipeline.Verify(cfg)
	assert.ErrorIs(t, err, progmem.ErrVerificationFailed)
	assert.False(t, result.Matches())
}

func TestDecode__NotGzip(t *testing.T) {
	cfg := newProject(t, nil)

	// The template's array holds four bytes that aren't a gzip stream.
	_, err := pipeline.Decode(cfg)
	assert.ErrorIs(t, err, progmem.ErrDecompressionFailed)
}

func TestExtract(t *testing.T) {
	page := ptesting.SamplePage(700)
	cfg := newProject(t, page)

	_, err := pipeline.Update(cfg)
	require.NoError(t, err)

	output := filepath.Join(t.TempDir(), "extracted.html")
	n, err := pipeline.Extract(cfg, output)
	require.NoError(t, err)
	assert.Equal(t, len(page), n)
	assert.Equal(t, string(page), readString(t, output))
}
