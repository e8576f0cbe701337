// Package splice replaces a generated array definition inside a larger source
// file and keeps the companion size declaration in sync.
//
// Both operations work on whole texts and return a new text; the input is never
// modified. On error nothing is returned, so a caller that only writes on success
// never leaves a file half-updated.
package splice

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dargueta/progmem"
)

// Options control how ReplaceArray writes the new definition.
type Options struct {
	// Sentinels wraps the new definition in begin/end sentinel comments, making
	// later splices independent of whatever else is in the file. Regions already
	// delimited by sentinels keep them regardless of this setting.
	Sentinels bool
}

// ReplaceArray replaces the array definition for `decl` in `text` with
// `replacement`, normally the output of literal.Render. Everything before and
// after the definition is left untouched.
//
// See [progmem.Locate] for how the definition is found.
func ReplaceArray(
	text, replacement string, decl progmem.Declaration, options Options,
) (string, error) {
	region, err := progmem.Locate(text, decl)
	if err != nil {
		return "", err
	}

	if !region.Sentinels && !options.Sentinels {
		return text[:region.Start] + replacement + text[region.End:], nil
	}

	builder := strings.Builder{}
	builder.Grow(len(text) + len(replacement))
	builder.WriteString(text[:region.Start])
	builder.WriteString(decl.BeginSentinel())
	builder.WriteByte('\n')
	builder.WriteString(replacement)
	if !strings.HasSuffix(replacement, "\n") {
		builder.WriteByte('\n')
	}
	builder.WriteString(decl.EndSentinel())
	builder.WriteString(text[region.End:])
	return builder.String(), nil
}

// UpdateSizeDeclaration rewrites the size in every `extern` declaration of the
// array in `text` to `newSize`. Only the number changes; spacing and anything
// else on the line are kept.
//
// If `previousSize` is non-negative, the exact declaration with that size is
// replaced. If that isn't present, or `previousSize` is negative (unknown), any
// declaration of the array is rewritten regardless of its current size. If no
// declaration exists at all, [progmem.ErrSizeDeclarationNotFound] is returned.
func UpdateSizeDeclaration(
	text string, decl progmem.Declaration, previousSize, newSize int,
) (string, error) {
	if newSize < 0 {
		return "", progmem.ErrInvalidArray.WithMessage(
			fmt.Sprintf("negative array size %d", newSize))
	}

	newLine := decl.SizeDeclaration(newSize)
	if previousSize >= 0 {
		oldLine := decl.SizeDeclaration(previousSize)
		if strings.Contains(text, oldLine) {
			return strings.ReplaceAll(text, oldLine, newLine), nil
		}
	}

	pattern := decl.SizeDeclarationPattern()
	if !pattern.MatchString(text) {
		return "", progmem.ErrSizeDeclarationNotFound.WithMessage(decl.SizeDeclaration(0))
	}
	return pattern.ReplaceAllString(text, "${1}"+strconv.Itoa(newSize)+"${3}"), nil
}

// CurrentSize returns the size in the first `extern` declaration of the array in
// `text`.
func CurrentSize(text string, decl progmem.Declaration) (int, error) {
	match := decl.SizeDeclarationPattern().FindStringSubmatch(text)
	if match == nil {
		return 0, progmem.ErrSizeDeclarationNotFound.WithMessage(decl.Name)
	}

	size, err := strconv.Atoi(match[2])
	if err != nil {
		return 0, progmem.ErrInvalidArray.Wrap(err)
	}
	return size, nil
}
