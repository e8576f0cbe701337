package progmem

import (
	"strings"
)

// Region locates an array definition inside a generated source file. All offsets
// are byte offsets into the text passed to Locate.
type Region struct {
	// Start and End bound the text a splice replaces, as a half-open range. With
	// sentinels this includes the sentinel lines themselves.
	Start int
	End   int
	// ArrayStart is the offset of the start marker. ArrayEnd is the offset of the
	// terminating "};", so the definition proper is text[ArrayStart:ArrayEnd+2].
	ArrayStart int
	ArrayEnd   int
	// Sentinels is true if the region was delimited by sentinel comments.
	Sentinels bool
}

// Locate finds the array definition for `decl` in `text`.
//
// If the text contains a begin sentinel line followed by an end sentinel line,
// the definition must lie between them, and anything outside the sentinels is
// ignored.
//
// Otherwise the definition starts at the first occurrence of the start marker and
// ends at the *last* "};" in the whole text. This is only correct when nothing
// after the array contains "};", not even a comment. Files spliced with
// sentinels enabled don't have this problem.
func Locate(text string, decl Declaration) (Region, error) {
	begin := indexLine(text, decl.BeginSentinel(), 0)
	if begin >= 0 {
		end := indexLine(text, decl.EndSentinel(), begin)
		if end >= 0 {
			return locateBetweenSentinels(text, decl, begin, end)
		}
		return Region{}, ErrArrayEndNotFound.WithMessage(
			"missing " + decl.EndSentinel())
	}

	start := strings.Index(text, decl.StartMarker())
	if start == -1 {
		return Region{}, ErrArrayNotFound.WithMessage(decl.Name)
	}

	terminator := strings.LastIndex(text, ArrayTerminator)
	if terminator < start+len(decl.StartMarker()) {
		return Region{}, ErrArrayEndNotFound.WithMessage(decl.Name)
	}

	return Region{
		Start:      start,
		End:        terminator + len(ArrayTerminator),
		ArrayStart: start,
		ArrayEnd:   terminator,
	}, nil
}

func locateBetweenSentinels(text string, decl Declaration, begin, end int) (Region, error) {
	inner := text[begin:end]

	start := strings.Index(inner, decl.StartMarker())
	if start == -1 {
		return Region{}, ErrArrayNotFound.WithMessage(decl.Name + " between sentinels")
	}

	terminator := strings.LastIndex(inner, ArrayTerminator)
	if terminator < start+len(decl.StartMarker()) {
		return Region{}, ErrArrayEndNotFound.WithMessage(decl.Name + " between sentinels")
	}

	return Region{
		Start:      begin,
		End:        end + len(decl.EndSentinel()),
		ArrayStart: begin + start,
		ArrayEnd:   begin + terminator,
		Sentinels:  true,
	}, nil
}

// indexLine returns the offset of the first occurrence of `line` at or after
// `from` that fills a whole line, ignoring leading and trailing whitespace. It returns -1 if
// there is none.
func indexLine(text, line string, from int) int {
	for from <= len(text) {
		i := strings.Index(text[from:], line)
		if i == -1 {
			return -1
		}
		i += from

		lineStart := strings.LastIndexByte(text[:i], '\n') + 1
		atLineStart := strings.TrimSpace(text[lineStart:i]) == ""
		rest := text[i+len(line):]
		if eol := strings.IndexByte(rest, '\n'); eol >= 0 {
			rest = rest[:eol]
		}
		if atLineStart && strings.TrimSpace(rest) == "" {
			return i
		}
		from = i + 1
	}
	return -1
}
