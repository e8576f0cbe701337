// Package literal converts between byte buffers and C array literals.
//
// The text format is fixed, downstream firmware builds diff against it:
//
//	const uint8_t NAME[<count>] PROGMEM = {
//	  <16 decimal values separated by ", ">,
//	  ...
//	  <up to 16 values, no trailing comma>
//	};
//	<empty line>
package literal

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dargueta/progmem"
)

// ValuesPerLine is the maximum number of array elements on a single line.
const ValuesPerLine = 16

const indent = "  "

// Render writes `data` to `output` as a literal array definition for `decl`.
func Render(output io.Writer, decl progmem.Declaration, data []byte) error {
	writer := bufio.NewWriter(output)

	writer.WriteString(decl.Header(len(data)))
	writer.WriteByte('\n')

	for i := 0; i < len(data); i += ValuesPerLine {
		end := i + ValuesPerLine
		if end > len(data) {
			end = len(data)
		}

		writer.WriteString(indent)
		for j, b := range data[i:end] {
			if j > 0 {
				writer.WriteString(", ")
			}
			writer.WriteString(strconv.Itoa(int(b)))
		}
		if end < len(data) {
			writer.WriteByte(',')
		}
		writer.WriteByte('\n')
	}

	writer.WriteString(progmem.ArrayTerminator)
	writer.WriteByte('\n')
	return writer.Flush()
}

// RenderToString is a convenience function wrapping [Render].
func RenderToString(decl progmem.Declaration, data []byte) string {
	builder := strings.Builder{}
	// Writes to a strings.Builder can't fail.
	_ = Render(&builder, decl, data)
	return builder.String()
}

// Parse reconstructs the bytes from the body of an array literal, i.e. the text
// between the braces. Tokens are separated by commas. Tokens that aren't decimal
// integers after trimming whitespace are ignored; an integer that doesn't fit in
// a byte is an error.
func Parse(body string) ([]byte, error) {
	tokens := strings.Split(body, ",")
	data := make([]byte, 0, len(tokens))

	for i, token := range tokens {
		token = strings.TrimSpace(token)
		if !isDecimal(token) {
			continue
		}

		value, err := strconv.ParseUint(token, 10, 8)
		if err != nil {
			return nil, progmem.ErrInvalidArray.WithMessage(
				fmt.Sprintf("element %d (token %d) is not a byte: %q", len(data), i, token))
		}
		data = append(data, byte(value))
	}
	return data, nil
}

func isDecimal(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Extract finds the array definition for `decl` in `text` and returns its
// contents. The number of elements found must match the length declared in the
// header.
func Extract(text string, decl progmem.Declaration) ([]byte, error) {
	region, err := progmem.Locate(text, decl)
	if err != nil {
		return nil, err
	}

	definition := text[region.ArrayStart:region.ArrayEnd]
	openBrace := strings.IndexByte(definition, '{')
	if openBrace == -1 {
		return nil, progmem.ErrInvalidArray.WithMessage("no opening brace after array header")
	}

	declaredSize, err := decl.DeclaredSize(definition)
	if err != nil {
		return nil, err
	}

	data, err := Parse(definition[openBrace+1:])
	if err != nil {
		return nil, err
	}

	if len(data) != declaredSize {
		return nil, progmem.ErrLengthMismatch.WithMessage(
			fmt.Sprintf("header declares %d bytes, found %d", declaredSize, len(data)))
	}
	return data, nil
}
