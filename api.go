// Package progmem embeds compressed web pages into firmware sources as C byte
// array literals.
//
// The generated array looks like this:
//
//	const uint8_t ELEGANT_HTML[1234] PROGMEM = {
//	  31, 139, 8, 0, 0, 0, 0, 0, 2, 255, 236, 189, 107, 115, 219, 70,
//	  ...
//	  0, 0
//	};
//
// A companion header carries a matching size declaration:
//
//	extern const uint8_t ELEGANT_HTML[1234];
//
// Both must always agree on the length.
package progmem

import (
	"fmt"
	"regexp"
	"strconv"
)

// ArrayTerminator closes a literal array declaration.
const ArrayTerminator = "};"

// Declaration describes the C array a page is embedded in.
type Declaration struct {
	// Name is the C identifier of the array, e.g. ELEGANT_HTML.
	Name string `yaml:"name"`
	// ElementType is the C element type, e.g. uint8_t.
	ElementType string `yaml:"element_type"`
	// Qualifier is placed between the size and the initializer, e.g. PROGMEM. It
	// may be empty.
	Qualifier string `yaml:"qualifier"`
}

// DefaultDeclaration returns the declaration used by the ElegantOTA library.
func DefaultDeclaration() Declaration {
	return Declaration{
		Name:        "ELEGANT_HTML",
		ElementType: "uint8_t",
		Qualifier:   "PROGMEM",
	}
}

// Validate checks that the declaration can be rendered as C.
func (d Declaration) Validate() error {
	if !identifierPattern.MatchString(d.Name) {
		return ErrInvalidConfig.WithMessage(fmt.Sprintf("bad array name %q", d.Name))
	}
	if d.ElementType == "" {
		return ErrInvalidConfig.WithMessage("array element type is empty")
	}
	return nil
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// StartMarker returns the text that begins the array definition.
func (d Declaration) StartMarker() string {
	return fmt.Sprintf("const %s %s[", d.ElementType, d.Name)
}

// Header returns the opening line of the array definition for an array of
// `size` elements.
func (d Declaration) Header(size int) string {
	if d.Qualifier == "" {
		return fmt.Sprintf("const %s %s[%d] = {", d.ElementType, d.Name, size)
	}
	return fmt.Sprintf("const %s %s[%d] %s = {", d.ElementType, d.Name, size, d.Qualifier)
}

// SizeDeclaration returns the extern declaration found in the companion header.
func (d Declaration) SizeDeclaration(size int) string {
	return fmt.Sprintf("extern const %s %s[%d];", d.ElementType, d.Name, size)
}

// SizeDeclarationPattern matches SizeDeclaration for any size and any spacing.
// Group 1 is everything up to and including the opening bracket, group 2 the
// size, and group 3 the closing bracket and semicolon.
func (d Declaration) SizeDeclarationPattern() *regexp.Regexp {
	return regexp.MustCompile(
		`(extern\s+const\s+` + regexp.QuoteMeta(d.ElementType) + `\s+` +
			regexp.QuoteMeta(d.Name) + `\[)(\d+)(\];)`)
}

// BeginSentinel and EndSentinel delimit a region written by the splicer when
// sentinels are enabled.
func (d Declaration) BeginSentinel() string {
	return "// progmem:begin " + d.Name
}

func (d Declaration) EndSentinel() string {
	return "// progmem:end " + d.Name
}

// DeclaredSize returns the length written between the brackets of the array
// definition starting at the beginning of `text`.
func (d Declaration) DeclaredSize(text string) (int, error) {
	marker := d.StartMarker()
	if len(text) < len(marker) || text[:len(marker)] != marker {
		return 0, ErrArrayNotFound.WithMessage(d.Name)
	}

	rest := text[len(marker):]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 || end >= len(rest) || rest[end] != ']' {
		return 0, ErrInvalidArray.WithMessage("bad length in array header")
	}

	size, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0, ErrInvalidArray.Wrap(err)
	}
	return size, nil
}
