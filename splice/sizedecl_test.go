package splice_test

import (
	"testing"

	"github.com/dargueta/progmem"
	"github.com/dargueta/progmem/splice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const headerText = `#pragma once
#include <Arduino.h>

extern const uint8_t ELEGANT_HTML[10667];
extern const uint8_t OTHER_HTML[10667];
`

func TestUpdateSizeDeclaration__KnownPrevious(t *testing.T) {
	decl := progmem.DefaultDeclaration()
	result, err := splice.UpdateSizeDeclaration(headerText, decl, 10667, 4321)
	require.NoError(t, err)

	expected := `#pragma once
#include <Arduino.h>

extern const uint8_t ELEGANT_HTML[4321];
extern const uint8_t OTHER_HTML[10667];
`
	assert.Equal(t, expected, result)
}

func TestUpdateSizeDeclaration__WrongPreviousFallsBack(t *testing.T) {
	decl := progmem.DefaultDeclaration()
	result, err := splice.UpdateSizeDeclaration(headerText, decl, 99, 12)
	require.NoError(t, err)
	assert.Contains(t, result, "extern const uint8_t ELEGANT_HTML[12];")
	assert.Contains(t, result, "extern const uint8_t OTHER_HTML[10667];")
}

func TestUpdateSizeDeclaration__UnknownPrevious(t *testing.T) {
	decl := progmem.DefaultDeclaration()
	result, err := splice.UpdateSizeDeclaration(headerText, decl, -1, 7)
	require.NoError(t, err)

	size, err := splice.CurrentSize(result, decl)
	require.NoError(t, err)
	assert.Equal(t, 7, size)
	assert.Equal(t, len(headerText)-4, len(result), "only the number should change")
}

func TestUpdateSizeDeclaration__NotFound(t *testing.T) {
	decl := progmem.Declaration{Name: "MISSING", ElementType: "uint8_t"}
	result, err := splice.UpdateSizeDeclaration(headerText, decl, -1, 7)
	assert.ErrorIs(t, err, progmem.ErrSizeDeclarationNotFound)
	assert.Empty(t, result)
}

func TestUpdateSizeDeclaration__NameIsNotAPrefix(t *testing.T) {
	decl := progmem.Declaration{Name: "HTML", ElementType: "uint8_t"}
	_, err := splice.UpdateSizeDeclaration(headerText, decl, -1, 7)
	assert.ErrorIs(t, err, progmem.ErrSizeDeclarationNotFound)
}

func TestCurrentSize(t *testing.T) {
	size, err := splice.CurrentSize(headerText, progmem.DefaultDeclaration())
	require.NoError(t, err)
	assert.Equal(t, 10667, size)

	_, err = splice.CurrentSize("", progmem.DefaultDeclaration())
	assert.ErrorIs(t, err, progmem.ErrSizeDeclarationNotFound)
}

func TestUpdateSizeDeclaration__KeepsSpacing(t *testing.T) {
	decl := progmem.DefaultDeclaration()
	text := "extern  const\tuint8_t ELEGANT_HTML[10667];   // size\n" +
		"extern const uint8_t\n    ELEGANT_HTML[10667];\n"

	result, err := splice.UpdateSizeDeclaration(text, decl, -1, 42)
	require.NoError(t, err)
	assert.Equal(
		t,
		"extern  const\tuint8_t ELEGANT_HTML[42];   // size\n"+
			"extern const uint8_t\n    ELEGANT_HTML[42];\n",
		result,
	)

	size, err := splice.CurrentSize(result, decl)
	require.NoError(t, err)
	assert.Equal(t, 42, size)
}
