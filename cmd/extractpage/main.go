package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/dargueta/progmem"
	"github.com/dargueta/progmem/utilities/compression"
	"github.com/dargueta/progmem/utilities/literal"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(
			os.Stderr,
			"Decode the ELEGANT_HTML array in a C++ source file.\nUsage: %s source-file output-file\n",
			os.Args[0])
		os.Exit(1)
	}

	sourceFilePath := os.Args[1]
	outputFilePath := os.Args[2]

	source, errSrc := os.ReadFile(sourceFilePath)
	if errSrc != nil {
		fmt.Fprintf(
			os.Stderr, "Failed to read file: `%v`: %s\n", sourceFilePath, errSrc)
		os.Exit(1)
	}

	compressed, err := literal.Extract(string(source), progmem.DefaultDeclaration())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not find the array: %s\n", err)
		os.Exit(2)
	}
	fmt.Printf("Extracted %d bytes\n", len(compressed))

	page, err := compression.DecompressPageToBytes(bytes.NewReader(compressed))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Decompression failed: %s\n", err)
		os.Exit(2)
	}

	if errOut := os.WriteFile(outputFilePath, page, 0o644); errOut != nil {
		fmt.Fprintf(
			os.Stderr, "Failed to write file: `%v`: %s\n", outputFilePath, errOut)
		os.Exit(1)
	}

	fmt.Printf("Decompressed page to %d bytes.\n", len(page))
}
