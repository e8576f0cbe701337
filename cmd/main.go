package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/dargueta/progmem/config"
	"github.com/dargueta/progmem/pipeline"
	"github.com/urfave/cli/v2"
)

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "progmem",
		Usage: "Embed a gzipped web page into firmware sources as a C byte array",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "load settings from YAML `FILE`",
				EnvVars: []string{"PROGMEM_CONFIG"},
			},
			&cli.StringFlag{Name: "page", Usage: "uncompressed HTML `FILE`"},
			&cli.StringFlag{Name: "array", Usage: "intermediate array literal `FILE`"},
			&cli.StringFlag{Name: "source", Usage: "generated C++ `FILE` holding the array"},
			&cli.StringFlag{Name: "header", Usage: "header `FILE` with the extern size declaration"},
			&cli.StringFlag{Name: "report", Usage: "append compression statistics to CSV `FILE`"},
		},
		Commands: []*cli.Command{
			{
				Name:   "compress",
				Usage:  "Compress the page and write the array literal file",
				Action: compressPage,
			},
			{
				Name:   "splice",
				Usage:  "Replace the array in the source file with the array literal file",
				Action: spliceArray,
			},
			{
				Name:      "update-header",
				Usage:     "Set the size in the header's extern declaration",
				ArgsUsage: "SIZE",
				Action:    updateHeader,
			},
			{
				Name:   "update",
				Usage:  "Compress the page, then update both the header and the source",
				Action: updateAll,
			},
			{
				Name:      "extract",
				Usage:     "Decode the page embedded in the source file",
				ArgsUsage: "OUTPUT_FILE",
				Action:    extractPage,
			},
			{
				Name:   "verify",
				Usage:  "Check that the embedded page matches the page file",
				Action: verifyPage,
			},
		},
	}
}

// loadConfig reads the configuration file, if any, and applies path overrides
// from the command line.
func loadConfig(context *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(context.String("config"))
	if err != nil {
		return nil, err
	}

	overrides := map[string]*string{
		"page":   &cfg.Paths.Page,
		"array":  &cfg.Paths.Array,
		"source": &cfg.Paths.Source,
		"header": &cfg.Paths.Header,
		"report": &cfg.Paths.Report,
	}
	for flag, target := range overrides {
		if context.IsSet(flag) {
			*target = context.String(flag)
		}
	}
	return cfg, nil
}

func printCompressResult(result pipeline.CompressResult) {
	fmt.Printf("Original page size: %d bytes\n", result.OriginalSize)
	fmt.Printf("Compressed size: %d bytes\n", result.CompressedSize)
	fmt.Printf("Compression ratio: %.1f%%\n", result.Ratio())
}

func compressPage(context *cli.Context) error {
	cfg, err := loadConfig(context)
	if err != nil {
		return err
	}

	result, err := pipeline.Compress(cfg)
	if err != nil {
		return err
	}
	printCompressResult(result)
	fmt.Printf("Array literal written to %s\n", cfg.Paths.Array)
	return nil
}

func spliceArray(context *cli.Context) error {
	cfg, err := loadConfig(context)
	if err != nil {
		return err
	}

	if err := pipeline.Splice(cfg); err != nil {
		return err
	}
	fmt.Printf("Updated %s with %s\n", cfg.Paths.Source, cfg.Paths.Array)
	return nil
}

func updateHeader(context *cli.Context) error {
	if context.NArg() != 1 {
		return cli.Exit("expected exactly one argument, the new array size", 2)
	}

	size, err := strconv.Atoi(context.Args().First())
	if err != nil || size < 0 {
		return cli.Exit(fmt.Sprintf("invalid array size %q", context.Args().First()), 2)
	}

	cfg, err := loadConfig(context)
	if err != nil {
		return err
	}

	if err := pipeline.UpdateHeader(cfg, size); err != nil {
		return err
	}
	fmt.Printf("Updated %s with array size %d\n", cfg.Paths.Header, size)
	return nil
}

func updateAll(context *cli.Context) error {
	cfg, err := loadConfig(context)
	if err != nil {
		return err
	}

	result, err := pipeline.Update(cfg)
	if err != nil {
		return err
	}
	printCompressResult(result)
	fmt.Printf("Updated %s and %s\n", cfg.Paths.Header, cfg.Paths.Source)
	return nil
}

func extractPage(context *cli.Context) error {
	if context.NArg() != 1 {
		return cli.Exit("expected exactly one argument, the output file", 2)
	}

	cfg, err := loadConfig(context)
	if err != nil {
		return err
	}

	n, err := pipeline.Extract(cfg, context.Args().First())
	if err != nil {
		return err
	}
	fmt.Printf("Extracted %d bytes to %s\n", n, context.Args().First())
	return nil
}

func verifyPage(context *cli.Context) error {
	cfg, err := loadConfig(context)
	if err != nil {
		return err
	}

	result, err := pipeline.Verify(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("%s matches %s (%d bytes, blake3 %s)\n",
		cfg.Paths.Source, cfg.Paths.Page, result.PageSize, result.PageDigest)
	return nil
}
