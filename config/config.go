// Package config loads the settings for embedding a page into a firmware tree.
//
// Configuration comes from a single YAML file named with --config. Without one,
// the defaults describe the ElegantOTA layout used by PlatformIO projects:
//
//	array:
//	  name: ELEGANT_HTML
//	  element_type: uint8_t
//	  qualifier: PROGMEM
//	paths:
//	  page: elegant_ota.html
//	  array: compressed_array.txt
//	  source: .pio/libdeps/esp32-s3-devkitc-1/ElegantOTA/src/elop.cpp
//	  header: .pio/libdeps/esp32-s3-devkitc-1/ElegantOTA/src/elop.h
//	  report: ""
//	previous_size: 10667
//	compression_level: 9
//	sentinels: false
//
// Relative paths in a config file are resolved against the directory containing
// that file. Paths given on the command line are used as-is.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dargueta/progmem"
	"github.com/dargueta/progmem/utilities/compression"
	"gopkg.in/yaml.v3"
)

const libraryDirectory = ".pio/libdeps/esp32-s3-devkitc-1/ElegantOTA/src"

// Config is the full tool configuration.
type Config struct {
	// Array describes the C array the page is stored in.
	Array progmem.Declaration `yaml:"array"`

	// Paths configures the files read and written.
	Paths PathsConfig `yaml:"paths"`

	// PreviousSize is the size the header is expected to declare before an
	// update. Negative means unknown, in which case any size is replaced.
	PreviousSize int `yaml:"previous_size"`

	// CompressionLevel is the gzip level, 1 to 9.
	CompressionLevel int `yaml:"compression_level"`

	// Sentinels makes the splicer write sentinel comments around the array.
	Sentinels bool `yaml:"sentinels"`
}

// PathsConfig configures file locations.
type PathsConfig struct {
	// Page is the uncompressed HTML page.
	Page string `yaml:"page"`

	// Array is the intermediate file holding the rendered array literal.
	Array string `yaml:"array"`

	// Source is the generated C++ file containing the array definition.
	Source string `yaml:"source"`

	// Header is the companion header with the extern size declaration.
	Header string `yaml:"header"`

	// Report is an optional CSV file compression statistics are appended to.
	Report string `yaml:"report"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Array: progmem.DefaultDeclaration(),
		Paths: PathsConfig{
			Page:   "elegant_ota.html",
			Array:  "compressed_array.txt",
			Source: filepath.Join(libraryDirectory, "elop.cpp"),
			Header: filepath.Join(libraryDirectory, "elop.h"),
		},
		PreviousSize:     10667,
		CompressionLevel: compression.DefaultLevel,
	}
}

// Load reads the configuration file at `path`. An empty path returns the
// defaults. Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, progmem.ErrNotFound.WithMessage(path).Wrap(err)
		}
		return nil, fmt.Errorf("opening config %s: %w", path, err)
	}
	defer file.Close()

	config, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	config.Paths.resolve(filepath.Dir(path))
	return config, nil
}

// Parse decodes a YAML configuration over the defaults and validates it.
// Unknown keys are rejected so typos don't go unnoticed.
func Parse(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	config := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(config); err != nil {
			return nil, progmem.ErrInvalidConfig.Wrap(err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for values no operation can work with.
func (c *Config) Validate() error {
	if err := c.Array.Validate(); err != nil {
		return err
	}
	if c.CompressionLevel < 1 || c.CompressionLevel > 9 {
		return progmem.ErrInvalidConfig.WithMessage(
			fmt.Sprintf("compression_level must be between 1 and 9, got %d", c.CompressionLevel))
	}
	return nil
}

func (p *PathsConfig) resolve(base string) {
	for _, path := range []*string{&p.Page, &p.Array, &p.Source, &p.Header, &p.Report} {
		if *path != "" && !filepath.IsAbs(*path) {
			*path = filepath.Join(base, *path)
		}
	}
}
