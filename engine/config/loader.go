package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned by Load for file extensions with no registered decoder.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Decoder is implemented by the standard streaming decoders.
type Decoder interface {
	// Decode decodes from the io.Reader specified at creation.
	Decode(v any) error
}

// DecoderFunc creates a new Decoder for a given reader.
type DecoderFunc func(r io.Reader) Decoder

// TOMLDecoder decodes TOML and rejects keys that Config does not define.
func TOMLDecoder(r io.Reader) Decoder {
	d := toml.NewDecoder(r)
	d.DisallowUnknownFields()
	return d
}

// YAMLDecoder decodes YAML and rejects keys that Config does not define.
func YAMLDecoder(r io.Reader) Decoder {
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	return d
}

// DecoderForPath picks a decoder from the file extension.
//
// Parameters:
//   - path: the config file path
//
// Returns:
//   - DecoderFunc: the decoder for .toml, .yaml or .yml
//   - error: ErrUnsupportedFormat for any other extension
func DecoderForPath(path string) (DecoderFunc, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		return TOMLDecoder, nil
	case ".yaml", ".yml":
		return YAMLDecoder, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Read decodes a config from r on top of Default and validates it.
//
// Parameters:
//   - r: the encoded config
//   - f: the decoder to use
//
// Returns:
//   - Config: the decoded config
//   - error: a decode or validation error
func Read(r io.Reader, f DecoderFunc) (Config, error) {
	cfg := Default()
	if err := f(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the config file at path, choosing TOML or YAML by extension.
//
// Parameters:
//   - path: the config file path
//
// Returns:
//   - Config: the decoded config with defaults for any missing field
//   - error: an open, format, decode or validation error
func Load(path string) (Config, error) {
	f, err := DecoderForPath(path)
	if err != nil {
		return Config{}, err
	}
	fp, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer fp.Close()

	cfg, err := Read(bufio.NewReader(fp), f)
	if err != nil {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}
