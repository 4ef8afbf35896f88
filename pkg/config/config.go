// Package config handles jniaccess.toml generation settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/chazu/jniaccess/pkg/codegen"
	"github.com/chazu/jniaccess/pkg/ir"
)

// FileName is the configuration file looked up next to the input.
const FileName = "jniaccess.toml"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents a jniaccess.toml file.
type Config struct {
	Generate Generate `toml:"generate"`
	Output   Output   `toml:"output"`

	// Path is the file the configuration was read from (set at load time).
	Path string `toml:"-"`
}

// Generate configures the generation pass.
type Generate struct {
	DefaultCacheMode string `toml:"default-cache-mode"`
	Namespace        string `toml:"namespace"`
	NativeHeaders    bool   `toml:"native-headers"`
	GoPackage        string `toml:"go-package"`
}

// Output configures where artifacts are written.
type Output struct {
	Dir            string `toml:"dir"`
	Header         string `toml:"header"`
	Implementation string `toml:"implementation"`
	NativeHeader   string `toml:"native-header"`
	GoExports      string `toml:"go-exports"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Generate: Generate{
			DefaultCacheMode: ir.CacheNone.String(),
			NativeHeaders:    true,
		},
		Output: Output{
			Dir:            ".",
			Header:         codegen.DefaultHeaderName,
			Implementation: "jni_access.c",
			NativeHeader:   codegen.DefaultNativeHeaderName,
			GoExports:      "jni_exports.go",
		},
	}
}

// Load parses the jniaccess.toml file in dir. Keys missing from the file
// keep their default values.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses the configuration file at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: %s: unknown keys %s", ErrInvalidConfig, path, strings.Join(keys, ", "))
	}

	c.Path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find a jniaccess.toml file, then
// loads and returns it. Returns the defaults if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// Validate checks values the TOML decoder cannot.
func (c *Config) Validate() error {
	if _, err := ir.ParseCacheMode(c.Generate.DefaultCacheMode); err != nil {
		return fmt.Errorf("%w: generate.default-cache-mode: %v", ErrInvalidConfig, err)
	}
	if ns := c.Generate.Namespace; ns != "" && !isCIdentifier(ns) {
		return fmt.Errorf("%w: generate.namespace %q is not a C identifier", ErrInvalidConfig, ns)
	}
	if pkg := c.Generate.GoPackage; pkg != "" && !isCIdentifier(pkg) {
		return fmt.Errorf("%w: generate.go-package %q is not a Go package name", ErrInvalidConfig, pkg)
	}
	for key, name := range map[string]string{
		"output.header":         c.Output.Header,
		"output.implementation": c.Output.Implementation,
		"output.native-header":  c.Output.NativeHeader,
		"output.go-exports":     c.Output.GoExports,
	} {
		if name == "" || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("%w: %s must be a plain file name, got %q", ErrInvalidConfig, key, name)
		}
	}
	return nil
}

// GenerateOptions converts the configuration into generation options.
// Validate must have succeeded.
func (c *Config) GenerateOptions() codegen.Options {
	mode, _ := ir.ParseCacheMode(c.Generate.DefaultCacheMode)
	return codegen.Options{
		Namespace:        c.Generate.Namespace,
		HeaderName:       c.Output.Header,
		NativeHeaderName: c.Output.NativeHeader,
		NativeHeaders:    c.Generate.NativeHeaders,
		GoPackage:        c.Generate.GoPackage,
		DefaultCacheMode: mode,
	}
}

// OutputPath returns the path of an artifact file inside the output
// directory. A relative directory is taken relative to the configuration
// file.
func (c *Config) OutputPath(name string) string {
	dir := c.Output.Dir
	if !filepath.IsAbs(dir) && c.Path != "" {
		dir = filepath.Join(filepath.Dir(c.Path), dir)
	}
	return filepath.Join(dir, name)
}

func isCIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}
