// Package config holds the explicit settings of the block pipeline. Values
// that a host would otherwise keep in request-global state (template
// directories, debug flag) are passed in here instead.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-blockgen/pkg/assets"
	"github.com/goliatone/go-blockgen/pkg/block"
	"github.com/goliatone/go-blockgen/pkg/hooks"
)

// DefaultExtension is the template extension discovered and rendered.
const DefaultExtension = ".twig"

// Template engines selectable through Config.Engine.
const (
	EnginePongo2     = "pongo2"
	EngineGoTemplate = "go-template"
)

// Config describes where templates live and how blocks are registered.
type Config struct {
	// Root is the theme directory every other path is relative to.
	Root string `yaml:"root" json:"root"`
	// Directories lists template directories in lookup order.
	Directories []string `yaml:"directories" json:"directories"`
	// Extension is the template file extension, including the dot.
	Extension string `yaml:"extension" json:"extension"`
	// Namespace prefixes block names on the host ("acf/hero").
	Namespace string `yaml:"namespace" json:"namespace"`
	// DistDir is checked for built variants of enqueued assets.
	DistDir string `yaml:"dist_dir" json:"dist_dir"`
	// Debug enables diagnostics for missing headers and render dumps.
	Debug bool `yaml:"debug" json:"debug"`
	// Engine picks the template engine, EnginePongo2 or EngineGoTemplate.
	Engine string `yaml:"engine" json:"engine"`
}

// Default returns the configuration used when nothing is supplied.
func Default() Config {
	return Config{
		Root:        ".",
		Directories: []string{hooks.DefaultDirectory},
		Extension:   DefaultExtension,
		Namespace:   block.DefaultNamespace,
		DistDir:     assets.DefaultDistDir,
		Engine:      EnginePongo2,
	}
}

// WithDefaults fills empty fields from Default and normalises the extension.
func (c Config) WithDefaults() Config {
	def := Default()
	if strings.TrimSpace(c.Root) == "" {
		c.Root = def.Root
	}
	if len(c.Directories) == 0 {
		c.Directories = def.Directories
	}
	c.Extension = normalizeExtension(c.Extension)
	if c.Extension == "" {
		c.Extension = def.Extension
	}
	if strings.TrimSpace(c.Namespace) == "" {
		c.Namespace = def.Namespace
	}
	if strings.TrimSpace(c.DistDir) == "" {
		c.DistDir = def.DistDir
	}
	c.Engine = strings.ToLower(strings.TrimSpace(c.Engine))
	if c.Engine == "" {
		c.Engine = def.Engine
	}
	return c
}

// Load reads a YAML configuration file and applies defaults.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Config{}, errors.New("config: path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration data and applies defaults. Empty input
// yields the defaults.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse: %w", err)
		}
	}
	return cfg.WithDefaults(), nil
}

func normalizeExtension(ext string) string {
	trimmed := strings.TrimSpace(ext)
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, ".") {
		trimmed = "." + trimmed
	}
	return trimmed
}

// EnvPrefix prefixes the environment variables read by ApplyEnv.
const EnvPrefix = "BLOCKGEN_"

// ApplyEnv overlays BLOCKGEN_* variables onto c. lookup is usually
// os.LookupEnv. BLOCKGEN_DIRECTORIES is a comma separated list.
func (c Config) ApplyEnv(lookup func(string) (string, bool)) (Config, error) {
	if lookup == nil {
		return c, nil
	}
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("ROOT"); ok {
		c.Root = v
	}
	if v, ok := get("DIRECTORIES"); ok {
		var dirs []string
		for _, dir := range strings.Split(v, ",") {
			if dir = strings.TrimSpace(dir); dir != "" {
				dirs = append(dirs, dir)
			}
		}
		c.Directories = dirs
	}
	if v, ok := get("EXTENSION"); ok {
		c.Extension = normalizeExtension(v)
	}
	if v, ok := get("NAMESPACE"); ok {
		c.Namespace = v
	}
	if v, ok := get("DIST_DIR"); ok {
		c.DistDir = v
	}
	if v, ok := get("ENGINE"); ok {
		c.Engine = v
	}
	if v, ok := get("DEBUG"); ok {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return c, fmt.Errorf("config: %sDEBUG: %w", EnvPrefix, err)
		}
		c.Debug = debug
	}
	return c.WithDefaults(), nil
}
