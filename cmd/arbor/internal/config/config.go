// Package config loads the arbor CLI configuration from arbor.yaml, ARBOR_*
// environment variables, and command-line flags.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"

	"github.com/go-drift/arbor/pkg/errors"
)

// FileName is the config file looked up in the project root and the
// working directory.
const FileName = "arbor.yaml"

// Config is the resolved CLI configuration.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Output OutputConfig `mapstructure:"output"`
	Replay ReplayConfig `mapstructure:"replay"`

	// Project is derived from go.mod, not read from the file.
	Project Project `mapstructure:"-"`
	// File is the config file used, empty when none was found.
	File string `mapstructure:"-"`
}

// LogConfig selects the logger level and format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig controls trace rendering.
type OutputConfig struct {
	// Color is "auto", "always", or "never".
	Color string `mapstructure:"color"`
	JSON  bool   `mapstructure:"json"`
}

// ReplayConfig holds defaults for replayed scenes.
type ReplayConfig struct {
	Width    int    `mapstructure:"width"`
	Height   int    `mapstructure:"height"`
	Parallel int    `mapstructure:"parallel"`
	Dir      string `mapstructure:"dir"`
}

// Project describes the Go module the CLI runs in, if any.
type Project struct {
	Root       string
	ModulePath string
	Name       string
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Log:    LogConfig{Level: "warn", Format: "console"},
		Output: OutputConfig{Color: "auto"},
		Replay: ReplayConfig{Width: 800, Height: 600, Parallel: 4, Dir: "scenes"},
	}
}

// NewViper returns a viper instance with arbor's defaults, env prefix,
// and search paths. An explicit path overrides the search.
func NewViper(path string) *viper.Viper {
	v := viper.New()
	d := Defaults()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("output.color", d.Output.Color)
	v.SetDefault("output.json", d.Output.JSON)
	v.SetDefault("replay.width", d.Replay.Width)
	v.SetDefault("replay.height", d.Replay.Height)
	v.SetDefault("replay.parallel", d.Replay.Parallel)
	v.SetDefault("replay.dir", d.Replay.Dir)

	v.SetEnvPrefix("ARBOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		return v
	}
	v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
	v.SetConfigType("yaml")
	if root, err := FindProjectRoot(); err == nil {
		v.AddConfigPath(root)
	}
	v.AddConfigPath(".")
	return v
}

// Load reads the config file, if any, and resolves the result. A missing
// file is not an error unless it was named explicitly.
func Load(v *viper.Viper) (*Config, error) {
	const op = "config.Load"
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, errors.New(op, errors.KindConfig, fmt.Errorf("failed to read %s: %w", FileName, err))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New(op, errors.KindConfig, fmt.Errorf("failed to parse %s: %w", FileName, err))
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, errors.New(op, errors.KindConfig, err)
	}

	if root, err := FindProjectRoot(); err == nil {
		if project, err := ResolveProject(root); err == nil {
			cfg.Project = *project
		}
	}
	return &cfg, nil
}

// Validate checks enumerated values and sizes.
func (c *Config) Validate() error {
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("output.color must be auto, always, or never (got %q)", c.Output.Color)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json (got %q)", c.Log.Format)
	}
	if c.Replay.Width <= 0 || c.Replay.Height <= 0 {
		return fmt.Errorf("replay size must be positive (got %dx%d)", c.Replay.Width, c.Replay.Height)
	}
	if c.Replay.Parallel < 1 {
		return fmt.Errorf("replay.parallel must be at least 1 (got %d)", c.Replay.Parallel)
	}
	return nil
}

// ResolveProject reads go.mod in dir and derives a display name.
func ResolveProject(dir string) (*Project, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return nil, fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return nil, fmt.Errorf("could not determine module path from go.mod")
	}
	return &Project{Root: dir, ModulePath: path, Name: projectName(path, dir)}, nil
}

func projectName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if prefix, _, ok := module.SplitPathVersion(modulePath); ok {
		if i := strings.LastIndex(prefix, "/"); i >= 0 {
			base = prefix[i+1:]
		} else {
			base = prefix
		}
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "arbor"
	}
	return base
}

// FindProjectRoot walks up from the current directory to find go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Go module (no go.mod found)")
		}
		dir = parent
	}
}
