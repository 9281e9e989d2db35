package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/sinkmuzik/internal/models"
)

//go:embed config.example.toml
var exampleConf []byte

//go:embed encoder.example.toml
var exampleEncoder []byte

// Placeholder tokens recognized in an encoder command line.
const (
	InputPlaceholder  = "<inputfile>"
	OutputPlaceholder = "<outputfile>"
)

// Config represents the application configuration loaded from a TOML file (main.toml).
type Config struct {
	StoragePath        string        `toml:"storage_path"`
	MusicFilesTemplate string        `toml:"music_files_template"`
	ConversionFormat   string        `toml:"conversion_format"`
	Convert            models.Policy `toml:"convert"`
	EncodersDir        string        `toml:"encoders_dir"`
	Workers            int           `toml:"workers"`
	Timeout            Duration      `toml:"timeout"`
	SpawnRate          float64       `toml:"spawn_rate"`
	Log                LogConfig     `toml:"log"`
	History            HistoryConfig `toml:"history"`
}

// LogConfig controls where and how verbosely the application logs.
type LogConfig struct {
	Path  string `toml:"path"`
	Level string `toml:"level"`
}

// HistoryConfig points at the SQLite database recording sync runs. An empty path disables history.
type HistoryConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// EncoderProfile describes how to invoke an external encoder for one output format.
type EncoderProfile struct {
	Name        string `toml:"-"`
	Extension   string `toml:"extension"`
	Encoder     string `toml:"encoder"`
	CommandLine string `toml:"command_line"`
}

// Duration wraps [time.Duration] so it can be decoded from TOML strings like "90s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{Convert: models.ConvertNone, EncodersDir: "encoders"}
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, path, err)
	}

	config.StoragePath = ExpandPath(config.StoragePath)
	config.Log.Path = ExpandPath(config.Log.Path)
	config.History.Path = ExpandPath(config.History.Path)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the fields every run depends on.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.StoragePath) == "":
		return fmt.Errorf("%w: storage_path is required", ErrInvalidConfig)
	case strings.TrimSpace(c.MusicFilesTemplate) == "":
		return fmt.Errorf("%w: music_files_template is required", ErrInvalidConfig)
	case strings.TrimSpace(c.ConversionFormat) == "":
		return fmt.Errorf("%w: conversion_format is required", ErrInvalidConfig)
	case !c.Convert.Valid():
		return fmt.Errorf("%w: unknown convert policy %q", ErrInvalidConfig, c.Convert)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	case c.SpawnRate < 0:
		return fmt.Errorf("%w: spawn_rate must not be negative", ErrInvalidConfig)
	case c.Timeout.Duration < 0:
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

// EncoderProfilePath returns the location of the profile selected by conversion_format.
func (c *Config) EncoderProfilePath() string {
	return filepath.Join(c.EncodersDir, c.ConversionFormat+".toml")
}

// LoadEncoderProfile reads the encoder profile named name from dir (dir/name.toml).
func LoadEncoderProfile(dir, name string) (*EncoderProfile, error) {
	path := filepath.Join(dir, name+".toml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: encoder profile %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read encoder profile: %w", err)
	}

	var profile EncoderProfile
	if err := toml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, path, err)
	}
	profile.Name = name
	profile.Extension = strings.TrimPrefix(strings.TrimSpace(profile.Extension), ".")

	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Validate checks that the profile names an encoder, an extension, and both placeholders.
func (p *EncoderProfile) Validate() error {
	switch {
	case p.Extension == "":
		return fmt.Errorf("%w: encoder profile %q has no extension", ErrInvalidConfig, p.Name)
	case strings.TrimSpace(p.Encoder) == "":
		return fmt.Errorf("%w: encoder profile %q has no encoder", ErrInvalidConfig, p.Name)
	case !strings.Contains(p.CommandLine, InputPlaceholder):
		return fmt.Errorf("%w: encoder profile %q command_line lacks %s", ErrInvalidConfig, p.Name, InputPlaceholder)
	case !strings.Contains(p.CommandLine, OutputPlaceholder):
		return fmt.Errorf("%w: encoder profile %q command_line lacks %s", ErrInvalidConfig, p.Name, OutputPlaceholder)
	}
	return nil
}

// Args splits the command line on whitespace and substitutes the input and output placeholders.
//
// Only tokens that are exactly a placeholder are replaced; every other token is passed through unchanged.
func (p *EncoderProfile) Args(input, output string) []string {
	tokens := strings.Fields(p.CommandLine)
	args := make([]string, 0, len(tokens))
	for _, t := range tokens {
		switch t {
		case InputPlaceholder:
			args = append(args, input)
		case OutputPlaceholder:
			args = append(args, output)
		default:
			args = append(args, t)
		}
	}
	return args
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// DefaultEncoderProfile returns the embedded example encoder profile.
func DefaultEncoderProfile() *EncoderProfile {
	var profile EncoderProfile
	if err := toml.Unmarshal(exampleEncoder, &profile); err != nil {
		panic(fmt.Sprintf("failed to parse embedded encoder profile: %v", err))
	}
	profile.Name = DefaultConfig().ConversionFormat
	return &profile
}

// CreateConfigFile creates a main.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	return createFromTemplate(path, exampleConf)
}

// CreateEncoderProfileFile writes the embedded example encoder profile to dir/name.toml.
func CreateEncoderProfileFile(dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create encoders directory: %w", err)
	}
	path := filepath.Join(dir, name+".toml")
	return path, createFromTemplate(path, exampleEncoder)
}

func createFromTemplate(path string, data []byte) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", fs.ErrExist, path)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
