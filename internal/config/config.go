// Package config loads the optional YAML configuration file. Settings
// here act as defaults; command-line flags override them.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/seijaku-code/soko-mushi/internal/scanner"
)

// FileName is the configuration file looked up in the search paths.
const FileName = ".sokomushi.yaml"

// Config mirrors the YAML file.
type Config struct {
	// Concurrency bounds parallel directory scans (0 = auto).
	Concurrency int `yaml:"concurrency"`
	// FollowSymlinks descends into symlinked directories.
	FollowSymlinks bool `yaml:"follow_symlinks"`
	// ShowHidden includes dotfiles; defaults to true.
	ShowHidden *bool `yaml:"show_hidden"`
	// Exclude lists entry names to skip during scans.
	Exclude []string `yaml:"exclude"`
	// MinSize drops files below this size ("10MB", "1.5GiB", plain bytes).
	MinSize string `yaml:"min_size"`
	// TopN is how many largest items reports carry.
	TopN int `yaml:"top"`
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault searches the working directory and the user config
// directory and returns the first config file found. A missing file is
// not an error: an empty Config is returned.
func LoadDefault() (*Config, error) {
	for _, dir := range searchDirs() {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		log.WithField("path", path).Debug("loading config file")
		return Load(path)
	}
	return &Config{}, nil
}

func searchDirs() []string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "sokomushi"))
	}
	return dirs
}

func (c *Config) validate() error {
	if c.Concurrency < 0 {
		return errors.New("concurrency must be >= 0")
	}
	if c.TopN < 0 {
		return errors.New("top must be >= 0")
	}
	if _, err := c.minSizeBytes(); err != nil {
		return err
	}
	return nil
}

func (c *Config) minSizeBytes() (int64, error) {
	if c.MinSize == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(c.MinSize)
	if err != nil {
		return 0, fmt.Errorf("invalid min_size %q: %w", c.MinSize, err)
	}
	return int64(n), nil
}

// ScanOptions converts the config into scanner options.
func (c *Config) ScanOptions() scanner.Options {
	opts := scanner.DefaultOptions()
	opts.Concurrency = c.Concurrency
	opts.FollowSymlinks = c.FollowSymlinks
	if c.ShowHidden != nil {
		opts.ShowHidden = *c.ShowHidden
	}
	opts.ExcludePatterns = append(opts.ExcludePatterns, c.Exclude...)
	// validate() already checked the value.
	opts.MinSize, _ = c.minSizeBytes()
	return opts
}
