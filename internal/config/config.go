// Package config loads the YAML configuration of the ldpc-toolbox server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/quic-go/quic-ldpc/fec"
)

// Config is the server configuration.
//
//	listen: ":50051"
//	metrics_listen: ":9090"
//	workers: 2
//	codes:
//	  - name: ar4ja
//	    alist: codes/ar4ja_1_2_1024.alist
//	    implementation: normalized-min-sum
//	    puncturing: "blocks:1,1,1,1,0"
//	    max_iterations: 50
type Config struct {
	Listen        string       `yaml:"listen"`
	MetricsListen string       `yaml:"metrics_listen"`
	Workers       int          `yaml:"workers"` // default goroutines per decoding pass
	Codes         []CodeConfig `yaml:"codes"`
}

// CodeConfig describes one code served by name.
type CodeConfig struct {
	Name           string `yaml:"name"`
	Alist          string `yaml:"alist"`
	Implementation string `yaml:"implementation"`
	Puncturing     string `yaml:"puncturing"`
	MaxIterations  int    `yaml:"max_iterations"`
	Workers        int    `yaml:"workers"`
}

const (
	DefaultListen         = ":50051"
	DefaultMetricsListen  = ":9090"
	DefaultImplementation = "sum-product"
	DefaultMaxIterations  = 50
)

// Load reads, defaults and validates the config at path. Relative alist
// paths are resolved against the config file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i := range c.Codes {
		if a := c.Codes[i].Alist; a != "" && !filepath.IsAbs(a) {
			c.Codes[i].Alist = filepath.Join(dir, a)
		}
	}
	return c, nil
}

// Parse decodes YAML, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	c.setDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) setDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.MetricsListen == "" {
		c.MetricsListen = DefaultMetricsListen
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	for i := range c.Codes {
		code := &c.Codes[i]
		if code.Implementation == "" {
			code.Implementation = DefaultImplementation
		}
		if code.MaxIterations <= 0 {
			code.MaxIterations = DefaultMaxIterations
		}
		if code.Workers <= 0 {
			code.Workers = c.Workers
		}
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Codes) == 0 {
		errs = append(errs, errors.New("at least one code is required"))
	}
	seen := make(map[string]bool)
	for i, code := range c.Codes {
		if code.Name == "" {
			errs = append(errs, fmt.Errorf("codes[%d].name is required", i))
		} else if seen[code.Name] {
			errs = append(errs, fmt.Errorf("codes[%d]: duplicate name %q", i, code.Name))
		}
		seen[code.Name] = true
		if code.Alist == "" {
			errs = append(errs, fmt.Errorf("codes[%d].alist is required", i))
		}
		if _, err := fec.ParseImplementation(code.Implementation); err != nil {
			errs = append(errs, fmt.Errorf("codes[%d].implementation: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
