package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrConfigInvalid = errors.New("invalid configuration")

// Policy kinds understood by the policies package
const (
	PolicyRandom       = "random"
	PolicyQLearning    = "qlearning"
	PolicyBonus        = "bonus"
	PolicyBonusMax     = "bonus-max"
	PolicyBonusSoftMax = "bonus-softmax"
	PolicyNegFreq      = "negfreq"
)

var policyKinds = []string{PolicyRandom, PolicyQLearning, PolicyBonus, PolicyBonusMax, PolicyBonusSoftMax, PolicyNegFreq}

type PolicyConfig struct {
	Name        string  `yaml:"name"`
	Policy      string  `yaml:"policy"`
	Alpha       float64 `yaml:"alpha"`
	Gamma       float64 `yaml:"gamma"`
	Epsilon     float64 `yaml:"epsilon"`
	Temperature float64 `yaml:"temperature"`
}

type RecordConfig struct {
	Traces      bool   `yaml:"traces"`
	SQLitePath  string `yaml:"sqlite_path"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisStream string `yaml:"redis_stream"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Config of an experiment comparison and of the environment server
type Config struct {
	Layout     string `yaml:"layout"`
	LayoutFile string `yaml:"layout_file"`
	MaxSteps   int    `yaml:"max_steps"`

	Episodes   int           `yaml:"episodes"`
	Horizon    int           `yaml:"horizon"`
	Runs       int           `yaml:"runs"`
	RecordPath string        `yaml:"record_path"`
	Timeout    time.Duration `yaml:"timeout"`

	Experiments []PolicyConfig `yaml:"experiments"`
	Record      RecordConfig   `yaml:"record"`
	Server      ServerConfig   `yaml:"server"`
}

// Default configuration, comparing a random policy with the learners
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// Load reads a YAML config file, applies defaults, and validates.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config YAML: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Layout == "" && c.LayoutFile == "" {
		c.Layout = "cramped_room"
	}
	if c.MaxSteps == 0 {
		c.MaxSteps = 400
	}
	if c.Episodes == 0 {
		c.Episodes = 1000
	}
	if c.Horizon == 0 {
		c.Horizon = c.MaxSteps
	}
	if c.Runs == 0 {
		c.Runs = 1
	}
	if c.RecordPath == "" {
		c.RecordPath = "results"
	}
	if len(c.Experiments) == 0 {
		c.Experiments = []PolicyConfig{
			{Name: "Random", Policy: PolicyRandom},
			{Name: "QLearning", Policy: PolicyQLearning},
			{Name: "Bonus", Policy: PolicyBonus},
		}
	}
	for i := range c.Experiments {
		c.Experiments[i].applyDefaults()
	}
	if c.Record.RedisStream == "" {
		c.Record.RedisStream = "overcooked:episodes"
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
}

func (p *PolicyConfig) applyDefaults() {
	if p.Name == "" {
		p.Name = p.Policy
	}
	if p.Alpha == 0 {
		p.Alpha = 0.1
	}
	if p.Gamma == 0 {
		p.Gamma = 0.99
	}
	if p.Epsilon == 0 && p.Policy != PolicyBonusSoftMax {
		p.Epsilon = 0.05
	}
	if p.Temperature == 0 {
		p.Temperature = 1
	}
}

// Validate collects every problem of the configuration into a single error
func (c *Config) Validate() error {
	var problems []string

	if c.Layout != "" && c.LayoutFile != "" {
		problems = append(problems, "only one of layout and layout_file can be set")
	}
	if c.MaxSteps < 0 {
		problems = append(problems, "max_steps must not be negative")
	}
	if c.Episodes <= 0 {
		problems = append(problems, "episodes must be positive")
	}
	if c.Horizon <= 0 {
		problems = append(problems, "horizon must be positive")
	}
	if c.Runs <= 0 {
		problems = append(problems, "runs must be positive")
	}
	if c.Timeout < 0 {
		problems = append(problems, "timeout must not be negative")
	}
	names := make(map[string]bool)
	for i, p := range c.Experiments {
		if !validKind(p.Policy) {
			problems = append(problems, fmt.Sprintf("experiments[%d]: unknown policy %q (one of %s)", i, p.Policy, strings.Join(policyKinds, ", ")))
		}
		if names[p.Name] {
			problems = append(problems, fmt.Sprintf("experiments[%d]: duplicate name %q", i, p.Name))
		}
		names[p.Name] = true
		if p.Alpha <= 0 || p.Alpha > 1 {
			problems = append(problems, fmt.Sprintf("experiments[%d]: alpha must be in (0, 1]", i))
		}
		if p.Gamma < 0 || p.Gamma > 1 {
			problems = append(problems, fmt.Sprintf("experiments[%d]: gamma must be in [0, 1]", i))
		}
		if p.Epsilon < 0 || p.Epsilon > 1 {
			problems = append(problems, fmt.Sprintf("experiments[%d]: epsilon must be in [0, 1]", i))
		}
		if p.Temperature <= 0 {
			problems = append(problems, fmt.Sprintf("experiments[%d]: temperature must be positive", i))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func validKind(kind string) bool {
	for _, k := range policyKinds {
		if k == kind {
			return true
		}
	}
	return false
}
