package sim

import (
	_ "embed"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"pitclock/core"
)

//go:embed profiles.yaml
var rawProfiles []byte

var profiles []Profile

var (
	ErrUnknownProfile = errors.New("unknown profile")
	ErrFrequencyRange = core.ErrFrequencyRange
)

// Config describes one simulation run
type Config struct {
	Profile        string        `yaml:"profile"`
	Frequency      uint32        `yaml:"frequency"`
	Feedback       bool          `yaml:"feedback"`
	Threads        []ThreadSpec  `yaml:"threads"`
	Duration       time.Duration `yaml:"duration"`
	ReportInterval time.Duration `yaml:"report_interval"`
	Device         string        `yaml:"device"`
	Baud           int           `yaml:"baud"`
}

// Profile is a named, embedded Config
type Profile struct {
	Name   string `yaml:"name"`
	Config `yaml:",inline"`
}

// Profiles returns the embedded profiles
func Profiles() []Profile {
	return profiles
}

// FindProfile looks up an embedded profile by name
func FindProfile(name string) (Profile, error) {
	i := slices.IndexFunc(profiles, func(p Profile) bool { return p.Name == name })
	if i < 0 {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return profiles[i], nil
}

// LoadConfig parses a YAML simulation config. Fields set in data override
// the named profile, and missing values get defaults.
func LoadConfig(data []byte) (*Config, error) {
	var head struct {
		Profile string `yaml:"profile"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	var config Config
	if head.Profile != "" {
		p, err := FindProfile(head.Profile)
		if err != nil {
			return nil, err
		}
		config = p.Config
		config.Threads = slices.Clone(p.Threads)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// ProfileConfig returns the named profile as a Config with defaults applied
func ProfileConfig(name string) (*Config, error) {
	p, err := FindProfile(name)
	if err != nil {
		return nil, err
	}
	config := p.Config
	config.Profile = p.Name
	config.Threads = slices.Clone(p.Threads)
	applyDefaults(&config)
	return &config, nil
}

// DefaultConfig returns the "default" profile
func DefaultConfig() *Config {
	config, err := ProfileConfig("default")
	if err != nil {
		panic(err)
	}
	return config
}

// Validate checks the timer frequency
func (c *Config) Validate() error {
	cfg := core.Config{Frequency: c.Frequency, Vector: core.TimerVector}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("frequency %d: %w", c.Frequency, err)
	}
	return nil
}

// applyDefaults fills in missing configuration values with sensible defaults
func applyDefaults(config *Config) {
	if config.Frequency == 0 {
		config.Frequency = core.DefaultFrequency
	}
	if config.Duration == 0 {
		config.Duration = 2 * time.Second
	}
	if config.ReportInterval == 0 {
		config.ReportInterval = 500 * time.Millisecond
	}
	if config.Baud == 0 {
		config.Baud = 250000 // Standard Klipper baud rate
	}
	if len(config.Threads) == 0 {
		config.Threads = []ThreadSpec{{Name: "main"}}
	}
}

func init() {
	var p struct {
		Profiles []Profile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(rawProfiles, &p); err != nil {
		panic(err)
	}

	profiles = p.Profiles
}
