// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	biascontext "bias-scan/internal/context"
	"bias-scan/internal/detector"
	"bias-scan/internal/paths"

	"gopkg.in/yaml.v3"
)

// Formats lists the output formats the CLI and web server understand
var Formats = []string{"text", "json", "yaml", "csv", "pdf", "docx"}

// DocumentFormats are the formats that render a bias-free document rather than a report
var DocumentFormats = []string{"pdf", "docx"}

// Defaults holds the settings every scan starts from
type Defaults struct {
	Format             string `yaml:"format"`
	Severity           string `yaml:"severity"`
	Categories         string `yaml:"categories"`
	ClassificationMode string `yaml:"classification_mode"`
	FailOn             string `yaml:"fail_on"`
	MaxInputBytes      int    `yaml:"max_input_bytes"`
	MaxFileBytes       int64  `yaml:"max_file_bytes"`
	ShowImproved       bool   `yaml:"show_improved"`
	ShowMatch          bool   `yaml:"show_match"`
	NoColor            bool   `yaml:"no_color"`
	Recursive          bool   `yaml:"recursive"`
	Verbose            bool   `yaml:"verbose"`
	Debug              bool   `yaml:"debug"`
	PatternsFile       string `yaml:"patterns_file"`
	SuppressionFile    string `yaml:"suppression_file"`
}

// WebConfig holds the web server settings
type WebConfig struct {
	Port               int     `yaml:"port"`
	RateLimitPerSecond float64 `yaml:"rate_limit_per_second"`
	RateLimitBurst     int     `yaml:"rate_limit_burst"`
	AuditCapacity      int     `yaml:"audit_capacity"`
	SentryDSN          string  `yaml:"sentry_dsn"`
}

// Config represents the application configuration
type Config struct {
	Defaults Defaults  `yaml:"defaults"`
	Web      WebConfig `yaml:"web"`

	// Profiles for different scanning scenarios
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile represents a scanning profile. Empty strings and false booleans
// leave the corresponding default untouched.
type Profile struct {
	Description        string `yaml:"description"`
	Format             string `yaml:"format"`
	Severity           string `yaml:"severity"`
	Categories         string `yaml:"categories"`
	ClassificationMode string `yaml:"classification_mode"`
	FailOn             string `yaml:"fail_on"`
	ShowImproved       bool   `yaml:"show_improved"`
	ShowMatch          bool   `yaml:"show_match"`
	NoColor            bool   `yaml:"no_color"`
	Recursive          bool   `yaml:"recursive"`
	Verbose            bool   `yaml:"verbose"`
	PatternsFile       string `yaml:"patterns_file"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Defaults: Defaults{
			Format:             "text",
			Severity:           "all",
			Categories:         "all",
			ClassificationMode: string(biascontext.ModeWholeText),
			FailOn:             "high",
			MaxInputBytes:      1 << 20,
			MaxFileBytes:       10 << 20,
			SuppressionFile:    paths.DefaultSuppressionsFile,
		},
		Web: WebConfig{
			Port:               8080,
			RateLimitPerSecond: 5,
			RateLimitBurst:     10,
			AuditCapacity:      10000,
		},
		Profiles: map[string]Profile{
			"strict": {
				Description:        "Report every finding and fail on medium severity, classifying sentence by sentence",
				Severity:           "all",
				FailOn:             "medium",
				ClassificationMode: string(biascontext.ModeSentence),
			},
			"ci": {
				Description: "Concise output for pipelines",
				Format:      "text",
				Severity:    "medium,high",
				NoColor:     true,
			},
		},
	}
}

// LoadConfig loads configuration from the specified file path. Values absent
// from the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(filepath.Clean(paths.NormalizePath(configPath)))
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if config.Profiles == nil {
		config.Profiles = make(map[string]Profile)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads configuration from configFile (or searches standard locations
// when configFile is empty). If loading fails, it returns a default configuration.
func LoadConfigOrDefault(configFile string) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return Default()
	}
	return cfg
}

// FindConfigFile looks for a configuration file in standard locations
func FindConfigFile() string {
	for _, name := range []string{"bias-scan.yaml", "bias-scan.yml", ".bias-scan.yaml", ".bias-scan.yml"} {
		if fileExists(name) {
			return name
		}
	}

	if standardConfig := paths.GetConfigFile(); fileExists(standardConfig) {
		return standardConfig
	}

	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns the available profile names in sorted order
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// Resolve returns the defaults with the named profile applied on top.
// An empty name returns the defaults unchanged.
func (c *Config) Resolve(profileName string) (Defaults, error) {
	settings := c.Defaults
	if profileName == "" {
		return settings, nil
	}

	profile := c.GetProfile(profileName)
	if profile == nil {
		return settings, fmt.Errorf("profile %q not found (available: %s)", profileName, strings.Join(c.ListProfiles(), ", "))
	}

	overrideString(&settings.Format, profile.Format)
	overrideString(&settings.Severity, profile.Severity)
	overrideString(&settings.Categories, profile.Categories)
	overrideString(&settings.ClassificationMode, profile.ClassificationMode)
	overrideString(&settings.FailOn, profile.FailOn)
	overrideString(&settings.PatternsFile, profile.PatternsFile)
	settings.ShowImproved = settings.ShowImproved || profile.ShowImproved
	settings.ShowMatch = settings.ShowMatch || profile.ShowMatch
	settings.NoColor = settings.NoColor || profile.NoColor
	settings.Recursive = settings.Recursive || profile.Recursive
	settings.Verbose = settings.Verbose || profile.Verbose

	return settings, nil
}

func overrideString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// ApplyEnv applies environment overrides. getenv is usually os.Getenv.
func ApplyEnv(config *Config, getenv func(string) string) error {
	if config == nil {
		return errors.New("configuration cannot be nil")
	}

	var errs []error
	if v := getenv("BIAS_SCAN_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("BIAS_SCAN_PORT: %w", err))
		} else {
			config.Web.Port = port
		}
	}
	if v := getenv("BIAS_SCAN_CLASSIFICATION_MODE"); v != "" {
		config.Defaults.ClassificationMode = v
	}
	if v := getenv("BIAS_SCAN_RATE_LIMIT"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("BIAS_SCAN_RATE_LIMIT: %w", err))
		} else {
			config.Web.RateLimitPerSecond = rate
		}
	}
	if v := getenv("SENTRY_DSN"); v != "" {
		config.Web.SentryDSN = v
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return ValidateConfig(config)
}

// ValidateConfig reports every problem in the configuration
func ValidateConfig(config *Config) error {
	if config == nil {
		return errors.New("configuration cannot be nil")
	}

	var errs []error
	errs = append(errs, validateSettings("defaults", config.Defaults.Format, config.Defaults.Severity,
		config.Defaults.ClassificationMode, config.Defaults.FailOn)...)

	if config.Defaults.MaxInputBytes <= 0 {
		errs = append(errs, fmt.Errorf("defaults: max_input_bytes must be positive, got %d", config.Defaults.MaxInputBytes))
	}
	if config.Defaults.MaxFileBytes <= 0 {
		errs = append(errs, fmt.Errorf("defaults: max_file_bytes must be positive, got %d", config.Defaults.MaxFileBytes))
	}
	for _, p := range []string{config.Defaults.PatternsFile, config.Defaults.SuppressionFile} {
		if err := paths.ValidatePath(p); err != nil {
			errs = append(errs, fmt.Errorf("defaults: %w", err))
		}
	}

	if config.Web.Port < 0 || config.Web.Port > 65535 {
		errs = append(errs, fmt.Errorf("web: port %d out of range", config.Web.Port))
	}
	if config.Web.RateLimitPerSecond < 0 {
		errs = append(errs, fmt.Errorf("web: rate_limit_per_second must not be negative"))
	}
	if config.Web.RateLimitBurst < 0 {
		errs = append(errs, fmt.Errorf("web: rate_limit_burst must not be negative"))
	}
	if config.Web.AuditCapacity < 0 {
		errs = append(errs, fmt.Errorf("web: audit_capacity must not be negative"))
	}

	names := make([]string, 0, len(config.Profiles))
	for name := range config.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := config.Profiles[name]
		errs = append(errs, validateSettings("profile '"+name+"'", p.Format, p.Severity, p.ClassificationMode, p.FailOn)...)
		if err := paths.ValidatePath(p.PatternsFile); err != nil {
			errs = append(errs, fmt.Errorf("profile '%s': %w", name, err))
		}
	}

	return errors.Join(errs...)
}

func validateSettings(scope, format, severity, mode, failOn string) []error {
	var errs []error
	if format != "" && !IsFormat(format) {
		errs = append(errs, fmt.Errorf("%s: unknown format %q (want %s)", scope, format, strings.Join(Formats, ", ")))
	}
	if _, err := ParseSeverityList(severity); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", scope, err))
	}
	if _, err := biascontext.ParseMode(mode); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", scope, err))
	}
	if failOn != "" && failOn != "none" {
		if _, err := detector.ParseSeverity(failOn); err != nil {
			errs = append(errs, fmt.Errorf("%s: fail_on: %w", scope, err))
		}
	}
	return errs
}

// IsFormat reports whether name is a supported output format
func IsFormat(name string) bool {
	for _, f := range Formats {
		if f == name {
			return true
		}
	}
	return false
}

// IsDocumentFormat reports whether name renders a binary bias-free document
func IsDocumentFormat(name string) bool {
	for _, f := range DocumentFormats {
		if f == name {
			return true
		}
	}
	return false
}

// ParseSeverityList parses "all" or a comma separated list such as
// "medium,high". Empty means all.
func ParseSeverityList(list string) (map[detector.Severity]bool, error) {
	list = strings.TrimSpace(strings.ToLower(list))
	if list == "" || list == "all" {
		return map[detector.Severity]bool{
			detector.SeverityLow:    true,
			detector.SeverityMedium: true,
			detector.SeverityHigh:   true,
		}, nil
	}

	out := make(map[detector.Severity]bool)
	for _, part := range strings.Split(list, ",") {
		s, err := detector.ParseSeverity(part)
		if err != nil || s == detector.SeverityNone {
			return nil, fmt.Errorf("invalid severity %q in %q", strings.TrimSpace(part), list)
		}
		out[s] = true
	}
	return out, nil
}

// ParseCategoryList parses "all" (nil result) or a comma separated list of
// category names, resolving aliases.
func ParseCategoryList(list string) []detector.Category {
	list = strings.TrimSpace(list)
	if list == "" || strings.EqualFold(list, "all") {
		return nil
	}
	var out []detector.Category
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		out = append(out, detector.ParseCategory(part))
	}
	return detector.SortCategories(out)
}
