package config

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "wvdetect.config.yml"

	// MaxWorkers bounds snapshot-level concurrency of batch runs.
	MaxWorkers = 64

	envSnapshots      = "WVDETECT_SNAPSHOTS"
	envSnapshotsFile  = "WVDETECT_SNAPSHOTS_FILE"
	envConfidenceMode = "WVDETECT_CONFIDENCE_MODE"
	envCollectors     = "WVDETECT_COLLECTORS"
	envWorkers        = "WVDETECT_WORKERS"
	envOutputDir      = "WVDETECT_OUTPUT_DIR"
	envFormats        = "WVDETECT_FORMATS"
	envEndpoint       = "WVDETECT_ENDPOINT"
	envDryRun         = "WVDETECT_DRY_RUN"
	envSummaryFile    = "WVDETECT_SUMMARY_FILE"
	envListenAddr     = "WVDETECT_LISTEN_ADDR"
	envLogLevel       = "WVDETECT_LOG_LEVEL"
	envLogFormat      = "WVDETECT_LOG_FORMAT"
)

var (
	supportedModes      = []string{"compat", "weighted"}
	supportedFormats    = []string{"json", "csv"}
	supportedLogLevels  = []string{"debug", "info", "warn", "error"}
	supportedLogFormats = []string{"json", "console"}
)

// Loader merges configuration coming from files, environment variables, and CLI flags.
type Loader struct {
	ConfigPath string
}

// RuntimeConfig contains the fully merged settings required by sub-commands.
type RuntimeConfig struct {
	Snapshots      []string
	ConfidenceMode string
	Collectors     []string
	Workers        int
	OutputDir      string
	Formats        []string
	Endpoint       string
	DryRun         bool
	SummaryFile    string
	ListenAddr     string
	LogLevel       string
	LogFormat      string
}

// Overrides captures values coming from env vars or CLI flags.
type Overrides struct {
	Snapshots      []string
	SnapshotsFile  string
	ConfidenceMode string
	Collectors     []string
	Workers        int
	WorkersSet     bool
	OutputDir      string
	Formats        []string
	Endpoint       string
	DryRun         *bool
	SummaryFile    string
	ListenAddr     string
	LogLevel       string
	LogFormat      string
}

// DefaultRuntimeConfig returns the baseline configuration when no overrides are provided.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		ConfidenceMode: "compat",
		Workers:        4,
		OutputDir:      "detect-results",
		Formats:        []string{"json"},
		ListenAddr:     ":8080",
		LogLevel:       "info",
		LogFormat:      "console",
	}
}

// Load resolves the final runtime configuration.
func (l Loader) Load(override Overrides) (RuntimeConfig, error) {
	cfg := DefaultRuntimeConfig()
	path := l.ConfigPath
	if path == "" {
		path = DefaultConfigPath
	}

	if fileExists(path) {
		fileOv, err := loadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load %s: %w", path, err)
		}
		if err := cfg.apply(fileOv); err != nil {
			return cfg, err
		}
	}

	if err := cfg.apply(overridesFromEnv()); err != nil {
		return cfg, err
	}

	if err := cfg.apply(override); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ValidateSettings checks every field except the snapshot list.
func (c RuntimeConfig) ValidateSettings() error {
	if c.Workers < 1 || c.Workers > MaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d (got %d)", MaxWorkers, c.Workers)
	}

	if !contains(supportedModes, c.ConfidenceMode) {
		return fmt.Errorf("confidence mode must be one of %s (got %q)", strings.Join(supportedModes, ", "), c.ConfidenceMode)
	}

	if len(c.Formats) == 0 {
		return errors.New("at least one output format must be specified")
	}
	for _, f := range c.Formats {
		if !contains(supportedFormats, strings.ToLower(f)) {
			return fmt.Errorf("unsupported output format %q", f)
		}
	}

	if c.OutputDir == "" {
		return errors.New("output directory cannot be empty")
	}

	if c.Endpoint != "" {
		u, err := url.Parse(c.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("endpoint must be an absolute http(s) URL (got %q)", c.Endpoint)
		}
	}

	if !contains(supportedLogLevels, c.LogLevel) {
		return fmt.Errorf("log level must be one of %s (got %q)", strings.Join(supportedLogLevels, ", "), c.LogLevel)
	}

	if !contains(supportedLogFormats, c.LogFormat) {
		return fmt.Errorf("log format must be one of %s (got %q)", strings.Join(supportedLogFormats, ", "), c.LogFormat)
	}

	return nil
}

// Validate ensures the config contains the minimum required data for detect/report commands.
func (c RuntimeConfig) Validate() error {
	if len(c.Snapshots) == 0 {
		return errors.New("no snapshots configured; provide --snapshots, --snapshots-file, or set WVDETECT_SNAPSHOTS")
	}
	return c.ValidateSettings()
}

func (c *RuntimeConfig) apply(src Overrides) error {
	if len(src.Snapshots) > 0 {
		c.Snapshots = cleanList(src.Snapshots)
	}

	if src.SnapshotsFile != "" {
		values, err := readListFile(src.SnapshotsFile)
		if err != nil {
			return err
		}
		c.Snapshots = values
	}

	if src.ConfidenceMode != "" {
		c.ConfidenceMode = strings.ToLower(src.ConfidenceMode)
	}

	if len(src.Collectors) > 0 {
		c.Collectors = cleanList(src.Collectors)
	}

	if src.WorkersSet {
		c.Workers = src.Workers
	}

	if src.OutputDir != "" {
		c.OutputDir = src.OutputDir
	}

	if len(src.Formats) > 0 {
		c.Formats = cleanList(src.Formats)
	}

	if src.Endpoint != "" {
		c.Endpoint = src.Endpoint
	}

	if src.DryRun != nil {
		c.DryRun = *src.DryRun
	}

	if src.SummaryFile != "" {
		c.SummaryFile = src.SummaryFile
	}

	if src.ListenAddr != "" {
		c.ListenAddr = src.ListenAddr
	}

	if src.LogLevel != "" {
		c.LogLevel = strings.ToLower(src.LogLevel)
	}

	if src.LogFormat != "" {
		c.LogFormat = strings.ToLower(src.LogFormat)
	}

	return nil
}

func loadFromFile(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, err
	}

	type rawConfig struct {
		Snapshots      stringList `yaml:"snapshots"`
		SnapshotsFile  string     `yaml:"snapshotsFile"`
		ConfidenceMode string     `yaml:"confidenceMode"`
		Collectors     stringList `yaml:"collectors"`
		Workers        *int       `yaml:"workers"`
		OutputDir      string     `yaml:"outputDir"`
		Formats        []string   `yaml:"formats"`
		Endpoint       string     `yaml:"endpoint"`
		DryRun         *bool      `yaml:"dryRun"`
		SummaryFile    string     `yaml:"summaryFile"`
		ListenAddr     string     `yaml:"listenAddr"`
		Log            struct {
			Level  string `yaml:"level"`
			Format string `yaml:"format"`
		} `yaml:"log"`
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Overrides{}, err
	}

	over := Overrides{
		Snapshots:      raw.Snapshots,
		SnapshotsFile:  raw.SnapshotsFile,
		ConfidenceMode: raw.ConfidenceMode,
		Collectors:     raw.Collectors,
		OutputDir:      raw.OutputDir,
		Formats:        raw.Formats,
		Endpoint:       raw.Endpoint,
		DryRun:         raw.DryRun,
		SummaryFile:    raw.SummaryFile,
		ListenAddr:     raw.ListenAddr,
		LogLevel:       raw.Log.Level,
		LogFormat:      raw.Log.Format,
	}

	if raw.Workers != nil {
		over.Workers = *raw.Workers
		over.WorkersSet = true
	}

	return over, nil
}

func overridesFromEnv() Overrides {
	ov := Overrides{}

	if value := os.Getenv(envSnapshots); value != "" {
		ov.Snapshots = ParseList(value)
	}

	if value := os.Getenv(envSnapshotsFile); value != "" {
		ov.SnapshotsFile = value
	}

	if value := os.Getenv(envConfidenceMode); value != "" {
		ov.ConfidenceMode = value
	}

	if value := os.Getenv(envCollectors); value != "" {
		ov.Collectors = ParseNames(value)
	}

	if value := os.Getenv(envWorkers); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			ov.Workers = parsed
			ov.WorkersSet = true
		}
	}

	if value := os.Getenv(envOutputDir); value != "" {
		ov.OutputDir = value
	}

	if value := os.Getenv(envFormats); value != "" {
		ov.Formats = ParseNames(value)
	}

	if value := os.Getenv(envEndpoint); value != "" {
		ov.Endpoint = value
	}

	if value := os.Getenv(envDryRun); value != "" {
		parsed := strings.EqualFold(value, "true") || value == "1"
		ov.DryRun = &parsed
	}

	if value := os.Getenv(envSummaryFile); value != "" {
		ov.SummaryFile = value
	}

	if value := os.Getenv(envListenAddr); value != "" {
		ov.ListenAddr = value
	}

	if value := os.Getenv(envLogLevel); value != "" {
		ov.LogLevel = value
	}

	if value := os.Getenv(envLogFormat); value != "" {
		ov.LogFormat = value
	}

	return ov
}

// ParseList turns comma or newline separated input into individual entries.
func ParseList(input string) []string {
	return splitOnDelimiters(input, []rune{',', '\n', '\r'})
}

// ParseNames splits comma or space separated identifiers such as formats or collector names.
func ParseNames(input string) []string {
	return splitOnDelimiters(input, []rune{',', '\n', '\r', ' '})
}

func splitOnDelimiters(input string, delims []rune) []string {
	if input == "" {
		return nil
	}

	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}

	separator := func(r rune) bool {
		for _, d := range delims {
			if r == d {
				return true
			}
		}
		return false
	}

	parts := strings.FieldsFunc(trimmed, separator)
	return cleanList(parts)
}

func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		candidate := strings.TrimSpace(v)
		if candidate != "" {
			out = append(out, candidate)
		}
	}
	return out
}

func readListFile(path string) ([]string, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var entries []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// stringList enables YAML fields that can be specified as a scalar or sequence.
type stringList []string

func (t *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var out []string
		for _, node := range value.Content {
			out = append(out, strings.TrimSpace(node.Value))
		}
		*t = cleanList(out)
	case yaml.ScalarNode:
		*t = ParseList(value.Value)
	default:
		return fmt.Errorf("unsupported YAML type for list")
	}
	return nil
}
