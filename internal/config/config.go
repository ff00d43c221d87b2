package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings of the manifest server and its clients.
type Config struct {
	// ServerAddress is the gRPC address of the manifest service.
	ServerAddress string `yaml:"server_addr"`
	// ProfilesFile is the path to the JSON file holding stored profiles.
	ProfilesFile string `yaml:"profiles_file"`
	// Timeout bounds every RPC and every upstream HTTP call.
	Timeout time.Duration `yaml:"timeout"`
	// ResolveWorkers limits concurrent upstream lookups during one generate call.
	ResolveWorkers int `yaml:"resolve_workers"`
	// LogLevel is the minimum level of emitted log messages.
	LogLevel string `yaml:"log_level"`
	// LogFormat selects console or json log output.
	LogFormat string `yaml:"log_format"`

	Gerrit      Gerrit      `yaml:"gerrit"`
	Artifactory Artifactory `yaml:"artifactory"`
	CarWeaver   CarWeaver   `yaml:"carweaver"`
}

// Gerrit holds the version-control server settings.
type Gerrit struct {
	URL      string `yaml:"url"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Artifactory holds the artifact repository settings.
type Artifactory struct {
	BaseURL string `yaml:"base_url"`
	Repo    string `yaml:"repo"`
	Token   string `yaml:"token"`
	// PathSuffix selects the folder holding the wanted file kind. An empty
	// value selects DefaultPathSuffix and "*" keeps every candidate.
	PathSuffix string `yaml:"path_suffix"`
	// PathSuffixes overrides PathSuffix per logical artifact name.
	PathSuffixes map[string]string `yaml:"path_suffixes,omitempty"`
}

// CarWeaver holds the product-model server settings.
type CarWeaver struct {
	URL      string `yaml:"url"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	UserKey  string `yaml:"user_key"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "release-manifest-settings.yaml"

	// DefaultProfilesFilename is the default filename for stored profiles.
	DefaultProfilesFilename = "profiles.json"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 10 * time.Second

	// DefaultResolveWorkers is the default number of concurrent upstream lookups.
	DefaultResolveWorkers = 4

	// DefaultArtifactoryRepo is the repository searched for artifacts.
	DefaultArtifactoryRepo = "ARTBC-SUM-LTS"

	// DefaultPathSuffix is the folder suffix of VBF files in the repository.
	DefaultPathSuffix = "SWLM/xcp_disabled/vbf"

	// DefaultFilePermissions is the default file permission for config and profile files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
	// errNegativeWorkers is returned for a negative worker count.
	errNegativeWorkers = errors.New("resolve_workers must not be negative")
)

// Load reads configuration from the provided path, applies environment
// overrides and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	ApplyEnv(&cfg, os.LookupEnv)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions, the file may hold credentials.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides upstream settings with non-empty environment values.
func ApplyEnv(cfg *Config, lookup LookupFunc) {
	overrides := map[string]*string{
		"GERRIT_URL":           &cfg.Gerrit.URL,
		"GERRIT_USER":          &cfg.Gerrit.User,
		"GERRIT_PASS":          &cfg.Gerrit.Password,
		"ARTIFACTORY_BASE_URL": &cfg.Artifactory.BaseURL,
		"ARTIFACTORY_REPO":     &cfg.Artifactory.Repo,
		"ARTIFACTORY_TOKEN":    &cfg.Artifactory.Token,
		"CARWEAVER_URL":        &cfg.CarWeaver.URL,
		"CARWEAVER_USER":       &cfg.CarWeaver.User,
		"CARWEAVER_PASS":       &cfg.CarWeaver.Password,
		"CARWEAVER_KEY":        &cfg.CarWeaver.UserKey,
	}

	for key, target := range overrides {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*target = value
		}
	}
}

// Validate checks the provided settings for required fields and formatting
// and fills in defaults.
func Validate(settings *Config) error {
	if settings.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.ProfilesFile == "" {
		settings.ProfilesFile = DefaultProfilesFilename
	}

	switch {
	case settings.ResolveWorkers < 0:
		return errNegativeWorkers
	case settings.ResolveWorkers == 0:
		settings.ResolveWorkers = DefaultResolveWorkers
	}

	if settings.Artifactory.Repo == "" {
		settings.Artifactory.Repo = DefaultArtifactoryRepo
	}

	if settings.Artifactory.PathSuffix == "" {
		settings.Artifactory.PathSuffix = DefaultPathSuffix
	}

	upstreams := map[string]string{
		"gerrit url":           settings.Gerrit.URL,
		"artifactory base url": settings.Artifactory.BaseURL,
		"carweaver url":        settings.CarWeaver.URL,
	}

	for name, raw := range upstreams {
		if raw == "" {
			continue
		}

		if _, err := url.ParseRequestURI(raw); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	return nil
}
