package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vango-dev/graft/internal/errors"
	"github.com/vango-dev/graft/pkg/component"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "graft.json"

	// DefaultPort is the default server port.
	DefaultPort = 4100

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultMaxBodyBytes bounds request bodies of the hydrate endpoint.
	DefaultMaxBodyBytes = 4 << 20

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "graft"

	// DefaultStoreDir is the default directory of the disk store.
	DefaultStoreDir = "pages"
)

// Store kinds.
const (
	StoreDisk = "disk"
	StoreS3   = "s3"
	StoreNone = "none"
)

// Config represents the complete graft.json configuration.
type Config struct {
	// Hydrate contains hydration output settings.
	Hydrate HydrateConfig `json:"hydrate"`

	// Components maps a component tag to its definition.
	Components map[string]ComponentConfig `json:"components,omitempty"`

	// Server contains HTTP server settings.
	Server ServerConfig `json:"server"`

	// Store contains page storage settings.
	Store StoreConfig `json:"store"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// HydrateConfig contains hydration output settings.
type HydrateConfig struct {
	// HydratedClass is added to every hydrated host.
	HydratedClass string `json:"hydratedClass,omitempty"`

	// Dir is written to the dir attribute of <html>.
	Dir string `json:"dir,omitempty"`
}

// ComponentConfig defines one template component.
type ComponentConfig struct {
	// Template is the path to the component's HTML template, relative to
	// the config file.
	Template string `json:"template"`

	// Scoped marks the component's styles as scoped to its host.
	Scoped bool `json:"scoped,omitempty"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes int64 `json:"maxBodyBytes,omitempty"`
}

// StoreConfig contains page storage settings.
type StoreConfig struct {
	// Kind is one of "disk", "s3" or "none".
	Kind string `json:"kind,omitempty"`

	// Dir is the root of the disk store, relative to the config file.
	Dir string `json:"dir,omitempty"`

	// Bucket, Prefix, Region and Endpoint configure the S3 store.
	Bucket   string `json:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty"`
	Region   string `json:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`

	// Precompress writes a brotli variant next to every page.
	Precompress bool `json:"precompress,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes /metrics.
	Enabled bool `json:"enabled"`

	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{
		Metrics: MetricsConfig{Enabled: true},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads graft.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No graft.json found in " + filepath.Dir(path))
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := &Config{Metrics: MetricsConfig{Enabled: true}}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse graft.json: " + err.Error())
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("E120").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Hydrate.HydratedClass == "" {
		c.Hydrate.HydratedClass = "hydrated"
	}
	if c.Hydrate.Dir == "" {
		c.Hydrate.Dir = "ltr"
	}

	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}

	if c.Store.Kind == "" {
		c.Store.Kind = StoreDisk
	}
	if c.Store.Kind == StoreDisk && c.Store.Dir == "" {
		c.Store.Dir = DefaultStoreDir
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E121").
			WithDetail("server.port must be between 0 and 65535")
	}
	if c.Server.MaxBodyBytes < 0 {
		return errors.New("E121").
			WithDetail("server.maxBodyBytes must not be negative")
	}
	if c.Hydrate.Dir != "ltr" && c.Hydrate.Dir != "rtl" && c.Hydrate.Dir != "auto" {
		return errors.New("E121").
			WithDetailf("hydrate.dir must be ltr, rtl or auto, got %q", c.Hydrate.Dir)
	}

	switch c.Store.Kind {
	case StoreDisk:
		if c.Store.Dir == "" {
			return errors.New("E121").WithDetail("store.dir is required for the disk store")
		}
	case StoreS3:
		if c.Store.Bucket == "" {
			return errors.New("E121").WithDetail("store.bucket is required for the s3 store")
		}
	case StoreNone:
	default:
		return errors.New("E121").
			WithDetailf("store.kind must be disk, s3 or none, got %q", c.Store.Kind)
	}

	for tag, comp := range c.Components {
		if !component.ValidTag(tag) {
			return errors.New("E121").
				WithDetailf("components: %q is not a valid custom element name", tag).
				WithSuggestion("Component tags are lowercase and contain a hyphen, e.g. \"my-card\"")
		}
		if comp.Template == "" {
			return errors.New("E121").WithDetailf("components.%s.template is required", tag)
		}
	}
	return nil
}

// Address returns the listen address of the server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// StorePath returns the absolute path of the disk store.
func (c *Config) StorePath() string {
	return c.resolve(c.Store.Dir)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing graft.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E141").
				WithDetail("No graft.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or its nearest parent holding graft.json.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
