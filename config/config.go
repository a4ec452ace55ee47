// Reads the avdconv.json configuration file.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"gopkg.in/errgo.v1"

	"github.com/benoitkugler/avdconv/batch"
	"github.com/benoitkugler/avdconv/convert"
	"github.com/benoitkugler/avdconv/palette"
)

const (
	// FileName is the name of the configuration file looked up
	// in the working directory.
	FileName = "avdconv.json"

	DefaultIndent       = 4
	DefaultAddr         = ":8080"
	DefaultMaxBodyBytes = 1 << 20
	DefaultRegion       = "us-east-1"
)

var ErrInvalid = errgo.New("invalid configuration")

// Config is the content of avdconv.json.
type Config struct {
	// Indent is the number of spaces per level in outputs.
	// Zero writes documents on a single line.
	Indent *int `json:"indent,omitempty"`

	// Unsupported is the policy for unknown drawable tags:
	// "keep" (default) or "drop".
	Unsupported string `json:"unsupported,omitempty"`

	// Palette is the path of a JSON palette, relative to the
	// configuration file. Empty selects the built-in palette.
	Palette string `json:"palette,omitempty"`

	// Workers bounds batch concurrency (0 means one per CPU).
	Workers int `json:"workers,omitempty"`

	// Overwrite allows batch conversions to replace existing files.
	Overwrite bool `json:"overwrite,omitempty"`

	Server ServerConfig `json:"server,omitempty"`
	S3     S3Config     `json:"s3,omitempty"`

	path string
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string `json:"addr,omitempty"`
	MaxBodyBytes int64  `json:"maxBodyBytes,omitempty"`
}

// S3Config configures the client used for s3:// outputs.
type S3Config struct {
	Region       string `json:"region,omitempty"`
	Endpoint     string `json:"endpoint,omitempty"`
	UsePathStyle bool   `json:"usePathStyle,omitempty"`
}

// New returns a configuration with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errgo.Mask(err, os.IsNotExist)
	}
	c := &Config{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, errgo.Notef(err, "failed to parse %s", path)
	}
	c.path = path
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, errgo.NoteMask(err, path, errgo.Is(ErrInvalid))
	}
	return c, nil
}

// LoadOrDefault reads `path` if it is not empty. Otherwise it reads
// FileName from the working directory, falling back to New
// when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	c, err := LoadFile(FileName)
	if os.IsNotExist(errgo.Cause(err)) {
		return New(), nil
	}
	return c, err
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string { return c.path }

func (c *Config) applyDefaults() {
	if c.Indent == nil {
		indent := DefaultIndent
		c.Indent = &indent
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.S3.Region == "" {
		c.S3.Region = DefaultRegion
	}
}

// Validate checks the value ranges.
func (c *Config) Validate() error {
	if c.Indent != nil && *c.Indent < 0 {
		return errgo.WithCausef(nil, ErrInvalid, "indent must be non-negative, got %d", *c.Indent)
	}
	if _, err := convert.ParsePolicy(c.Unsupported); err != nil {
		return errgo.WithCausef(nil, ErrInvalid, "%s", err)
	}
	if c.Workers < 0 {
		return errgo.WithCausef(nil, ErrInvalid, "workers must be non-negative, got %d", c.Workers)
	}
	if c.Server.MaxBodyBytes < 0 {
		return errgo.WithCausef(nil, ErrInvalid, "server.maxBodyBytes must be non-negative, got %d", c.Server.MaxBodyBytes)
	}
	return nil
}

// ConvertOptions returns the conversion options selected by
// the configuration.
func (c *Config) ConvertOptions() []convert.Option {
	indent := DefaultIndent
	if c.Indent != nil {
		indent = *c.Indent
	}
	policy, _ := convert.ParsePolicy(c.Unsupported)
	return []convert.Option{convert.WithIndent(indent), convert.WithPolicy(policy)}
}

// LoadPalette reads the configured palette, or returns the
// built-in one.
func (c *Config) LoadPalette() (palette.Palette, error) {
	if c.Palette == "" {
		return palette.Default(), nil
	}
	path := c.Palette
	if !filepath.IsAbs(path) && c.path != "" {
		path = filepath.Join(filepath.Dir(c.path), path)
	}
	return palette.LoadFile(path)
}

// S3Client returns the settings for batch.NewS3Client.
func (c *Config) S3Client() batch.S3Config {
	return batch.S3Config{
		Region:       c.S3.Region,
		Endpoint:     c.S3.Endpoint,
		UsePathStyle: c.S3.UsePathStyle,
	}
}
