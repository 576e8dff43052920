package config

import (
	"strings"

	"github.com/abgdnv/inventory/pkg/config"
	"github.com/abgdnv/inventory/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

// AppName prefixes every environment variable the inventory reads.
const AppName = "inventory"

type Config struct {
	Store      config.StoreConfig    `koanf:"store"`
	HTTPServer config.HTTPConfig     `koanf:"server"`
	Log        config.LogConfig      `koanf:"log"`
	Shutdown   config.ShutdownConfig `koanf:"shutdown"`
}

// Defaults returns the values used when no file or environment variable overrides them.
func Defaults() map[string]any {
	return map[string]any{
		"store.path":                "inventory_data.dat",
		"store.backend":             "file",
		"server.host":               "127.0.0.1",
		"server.port":               8080,
		"server.maxHeaderBytes":     1 << 20,
		"server.timeout.read":       "5s",
		"server.timeout.write":      "10s",
		"server.timeout.idle":       "120s",
		"server.timeout.readHeader": "2s",
		"log.level":                 "info",
		"log.format":                "json",
		"shutdown.timeout":          "5s",
	}
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.Store.String())
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks the sections every command needs.
// The server sections are only checked by ValidateServer.
func (c *Config) Validate() error {
	if err := c.Store.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}

// ValidateServer checks the sections used by the HTTP server.
func (c *Config) ValidateServer() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	return c.Shutdown.Validate()
}

// Load reads the configuration. An empty configFile falls back to an optional config.yaml.
func Load(configFile string) (*Config, error) {
	return configloader.Load[*Config](configloader.Options{
		AppName:    AppName,
		ConfigFile: configFile,
		Defaults:   Defaults(),
	})
}
