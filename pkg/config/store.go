package config

import (
	"fmt"
	"strings"
)

// StoreConfig locates the single file that backs the inventory.
type StoreConfig struct {
	Path    string `koanf:"path"`
	Backend string `koanf:"backend"`
}

// String returns a string representation of the store configuration.
func (c *StoreConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Store ---\n")
	b.WriteString(fmt.Sprintf("  path: %s\n", c.Path))
	b.WriteString(fmt.Sprintf("  backend: %s\n", c.Backend))
	return b.String()
}

func (c *StoreConfig) Validate() error {
	if strings.TrimSpace(c.Path) == "" {
		return fmt.Errorf("store path is not configured")
	}
	switch c.Backend {
	case "file", "sqlite":
		return nil
	default:
		return fmt.Errorf("invalid store backend %q: must be 'file' or 'sqlite'", c.Backend)
	}
}
