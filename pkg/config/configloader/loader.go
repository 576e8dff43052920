package configloader

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	DefaultConfigFile = "config.yaml"
	defaultEnvFile    = ".env"
)

type Validator interface {
	Validate() error
}

// Options controls where Load looks for configuration.
type Options struct {
	// AppName derives the env prefix: "inventory" reads INVENTORY_STORE_PATH as store.path.
	AppName string
	// ConfigFile is the yaml file to read. Empty means DefaultConfigFile, which may be absent.
	// A file named explicitly must exist.
	ConfigFile string
	// EnvFile is the dotenv file to read. Empty means ".env", which may be absent.
	EnvFile string
	// Defaults are loaded first and overridden by every other source.
	Defaults map[string]any
}

// Load reads configuration in order of increasing priority:
// defaults, yaml file, .env file and finally the process environment.
func Load[T Validator](opts Options) (T, error) {
	var cfg T
	k := koanf.New(".")

	envPrefix := fmt.Sprintf("%s_", strings.ToUpper(opts.AppName))

	// 0. Defaults, the lowest priority
	if len(opts.Defaults) > 0 {
		if err := k.Load(confmap.Provider(opts.Defaults, "."), nil); err != nil {
			return cfg, fmt.Errorf("error loading default config: %w", err)
		}
	}

	// 1. Load configuration from yaml file
	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = DefaultConfigFile
	}
	if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		switch {
		case opts.ConfigFile != "":
			return cfg, fmt.Errorf("error loading config file '%s': %w", configFile, err)
		case !os.IsNotExist(err):
			log.Printf("WARN: error loading YAML config file '%s': %v", configFile, err)
		}
	}

	// 2. Load environment variables from .env file
	envTransformer := func(key string) string {
		key = strings.ToLower(key)
		key = strings.TrimPrefix(key, strings.ToLower(envPrefix))
		return strings.ReplaceAll(key, "_", ".")
	}
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = defaultEnvFile
	}
	if envFileMap, err := godotenv.Read(envFile); err == nil {
		envMap := make(map[string]any)
		for key, value := range envFileMap {
			if !strings.HasPrefix(strings.ToUpper(key), envPrefix) {
				continue
			}
			envMap[envTransformer(key)] = value
		}
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			log.Printf("WARN: error loading .env config: %v", err)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("WARN: error reading .env file: %v", err)
	}

	// 3. Load environment variables from the system, the highest priority
	if err := k.Load(env.Provider(envPrefix, ".", envTransformer), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	// 4. Unmarshal the configuration into the Config struct
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// 5. Validate the configuration
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}
