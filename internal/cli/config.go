package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/treesplit/pkg/cache"
	"github.com/matzehuels/treesplit/pkg/errors"
	"github.com/matzehuels/treesplit/pkg/pipeline"
)

// Environment variables that override the config file.
const (
	envRedisURL = "TREESPLIT_REDIS_URL"
	envMongoURI = "TREESPLIT_MONGO_URI"
)

// Config holds defaults read from the config file. Flags given on the
// command line always win.
//
//	palette = "tol"
//	style = "labeled"
//	width = 1200
//	height = 800
//	max_depth = 8
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
type Config struct {
	Palette  string       `toml:"palette"`
	Style    string       `toml:"style"`
	Width    float64      `toml:"width"`
	Height   float64      `toml:"height"`
	MaxDepth *int         `toml:"max_depth"`
	Cache    cache.Config `toml:"cache"`
	Server   ServerConfig `toml:"server"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

// configPath returns the config file location using the XDG standard
// (~/.config/treesplit/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// readConfig decodes the config file at path. A missing file is an error
// only when the path was given explicitly.
func readConfig(path string, explicit bool) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return Config{}, nil
		}
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", path)
	}
	return cfg, nil
}

// applyEnv overrides remote cache settings from the environment. Setting
// a URL also selects its backend unless one is configured.
func (cfg *Config) applyEnv() {
	if v := os.Getenv(envRedisURL); v != "" {
		cfg.Cache.RedisURL = v
		if cfg.Cache.Backend == "" {
			cfg.Cache.Backend = cache.BackendRedis
		}
	}
	if v := os.Getenv(envMongoURI); v != "" {
		cfg.Cache.MongoURI = v
		if cfg.Cache.Backend == "" {
			cfg.Cache.Backend = cache.BackendMongo
		}
	}
}

// loadConfig reads the config file named by --config or the default path.
func (c *CLI) loadConfig() error {
	path, explicit := c.configPath, c.configPath != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return nil
		}
		path = p
	}
	cfg, err := readConfig(path, explicit)
	if err != nil {
		return err
	}
	cfg.applyEnv()
	c.Config = cfg
	c.Logger.Debug("config loaded", "path", path)
	return nil
}

// applyConfig fills options whose flags were not set from the config file.
func (c *CLI) applyConfig(cmd *cobra.Command, opts *pipeline.Options) {
	changed := cmd.Flags().Changed
	if !changed("palette") && c.Config.Palette != "" {
		opts.Palette = c.Config.Palette
	}
	if !changed("style") && c.Config.Style != "" {
		opts.Style = c.Config.Style
	}
	if !changed("width") && c.Config.Width > 0 {
		opts.Width = c.Config.Width
	}
	if !changed("height") && c.Config.Height > 0 {
		opts.Height = c.Config.Height
	}
	if !changed("max-depth") && c.Config.MaxDepth != nil {
		opts.MaxDepth = pipeline.WithMaxDepth(*c.Config.MaxDepth)
	}
}
