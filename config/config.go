package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"doctemplates/theme"
)

// DefaultFile is looked up in the working directory when no --config is given.
const DefaultFile = "doctemplates.yaml"

type Config struct {
	Source  string `mapstructure:"source" yaml:"source"`
	Marker  string `mapstructure:"marker" yaml:"marker"`
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`
	DistDir string `mapstructure:"dist_dir" yaml:"dist_dir"`
}

func Default() Config {
	return Config{
		Source:  filepath.Join("..", "AiDocPlus", "packages", "shared-types", "src", "index.ts"),
		Marker:  theme.DefaultMarker,
		DataDir: "data",
		DistDir: "dist",
	}
}

// Load reads the YAML config at path over the defaults. An empty path means
// DefaultFile; a missing default file is not an error, a missing explicit
// one is. Environment variables are not consulted.
func Load(path string) (Config, error) {
	def := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("source", def.Source)
	v.SetDefault("marker", def.Marker)
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("dist_dir", def.DistDir)

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return def, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}

	if cfg.Source == "" {
		cfg.Source = def.Source
	}
	if cfg.Marker == "" {
		cfg.Marker = def.Marker
	}
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.DistDir == "" {
		cfg.DistDir = def.DistDir
	}

	return cfg, nil
}

// Save writes cfg as YAML to path, replacing any existing file atomically.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := enc.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, path)
}
