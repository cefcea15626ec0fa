// Package config loads the settings of the map server from defaults, an optional YAML file and GRIDMAP_* environment
// variables, in increasing order of precedence.
package config

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
	"gridmap/grid"
	"io"
	"strings"
	"time"
)

const envPrefix = "GRIDMAP"

type GridConfig struct {
	EdgeSize int `mapstructure:"edge_size" yaml:"edge_size"`
	MinZoom  int `mapstructure:"min_zoom" yaml:"min_zoom"`
	MaxZoom  int `mapstructure:"max_zoom" yaml:"max_zoom"`
	TileSize int `mapstructure:"tile_size" yaml:"tile_size"`
}

type TilesConfig struct {
	BaseUrl string `mapstructure:"base_url" yaml:"base_url"`
}

type NamingConfig struct {
	CapabilityUrl string        `mapstructure:"capability_url" yaml:"capability_url"`
	Variable      string        `mapstructure:"variable" yaml:"variable"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	CacheSize     int           `mapstructure:"cache_size" yaml:"cache_size"`
	CacheFile     string        `mapstructure:"cache_file" yaml:"cache_file"`
}

type LocationConfig struct {
	UriPrefix string `mapstructure:"uri_prefix" yaml:"uri_prefix"`
	JoinUrl   string `mapstructure:"join_url" yaml:"join_url"`
}

type ServerConfig struct {
	Port     string `mapstructure:"port" yaml:"port"`
	CertFile string `mapstructure:"cert_file" yaml:"cert_file"`
	KeyFile  string `mapstructure:"key_file" yaml:"key_file"`
}

type Config struct {
	Grid     GridConfig     `mapstructure:"grid" yaml:"grid"`
	Tiles    TilesConfig    `mapstructure:"tiles" yaml:"tiles"`
	Naming   NamingConfig   `mapstructure:"naming" yaml:"naming"`
	Location LocationConfig `mapstructure:"location" yaml:"location"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
}

func setDefaults(vp *viper.Viper) {
	// The edge size must be a power of 2 and divisible by 2^(max zoom).
	vp.SetDefault("grid.edge_size", 1048576)
	vp.SetDefault("grid.min_zoom", 1)
	vp.SetDefault("grid.max_zoom", 8)
	vp.SetDefault("grid.tile_size", 256)

	vp.SetDefault("tiles.base_url", "https://secondlife-maps-cdn.akamaized.net")

	vp.SetDefault("naming.capability_url", "https://cap.secondlife.com/cap/0/b713fe80-283b-4585-af4d-a3b7d9a32492")
	vp.SetDefault("naming.variable", "slRegionName")
	vp.SetDefault("naming.timeout", "0s")
	vp.SetDefault("naming.cache_size", 1024)
	vp.SetDefault("naming.cache_file", "")

	vp.SetDefault("location.uri_prefix", "secondlife://")
	vp.SetDefault("location.join_url", "https://join.secondlife.com/")

	vp.SetDefault("server.port", "8080")
	vp.SetDefault("server.cert_file", "")
	vp.SetDefault("server.key_file", "")
}

// Load reads the configuration. An empty file path only uses defaults and environment variables.
func Load(filePath string) (*Config, error) {
	vp := viper.New()
	setDefaults(vp)

	vp.SetEnvPrefix(envPrefix)
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()

	if filePath != "" {
		sigolo.Debugf("Read config file %s", filePath)
		vp.SetConfigFile(filePath)
		vp.SetConfigType("yaml")
		if err := vp.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "Unable to read config file %s", filePath)
		}
	}

	config := &Config{}
	if err := vp.Unmarshal(config); err != nil {
		return nil, errors.Wrap(err, "Unable to decode configuration")
	}

	if config.Tiles.BaseUrl == "" {
		return nil, errors.New("Tile base URL must not be empty")
	}

	return config, nil
}

// Geometry validates the grid settings and returns the geometry for them.
func (c *Config) Geometry() (grid.Geometry, error) {
	return grid.NewGeometry(c.Grid.EdgeSize, c.Grid.MinZoom, c.Grid.MaxZoom, c.Grid.TileSize)
}

// Write prints the effective configuration as YAML.
func (c *Config) Write(writer io.Writer) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(c); err != nil {
		return errors.Wrap(err, "Unable to encode configuration")
	}
	return encoder.Close()
}
