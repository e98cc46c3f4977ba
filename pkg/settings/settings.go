// Package settings loads albumkit configuration from defaults, an optional
// YAML file and ALBUMKIT_* environment variables.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/tstromberg/albumkit/pkg/albumkit"
)

// EnvPrefix is prepended to every environment override, e.g. ALBUMKIT_ROOT.
const EnvPrefix = "ALBUMKIT"

// Settings are the knobs shared by the albumkit commands.
type Settings struct {
	Root    string `mapstructure:"root"`
	Width   int    `mapstructure:"width"`
	Quality int    `mapstructure:"quality"`
	Workers int    `mapstructure:"workers"`
	URLBase string `mapstructure:"url_base"`
	Out     string `mapstructure:"out"`
}

// Load reads configuration. An empty path searches the working directory for
// albumkit.yaml; a missing file there is not an error, but a missing explicit file is.
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.SetDefault("root", "src/assets/albums")
	v.SetDefault("width", albumkit.DefaultWidth)
	v.SetDefault("quality", albumkit.DefaultQuality)
	v.SetDefault("workers", 0)
	v.SetDefault("url_base", "/assets/albums")
	v.SetDefault("out", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("albumkit")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &nf) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate rejects values the build cannot honor.
func (s *Settings) Validate() error {
	if s.Root == "" {
		return errors.New("root must not be empty")
	}
	if s.Width < 1 {
		return fmt.Errorf("width must be at least 1, got %d", s.Width)
	}
	if s.Quality < 1 || s.Quality > 100 {
		return fmt.Errorf("quality must be within 1-100, got %d", s.Quality)
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", s.Workers)
	}
	return nil
}

// BuildConfig returns the thumbnail build configuration.
func (s *Settings) BuildConfig() *albumkit.Config {
	return &albumkit.Config{
		Root:    s.Root,
		Width:   s.Width,
		Quality: s.Quality,
		Workers: s.Workers,
	}
}
