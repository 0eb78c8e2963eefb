// Package config loads uoft-courses settings from defaults, an optional YAML
// file, a .env file, and UOFT_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pfrederiksen/uoft-courses/internal/calendar"
	"github.com/pfrederiksen/uoft-courses/internal/page"
	"github.com/pfrederiksen/uoft-courses/internal/timetable"
)

// EnvPrefix prefixes every environment override, e.g. UOFT_DATABASE_DRIVER.
const EnvPrefix = "UOFT"

// Config is the full application configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Scrape    ScrapeConfig    `mapstructure:"scrape"`
	Calendar  CalendarConfig  `mapstructure:"calendar"`
	Timetable TimetableConfig `mapstructure:"timetable"`
	// Skip lists page file names known not to parse.
	Skip []string `mapstructure:"skip"`
}

// DatabaseConfig selects and locates the course database
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // sqlite or mysql
	Path         string `mapstructure:"path"`   // sqlite only
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// ServerConfig configures the read API
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// ScrapeConfig configures page downloads
type ScrapeConfig struct {
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	PagesDir  string        `mapstructure:"pages_dir"`
	Inventory string        `mapstructure:"inventory"`
}

// CalendarConfig describes the narrative page template
type CalendarConfig struct {
	NameSelector   string   `mapstructure:"name_selector"`
	HeadingSuffix  string   `mapstructure:"heading_suffix"`
	FooterSelector string   `mapstructure:"footer_selector"`
	Labels         []string `mapstructure:"labels"`
}

// TimetableConfig describes the tabular page template
type TimetableConfig struct {
	TitleSelectors []string `mapstructure:"title_selectors"`
	TitlePattern   string   `mapstructure:"title_pattern"`
	TableSelector  string   `mapstructure:"table_selector"`
}

// Template converts the settings into a calendar template.
func (c CalendarConfig) Template() calendar.Template {
	return calendar.Template{
		NameSelector: c.NameSelector,
		Boundaries: page.Boundaries{
			HeadingSuffix:  c.HeadingSuffix,
			FooterSelector: c.FooterSelector,
		},
		Labels: c.Labels,
	}
}

// Template converts the settings into a timetable template.
func (c TimetableConfig) Template() timetable.Template {
	return timetable.Template{
		TitleSelectors: c.TitleSelectors,
		TitlePattern:   c.TitlePattern,
		TableSelector:  c.TableSelector,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "courses.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "courses")
	v.SetDefault("database.max_open_conns", 1)

	v.SetDefault("server.port", 5050)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("scrape.user_agent", "uoft-courses/1.0 (github.com/pfrederiksen/uoft-courses)")
	v.SetDefault("scrape.timeout", "30s")
	v.SetDefault("scrape.pages_dir", "pages")
	v.SetDefault("scrape.inventory", "inventory.yaml")

	v.SetDefault("calendar.name_selector", calendar.DefaultTemplate.NameSelector)
	v.SetDefault("calendar.heading_suffix", calendar.DefaultTemplate.Boundaries.HeadingSuffix)
	v.SetDefault("calendar.footer_selector", calendar.DefaultTemplate.Boundaries.FooterSelector)
	v.SetDefault("calendar.labels", calendar.DefaultLabels)

	v.SetDefault("timetable.title_selectors", timetable.DefaultTemplate.TitleSelectors)
	v.SetDefault("timetable.title_pattern", timetable.DefaultTemplate.TitlePattern)
	v.SetDefault("timetable.table_selector", timetable.DefaultTemplate.TableSelector)

	v.SetDefault("skip", []string{})
}

// Load reads configuration. path may be empty, in which case config.yaml is
// looked up in ./config and the working directory and is optional.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("config: database.path is required for sqlite")
		}
	case "mysql":
		if c.Database.Name == "" {
			return fmt.Errorf("config: database.name is required for mysql")
		}
	default:
		return fmt.Errorf("config: unsupported database.driver %q (want sqlite or mysql)", c.Database.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be between 1 and 65535")
	}
	if c.Scrape.Timeout <= 0 {
		return fmt.Errorf("config: scrape.timeout must be positive")
	}
	if err := c.Calendar.Template().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := timetable.New(c.Timetable.Template()); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
