package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pfrederiksen/uoft-courses/internal/timetable"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Database.Driver != "sqlite" || cfg.Database.Path != "courses.db" {
		t.Errorf("Database = %+v, want sqlite courses.db", cfg.Database)
	}
	if cfg.Server.Port != 5050 {
		t.Errorf("Server.Port = %d, want 5050", cfg.Server.Port)
	}
	if cfg.Scrape.Timeout != 30*time.Second {
		t.Errorf("Scrape.Timeout = %v, want 30s", cfg.Scrape.Timeout)
	}
	if cfg.Calendar.FooterSelector != "div#footer" {
		t.Errorf("Calendar.FooterSelector = %q", cfg.Calendar.FooterSelector)
	}
	if len(cfg.Calendar.Labels) != 6 {
		t.Errorf("Calendar.Labels = %v, want 6 labels", cfg.Calendar.Labels)
	}
	if cfg.Timetable.TitlePattern != timetable.DefaultTitlePattern {
		t.Errorf("Timetable.TitlePattern = %q", cfg.Timetable.TitlePattern)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "uoft.yaml")
	content := `
database:
  driver: sqlite
  path: archive.db
log:
  level: debug
timetable:
  title_pattern: '(.*?)\s*?(\[\w\w\w (.*?)courses?(.*?)\])'
skip:
  - 2012-2013 Calendar - Life Sciences.htm
  - 2012-2013 Calendar - Biology.htm
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("UOFT_SERVER_PORT", "8081")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Database.Path != "archive.db" {
		t.Errorf("Database.Path = %q, want archive.db", cfg.Database.Path)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("Server.Port = %d, want 8081 from env", cfg.Server.Port)
	}
	if cfg.Timetable.TitlePattern != timetable.StrictTitlePattern {
		t.Errorf("Timetable.TitlePattern = %q, want strict pattern", cfg.Timetable.TitlePattern)
	}
	if len(cfg.Skip) != 2 {
		t.Errorf("Skip = %v, want 2 entries", cfg.Skip)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("UOFT_DATABASE_PATH=from-dotenv.db\n"), 0600); err != nil {
		t.Fatal(err)
	}
	// godotenv does not override variables that are already set; make sure
	// the variable is unset for this test and restored afterwards.
	t.Setenv("UOFT_DATABASE_PATH", "")
	os.Unsetenv("UOFT_DATABASE_PATH")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Database.Path != "from-dotenv.db" {
		t.Errorf("Database.Path = %q, want from-dotenv.db", cfg.Database.Path)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())

	if _, err := Load("does-not-exist.yaml"); err == nil {
		t.Error("Load() with a missing explicit file should fail")
	}
}

func TestValidate(t *testing.T) {
	chdir(t, t.TempDir())

	base, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }},
		{"mysql without name", func(c *Config) { c.Database.Driver = "mysql"; c.Database.Name = "" }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"zero timeout", func(c *Config) { c.Scrape.Timeout = 0 }},
		{"unknown label", func(c *Config) { c.Calendar.Labels = []string{"Notes"} }},
		{"bad title pattern", func(c *Config) { c.Timetable.TitlePattern = "(" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.mod(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() accepted an invalid config")
			}
		})
	}
}
