// Package config loads converter settings from .env, the environment and
// an optional YAML file of per-bank overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/insightdelivered/qbo-statement-converter/internal/parser"
)

// Config holds the runtime settings. CLI flags override these values.
type Config struct {
	ExportDir    string
	ImportDir    string
	UploadDir    string
	ListenAddr   string
	LogLevel     string
	LogFormat    string
	Tolerance    decimal.Decimal
	StrictDates  bool
	ProfilesFile string

	// Profiles maps a bank id or alias to its overrides.
	Profiles map[string]ProfileOverride
}

// ProfileOverride changes a bank profile's output settings. Nil fields keep
// the built-in value.
type ProfileOverride struct {
	IncludeBalance   *bool `yaml:"include_balance"`
	DescriptionLimit *int  `yaml:"description_limit"`
	DropOpeningRow   *bool `yaml:"drop_opening_row"`
}

type profilesDoc struct {
	Banks map[string]ProfileOverride `yaml:"banks"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() *Config {
	return &Config{
		ExportDir:  "export",
		ImportDir:  "import",
		UploadDir:  "uploads",
		ListenAddr: ":8080",
		LogLevel:   "info",
		LogFormat:  "console",
		Tolerance:  decimal.New(1, -2),
	}
}

// Load reads envFiles (".env" when none are given) into the process
// environment, then builds the config from it. Missing env files are not
// an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the config from getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	c := Defaults()
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.ExportDir, "EXPORT_DIR")
	set(&c.ImportDir, "IMPORT_DIR")
	set(&c.UploadDir, "UPLOAD_DIR")
	set(&c.ListenAddr, "LISTEN_ADDR")
	set(&c.LogLevel, "LOG_LEVEL")
	set(&c.LogFormat, "LOG_FORMAT")
	set(&c.ProfilesFile, "PROFILES_FILE")

	if v := strings.TrimSpace(getenv("BALANCE_TOLERANCE")); v != "" {
		tol, err := decimal.NewFromString(v)
		if err != nil || tol.IsNegative() {
			return nil, fmt.Errorf("invalid BALANCE_TOLERANCE %q", v)
		}
		c.Tolerance = tol
	}
	if v := strings.TrimSpace(getenv("STRICT_DATES")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid STRICT_DATES %q: %w", v, err)
		}
		c.StrictDates = b
	}

	if c.ProfilesFile != "" {
		p, err := LoadProfiles(c.ProfilesFile)
		if err != nil {
			return nil, err
		}
		c.Profiles = p
	}
	return c, nil
}

// LoadProfiles reads a YAML document of the form
//
//	banks:
//	  bkt:
//	    include_balance: true
//	    description_limit: 200
func LoadProfiles(path string) (map[string]ProfileOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read profiles file %q: %w", path, err)
	}
	var doc profilesDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("could not parse profiles file %q: %w", path, err)
	}
	for bank, ov := range doc.Banks {
		if ov.DescriptionLimit != nil && *ov.DescriptionLimit <= 0 {
			return nil, fmt.Errorf("profiles file %q: %s: description_limit must be positive", path, bank)
		}
	}
	return doc.Banks, nil
}

// Apply writes the profile overrides into r.
func (c *Config) Apply(r *parser.Registry) error {
	for name, ov := range c.Profiles {
		p, err := r.Lookup(name)
		if err != nil {
			return fmt.Errorf("profiles file: %w", err)
		}
		if err := r.Configure(p.Bank, func(p *parser.Profile) {
			if ov.IncludeBalance != nil {
				p.KeepBalance = *ov.IncludeBalance
			}
			if ov.DescriptionLimit != nil {
				p.Style.Limit = *ov.DescriptionLimit
			}
			if ov.DropOpeningRow != nil {
				p.DropOpeningRow = *ov.DropOpeningRow
			}
		}); err != nil {
			return err
		}
	}
	return nil
}
