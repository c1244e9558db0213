package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/insightdelivered/qbo-statement-converter/internal/models"
	"github.com/insightdelivered/qbo-statement-converter/internal/parser"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	c, err := FromEnv(env(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ExportDir != "export" || c.ImportDir != "import" || c.ListenAddr != ":8080" {
		t.Errorf("got %+v", c)
	}
	if c.Tolerance.String() != "0.01" {
		t.Errorf("tolerance: got %s, want 0.01", c.Tolerance)
	}
	if c.StrictDates {
		t.Error("strict dates should default to false")
	}
}

func TestFromEnv(t *testing.T) {
	c, err := FromEnv(env(map[string]string{
		"EXPORT_DIR":        "out",
		"LOG_LEVEL":         "debug",
		"LOG_FORMAT":        "json",
		"BALANCE_TOLERANCE": "0.05",
		"STRICT_DATES":      "true",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ExportDir != "out" || c.LogLevel != "debug" || c.LogFormat != "json" {
		t.Errorf("got %+v", c)
	}
	if c.Tolerance.String() != "0.05" || !c.StrictDates {
		t.Errorf("got tolerance %s strict %v", c.Tolerance, c.StrictDates)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"tolerance", map[string]string{"BALANCE_TOLERANCE": "abc"}},
		{"negative tolerance", map[string]string{"BALANCE_TOLERANCE": "-1"}},
		{"strict dates", map[string]string{"STRICT_DATES": "maybe"}},
		{"missing profiles file", map[string]string{"PROFILES_FILE": "/does/not/exist.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromEnv(env(tt.env)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProfilesApply(t *testing.T) {
	path := writeFile(t, "profiles.yaml", `
banks:
  bkt:
    include_balance: true
    description_limit: 200
  tirana:
    drop_opening_row: false
`)
	c, err := FromEnv(env(map[string]string{"PROFILES_FILE": path}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := parser.DefaultRegistry()
	if err := c.Apply(r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bkt, _ := r.Lookup("bkt")
	if !bkt.KeepBalance || bkt.Style.Limit != 200 || !bkt.DropOpeningRow {
		t.Errorf("bkt: got keep %v limit %d drop %v", bkt.KeepBalance, bkt.Style.Limit, bkt.DropOpeningRow)
	}
	tirana, _ := r.Lookup("tibank")
	if tirana.DropOpeningRow {
		t.Error("tirana: drop opening row should be disabled")
	}
	if tirana.KeepBalance {
		t.Error("tirana: unset fields must keep their defaults")
	}
}

func TestProfilesApply_UnknownBank(t *testing.T) {
	c := Defaults()
	yes := true
	c.Profiles = map[string]ProfileOverride{"hsbc": {IncludeBalance: &yes}}
	if err := c.Apply(parser.DefaultRegistry()); !errors.Is(err, models.ErrUnknownBank) {
		t.Errorf("got %v, want ErrUnknownBank", err)
	}
}

func TestLoadProfiles_Invalid(t *testing.T) {
	tests := []struct {
		name, content string
	}{
		{"bad yaml", "banks: [unclosed"},
		{"zero limit", "banks:\n  bkt:\n    description_limit: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadProfiles(writeFile(t, "p.yaml", tt.content)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	path := writeFile(t, ".env", "IMPORT_DIR=statements\n")
	t.Setenv("IMPORT_DIR", "")
	os.Unsetenv("IMPORT_DIR")

	c, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ImportDir != "statements" {
		t.Errorf("got %q, want %q", c.ImportDir, "statements")
	}
}
