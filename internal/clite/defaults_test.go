package clite

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDefaults(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "defaults.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeDefaults(t, `
global:
  web-url: https://example.com
  count: 2
commands:
  build:
    count: 5
    verbose: true
`)
	d, err := LoadDefaults(path)
	if err != nil {
		t.Fatalf("LoadDefaults: %v", err)
	}

	build := d.Merge("build")
	if build["count"] != 5 || build["verbose"] != true || build["weburl"] != "https://example.com" {
		t.Errorf("Merge(build) = %v", build)
	}
	other := d.Merge("main")
	if other["count"] != 2 {
		t.Errorf("Merge(main) count = %v, want 2", other["count"])
	}
	if _, ok := other["verbose"]; ok {
		t.Error("command section leaked into another command")
	}
}

func TestLoadDefaults_Errors(t *testing.T) {
	_, err := LoadDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Errorf("missing file error = %v, want *ConfigError", err)
	}

	_, err = LoadDefaults(writeDefaults(t, "global: [unclosed"))
	if !errors.As(err, &cerr) || !strings.Contains(err.Error(), "parsing defaults") {
		t.Errorf("bad yaml error = %v", err)
	}
}

func TestDefaults_Validate(t *testing.T) {
	desc := mustDescribe(t, &sampleTool{})

	good := &Defaults{
		Global:   map[string]any{"webUrl": "x", "COUNT": 3},
		Commands: map[string]map[string]any{"read_file": {"verbose": "true"}},
	}
	if err := good.Validate(desc); err != nil {
		t.Errorf("Validate: unexpected error: %v", err)
	}

	bad := &Defaults{
		Global: map[string]any{"colour": "red", "count": "lots"},
		Commands: map[string]map[string]any{
			"deploy": {"count": 1},
			"build":  {"ratio": "half"},
		},
	}
	err := bad.Validate(desc)
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want *ConfigError", err)
	}
	want := []string{
		`defaults global: option "count": expected int, got lots`,
		`defaults global: unknown option "colour"`,
		`defaults commands.build: option "ratio": expected float, got half`,
		`defaults: unknown command "deploy"`,
	}
	for _, w := range want {
		if !strings.Contains(err.Error(), w) {
			t.Errorf("error %q missing %q", err.Error(), w)
		}
	}
}
