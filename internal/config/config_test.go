package config

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/multierr"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestDefault_Values(t *testing.T) {
	cfg := Default()

	if len(cfg.Targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(cfg.Targets))
	}
	if cfg.Targets[0].Name != "carro_azul" || cfg.Targets[1].Name != "carro_amarelo" {
		t.Errorf("unexpected target order: %s, %s", cfg.Targets[0].Name, cfg.Targets[1].Name)
	}
	want := []ExclusionZone{{X1: 0, Y1: 0, X2: 300, Y2: 250, Color: RGB(255, 0, 0)}}
	if diff := cmp.Diff(want, cfg.Zones); diff != "" {
		t.Errorf("zones mismatch (-want +got):\n%s", diff)
	}
	if cfg.Rule != (ValidationRule{MinArea: 1200, MinAspect: 1.3, MaxAspect: 2.8}) {
		t.Errorf("unexpected rule: %+v", cfg.Rule)
	}
	if cfg.Capture.Cooldown().Seconds() != 3 {
		t.Errorf("expected 3s cooldown, got %v", cfg.Capture.Cooldown())
	}
}

func TestExclusionZone_Contains(t *testing.T) {
	z := ExclusionZone{X1: 10, Y1: 20, X2: 30, Y2: 40}

	tests := []struct {
		x, y int
		want bool
	}{
		{10, 20, true},
		{29, 39, true},
		{30, 25, false},
		{15, 40, false},
		{9, 25, false},
		{15, 19, false},
	}
	for _, tt := range tests {
		if got := z.Contains(image.Pt(tt.x, tt.y)); got != tt.want {
			t.Errorf("Contains(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantMsg string
	}{
		{"no targets", func(c *Config) { c.Targets = nil }, "at least one color target"},
		{"empty name", func(c *Config) { c.Targets[0].Name = " " }, "name is empty"},
		{"duplicate name", func(c *Config) { c.Targets[1].Name = c.Targets[0].Name }, "duplicate name"},
		{"path in name", func(c *Config) { c.Targets[0].Name = "a/b" }, "path separators"},
		{"hue too large", func(c *Config) { c.Targets[0].Upper.H = 180 }, "H bounds"},
		{"negative saturation", func(c *Config) { c.Targets[0].Lower.S = -1 }, "S bounds"},
		{"inverted value", func(c *Config) { c.Targets[0].Lower.V = 200; c.Targets[0].Upper.V = 100 }, "V lower bound 200 above upper bound 100"},
		{"bad zone", func(c *Config) { c.Zones[0].X2 = 0 }, "zone 0"},
		{"zero area", func(c *Config) { c.Rule.MinArea = 0 }, "min_area"},
		{"aspect inverted", func(c *Config) { c.Rule.MinAspect = 3 }, "must be below max_aspect"},
		{"aspect equal", func(c *Config) { c.Rule.MaxAspect = c.Rule.MinAspect }, "must be below max_aspect"},
		{"zero cooldown", func(c *Config) { c.Capture.CooldownSeconds = 0 }, "cooldown_seconds"},
		{"unknown policy", func(c *Config) { c.Capture.Policy = "burst" }, "unknown policy"},
		{"quality", func(c *Config) { c.Capture.JPEGQuality = 101 }, "jpeg_quality"},
		{"device", func(c *Config) { c.Camera.Device = -1 }, "device"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("error should wrap ErrInvalid: %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidate_SingleShotIgnoresCooldown(t *testing.T) {
	cfg := Default()
	cfg.Capture.Policy = PolicySingleShot
	cfg.Capture.CooldownSeconds = 0

	if err := cfg.Validate(); err != nil {
		t.Errorf("single-shot policy should not require a cooldown: %v", err)
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Rule.MinArea = -5
	cfg.Capture.Policy = "nope"
	cfg.Zones[0].Y2 = -1

	err := cfg.Validate()
	if got := len(multierr.Errors(err)); got != 3 {
		t.Errorf("expected 3 errors, got %d: %v", got, err)
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "cfg.json", `{
		"targets": [
			{"name": "red", "lower": [0, 120, 70], "upper": [10, 255, 255],
			 "color": "#FF0000", "highlight": "#ffffff"}
		],
		"rule": {"min_area": 500, "min_aspect": 0.5, "max_aspect": 2},
		"capture": {"policy": "single-shot", "output_dir": "/tmp/shots", "jpeg_quality": 80}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	wantTargets := []ColorTarget{{
		Name:      "red",
		Lower:     HSV{H: 0, S: 120, V: 70},
		Upper:     HSV{H: 10, S: 255, V: 255},
		Color:     RGB(255, 0, 0),
		Highlight: RGB(255, 255, 255),
	}}
	if diff := cmp.Diff(wantTargets, cfg.Targets); diff != "" {
		t.Errorf("targets mismatch (-want +got):\n%s", diff)
	}
	if cfg.Rule.MinArea != 500 || cfg.Rule.MinAspect != 0.5 || cfg.Rule.MaxAspect != 2 {
		t.Errorf("unexpected rule: %+v", cfg.Rule)
	}
	if cfg.Capture.Policy != PolicySingleShot || cfg.Capture.OutputDir != "/tmp/shots" {
		t.Errorf("unexpected capture config: %+v", cfg.Capture)
	}
	// Omitted sections keep their defaults.
	if diff := cmp.Diff(Default().Zones, cfg.Zones); diff != "" {
		t.Errorf("zones should keep defaults (-want +got):\n%s", diff)
	}
	if cfg.Camera.Width != 640 || cfg.Camera.Height != 480 {
		t.Errorf("camera should keep defaults, got %+v", cfg.Camera)
	}
}

func TestLoad_EmptyZoneList(t *testing.T) {
	path := writeFile(t, "cfg.json", `{"zones": []}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Zones) != 0 {
		t.Errorf("explicit empty zone list should disable zones, got %d", len(cfg.Zones))
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed json", `{"rule": `},
		{"short hsv", `{"targets": [{"name": "x", "lower": [1, 2], "upper": [3, 4, 5]}]}`},
		{"bad color", `{"targets": [{"name": "x", "lower": [1, 2, 3], "upper": [3, 4, 5], "color": "blue"}]}`},
		{"invalid range", `{"targets": [{"name": "x", "lower": [50, 0, 0], "upper": [10, 255, 255]}]}`},
		{"misspelt rule key", `{"rule": {"min_areaa": 500}}`},
		{"unknown top-level key", `{"paralel": true}`},
		{"unknown target key", `{"targets": [{"name": "x", "lower": [1, 2, 3], "upper": [3, 4, 5], "colour": "#ffffff"}]}`},
		{"trailing object", `{"parallel": true} {"parallel": false}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "cfg.json", tt.content)
			if _, err := Load(path); err == nil {
				t.Error("expected Load to fail")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvPolicy, PolicySingleShot)
	t.Setenv(EnvOutputDir, "/data")
	t.Setenv(EnvCooldown, "1.5")
	t.Setenv(EnvMinArea, "900")
	t.Setenv(EnvDevice, "2")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Capture.Policy != PolicySingleShot {
		t.Errorf("policy: got %q", cfg.Capture.Policy)
	}
	if cfg.Capture.OutputDir != "/data" {
		t.Errorf("output dir: got %q", cfg.Capture.OutputDir)
	}
	if cfg.Capture.CooldownSeconds != 1.5 {
		t.Errorf("cooldown: got %g", cfg.Capture.CooldownSeconds)
	}
	if cfg.Rule.MinArea != 900 {
		t.Errorf("min area: got %d", cfg.Rule.MinArea)
	}
	if cfg.Camera.Device != 2 {
		t.Errorf("device: got %d", cfg.Camera.Device)
	}
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv(EnvMinArea, "lots")

	_, err := Load("")
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "CARTWATCH_TEST_DOTENV=from-file\n")
	t.Setenv("CARTWATCH_TEST_DOTENV", "")
	os.Unsetenv("CARTWATCH_TEST_DOTENV")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if got := os.Getenv("CARTWATCH_TEST_DOTENV"); got != "from-file" {
		t.Errorf("expected value from file, got %q", got)
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("missing env file should be ignored: %v", err)
	}
	if err := LoadDotEnv(""); err != nil {
		t.Errorf("empty path should be ignored: %v", err)
	}
}

func TestColor_JSONRoundTrip(t *testing.T) {
	c := RGB(0x12, 0xAB, 0xEF)
	data, err := c.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if string(data) != `"#12ABEF"` {
		t.Errorf("got %s, want \"#12ABEF\"", data)
	}
}

func TestLoad_ExampleFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "cartwatch.example.json"))
	if err != nil {
		t.Fatalf("example config should load: %v", err)
	}
	want := Default()
	want.Capture.OutputDir = "snapshots"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("example config differs from defaults (-want +got):\n%s", diff)
	}
}

func TestLoad_UnknownKeyNamesField(t *testing.T) {
	path := writeFile(t, "cfg.json", `{"rule": {"min_areaa": 500}}`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected Load to reject the unknown key")
	}
	if !strings.Contains(err.Error(), "min_areaa") {
		t.Errorf("error should name the unknown key, got %v", err)
	}
}
