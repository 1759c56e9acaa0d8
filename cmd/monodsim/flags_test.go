package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/monodsim/internal/config"
	"github.com/san-kum/monodsim/internal/dynamo"
)

func parse(t *testing.T, args ...string) (*runFlags, *cobra.Command) {
	t.Helper()
	f := &runFlags{}
	cmd := &cobra.Command{Use: "run"}
	f.register(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return f, cmd
}

func TestBuildDefaults(t *testing.T) {
	f, cmd := parse(t)
	cfg, err := f.build(cmd)
	if err != nil {
		t.Fatal(err)
	}
	def := config.DefaultConfig()
	if cfg.Params != def.Params || cfg.Initial != def.Initial || cfg.Horizon != def.Horizon || cfg.Samples != 500 {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestBuildFlagsOverride(t *testing.T) {
	f, cmd := parse(t, "--mu-max", "0.8", "--s0", "5", "--time", "80", "--integrator", "rk4")
	cfg, err := f.build(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Params.MuMax != 0.8 || cfg.Initial.S0 != 5 || cfg.Horizon != 80 || cfg.Integrator != "rk4" {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.Params.Ks != 0.1 {
		t.Errorf("unchanged flags should keep defaults, ks = %v", cfg.Params.Ks)
	}
}

func TestBuildPresetThenConfigThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.toml")
	file := config.DefaultConfig()
	file.Params.Ks = 0.5
	file.Horizon = 70
	if err := config.Save(path, file); err != nil {
		t.Fatal(err)
	}

	f, cmd := parse(t, "--preset", "fast", "--config", path, "--time", "90")
	cfg, err := f.build(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Params.Ks != 0.5 {
		t.Errorf("config file should win over preset, ks = %v", cfg.Params.Ks)
	}
	if cfg.Horizon != 90 {
		t.Errorf("flag should win over config file, horizon = %v", cfg.Horizon)
	}
}

func TestBuildPreset(t *testing.T) {
	f, cmd := parse(t, "--preset", "lean")
	cfg, err := f.build(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Initial.S0 != 1.0 || cfg.Horizon != 30 {
		t.Errorf("lean preset not applied: %+v", cfg)
	}
}

func TestBuildErrors(t *testing.T) {
	f, cmd := parse(t, "--preset", "nope")
	if _, err := f.build(cmd); err == nil {
		t.Error("expected unknown preset error")
	}

	f, cmd = parse(t, "--ks", "0")
	if _, err := f.build(cmd); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}

	f, cmd = parse(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := f.build(cmd); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected missing file error, got %v", err)
	}
}

func TestFormatMetric(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		want string
	}{
		{"time_to_90pct", -1, "never"},
		{"depletion_time", 12.345, "12.35 h"},
		{"final_biomass", 5.1, "5.1000"},
		{"yield_drift", 1.5e-12, "1.50e-12"},
	}
	for _, tt := range tests {
		if got := formatMetric(tt.name, tt.v); got != tt.want {
			t.Errorf("formatMetric(%s, %v) = %q, want %q", tt.name, tt.v, got, tt.want)
		}
	}
}
