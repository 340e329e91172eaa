package experiment

import (
	"context"
	"testing"

	"github.com/drivesim/drivesim/internal/config"
)

func TestRegistryResolvesDefaults(t *testing.T) {
	r := NewRegistry()
	cfg := config.DefaultConfig()

	if _, err := r.GetSupply(cfg); err != nil {
		t.Error(err)
	}
	if _, err := r.GetConverter(cfg); err != nil {
		t.Error(err)
	}
	if _, err := r.GetMotor(cfg); err != nil {
		t.Error(err)
	}
	if _, err := r.GetLoad(cfg); err != nil {
		t.Error(err)
	}
	if _, err := r.GetSolver(cfg); err != nil {
		t.Error(err)
	}
	if _, err := r.GetReference(cfg); err != nil {
		t.Error(err)
	}
	if _, err := r.GetMonitor(cfg); err != nil {
		t.Error(err)
	}
}

func TestRegistryUnknownNames(t *testing.T) {
	r := NewRegistry()

	cfg := config.DefaultConfig()
	cfg.Motor = "synchronous_reluctance"
	if _, err := r.GetMotor(cfg); err == nil {
		t.Error("expected error for unknown motor")
	}

	cfg = config.DefaultConfig()
	cfg.Monitor.Mode = "sum"
	if _, err := r.GetMonitor(cfg); err == nil {
		t.Error("expected error for unknown monitor mode")
	}
}

func TestRegistryLists(t *testing.T) {
	r := NewRegistry()
	if len(r.ListMotors()) != 2 {
		t.Errorf("expected 2 motors, got %d", len(r.ListMotors()))
	}
	if len(r.ListConverters()) != 6 {
		t.Errorf("expected 6 converters, got %d", len(r.ListConverters()))
	}
	if len(r.ListSolvers()) != 4 {
		t.Errorf("expected 4 solvers, got %d", len(r.ListSolvers()))
	}
}

func TestExperimentRunsEpisodes(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Seed = 11
	cfg.Episodes = 2
	cfg.Steps = 50

	x, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	result, err := x.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Episodes) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(result.Episodes))
	}
	for i, ep := range result.Episodes {
		if ep.Steps == 0 {
			t.Errorf("episode %d recorded no steps", i)
		}
		if len(ep.Times) != ep.Steps+1 {
			t.Errorf("episode %d: %d timestamps for %d steps", i, len(ep.Times), ep.Steps)
		}
		if len(ep.States) != len(ep.Times) {
			t.Errorf("episode %d: states and times out of sync", i)
		}
		if len(ep.States[0]) != len(result.StateNames) {
			t.Errorf("episode %d: state width %d, want %d", i, len(ep.States[0]), len(result.StateNames))
		}
		if _, ok := ep.Metrics["tracking_error"]; !ok {
			t.Errorf("episode %d: missing tracking_error metric: %v", i, ep.Metrics)
		}
		if ep.Metrics["peak"] <= 0 {
			t.Errorf("episode %d: expected positive peak, got %f", i, ep.Metrics["peak"])
		}
	}
}

func TestExperimentReplaysUnderSameSeed(t *testing.T) {
	run := func() *Result {
		cfg := config.DefaultConfig()
		cfg.Seed = 23
		cfg.Episodes = 1
		cfg.Steps = 30

		x, err := New(cfg)
		if err != nil {
			t.Fatal(err)
		}
		result, err := x.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return result
	}

	a, b := run(), run()
	if a.RootEntropy != b.RootEntropy {
		t.Fatalf("root entropy diverged: %d vs %d", a.RootEntropy, b.RootEntropy)
	}
	if a.Episodes[0].Return != b.Episodes[0].Return {
		t.Errorf("returns diverged: %f vs %f", a.Episodes[0].Return, b.Episodes[0].Return)
	}
	if a.Episodes[0].Steps != b.Episodes[0].Steps {
		t.Errorf("episode lengths diverged")
	}
}

func TestExperimentHonorsContext(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Seed = 5
	cfg.Steps = 100000

	x, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := x.Run(ctx); err == nil {
		t.Error("expected context cancellation error")
	}
}

func TestPresetConfigsBuild(t *testing.T) {
	for motor, presets := range config.Presets {
		for name := range presets {
			cfg := config.GetPreset(motor, name)
			if cfg == nil {
				t.Fatalf("preset %s/%s missing", motor, name)
			}
			if _, err := New(cfg); err != nil {
				t.Errorf("preset %s/%s does not build: %v", motor, name, err)
			}
		}
	}
}
