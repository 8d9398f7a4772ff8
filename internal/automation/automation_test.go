package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/coingas/internal/config"
	"github.com/san-kum/coingas/internal/storage"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t, `
name: policies
description: every policy from one start
steps:
  - name: uniform
    preset: three
    policy: uniform
    seed: 3
    collisions: 200
  - preset: three
    policy: asymmetric
`)

	s, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "policies" || len(s.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", s)
	}

	cfg, err := s.Steps[0].Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Policy != "uniform" || cfg.Seed != 3 || cfg.Budget.Collisions != 200 || cfg.Disks != 3 {
		t.Errorf("resolved %+v", cfg)
	}

	cfg, _ = s.Steps[1].Resolve()
	if cfg.Seed != config.DefaultSeed {
		t.Errorf("seed without override = %d", cfg.Seed)
	}
}

func TestLoadScenarioEmpty(t *testing.T) {
	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); err == nil {
		t.Error("expected error for a scenario without steps")
	}
}

func TestResolveUnknownPreset(t *testing.T) {
	if _, err := (ScenarioStep{Preset: "nine"}).Resolve(); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestRunScenario(t *testing.T) {
	store := storage.New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	scenario := &Scenario{
		Name: "small",
		Steps: []ScenarioStep{
			{Name: "a", Preset: "three", Policy: "uniform", Collisions: 100, Save: true},
			{Name: "b", Preset: "three", Policy: "symmetric", Collisions: 100},
		},
	}

	results, err := RunScenario(context.Background(), scenario, nil, store, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].RunID == "" || results[1].RunID != "" {
		t.Errorf("run ids = %q, %q", results[0].RunID, results[1].RunID)
	}
	for _, r := range results {
		if r.Result.Collisions < 100 {
			t.Errorf("%s: %d collisions", r.Name, r.Result.Collisions)
		}
		if len(r.Comparison.Levels) != 5 {
			t.Errorf("%s: comparison has %d levels", r.Name, len(r.Comparison.Levels))
		}
	}

	runs, _ := store.List()
	if len(runs) != 1 {
		t.Errorf("expected 1 saved run, got %d", len(runs))
	}
}

func TestRunScenarioStopsOnError(t *testing.T) {
	scenario := &Scenario{Steps: []ScenarioStep{
		{Preset: "three", Collisions: 50},
		{Preset: "three", Policy: "greedy"},
	}}

	results, err := RunScenario(context.Background(), scenario, nil, nil, nil)
	if err == nil {
		t.Fatal("expected error for an unknown policy")
	}
	if len(results) != 1 {
		t.Errorf("expected the first step to complete, got %d results", len(results))
	}
}

func TestRunSweep(t *testing.T) {
	base := config.GetPreset("three")
	base.Policy = "uniform"
	base.Budget = config.BudgetConfig{Collisions: 100, SnapshotEvery: 10}

	results, err := RunSweep(context.Background(), &Sweep{Base: base, Param: "total_energy", Values: []int{2, 4, 6}}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Value != []int{2, 4, 6}[i] {
			t.Errorf("value %d = %d", i, r.Value)
		}
	}
	if base.TotalEnergy != 4 {
		t.Error("sweep modified the base configuration")
	}

	if _, err := RunSweep(context.Background(), &Sweep{Base: base, Param: "radius"}, nil, nil); err == nil {
		t.Error("expected error for unknown parameter")
	}
}
