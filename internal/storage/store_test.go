package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/drivesim/drivesim/internal/config"
	"github.com/drivesim/drivesim/internal/experiment"
)

func testResult() *experiment.Result {
	return &experiment.Result{
		StateNames:  []string{"omega", "torque", "i", "u", "u_sup"},
		RootEntropy: 42,
		Episodes: []experiment.EpisodeResult{
			{
				Steps:      2,
				Return:     -0.3,
				Terminated: true,
				Times:      []float64{0, 1e-4, 2e-4},
				States: [][]float64{
					{0, 0, 0, 0, 1},
					{0.01, 0.1, 0.2, 1, 1},
					{0.02, 0.2, 0.4, 1, 1},
				},
				References: []float64{0.5, 0.5, 0.5},
			},
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.DefaultConfig()
	runID, err := st.Save(cfg, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Motor != "permex_dc" {
		t.Errorf("expected motor permex_dc, got %s", meta.Motor)
	}
	if meta.RootEntropy != 42 {
		t.Errorf("expected root entropy 42, got %d", meta.RootEntropy)
	}
	if len(meta.StateNames) != 5 || meta.StateNames[0] != "omega" {
		t.Errorf("state names not round-tripped: %v", meta.StateNames)
	}
	if len(meta.Episodes) != 1 || !meta.Episodes[0].Terminated {
		t.Errorf("episode metadata not round-tripped: %+v", meta.Episodes)
	}

	states, times, refs, err := st.LoadStates(runID, 0)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if len(states) != 3 || len(times) != 3 || len(refs) != 3 {
		t.Fatalf("expected 3 rows, got %d/%d/%d", len(states), len(times), len(refs))
	}
	if len(states[0]) != 5 {
		t.Errorf("expected 5 state columns, got %d", len(states[0]))
	}
	if refs[0] != 0.5 {
		t.Errorf("expected reference 0.5, got %f", refs[0])
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected empty store, got %d runs", len(runs))
	}

	if _, err := st.Save(config.DefaultConfig(), testResult()); err != nil {
		t.Fatal(err)
	}
	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "never_created"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	cfg := config.DefaultConfig()

	if err := ExportJSON(path, cfg, testResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var exported ExportData
	if err := json.Unmarshal(data, &exported); err != nil {
		t.Fatalf("exported file is not valid json: %v", err)
	}
	if exported.Motor != "permex_dc" {
		t.Errorf("expected motor permex_dc, got %s", exported.Motor)
	}
	if len(exported.Episodes) != 1 || exported.Episodes[0].Steps != 2 {
		t.Errorf("episodes not exported: %+v", exported.Episodes)
	}
}
