package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/monodsim/internal/config"
	"github.com/san-kum/monodsim/internal/dynamo"
	"github.com/san-kum/monodsim/internal/experiment"
)

func sampleTrajectory() *dynamo.Trajectory {
	return &dynamo.Trajectory{
		Times:   []float64{0, 0.5, 1},
		States:  []dynamo.State{{0.1, 10}, {0.12, 9.96}, {0.1465, 9.907}},
		Metrics: map[string]float64{"final_biomass": 0.1465, "depletion_time": -1},
		Steps:   12,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.DefaultConfig()
	runID, err := st.Save(cfg, sampleTrajectory())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "monod_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Params != cfg.Params || meta.Initial != cfg.Initial {
		t.Errorf("params not stored: %+v", meta)
	}
	if meta.Integrator != "rk45" || meta.Steps != 12 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.Metrics["final_biomass"] != 0.1465 {
		t.Errorf("expected final_biomass 0.1465, got %f", meta.Metrics["final_biomass"])
	}

	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatalf("load trajectory failed: %v", err)
	}
	want := sampleTrajectory()
	if traj.Len() != want.Len() {
		t.Fatalf("expected %d samples, got %d", want.Len(), traj.Len())
	}
	for i := range want.States {
		if traj.Times[i] != want.Times[i] || traj.States[i][0] != want.States[i][0] || traj.States[i][1] != want.States[i][1] {
			t.Errorf("sample %d: got t=%v %v, want t=%v %v", i, traj.Times[i], traj.States[i], want.Times[i], want.States[i])
		}
	}
}

func TestStoreRealRunRoundTrip(t *testing.T) {
	cfg := config.DefaultConfig()
	traj, err := experiment.Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	st := New(t.TempDir())
	runID, err := st.Save(cfg, traj)
	if err != nil {
		t.Fatal(err)
	}
	got, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 500 || got.States[0][0] != 0.1 || got.States[0][1] != 10 {
		t.Errorf("round trip lost data: len=%d first=%v", got.Len(), got.States[0])
	}
	if got.Final()[0] != traj.Final()[0] {
		t.Errorf("final biomass %v, want %v", got.Final()[0], traj.Final()[0])
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	for i := 0; i < 2; i++ {
		if _, err := st.Save(config.DefaultConfig(), sampleTrajectory()); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	// junk directories are ignored
	if err := os.MkdirAll(filepath.Join(dir, "scratch"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runID, err := st.Save(config.DefaultConfig(), sampleTrajectory())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(dir, runID)
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}

	data, err := os.ReadFile(filepath.Join(runDir, "states.csv"))
	if err != nil {
		t.Fatalf("states.csv: %v", err)
	}
	if !strings.HasPrefix(string(data), "time,biomass,substrate\n") {
		t.Errorf("unexpected csv header: %q", strings.SplitN(string(data), "\n", 2)[0])
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(config.DefaultConfig(), sampleTrajectory())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.ID != runID || len(data.Biomass) != 3 || len(data.Substrate) != 3 || len(data.Times) != 3 {
		t.Errorf("unexpected export: %+v", data)
	}
	if data.Substrate[0] != 10 {
		t.Errorf("expected S0 10, got %v", data.Substrate[0])
	}
}

func TestLoadUnknownRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); err == nil {
		t.Error("expected error for unknown run")
	}
	if _, err := st.LoadTrajectory("nope"); err == nil {
		t.Error("expected error for unknown run")
	}
}
