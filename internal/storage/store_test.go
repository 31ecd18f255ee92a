package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/dynamo"
	"github.com/san-kum/fieldsim/internal/physics"
	"github.com/san-kum/fieldsim/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Snapshots: []sim.Snapshot{
			{Step: 0, Position: dynamo.V(500, 300)},
			{Step: 1, Position: dynamo.V(499.5, 300.25), Velocity: dynamo.V(-0.5, 0.25), Impulse: dynamo.V(0, 1), Pointer: dynamo.V(10, 20), Contacts: 1, Rebounds: 1},
		},
		StepsTaken: 1,
		Metrics:    map[string]float64{"kinetic_energy": 1.5},
		Errors:     []error{errors.New("boom")},
	}
}

func testSources(t *testing.T) []physics.Source {
	t.Helper()
	src, err := physics.NewSource(dynamo.V(400, 500), -0.7, 100)
	if err != nil {
		t.Fatal(err)
	}
	return []physics.Source{src}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Seed = 42

	runID, err := st.Save(cfg, testSources(t), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "triad_") || len(runID) != len("triad_")+8 {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "triad" || meta.Seed != 42 || meta.Steps != 1 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.Metrics["kinetic_energy"] != 1.5 {
		t.Errorf("expected kinetic_energy 1.5, got %f", meta.Metrics["kinetic_energy"])
	}
	if len(meta.Sources) != 1 || meta.Sources[0].Charge != -0.7 || meta.Sources[0].Y != 500 {
		t.Errorf("unexpected sources: %+v", meta.Sources)
	}
	if len(meta.Errors) != 1 || meta.Errors[0] != "boom" {
		t.Errorf("unexpected errors: %v", meta.Errors)
	}
	if meta.Config == nil || meta.Config.Field.Constant != 5000 {
		t.Error("expected embedded config")
	}

	trace, err := st.LoadTrace(runID)
	if err != nil {
		t.Fatalf("load trace failed: %v", err)
	}
	if len(trace) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(trace))
	}
	if trace[1] != testResult().Snapshots[1] {
		t.Errorf("trace row mismatch: %+v", trace[1])
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

	if _, err := st.Save(config.DefaultConfig(), nil, testResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	os.MkdirAll(filepath.Join(dir, "junk"), 0755)

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runID, err := st.Save(config.DefaultConfig(), nil, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "trace.csv"} {
		if _, err := os.Stat(filepath.Join(dir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	data, _ := os.ReadFile(filepath.Join(dir, runID, "trace.csv"))
	first := strings.SplitN(string(data), "\n", 2)[0]
	if first != "step,x,y,vx,vy,ix,iy,px,py,contacts,rebounds" {
		t.Errorf("unexpected header %q", first)
	}
}

func TestStoreSaveUnencodable(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	result := testResult()
	result.Metrics["kinetic_energy"] = math.Inf(1)

	runID, err := st.Save(config.DefaultConfig(), nil, result)
	if err == nil {
		t.Fatal("expected an encoding error")
	}
	if runID != "" {
		t.Errorf("expected no run id, got %q", runID)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no run directory left behind, found %d entries", len(entries))
	}
}

func TestTraceKeepsRebounds(t *testing.T) {
	snaps := []sim.Snapshot{{Step: 3, Contacts: 2, Rebounds: 1}}

	var buf bytes.Buffer
	if err := WriteTrace(&buf, snaps); err != nil {
		t.Fatal(err)
	}
	got, err := ReadTrace(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Rebounds != 1 || got[0].Contacts != 2 {
		t.Errorf("unexpected round trip: %+v", got)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
	if _, err := st.LoadTrace("nope"); err == nil {
		t.Error("expected error for missing trace")
	}
}

func TestReadTraceMalformed(t *testing.T) {
	in := "step,x,y,vx,vy,ix,iy,px,py,contacts,rebounds\n1,a,0,0,0,0,0,0,0,0,0\n"
	if _, err := ReadTrace(strings.NewReader(in)); err == nil {
		t.Error("expected parse error")
	}
}

func TestExportJSON(t *testing.T) {
	meta := &RunMetadata{ID: "triad_abc", Name: "triad", Steps: 1, Metrics: map[string]float64{"rebounds": 2}}

	var buf bytes.Buffer
	if err := ExportJSON(&buf, meta, testResult().Snapshots); err != nil {
		t.Fatal(err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.ID != "triad_abc" || len(got.Trace) != 2 || got.Metrics["rebounds"] != 2 {
		t.Errorf("unexpected export: %+v", got)
	}
	if got.Trace[1].Position != [2]float64{499.5, 300.25} {
		t.Errorf("unexpected position %v", got.Trace[1].Position)
	}
}
