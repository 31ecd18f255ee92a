package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/dynamo"
	"github.com/san-kum/fieldsim/internal/physics"
	"github.com/san-kum/fieldsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	traceFile    = "trace.csv"
)

var traceHeader = []string{"step", "x", "y", "vx", "vy", "ix", "iy", "px", "py", "contacts", "rebounds"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// SourceRecord is a field source as stored with a run.
type SourceRecord struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Charge   float64 `json:"charge"`
	Diameter float64 `json:"diameter"`
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Steps     int                `json:"steps"`
	Pointer   string             `json:"pointer"`
	Config    *config.Config     `json:"config,omitempty"`
	Sources   []SourceRecord     `json:"sources"`
	Metrics   map[string]float64 `json:"metrics"`
	Errors    []string           `json:"errors,omitempty"`
}

// Save writes a run under a fresh id and returns it. The run directory
// is removed again if any part of the write fails.
func (s *Store) Save(cfg *config.Config, sources []physics.Source, result *sim.Result) (runID string, err error) {
	runID = fmt.Sprintf("%s_%s", cfg.Name, uuid.NewString()[:8])

	meta := RunMetadata{
		ID:        runID,
		Name:      cfg.Name,
		Timestamp: time.Now(),
		Seed:      cfg.Seed,
		Steps:     result.StepsTaken,
		Pointer:   cfg.Pointer.Kind,
		Config:    cfg,
		Sources:   Records(sources),
		Metrics:   result.Metrics,
	}
	for _, e := range result.Errors {
		meta.Errors = append(meta.Errors, e.Error())
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("run %s metadata: %w", runID, err)
	}

	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			os.RemoveAll(runDir)
			runID = ""
		}
	}()

	if err := os.WriteFile(filepath.Join(runDir, metadataFile), append(data, '\n'), 0644); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, traceFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteTrace(csvFile, result.Snapshots); err != nil {
		return "", err
	}
	return runID, nil
}

func Records(sources []physics.Source) []SourceRecord {
	out := make([]SourceRecord, len(sources))
	for i, src := range sources {
		out[i] = SourceRecord{
			X:        src.Position().X,
			Y:        src.Position().Y,
			Charge:   src.Charge(),
			Diameter: src.Diameter(),
		}
	}
	return out
}

// WriteTrace writes snapshots as CSV with the trace header.
func WriteTrace(out io.Writer, snaps []sim.Snapshot) error {
	w := csv.NewWriter(out)
	if err := w.Write(traceHeader); err != nil {
		return err
	}

	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	for _, s := range snaps {
		row := []string{
			strconv.Itoa(s.Step),
			f(s.Position.X), f(s.Position.Y),
			f(s.Velocity.X), f(s.Velocity.Y),
			f(s.Impulse.X), f(s.Impulse.Y),
			f(s.Pointer.X), f(s.Pointer.Y),
			strconv.Itoa(s.Contacts),
			strconv.Itoa(s.Rebounds),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns stored runs, newest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s metadata: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadTrace(runID string) ([]sim.Snapshot, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, traceFile))
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	defer file.Close()
	return ReadTrace(file)
}

// ReadTrace parses CSV written by WriteTrace.
func ReadTrace(in io.Reader) ([]sim.Snapshot, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = len(traceHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Snapshot{}, nil
	}

	snaps := make([]sim.Snapshot, 0, len(records)-1)
	for i, record := range records[1:] {
		var vals [8]float64
		for j := range vals {
			v, err := strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("trace row %d: %w", i+1, err)
			}
			vals[j] = v
		}
		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("trace row %d: %w", i+1, err)
		}
		contacts, err := strconv.Atoi(record[9])
		if err != nil {
			return nil, fmt.Errorf("trace row %d: %w", i+1, err)
		}
		rebounds, err := strconv.Atoi(record[10])
		if err != nil {
			return nil, fmt.Errorf("trace row %d: %w", i+1, err)
		}

		snaps = append(snaps, sim.Snapshot{
			Step:     step,
			Position: dynamo.V(vals[0], vals[1]),
			Velocity: dynamo.V(vals[2], vals[3]),
			Impulse:  dynamo.V(vals[4], vals[5]),
			Pointer:  dynamo.V(vals[6], vals[7]),
			Contacts: contacts,
			Rebounds: rebounds,
		})
	}
	return snaps, nil
}
