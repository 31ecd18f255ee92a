package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/fieldsim/internal/sim"
)

type ExportPoint struct {
	Step     int        `json:"step"`
	Position [2]float64 `json:"position"`
	Velocity [2]float64 `json:"velocity"`
	Impulse  [2]float64 `json:"impulse"`
	Contacts int        `json:"contacts"`
	Rebounds int        `json:"rebounds"`
}

type ExportData struct {
	ID      string             `json:"id"`
	Name    string             `json:"name"`
	Steps   int                `json:"steps"`
	Sources []SourceRecord     `json:"sources"`
	Metrics map[string]float64 `json:"metrics"`
	Trace   []ExportPoint      `json:"trace"`
}

// ExportJSON writes a stored run and its trace as one indented document.
func ExportJSON(w io.Writer, meta *RunMetadata, trace []sim.Snapshot) error {
	data := ExportData{
		ID:      meta.ID,
		Name:    meta.Name,
		Steps:   meta.Steps,
		Sources: meta.Sources,
		Metrics: meta.Metrics,
		Trace:   make([]ExportPoint, len(trace)),
	}

	for i, s := range trace {
		data.Trace[i] = ExportPoint{
			Step:     s.Step,
			Position: [2]float64{s.Position.X, s.Position.Y},
			Velocity: [2]float64{s.Velocity.X, s.Velocity.Y},
			Impulse:  [2]float64{s.Impulse.X, s.Impulse.Y},
			Contacts: s.Contacts,
			Rebounds: s.Rebounds,
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
