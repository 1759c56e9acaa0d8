package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/monodsim/internal/kinetics"
)

type ExportData struct {
	RunMetadata
	Times     []float64 `json:"times"`
	Biomass   []float64 `json:"biomass"`
	Substrate []float64 `json:"substrate"`
}

// ExportJSON writes the metadata and series of a stored run to w.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	traj, err := s.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	x, sub := kinetics.Split(traj)
	data := ExportData{
		RunMetadata: *meta,
		Times:       traj.Times,
		Biomass:     x,
		Substrate:   sub,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
