package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/monodsim/internal/config"
	"github.com/san-kum/monodsim/internal/dynamo"
	"github.com/san-kum/monodsim/internal/kinetics"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Timestamp  time.Time          `json:"timestamp"`
	Params     kinetics.Params    `json:"params"`
	Initial    kinetics.Initial   `json:"initial"`
	Horizon    float64            `json:"horizon"`
	Samples    int                `json:"samples"`
	Integrator string             `json:"integrator"`
	Tolerance  float64            `json:"tolerance"`
	Steps      int                `json:"steps"`
	Rejected   int                `json:"rejected"`
	Metrics    map[string]float64 `json:"metrics"`
}

func newRunID(now time.Time) string {
	return fmt.Sprintf("monod_%d_%s", now.Unix(), uuid.NewString()[:8])
}

func (s *Store) Save(cfg *config.Config, traj *dynamo.Trajectory) (string, error) {
	now := time.Now()
	runID := newRunID(now)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Timestamp:  now,
		Params:     cfg.Params,
		Initial:    cfg.Initial,
		Horizon:    cfg.Horizon,
		Samples:    cfg.Samples,
		Integrator: cfg.Integrator,
		Tolerance:  cfg.Solver.Tolerance,
		Steps:      traj.Steps,
		Rejected:   traj.Rejected,
		Metrics:    traj.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, statesFile), traj); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStates(path string, traj *dynamo.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"time", "biomass", "substrate"}); err != nil {
		return err
	}

	for i := range traj.States {
		st := traj.States[i]
		row := []string{
			strconv.FormatFloat(traj.Times[i], 'g', -1, 64),
			strconv.FormatFloat(st[kinetics.Biomass], 'g', -1, 64),
			strconv.FormatFloat(st[kinetics.Substrate], 'g', -1, 64),
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
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadTrajectory reads the sampled states of a run back. Metrics come from
// the run metadata.
func (s *Store) LoadTrajectory(runID string) (*dynamo.Trajectory, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 3

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	traj := &dynamo.Trajectory{
		Metrics:  meta.Metrics,
		Steps:    meta.Steps,
		Rejected: meta.Rejected,
	}
	if len(records) < 2 {
		return traj, nil
	}

	traj.Times = make([]float64, 0, len(records)-1)
	traj.States = make([]dynamo.State, 0, len(records)-1)

	for i, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("run %s: row %d: %w", runID, i+1, err)
			}
			vals[j] = v
		}
		traj.Times = append(traj.Times, vals[0])
		traj.States = append(traj.States, dynamo.State{vals[1], vals[2]})
	}

	return traj, nil
}
