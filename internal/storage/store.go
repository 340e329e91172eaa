// Package storage persists experiment runs on disk, one directory per run
// with a metadata.json and a states.csv per episode.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/drivesim/drivesim/internal/config"
	"github.com/drivesim/drivesim/internal/experiment"
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
	ID          string    `json:"id"`
	Motor       string    `json:"motor"`
	Converter   string    `json:"converter"`
	Supply      string    `json:"supply"`
	Load        string    `json:"load"`
	Solver      string    `json:"solver"`
	Reference   string    `json:"reference"`
	Timestamp   time.Time `json:"timestamp"`
	RootEntropy uint64    `json:"root_entropy"`
	Tau         float64   `json:"tau"`
	StateNames  []string  `json:"state_names"`
	Episodes    []EpisodeMetadata `json:"episodes"`
}

type EpisodeMetadata struct {
	Steps      int                `json:"steps"`
	Return     float64            `json:"return"`
	Terminated bool               `json:"terminated"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

func (s *Store) Save(cfg *config.Config, result *experiment.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", cfg.Motor, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Motor:       cfg.Motor,
		Converter:   cfg.Converter,
		Supply:      cfg.Supply,
		Load:        cfg.Load,
		Solver:      cfg.Solver,
		Reference:   cfg.Reference,
		Timestamp:   time.Now(),
		RootEntropy: result.RootEntropy,
		Tau:         cfg.Tau,
		StateNames:  result.StateNames,
	}
	for _, ep := range result.Episodes {
		meta.Episodes = append(meta.Episodes, EpisodeMetadata{
			Steps:      ep.Steps,
			Return:     ep.Return,
			Terminated: ep.Terminated,
			Metrics:    ep.Metrics,
		})
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	for i, ep := range result.Episodes {
		if err := s.saveEpisode(runDir, i, result.StateNames, &ep); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) saveEpisode(runDir string, episode int, stateNames []string, ep *experiment.EpisodeResult) error {
	csvFile, err := os.Create(filepath.Join(runDir, episodeFile(episode)))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := append([]string{"time"}, stateNames...)
	header = append(header, "reference")
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range ep.Times {
		row := []string{strconv.FormatFloat(ep.Times[i], 'f', 6, 64)}
		for _, val := range ep.States[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		row = append(row, strconv.FormatFloat(ep.References[i], 'f', 6, 64))
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func episodeFile(episode int) string {
	if episode == 0 {
		return "states.csv"
	}
	return fmt.Sprintf("states_%d.csv", episode)
}

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

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadStates reads one episode trajectory back: the state rows, the
// reference column and the timestamps.
func (s *Store) LoadStates(runID string, episode int) ([][]float64, []float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, episodeFile(episode)))
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) < 2 {
		return [][]float64{}, []float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)
	references := make([]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) < 3 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)

		state := make([]float64, 0, len(record)-2)
		for _, field := range record[1 : len(record)-1] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				continue
			}
			state = append(state, val)
		}
		states = append(states, state)

		ref, err := strconv.ParseFloat(record[len(record)-1], 64)
		if err != nil {
			ref = 0
		}
		references = append(references, ref)
	}

	return states, times, references, nil
}
