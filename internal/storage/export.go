package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/drivesim/drivesim/internal/config"
	"github.com/drivesim/drivesim/internal/experiment"
)

type ExportData struct {
	Motor       string                       `json:"motor"`
	Converter   string                       `json:"converter"`
	Supply      string                       `json:"supply"`
	Load        string                       `json:"load"`
	Solver      string                       `json:"solver"`
	Reference   string                       `json:"reference"`
	Tau         float64                      `json:"tau"`
	RootEntropy uint64                       `json:"root_entropy"`
	StateNames  []string                     `json:"state_names"`
	Episodes    []experiment.EpisodeResult   `json:"episodes"`
}

func exportData(cfg *config.Config, result *experiment.Result) ExportData {
	return ExportData{
		Motor:       cfg.Motor,
		Converter:   cfg.Converter,
		Supply:      cfg.Supply,
		Load:        cfg.Load,
		Solver:      cfg.Solver,
		Reference:   cfg.Reference,
		Tau:         cfg.Tau,
		RootEntropy: result.RootEntropy,
		StateNames:  result.StateNames,
		Episodes:    result.Episodes,
	}
}

func ExportJSON(path string, cfg *config.Config, result *experiment.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeJSON(file, cfg, result)
}

func ExportJSONStdout(cfg *config.Config, result *experiment.Result) error {
	return writeJSON(os.Stdout, cfg, result)
}

func writeJSON(w io.Writer, cfg *config.Config, result *experiment.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportData(cfg, result))
}
