package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/impulse/internal/config"
	"github.com/san-kum/impulse/internal/sim"
)

type ExportData struct {
	Name      string             `json:"name"`
	Kind      string             `json:"kind"`
	Dt        float64            `json:"dt"`
	Steps     int                `json:"steps"`
	Times     []float64          `json:"times"`
	Residuals []float64          `json:"residuals"`
	Metrics   map[string]float64 `json:"metrics"`
}

func newExportData(name string, cfg *config.Config, result *sim.Result) ExportData {
	return ExportData{
		Name:      name,
		Kind:      cfg.Scenario.Kind,
		Dt:        cfg.Dt,
		Steps:     result.StepsTaken,
		Times:     result.Times,
		Residuals: result.Residuals,
		Metrics:   result.Metrics,
	}
}

// ExportJSON writes a run to w as indented JSON.
func ExportJSON(w io.Writer, name string, cfg *config.Config, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(name, cfg, result))
}

func ExportJSONFile(path, name string, cfg *config.Config, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, name, cfg, result)
}

// ExportCSV copies a stored run's trace to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	times, residuals, err := s.LoadTrace(runID)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "residual"}); err != nil {
		return err
	}
	for i := range times {
		if err := cw.Write([]string{
			strconv.FormatFloat(times[i], 'f', 6, 64),
			strconv.FormatFloat(residuals[i], 'g', -1, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
