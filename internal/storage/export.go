package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/sysdyn/internal/sysdyn"
)

type ExportData struct {
	Model      string               `json:"model"`
	Integrator string               `json:"integrator"`
	Dt         float64              `json:"dt"`
	Steps      int                  `json:"steps"`
	Times      []float64            `json:"times"`
	Series     map[string][]float64 `json:"series"`
}

func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportJSON writes one run's series to path, or to stdout when path is
// empty.
func ExportJSON(path, model, integrator string, dt float64, steps int, times []float64, series map[string][]float64) error {
	data := ExportData{
		Model:      model,
		Integrator: integrator,
		Dt:         dt,
		Steps:      steps,
		Times:      times,
		Series:     series,
	}

	if path == "" {
		return writeJSON(os.Stdout, data)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeJSON(file, data)
}

type SweepExport struct {
	Model    string           `json:"model"`
	Variable string           `json:"variable"`
	Samples  []float64        `json:"samples"`
	Runs     []SweepRunExport `json:"runs"`
}

type SweepRunExport struct {
	Value  float64              `json:"value"`
	Series map[string][]float64 `json:"series"`
}

// ExportSweepJSON writes a sensitivity sweep in sample order.
func ExportSweepJSON(path, model string, sweep *sysdyn.SweepResult) error {
	data := SweepExport{
		Model:    model,
		Variable: sweep.Variable,
		Samples:  sweep.Samples,
		Runs:     make([]SweepRunExport, 0, len(sweep.Samples)),
	}
	for _, v := range sweep.Samples {
		data.Runs = append(data.Runs, SweepRunExport{Value: v, Series: sweep.Runs[v]})
	}

	if path == "" {
		return writeJSON(os.Stdout, data)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeJSON(file, data)
}
