package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-scripts/gitbook-crawl/internal/crawler"
)

// Document is the JSON report layout
type Document struct {
	StartURL  string   `json:"start_url"`
	OutputDir string   `json:"output_dir,omitempty"`
	Started   string   `json:"started"`
	Finished  string   `json:"finished,omitempty"`
	Pages     []Record `json:"pages"`
}

type JSONExporter struct{}

func NewJSONExporter() Exporter {
	return &JSONExporter{}
}

func (e *JSONExporter) Export(report *crawler.Report, filename string) error {
	doc := Document{
		StartURL:  report.StartURL,
		OutputDir: report.OutputDir,
		Started:   formatTime(report.Started),
		Finished:  formatTime(report.Finished),
		Pages:     records(report),
	}

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing report %s: %w", filename, err)
	}
	return nil
}
