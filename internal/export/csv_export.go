package export

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/go-scripts/gitbook-crawl/internal/crawler"
)

type CSVExporter struct{}

func NewCSVExporter() Exporter {
	return &CSVExporter{}
}

func (e *CSVExporter) Export(report *crawler.Report, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating report %s: %w", filename, err)
	}
	defer file.Close()

	result := records(report)
	if err := gocsv.MarshalFile(&result, file); err != nil {
		return fmt.Errorf("exporting report to CSV: %w", err)
	}
	return nil
}
