package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-scripts/gitbook-crawl/internal/crawler"
)

// Exporter writes a crawl report to a file
type Exporter interface {
	// Export exports the report to the specified file
	Export(report *crawler.Report, filename string) error
}

// Record is one page of an exported report
type Record struct {
	Link   string `json:"link" csv:"Link"`
	Title  string `json:"title" csv:"Title"`
	Kind   string `json:"kind" csv:"Kind"`
	URL    string `json:"url,omitempty" csv:"URL"`
	Path   string `json:"path,omitempty" csv:"Path"`
	Status string `json:"status" csv:"Status"`
	Error  string `json:"error,omitempty" csv:"Error"`
}

// ForPath picks an exporter by file extension, .json or .csv
func ForPath(filename string) (Exporter, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return NewJSONExporter(), nil
	case ".csv":
		return NewCSVExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported report format %q, use .json or .csv", filepath.Ext(filename))
	}
}

func records(report *crawler.Report) []Record {
	result := make([]Record, 0, len(report.Pages))
	for _, p := range report.Pages {
		r := Record{
			Link:   p.Link,
			Title:  p.Title,
			Kind:   p.Kind.String(),
			URL:    p.URL,
			Path:   p.Path,
			Status: string(p.Status),
		}
		if p.Err != nil {
			r.Error = p.Err.Error()
		}
		result = append(result, r)
	}
	return result
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
