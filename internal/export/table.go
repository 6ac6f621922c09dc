package export

import (
	"io"

	"github.com/rodaine/table"

	"github.com/go-scripts/gitbook-crawl/internal/crawler"
)

// PrintTable writes one row per page to w
func PrintTable(w io.Writer, report *crawler.Report) {
	tbl := table.New("Page", "Title", "Status", "Path").WithWriter(w)
	for _, p := range report.Pages {
		status := string(p.Status)
		if p.Err != nil {
			status += ": " + p.Err.Error()
		}
		tbl.AddRow(p.Link, p.Title, status, p.Path)
	}
	tbl.Print()
}
