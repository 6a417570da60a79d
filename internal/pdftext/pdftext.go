// Package pdftext extracts per-page text from uploaded PDF statements. It is
// a thin adapter: downstream parsing only ever sees a slice of page strings.
package pdftext

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractPages returns one text string per page, rows joined by newlines in
// top-to-bottom order, matching the line-oriented layout the statement
// parser expects.
func ExtractPages(r io.ReaderAt, size int64) ([]string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", i, err)
		}

		var sb strings.Builder
		for _, row := range rows {
			for _, text := range row.Content {
				sb.WriteString(text.S)
			}
			sb.WriteString("\n")
		}
		pages = append(pages, sb.String())
	}

	return pages, nil
}
