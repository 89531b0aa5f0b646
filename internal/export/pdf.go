package export

import (
	"fmt"
	"html"
	"io"
	"strings"

	"codeberg.org/boomline/server/internal/ledger"
	"github.com/go-pdf/fpdf"
	"github.com/microcosm-cc/bluemonday"
)

const Title = "Generated Content History:"

var policy = bluemonday.StrictPolicy()

// numbered plain-text lines, oldest entry first as they were generated
func Lines(entries []ledger.Entry) []string {
	lines := make([]string, 0, len(entries))

	for i := len(entries) - 1; i >= 0; i-- {
		text := plain(entries[i].Result.Output())
		if text == "" {
			continue
		}

		lines = append(lines, fmt.Sprintf("%d. %s", len(lines)+1, text))
	}

	return lines
}

// strips markup and collapses whitespace
func plain(s string) string {
	s = html.UnescapeString(policy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// writes the history as a PDF document
func WritePDF(w io.Writer, entries []ledger.Entry) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, Title, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)

	lines := Lines(entries)
	if len(lines) == 0 {
		pdf.CellFormat(0, 8, "No history yet.", "", 1, "L", false, 0, "")
	}

	for _, line := range lines {
		pdf.MultiCell(0, 6, tr(line), "", "L", false)
		pdf.Ln(2)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}

	return nil
}
