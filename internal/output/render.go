// Package output renders chromactl results as styled terminal text: tables
// for collection listings and search hits, a bordered panel for stats, and
// plain one-line notices.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// previewLimit caps how many runes of a document are shown in tables.
const previewLimit = 100

// CollectionRow is one line of the `list` table.
type CollectionRow struct {
	Name  string
	Count int
}

// Record is one stored record shown by `peek`.
type Record struct {
	ID       string
	Metadata map[string]any
	Document string
}

// Hit is one search match with its distance to the query.
type Hit struct {
	ID       string
	Distance float64
	Document string
}

// Renderer writes formatted output to a single destination.
type Renderer struct {
	w      io.Writer
	styles Styles
}

// NewRenderer creates a renderer writing to w with the default styles.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w, styles: DefaultStyles()}
}

// Notice prints a one-line informational message.
func (r *Renderer) Notice(msg string) {
	fmt.Fprintln(r.w, r.styles.Notice.Render(msg))
}

// Success prints a one-line confirmation message.
func (r *Renderer) Success(msg string) {
	fmt.Fprintln(r.w, r.styles.Title.Render(msg))
}

// Detail prints an indented key/value line under a confirmation.
func (r *Renderer) Detail(key, value string) {
	fmt.Fprintf(r.w, "  %s %s\n", r.styles.Label.Render(key+":"), value)
}

// CollectionTable prints the `list` table of collection names and counts.
func (r *Renderer) CollectionTable(rows []CollectionRow) {
	t := r.newTable("NAME", "COUNT")
	for _, row := range rows {
		t.Row(row.Name, fmt.Sprintf("%d", row.Count))
	}
	fmt.Fprintln(r.w, t.Render())
}

// PeekTable prints fetched records with a "showing n of m" footer.
func (r *Renderer) PeekTable(records []Record, total int) {
	t := r.newTable("ID", "METADATA", "DOCUMENT")
	for _, rec := range records {
		t.Row(rec.ID, formatMetadata(rec.Metadata), Preview(rec.Document))
	}
	fmt.Fprintln(r.w, t.Render())
	fmt.Fprintln(r.w, r.styles.Muted.Render(fmt.Sprintf("showing %d of %d total items", len(records), total)))
}

// SearchTable prints search hits in the order the service returned them.
func (r *Renderer) SearchTable(hits []Hit) {
	t := r.newTable("ID", "DISTANCE", "DOCUMENT")
	for _, h := range hits {
		t.Row(h.ID, fmt.Sprintf("%.4f", h.Distance), Preview(h.Document))
	}
	fmt.Fprintln(r.w, t.Render())
}

// StatsPanel prints a bordered panel with the collection's stats.
func (r *Renderer) StatsPanel(name string, count int, dimensions, space string) {
	lines := []string{
		r.styles.Title.Render("Collection: " + name),
		"",
		fmt.Sprintf("%s %d", r.styles.Label.Render("Total items:"), count),
		fmt.Sprintf("%s %s", r.styles.Label.Render("Embedding dimensions:"), dimensions),
		fmt.Sprintf("%s %s", r.styles.Label.Render("Distance metric:"), space),
	}
	fmt.Fprintln(r.w, r.styles.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

// newTable builds a bordered table with the shared header styling.
func (r *Renderer) newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.styles.Border).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.styles.Header
			}
			return r.styles.Cell
		}).
		Headers(headers...)
}

// Preview truncates a document to previewLimit runes for table display.
func Preview(doc string) string {
	runes := []rune(doc)
	if len(runes) <= previewLimit {
		return doc
	}
	return string(runes[:previewLimit]) + "..."
}

// formatMetadata renders record metadata as compact JSON, or an empty string
// when there is none.
func formatMetadata(md map[string]any) string {
	if len(md) == 0 {
		return ""
	}
	b, err := json.Marshal(md)
	if err != nil {
		return fmt.Sprintf("%v", md)
	}
	return string(b)
}
