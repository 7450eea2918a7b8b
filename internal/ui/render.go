package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/arkohut/pensieve/internal/types"
)

// RenderResults renders hybrid_search's hits as a table: rank, score,
// filepath, and the active_app metadata entry if present. Grounded on the
// teacher's ui.RenderResultsWithContext — same header/StyleFunc shape,
// retargeted from issue rows to search.Result hits.
func RenderResults(query string, results []types.SearchResult, width int) string {
	rows := make([][]string, 0, len(results))
	for i, r := range results {
		title := r.Entity.Filepath
		maxWidth := width - 24
		if maxWidth < 10 {
			maxWidth = 10
		}
		if len(title) > maxWidth {
			title = "..." + title[len(title)-maxWidth+3:]
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d.", i+1),
			fmt.Sprintf("%.4f", r.Score),
			title,
			activeApp(r.Entity),
		})
	}

	return NewSearchTable(width).
		Headers("#", "score", fmt.Sprintf("%q", query), "app").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		String()
}

func activeApp(e types.Entity) string {
	for _, m := range e.Metadata {
		if m.Key == types.MetadataKeyActiveApp {
			return m.Value
		}
	}
	return ""
}

// RenderStats renders a SearchStats facet aggregate as a short summary
// line, not a full table — facets are a sidebar to the result list, not
// the main output.
func RenderStats(stats *types.SearchStats) string {
	if stats == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(TableHintStyle.Render("facets: "))
	if stats.DateRange.Earliest != nil && stats.DateRange.Latest != nil {
		fmt.Fprintf(&b, "%s – %s  ", stats.DateRange.Earliest.Format(time.DateOnly), stats.DateRange.Latest.Format(time.DateOnly))
	}
	apps := make([]string, 0, len(stats.AppNameCounts))
	for app, count := range stats.AppNameCounts {
		apps = append(apps, fmt.Sprintf("%s:%d", app, count))
	}
	b.WriteString(strings.Join(apps, " "))
	return b.String()
}

// RenderOCRPreview renders an entity's ocr_result metadata (if any) as
// glamour-styled markdown for a detail view; no capidx command calls it
// at present. Falls back to plain text if glamour fails to render
// (a too-narrow terminal, a malformed style), since a preview is a
// convenience, not a correctness-bearing path.
func RenderOCRPreview(e types.Entity, width int) string {
	var text string
	for _, m := range e.Metadata {
		if m.Key == types.MetadataKeyOCRResult {
			text = m.Value
			break
		}
	}
	if text == "" {
		return ""
	}

	md := fmt.Sprintf("**%s**\n\n```\n%s\n```\n", e.Filepath, text)
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
