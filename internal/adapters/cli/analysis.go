package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/kirillkom/docs-qa/internal/core/domain"
)

const previewRunes = 100

// renderRetrievalAnalysis renders the score / heading path / content preview
// table shown under every answer. Sources arrive already ranked by
// similarity descending.
func renderRetrievalAnalysis(sources []domain.RetrievedChunk) string {
	rows := make([][]string, 0, len(sources))
	for _, src := range sources {
		rows = append(rows, []string{
			fmt.Sprintf("%.1f%%", src.Similarity*100),
			headingPathOrDefault(src.HeadingPath),
			previewText(src.Text),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("SCORE", "PATH", "PREVIEW").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headingStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}

func headingPathOrDefault(path string) string {
	if strings.TrimSpace(path) == "" {
		return "No path"
	}
	return path
}

// previewText collapses whitespace and truncates to previewRunes runes.
func previewText(text string) string {
	runes := []rune(strings.Join(strings.Fields(text), " "))
	if len(runes) <= previewRunes {
		return string(runes)
	}
	return string(runes[:previewRunes]) + "..."
}
