package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/folio/internal/catalog"
)

func renderPreview(r *catalog.Record, link string, width, height, scroll int) string {
	if r == nil {
		return centered("Select a record", width, height)
	}

	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	title := previewTitleStyle.Width(contentWidth).Render(r.Title)

	meta := []string{kindLabel(r.Kind), string(r.Category)}
	if r.Role != "" {
		meta = append(meta, r.Role)
	}
	if pub := r.Published(); !pub.IsZero() {
		meta = append(meta, pub.Format("Jan 2, 2006"))
	}
	metaLine := previewMetaStyle.Render(strings.Join(meta, " · "))

	summary := r.Summary
	if summary == "" {
		summary = "(No summary available)"
	}
	body := previewBodyStyle.Width(contentWidth).Render(wrapText(summary, contentWidth))

	parts := []string{title, metaLine, "", body}
	if len(r.Tags) > 0 {
		parts = append(parts, "", itemTimeStyle.Render(strings.Join(r.Tags, " · ")))
	}
	if link != "" {
		parts = append(parts, previewLinkStyle.Width(contentWidth).Render("Open: "+link))
	}
	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}

	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
