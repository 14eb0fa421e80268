package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/folio/internal/briefing"
	"github.com/matheuskafuri/folio/internal/catalog"
)

func renderOpeningScreen(b *briefing.Briefing, kind catalog.Kind, height int) string {
	var lines []string

	title := cardTitleStyle.Render(fmt.Sprintf("folio · %s", b.DateLabel))
	lines = append(lines, "", "  "+title, "")

	if b.Greeting != "" {
		lines = append(lines, "  "+cardBodyStyle.Render(b.Greeting+"."), "")
	}
	lines = append(lines, "  "+cardMetaStyle.Render(fmt.Sprintf("View: %s of %s", b.View, kindLabel(kind))))
	lines = append(lines, "  "+cardMetaStyle.Render(fmt.Sprintf("Records in catalog: %d", b.Scanned)))
	lines = append(lines, "  "+cardMetaStyle.Render(fmt.Sprintf("Selected for today: %d", b.Selected)))
	lines = append(lines, "")

	if len(b.Themes) > 0 {
		lines = append(lines, "  "+cardBodyStyle.Render("Recurring themes:"))
		for _, theme := range b.Themes {
			lines = append(lines, "  "+cardBodyStyle.Render("  "+theme))
		}
		lines = append(lines, "")
	}

	if b.Selected == 0 {
		lines = append(lines, "  "+cardBodyStyle.Render("Nothing to show. Run `folio import` to load the catalog."))
	}

	content := strings.Join(lines, "\n")
	return topPadded(content, height)
}

func renderCardView(card briefing.Card, total int, width, height int) string {
	cardWidth := width - 8
	if cardWidth < 30 {
		cardWidth = 30
	}

	r := card.Record
	var body []string

	meta := kindLabel(r.Kind)
	if pub := r.Published(); !pub.IsZero() {
		meta += " · " + pub.Format("Jan 2006")
	}
	body = append(body, cardMetaStyle.Render(meta))
	body = append(body, cardTitleStyle.Render(r.Title))
	body = append(body, "")

	line := categoryStyle(r.Category).Render(string(r.Category)) +
		cardMetaStyle.Render(fmt.Sprintf("  ·  %d min", card.ReadingTime))
	if r.Role != "" {
		line += cardMetaStyle.Render("  ·  " + r.Role)
	}
	body = append(body, line)

	if card.Excerpt != "" {
		body = append(body, "")
		for _, l := range strings.Split(wrapText(card.Excerpt, cardWidth-2), "\n") {
			body = append(body, cardBodyStyle.Render(l))
		}
	}
	if len(r.Tags) > 0 {
		body = append(body, "", cardMetaStyle.Render(strings.Join(r.Tags, " · ")))
	}
	if card.Link != "" {
		body = append(body, previewLinkStyle.Render(card.Link))
	}

	cardBox := cardBoxStyle.Width(cardWidth).Render(strings.Join(body, "\n"))
	counter := cardMetaStyle.Render(fmt.Sprintf("%d/%d", card.Index, total))

	lines := []string{"", "  " + counter}
	for _, l := range strings.Split(cardBox, "\n") {
		lines = append(lines, "  "+l)
	}
	return topPadded(strings.Join(lines, "\n"), height)
}

func kindLabel(k catalog.Kind) string {
	switch k {
	case catalog.CaseStudy:
		return "case studies"
	case catalog.Project:
		return "projects"
	case catalog.Article:
		return "journal"
	default:
		return "records"
	}
}

// topPadded places content about a third of the way down the screen.
func topPadded(content string, height int) string {
	contentLines := lipgloss.Height(content)
	topPad := (height - contentLines) / 3
	if topPad < 0 {
		topPad = 0
	}
	return strings.Repeat("\n", topPad) + content
}
