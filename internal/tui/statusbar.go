package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusBar(count int, filterLabel string, width int, searching bool, notice string) string {
	left := fmt.Sprintf(" %d records", count)
	if filterLabel != "All" {
		left += " · " + filterLabel
	}
	if notice != "" {
		left += " · " + notice
	}

	right := " m cards  / search  f filter  q quit "
	if searching {
		right = " esc cancel  enter search "
	}

	return statusBarStyle.Width(width).Render(spread(left, right, width))
}

func renderBottomBar(notice, hints string, width int) string {
	left := ""
	if notice != "" {
		left = " " + lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render(notice)
	}
	return statusBarStyle.Width(width).Render(spread(left, " "+hints+" ", width))
}

func spread(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return left + fmt.Sprintf("%*s", gap, "") + right
}
