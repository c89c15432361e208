// Package tui shows an anonymization run as it happens.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/anonymize/pkg/anonymize/output"
)

var (
	headerBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(output.ColorPrimary).
			Padding(0, 1)

	dividerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	titleStyle       = output.TitleStyle
	mutedTextStyle   = output.MutedStyle
	labelStyle       = output.LabelStyle
	successTextStyle = output.SuccessStyle
	warningTextStyle = output.WarningStyle
	errorTextStyle   = output.ErrorStyle
)

func renderDivider(width int) string {
	if width < 1 {
		width = 1
	}
	b := make([]rune, width)
	for i := range b {
		b[i] = '─'
	}
	return dividerStyle.Render(string(b))
}
