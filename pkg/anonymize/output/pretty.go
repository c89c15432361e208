package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// PrettyFormatter renders a styled report for terminals.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.header(r))
	w.WriteString("\n")
	w.WriteString(f.table(r))
	w.WriteString(f.footer(r))
	w.WriteString("\n")

	if len(r.Warnings) > 0 {
		w.WriteString(WarningStyle.Bold(true).Render("Warnings:"))
		w.WriteString("\n")
		for _, warning := range r.Warnings {
			w.WriteString(WarningStyle.Render("  " + warning))
			w.WriteString("\n")
		}
	}

	return nil
}

func (f *PrettyFormatter) header(r *Result) string {
	var lines []string

	if r.Manifest != "" {
		lines = append(lines, labelled("Manifest:", r.Manifest))
		redacted := r.RedactedManifest
		if redacted == "" {
			redacted = "(not written)"
		}
		lines = append(lines, labelled("Redacted:", fmt.Sprintf("%s (%d rows)", redacted, r.Rows)))
	}
	lines = append(lines, labelled("Root:", r.Root))

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

func (f *PrettyFormatter) table(r *Result) string {
	if len(r.Files) == 0 {
		return MutedStyle.Render("  No filenames to process") + "\n"
	}

	statusWidth, sizeWidth := len("STATUS"), len("SIZE")
	for _, file := range r.Files {
		statusWidth = max(statusWidth, len(file.Status))
		sizeWidth = max(sizeWidth, len(file.SizeHuman))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "  %s  %s  %s\n",
		TableHeaderStyle.Render(padRight("STATUS", statusWidth)),
		TableHeaderStyle.Render(padLeft("SIZE", sizeWidth)),
		TableHeaderStyle.Render("FILE"))

	for _, file := range r.Files {
		target := file.Subject()
		if file.Detail != "" {
			target += " " + MutedStyle.Render("("+file.Detail+")")
		}
		fmt.Fprintf(&sb, "  %s  %s  %s\n",
			StatusStyle(file.Status).Render(padRight(file.Status, statusWidth)),
			SizeStyle.Render(padLeft(file.SizeHuman, sizeWidth)),
			target)
	}

	return sb.String()
}

func (f *PrettyFormatter) footer(r *Result) string {
	parts := []string{
		SuccessStyle.Render(r.Summary()),
		labelled("Not found:", fmt.Sprintf("%d", r.Stats.NotFound)),
		labelled("Failed:", fmt.Sprintf("%d", r.Stats.Failed)),
		labelled("Replaced:", humanize.IBytes(uint64(r.Stats.Bytes))),
	}
	if r.Stats.Duration > 0 {
		parts = append(parts, MutedStyle.Render(r.Stats.Duration.Round(time.Millisecond).String()))
	}
	return FooterBox.Render(strings.Join(parts, "  "))
}

func labelled(label, value string) string {
	return LabelStyle.Render(label) + " " + ValueStyle.Render(value)
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func init() {
	Register("pretty", func() Formatter { return &PrettyFormatter{} })
}

var _ Formatter = (*PrettyFormatter)(nil)
