package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jwebster45206/ascension-log/pkg/render"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")) // pink

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(lipgloss.Color("39")) // teal

	dayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow
)

// terminal is the plain-text format with coloured headings.
var terminal = func() render.Format {
	f := render.PlainText
	f.Name = "terminal"
	f.HeadingFunc = terminalHeading
	f.WrapWidth = 100
	return f
}()

func terminalHeading(level int, _ string, text string) string {
	switch level {
	case 1:
		return titleStyle.Render(strings.ToUpper(text)) + "\n\n"
	case 2:
		return sectionStyle.Render(text) + "\n\n"
	default:
		return dayStyle.Render(text) + "\n"
	}
}

func formatByName(name string) (render.Format, error) {
	if strings.EqualFold(name, terminal.Name) {
		return terminal, nil
	}
	f, ok := render.FormatByName(name)
	if !ok {
		return render.Format{}, fmt.Errorf("unknown format %q, expected one of %s", name, strings.Join(formatNames(), ", "))
	}
	return f, nil
}

func formatNames() []string {
	return append(render.FormatNames(), terminal.Name)
}
