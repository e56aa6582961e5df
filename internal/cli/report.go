package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"listbuilder/internal/fleet"
	"listbuilder/internal/listbuilder"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

// summary lines shared by the plain and styled reports
func summaryLines(res *listbuilder.Result) [][2]string {
	c := res.Fleet.Counts()
	lines := [][2]string{{"format", res.Dialect.Title()}}
	if res.Fleet.Name != "" {
		lines = append(lines, [2]string{"fleet", res.Fleet.Name})
	}
	if res.Fleet.Faction != "" {
		lines = append(lines, [2]string{"faction", res.Fleet.Faction})
	}
	if res.Fleet.Points > 0 {
		lines = append(lines, [2]string{"points", fmt.Sprint(res.Fleet.Points)})
	}
	lines = append(lines,
		[2]string{"pieces", fmt.Sprintf("%d ships, %d upgrades, %d squadrons, %d objectives",
			c.Ships, c.Upgrades, c.Squadrons, c.Objectives)},
	)
	for _, cat := range fleet.Categories {
		if o, ok := res.Fleet.Objective(cat); ok {
			lines = append(lines, [2]string{string(cat), o.Piece.Name})
		}
	}
	if res.Output != "" {
		lines = append(lines, [2]string{"output", res.Output})
	}
	return lines
}

func renderPlain(res *listbuilder.Result) string {
	var b strings.Builder
	for _, l := range summaryLines(res) {
		fmt.Fprintf(&b, "%s: %s\n", l[0], l[1])
	}
	if len(res.Unresolved) > 0 {
		fmt.Fprintf(&b, "unresolved: %d\n", len(res.Unresolved))
		for _, u := range res.Unresolved {
			fmt.Fprintf(&b, "  %s\n", u)
		}
	}
	return b.String()
}

func renderStyled(res *listbuilder.Result) string {
	var rows []string
	rows = append(rows, titleStyle.Render("Fleet imported"))
	for _, l := range summaryLines(res) {
		rows = append(rows, labelStyle.Render(fmt.Sprintf("%-10s", l[0]))+" "+l[1])
	}
	if len(res.Unresolved) > 0 {
		rows = append(rows, "", warnStyle.Render(fmt.Sprintf("%d pieces not found", len(res.Unresolved))))
		for _, u := range res.Unresolved {
			rows = append(rows, warnStyle.Render("  "+u.String()))
		}
	}
	return panelStyle.Render(strings.Join(rows, "\n")) + "\n"
}

func (a *app) printResult(res *listbuilder.Result) {
	if a.stdoutIsTerminal() {
		fmt.Fprint(a.streams.Out, renderStyled(res))
		return
	}
	fmt.Fprint(a.streams.Out, renderPlain(res))
}
