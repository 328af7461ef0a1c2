package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/facetlayout/pkg/pipeline"
)

var (
	StyleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	StyleValue   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	StyleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))

	styleOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	styleFailed  = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleSpinner = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	styleCommand = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	styleKey     = styleMuted.Width(12)
)

func printSuccess(format string, args ...any) {
	fmt.Println(styleOK.Render("✓") + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleFailed.Render("✗") + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(StyleWarning.Render("! " + fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleMuted.Render("›") + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints the size of a routed diagram on one line, e.g.
// "4 classifiers · 5/6 relationships drawn · fresh".
func printStats(stats pipeline.Stats, cached bool) {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d classifiers", stats.Classifiers)),
		StyleDim.Render(fmt.Sprintf("%d/%d relationships drawn", stats.Drawn, stats.Relationships)),
	}
	if stats.Dropped > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d dropped", stats.Dropped)))
	}
	if cached {
		parts = append(parts, styleOK.Render("cached"))
	} else {
		parts = append(parts, styleMuted.Render("fresh"))
	}
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// printNextStep suggests a follow-up command after a blank line.
func printNextStep(description, cmd string) {
	fmt.Println()
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}
