package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Palette. ANSI 256 codes so the output survives basic terminals.
var (
	colorTeal  = lipgloss.Color("37")
	colorGreen = lipgloss.Color("71")
	colorAmber = lipgloss.Color("214")
	colorRed   = lipgloss.Color("167")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	// StyleTitle renders headings such as the picker title.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	// StyleDim renders secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	styleValue       = lipgloss.NewStyle().Foreground(colorWhite)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorTeal)
	styleTableHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	styleTableCell   = lipgloss.NewStyle().Padding(0, 1)
)

// status is a leading icon with its color.
type status struct {
	icon  string
	style lipgloss.Style
}

var (
	statusOK   = status{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	statusFail = status{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	statusWarn = status{"!", lipgloss.NewStyle().Foreground(colorAmber)}
	statusInfo = status{"›", lipgloss.NewStyle().Foreground(colorGray)}
)

// out receives command output. Tests swap it for a buffer.
var out io.Writer = os.Stdout

func (s status) println(format string, args ...any) {
	fmt.Fprintf(out, "%s %s\n", s.style.Render(s.icon), fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { statusOK.println(format, args...) }
func printError(format string, args ...any)   { statusFail.println(format, args...) }
func printInfo(format string, args ...any)    { statusInfo.println(format, args...) }

func printWarning(format string, args ...any) {
	statusWarn.println("%s", statusWarn.style.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(out, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile announces a written file.
func printFile(path string) {
	fmt.Fprintf(out, "  %s %s\n", StyleDim.Render("→"), styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(out, styleKey.Render(key)+" "+styleValue.Render(value))
}

// printStats prints counters on one dimmed line: "12 tanks · 12 buttons".
func printStats(parts ...string) {
	fmt.Fprintln(out, "  "+StyleDim.Render(strings.Join(parts, " · ")))
}

func printTable(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == -1 { // header
				return styleTableHeader
			}
			return styleTableCell
		})
	fmt.Fprintln(out, t.Render())
}

// printNextStep suggests the command to run next.
func printNextStep(description, cmd string) {
	fmt.Fprintln(out, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() { fmt.Fprintln(out) }
