package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"krist-explorer/listing"
	"krist-explorer/utils"
)

// ANSI color codes for terminal output
const (
	ColorReset   = "\033[0m"
	ColorBold    = "\033[1m"
	ColorDim     = "\033[2m"
	ColorRed     = "\033[31m"
	ColorGreen   = "\033[32m"
	ColorYellow  = "\033[33m"
	ColorBlue    = "\033[34m"
	ColorMagenta = "\033[35m"
	ColorCyan    = "\033[36m"
	ColorWhite   = "\033[37m"
)

// Color helper functions
func ColorTitle(text string) string     { return ColorCyan + ColorBold + text + ColorReset }
func ColorSuccess(text string) string   { return ColorGreen + ColorBold + text + ColorReset }
func ColorError(text string) string     { return ColorRed + ColorBold + text + ColorReset }
func ColorWarning(text string) string   { return ColorYellow + text + ColorReset }
func ColorInfo(text string) string      { return ColorWhite + text + ColorReset }
func ColorSection(text string) string   { return ColorBlue + ColorBold + text + ColorReset }
func ColorHighlight(text string) string { return ColorCyan + text + ColorReset }
func ColorDimText(text string) string   { return ColorDim + ColorWhite + text + ColorReset }

const sectionWidth = 60

// Printer writes plain (non-interactive) output
type Printer struct {
	w     io.Writer
	color bool
}

func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, color: color}
}

func (p *Printer) paint(style func(string) string, text string) string {
	if !p.color {
		return text
	}
	return style(text)
}

// SectionHeader prints a formatted section header
func (p *Printer) SectionHeader(title string) {
	headerContent := "─ " + title + " "
	remainingWidth := sectionWidth - runewidth.StringWidth(headerContent)
	if remainingWidth < 0 {
		remainingWidth = 0
	}
	fmt.Fprintln(p.w, p.paint(ColorSection, "┌"+headerContent+strings.Repeat("─", remainingWidth)+"┐"))
}

// SectionFooter prints a formatted section footer
func (p *Printer) SectionFooter() {
	fmt.Fprintln(p.w, p.paint(ColorSection, "└"+strings.Repeat("─", sectionWidth)+"┘"))
}

// Field prints one "label: value" line
func (p *Printer) Field(label, value string) {
	fmt.Fprintf(p.w, "  %s %s\n", p.paint(ColorDimText, utils.PadRight(label+":", 16)), value)
}

// Result prints an outcome message
func (p *Printer) Result(r Result) {
	style := ColorError
	switch r.Severity {
	case SeverityWarning:
		style = ColorWarning
	case SeverityInfo:
		style = ColorSuccess
	}
	fmt.Fprintln(p.w, "  "+p.paint(style, r.Title))
	if r.Message != "" {
		fmt.Fprintln(p.w, "  "+p.paint(ColorInfo, r.Message))
	}
}

// LineFunc renders the condensed form of an item
type LineFunc[T any] func(item T, index int) (title, detail string)

// PrintListing prints one page of a listing in the mode the view selected
func PrintListing[T any](p *Printer, title string, v listing.View[T], cols listing.ColumnSet, cell CellFunc[T], line LineFunc[T]) {
	p.SectionHeader(title)
	defer p.SectionFooter()

	switch StatusOf(v) {
	case StatusLoading:
		fmt.Fprintln(p.w, "  "+p.paint(ColorDimText, "Loading..."))
		return
	case StatusError:
		p.Result(ResultFor(v.State.Err))
		return
	case StatusEmpty:
		fmt.Fprintln(p.w, "  "+p.paint(ColorDimText, "Nothing to show"))
		return
	}

	items := v.Result.Items
	if v.Mode == listing.ModeList {
		for i, item := range items {
			t, d := line(item, v.ResultOptions.Offset+i)
			fmt.Fprintln(p.w, "  "+p.paint(ColorHighlight, t))
			fmt.Fprintln(p.w, "    "+p.paint(ColorDimText, d))
		}
	} else {
		header := make([]string, len(cols))
		for i, c := range cols {
			header[i] = utils.PadRight(c.Title, c.Width)
		}
		fmt.Fprintln(p.w, "  "+p.paint(ColorSection, strings.TrimRight(strings.Join(header, " "), " ")))

		for _, row := range Rows(cols, items, v.ResultOptions.Offset, cell) {
			cells := make([]string, len(row))
			for i, c := range row {
				cells[i] = utils.PadRight(c, cols[i].Width)
			}
			fmt.Fprintln(p.w, "  "+strings.TrimRight(strings.Join(cells, " "), " "))
		}
	}

	if v.State.Status == listing.StatusFailed {
		p.Result(ResultFor(v.State.Err))
	}

	from, to := v.Shown().Range()
	fmt.Fprintf(p.w, "  %s\n", p.paint(ColorDimText, fmt.Sprintf("%d-%d of %s, %s, sorted by %s %s",
		from, to, utils.FormatNumber(int64(v.Page.Total)), v.Page.String(), v.Options.OrderBy, v.Options.Order)))
}
