package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// UI provides colored output and respects verbose/dry-run modes.
type UI struct {
	Verbose bool
	DryRun  bool
	Out     io.Writer
	ErrOut  io.Writer

	// Theme is the chroma style used by Highlight; BGColor overrides its
	// background unless it is "default".
	Theme   string
	BGColor string
}

// New creates a UI with default stdout/stderr writers.
func New() *UI {
	return &UI{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
}

var (
	infoPrefix    = color.New(color.FgHiBlue).Sprint("i")
	successPrefix = color.New(color.FgHiGreen).Sprint("✓")
	warningPrefix = color.New(color.FgHiYellow).Sprint("⚠")
	errorPrefix   = color.New(color.FgHiRed).Sprint("✗")
	verbosePrefix = color.New(color.FgHiBlue).Sprint("  →")
	cyan          = color.New(color.FgHiCyan).SprintFunc()
	green         = color.New(color.FgHiGreen).SprintFunc()
	yellow        = color.New(color.FgHiYellow).SprintFunc()
	red           = color.New(color.FgHiRed).SprintFunc()
	blue          = color.New(color.FgHiBlue).SprintFunc()
	bold          = color.New(color.Bold).SprintFunc()
)

// Cyan returns a cyan-colored string.
func Cyan(s string) string { return cyan(s) }

// Green returns a green-colored string.
func Green(s string) string { return green(s) }

// Yellow returns a yellow-colored string.
func Yellow(s string) string { return yellow(s) }

// Red returns a red-colored string.
func Red(s string) string { return red(s) }

// Blue returns a blue-colored string.
func Blue(s string) string { return blue(s) }

// Bold returns a bold string.
func Bold(s string) string { return bold(s) }

// Delta renders insertions and deletions as "+ins -del" in green and red.
func Delta(inserted, deleted int) string {
	return fmt.Sprintf("%s %s", green(fmt.Sprintf("%+d", inserted)), red(fmt.Sprintf("%+d", -deleted)))
}

// RelativeTime renders t relative to now ("3 hours ago"); zero times render empty.
func RelativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

func (u *UI) Info(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", infoPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Success(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", successPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Warning(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", warningPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Error(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", errorPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) VerboseLog(format string, a ...any) {
	if u.Verbose {
		fmt.Fprintf(u.ErrOut, "%s %s\n", verbosePrefix, fmt.Sprintf(format, a...))
	}
}

func (u *UI) DryRunMsg(format string, a ...any) {
	if u.DryRun {
		u.Warning("[DRY-RUN] "+format, a...)
	}
}

// Println writes a plain line to Out.
func (u *UI) Println(a ...any) {
	fmt.Fprintln(u.Out, a...)
}

// Printf writes formatted text to Out.
func (u *UI) Printf(format string, a ...any) {
	fmt.Fprintf(u.Out, format, a...)
}

// Table creates a new tablewriter configured with consistent styling.
func (u *UI) Table(headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(u.Out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}

// Highlight writes source to Out with syntax highlighting for language (e.g. "diff",
// "json"). When color output is disabled the source is written unchanged.
func (u *UI) Highlight(source, language string) error {
	if color.NoColor {
		_, err := io.WriteString(u.Out, source)
		return err
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return fmt.Errorf("tokenise %s: %w", language, err)
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}
	return formatter.Format(u.Out, u.style(), iterator)
}

func (u *UI) style() *chroma.Style {
	style := styles.Get(u.Theme)
	if style == nil {
		style = styles.Fallback
	}
	if u.BGColor == "" || u.BGColor == "default" {
		return style
	}
	custom, err := style.Builder().Add(chroma.Background, "bg:"+u.BGColor).Build()
	if err != nil {
		u.VerboseLog("ignoring bg_color %q: %v", u.BGColor, err)
		return style
	}
	return custom
}
