package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Color styles shared by the renderers
var (
	headerStyle   = color.New(color.Bold, color.FgHiWhite)
	addressStyle  = color.New(color.FgWhite)
	nameStyle     = color.New(color.FgCyan, color.Bold)
	faintStyle    = color.New(color.Faint)
	successStyle  = color.New(color.FgGreen)
	warningStyle  = color.New(color.FgYellow)
	errorStyle    = color.New(color.FgRed)
	proxiedStyle  = color.New(color.FgMagenta)
	networkHeader = color.New(color.BgCyan, color.FgBlack, color.Bold)
)

var amountPrinter = message.NewPrinter(language.English)

// newTable returns a borderless table writer in the style used across commands.
func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateHeader = false
	t.Style().Options.SeparateColumns = false
	t.Style().Box = table.BoxStyle{
		PaddingLeft:  "  ",
		PaddingRight: "  ",
	}
	t.Style().Format.Header = text.FormatDefault
	return t
}

// PrintJSON writes v as indented JSON.
func PrintJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// GroupDigits inserts thousands separators into the integer part of a decimal
// string. Anything that isn't a plain decimal is returned unchanged.
func GroupDigits(s string) string {
	intPart, frac, hasFrac := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	n, err := strconv.ParseUint(strings.TrimPrefix(intPart, "-"), 10, 64)
	if err != nil {
		return s
	}
	grouped := amountPrinter.Sprintf("%d", n)
	if neg {
		grouped = "-" + grouped
	}
	if hasFrac {
		return grouped + "." + frac
	}
	return grouped
}

func section(out io.Writer, title string) {
	fmt.Fprintln(out)
	headerStyle.Fprintln(out, title)
}
