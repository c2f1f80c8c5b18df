package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{` _               _   _ _            `, "#f97316"},
	{`| |__   ___  ___| |_| (_)_ __   ___ `, "#fb923c"},
	{`| '_ \ / _ \/ __| __| | | '_ \ / _ \`, "#f59e0b"},
	{`| | | | (_) \__ \ |_| | | | | |  __/`, "#eab308"},
	{`|_| |_|\___/|___/\__|_|_|_| |_|\___|`, "#facc15"},
}

// PrintBanner writes the hostline banner and a tagline naming the brand the
// assistant speaks for.
func PrintBanner(w io.Writer, brand string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()

	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	if brand != "" {
		fmt.Fprintln(w, out.String("  table assistant for "+brand).Faint())
	}
	fmt.Fprintln(w)
}
