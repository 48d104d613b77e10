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
	{`           _                          _        `, "#34d399"},
	{`  ___  ___| |__   ___ _ __ ___   __ _| |_ __ _ `, "#2dd4bf"},
	{` / __|/ __| '_ \ / _ \ '_ ' _ \ / _' | __/ _' |`, "#22d3ee"},
	{` \__ \ (__| | | |  __/ | | | | | (_| | || (_| |`, "#38bdf8"},
	{` |___/\___|_| |_|\___|_| |_| |_|\__,_|\__\__,_|`, "#60a5fa"},
}

// PrintBanner writes the ASCII art banner followed by the version line.
// Colors degrade to the profile of the output terminal.
func PrintBanner(w io.Writer, version string) {
	p := termenv.NewOutput(w).ColorProfile()

	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line.text).Foreground(p.Color(line.color)))
	}
	if version != "" {
		fmt.Fprintln(w, termenv.String("  schema validator "+version).Faint())
	}
	fmt.Fprintln(w)
}
