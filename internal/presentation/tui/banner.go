package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the launchplan banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{" _                        _          _             ", "#34d399"},
		{"| | __ _ _   _ _ __   ___| |__  _ __| | __ _ _ __  ", "#2dd4bf"},
		{"| |/ _` | | | | '_ \\ / __| '_ \\| '_ \\ |/ _` | '_ \\ ", "#22d3ee"},
		{"| | (_| | |_| | | | | (__| | | | |_) | | (_| | | | |", "#38bdf8"},
		{"|_|\\__,_|\\__,_|_| |_|\\___|_| |_| .__/|_|\\__,_|_| |_|", "#60a5fa"},
		{"                               |_|                  ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
