package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/tinygo-org/ledstrip/ws2812"
)

// renderFrame draws one line of truecolor blocks, one per LED.
func renderFrame(w io.Writer, colors []ws2812.Color) {
	var sb strings.Builder
	for _, c := range colors {
		fmt.Fprintf(&sb, "\x1b[48;2;%d;%d;%dm  ", c.R, c.G, c.B)
	}
	sb.WriteString("\x1b[0m\n")
	io.WriteString(w, sb.String())
}

// renderHex writes the frame as hex colors, for output that is not a terminal.
func renderHex(w io.Writer, colors []ws2812.Color) {
	parts := make([]string, len(colors))
	for i, c := range colors {
		parts[i] = c.String()
	}
	fmt.Fprintln(w, strings.Join(parts, " "))
}
