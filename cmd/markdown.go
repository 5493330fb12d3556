package cmd

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// wordWrap is the width of rendered markdown.
const wordWrap = 120

// printMarkdown renders md for the terminal, or prints it as is when raw.
func printMarkdown(md string, raw bool) {
	if raw {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}
