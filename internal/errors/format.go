package errors

import (
	"fmt"
	"io"
	"strings"
)

// Terminal styles.
const (
	styleReset = "\033[0m"
	styleBold  = "\033[1m"
	styleRed   = "\033[31m"
	styleBlue  = "\033[34m"
	styleCyan  = "\033[36m"
	styleGray  = "\033[90m"
)

// detailWidth is the column at which Format wraps details.
const detailWidth = 70

var colorEnabled = true

// DisableColors turns off ANSI styling in Format and Fprint.
func DisableColors() { colorEnabled = false }

// EnableColors turns ANSI styling back on.
func EnableColors() { colorEnabled = true }

func paint(text string, styles ...string) string {
	if !colorEnabled || len(styles) == 0 {
		return text
	}
	return strings.Join(styles, "") + text + styleReset
}

// Format renders the error as a multi-line block for a terminal.
//
//	ERROR E141: Config file not found (config)
//
//	  detail, wrapped to 70 columns
//
//	  Cause: ...
//	  Hint: ...
//	  Learn more: https://...
func (e *Error) Format() string {
	var b strings.Builder

	title := e.Message
	if e.Code != "" {
		title = e.Code + ": " + e.Message
	}
	b.WriteString("\n" + paint("ERROR", styleBold, styleRed) + " " + paint(title, styleBold))
	if e.Category != "" {
		b.WriteString(" " + paint("("+string(e.Category)+")", styleGray))
	}
	b.WriteString("\n\n")

	if lines := wrapText(e.Detail, detailWidth); len(lines) > 0 {
		for _, line := range lines {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n")
	}

	var trailer []string
	if e.Wrapped != nil {
		trailer = append(trailer, paint("Cause: ", styleGray)+e.Wrapped.Error())
	}
	if e.Suggestion != "" {
		trailer = append(trailer, paint("Hint: ", styleCyan)+e.Suggestion)
	}
	if e.DocURL != "" {
		trailer = append(trailer, paint("Learn more: ", styleGray)+paint(e.DocURL, styleBlue))
	}
	for _, line := range trailer {
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}

// FormatCompact returns "CODE: message - detail" on one line.
func (e *Error) FormatCompact() string {
	s := e.Message
	if e.Code != "" {
		s = e.Code + ": " + s
	}
	if e.Detail != "" {
		s += " - " + e.Detail
	}
	return s
}

// wrapText breaks text into lines of at most width bytes at word
// boundaries. A single word longer than width gets its own line.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	lines := []string{words[0]}
	for _, w := range words[1:] {
		last := &lines[len(lines)-1]
		if len(*last)+1+len(w) > width {
			lines = append(lines, w)
			continue
		}
		*last += " " + w
	}
	return lines
}

// Fprint writes err to w. The first *Error in the chain is formatted as a
// block; anything else gets a one-line header.
func Fprint(w io.Writer, err error) {
	for e := err; e != nil; {
		if ge, ok := e.(*Error); ok {
			fmt.Fprint(w, ge.Format())
			return
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	fmt.Fprintf(w, "\n%s %s\n\n", paint("ERROR:", styleBold, styleRed), err.Error())
}
