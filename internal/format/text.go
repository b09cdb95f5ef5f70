// Package format provides shared text formatting utilities for terminal output.
package format

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// ansiRegex matches ANSI escape sequences
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripAnsi removes ANSI escape sequences from a string.
func StripAnsi(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// DisplayWidth returns the visible width of a string in terminal columns,
// accounting for wide characters and stripping ANSI escape sequences.
func DisplayWidth(s string) int {
	plain := StripAnsi(s)
	width := 0
	for _, r := range plain {
		if r == '️' {
			// variation selector, already counted with its base
			width++
			continue
		}
		width += runewidth.RuneWidth(r)
	}
	return width
}

// Truncate shortens a string to fit within maxWidth display columns,
// appending an ellipsis when truncation occurs. ANSI sequences are
// preserved and a reset code is appended after the ellipsis.
func Truncate(s string, maxWidth int) string {
	if DisplayWidth(s) <= maxWidth {
		return s
	}

	targetWidth := maxWidth - 1
	if targetWidth < 0 {
		targetWidth = 0
	}

	matches := ansiRegex.FindAllStringIndex(s, -1)

	var result strings.Builder
	visibleWidth := 0
	pos := 0
	matchIdx := 0

	for pos < len(s) && visibleWidth < targetWidth {
		if matchIdx < len(matches) && pos == matches[matchIdx][0] {
			result.WriteString(s[matches[matchIdx][0]:matches[matchIdx][1]])
			pos = matches[matchIdx][1]
			matchIdx++
			continue
		}

		r, size := utf8.DecodeRuneInString(s[pos:])
		rw := runewidth.RuneWidth(r)
		if visibleWidth+rw > targetWidth {
			break
		}
		result.WriteString(s[pos : pos+size])
		visibleWidth += rw
		pos += size
	}

	result.WriteString("…\033[0m")
	return result.String()
}

// PadRight pads a string with spaces to reach the target visible width.
func PadRight(s string, targetWidth int) string {
	w := DisplayWidth(s)
	if w >= targetWidth {
		return s
	}
	return s + strings.Repeat(" ", targetWidth-w)
}

// PadLeft left-pads a string with spaces to reach the target visible
// width, for right-aligned numeric columns.
func PadLeft(s string, targetWidth int) string {
	w := DisplayWidth(s)
	if w >= targetWidth {
		return s
	}
	return strings.Repeat(" ", targetWidth-w) + s
}
