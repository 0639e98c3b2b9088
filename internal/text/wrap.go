package text

import (
	"strings"
	"unicode"
)

// Measurer reports the advance width of a string
type Measurer interface {
	Measure(s string) float64
}

// MeasureFunc adapts a function to Measurer
type MeasureFunc func(s string) float64

// Measure calls f(s)
func (f MeasureFunc) Measure(s string) float64 { return f(s) }

// Approx is a declared metric: every rune advances Size*0.6.
// It matches no real font and is only used where measuring is not possible.
type Approx struct {
	Size float64
}

// Measure returns the approximate width of s
func (a Approx) Measure(s string) float64 {
	return float64(len([]rune(s))) * a.Size * 0.6
}

// LineCount returns the number of LF-separated lines in s. Empty text has no lines.
func LineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// SplitLines splits s on line feeds, trimming each line
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

// Wrap breaks every line of s into lines no wider than maxWidth.
// Words wider than maxWidth are placed on a line of their own.
func Wrap(s string, maxWidth float64, m Measurer) []string {
	var out []string
	for _, line := range SplitLines(s) {
		out = append(out, wrapLine(line, maxWidth, m)...)
	}
	return out
}

func wrapLine(line string, maxWidth float64, m Measurer) []string {
	if maxWidth <= 0 || m.Measure(line) <= maxWidth {
		return []string{line}
	}

	var lines []string
	var current string
	for _, word := range splitIntoWords(line) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if current != "" && m.Measure(candidate) > maxWidth {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// splitIntoWords splits text into words
func splitIntoWords(text string) []string {
	var words []string
	var currentWord strings.Builder

	for _, r := range text {
		if unicode.IsSpace(r) {
			if currentWord.Len() > 0 {
				words = append(words, currentWord.String())
				currentWord.Reset()
			}
		} else {
			currentWord.WriteRune(r)
		}
	}

	if currentWord.Len() > 0 {
		words = append(words, currentWord.String())
	}

	return words
}

// Truncate shortens s with an ellipsis so that it fits maxWidth
func Truncate(s string, maxWidth float64, m Measurer) string {
	if m.Measure(s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		if c := string(runes) + "…"; m.Measure(c) <= maxWidth {
			return c
		}
	}
	return ""
}
