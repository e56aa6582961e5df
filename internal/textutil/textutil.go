// Package textutil cleans pasted fleet lists before classification and parsing.
package textutil

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const bom = "\ufeff"

// mojibakeMarkers are byte sequences UTF-8 punctuation turns into when read as Windows-1252
var mojibakeMarkers = []string{"â€", "Â", "Ã"}

// Normalize strips a leading byte-order mark and converts CRLF and lone CR line
// endings to LF
func Normalize(text string) string {
	text = strings.TrimPrefix(text, bom)
	if !strings.Contains(text, "\r") {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// Lines splits normalized text on LF
func Lines(text string) []string {
	return strings.Split(Normalize(text), "\n")
}

// RepairMojibake undoes UTF-8 text that was decoded as Windows-1252 somewhere
// between the list builder and the paste, e.g. "â€¢" for "•". Lines that do not
// round-trip cleanly fall back to replacing the bullet sequence only.
func RepairMojibake(text string) string {
	if !hasMojibake(text) {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if hasMojibake(line) {
			lines[i] = repairLine(line)
		}
	}
	return strings.Join(lines, "\n")
}

func hasMojibake(s string) bool {
	for _, m := range mojibakeMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func repairLine(line string) string {
	raw, err := charmap.Windows1252.NewEncoder().String(line)
	if err == nil && utf8.ValidString(raw) {
		return raw
	}
	return strings.ReplaceAll(line, "â€¢", "•")
}
