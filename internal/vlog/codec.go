// Package vlog converts between the intermediate save notation and the
// engine's continuation log: an XOR-obfuscated, hex-encoded savedGame entry
// zipped together with the module's boilerplate files.
package vlog

import (
	"fmt"
	"strconv"
	"strings"
)

// Magic opens every obfuscated savedGame
const Magic = "!VCSK"

// CodecError reports obfuscated or clear text the codec cannot process
type CodecError struct {
	Offset int
	Reason string
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("vlog codec: %s at offset %d", e.Reason, e.Offset)
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func parseKey(s string, offset int) (byte, error) {
	if len(s) < 2 {
		return 0, &CodecError{Offset: offset, Reason: "missing XOR key"}
	}
	if !isHex(s[0]) || !isHex(s[1]) {
		return 0, &CodecError{Offset: offset, Reason: fmt.Sprintf("XOR key %q is not hexadecimal", s[:2])}
	}
	k, _ := strconv.ParseUint(s[:2], 16, 8)
	return byte(k), nil
}

// Encode obfuscates clear text. Line breaks are formatting and are dropped; the
// first two characters are the XOR key and are kept in the clear.
func Encode(clear string) (string, error) {
	clear = strings.NewReplacer("\r", "", "\n", "").Replace(clear)
	key, err := parseKey(clear, 0)
	if err != nil {
		return "", err
	}
	body := clear[2:]

	var b strings.Builder
	b.Grow(len(Magic) + 2 + 2*len(body))
	b.WriteString(Magic)
	b.WriteString(clear[:2])
	// The engine reads the decoded bytes as UTF-8, so obfuscate bytes, not runes.
	for i := 0; i < len(body); i++ {
		fmt.Fprintf(&b, "%02x", body[i]^key)
	}
	return b.String(), nil
}

// Decode reverses Encode, returning the key followed by the clear body
func Decode(saved string) (string, error) {
	saved = strings.TrimRight(saved, "\r\n")
	if !strings.HasPrefix(saved, Magic) {
		return "", &CodecError{Offset: 0, Reason: "missing " + Magic + " header"}
	}
	key, err := parseKey(saved[len(Magic):], len(Magic))
	if err != nil {
		return "", err
	}
	start := len(Magic) + 2
	body := saved[start:]
	if len(body)%2 != 0 {
		return "", &CodecError{Offset: len(saved), Reason: "odd number of hex digits"}
	}

	out := make([]byte, 0, 2+len(body)/2)
	out = append(out, saved[len(Magic):start]...)
	for i := 0; i < len(body); i += 2 {
		if !isHex(body[i]) || !isHex(body[i+1]) {
			return "", &CodecError{Offset: start + i, Reason: fmt.Sprintf("invalid hex pair %q", body[i:i+2])}
		}
		v, _ := strconv.ParseUint(body[i:i+2], 16, 8)
		out = append(out, byte(v)^key)
	}
	return string(out), nil
}

// Format lays decoded text out for reading and diffing: the key on its own
// line, a line break after every tab and a blank line after every record.
// Encode ignores the added line breaks.
func Format(decoded string) string {
	if len(decoded) < 2 {
		return decoded
	}
	body := strings.NewReplacer("\t", "\t\r\n", "\x1b", "\x1b\r\n\r\n").Replace(decoded[2:])
	return decoded[:2] + "\r\n" + body
}
