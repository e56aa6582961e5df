// Package vlb writes a fleet in the engine's intermediate save notation: a
// fixed header, two chat log lines, then one ESC-terminated record per piece.
package vlb

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"listbuilder/internal/fleet"
)

const (
	// RecordSeparator ends every record
	RecordSeparator = "\x1b"

	// Header opens every file; its first two characters double as the XOR key of the encoded log
	Header = "a1\r\nbegin_save" + RecordSeparator + "\r\nend_save" + RecordSeparator + "\r\n"

	logPrefix = "LOG\tCHAT<Listbuilder> - "
)

// DefaultBanner is written as the two chat lines when no banner is configured
var DefaultBanner = [2]string{
	"Fleet imported by listbuilder.",
	"Pieces are laid out behind your deployment zone.",
}

type options struct {
	banner [2]string
}

// Option configures serialization
type Option func(*options)

// WithBanner replaces the chat lines; empty entries keep the defaults
func WithBanner(first, second string) Option {
	return func(o *options) {
		if first != "" {
			o.banner[0] = first
		}
		if second != "" {
			o.banner[1] = second
		}
	}
}

// Serialize renders f. Pieces follow fleet.Pieces order: ships with their
// token, command stack and upgrades, then squadrons, then objectives.
func Serialize(f *fleet.Fleet, opts ...Option) string {
	o := options{banner: DefaultBanner}
	for _, opt := range opts {
		opt(&o)
	}

	var b strings.Builder
	b.WriteString(Header)
	b.WriteString(logPrefix + o.banner[0] + RecordSeparator + "\r\n")
	b.WriteString(logPrefix + o.banner[1] + RecordSeparator + "\r\n\r\n")
	for _, p := range f.Pieces() {
		b.WriteString(p.Content)
		b.WriteString(RecordSeparator)
	}
	return b.String()
}

// WriteFile serializes f to path, creating parent directories
func WriteFile(path string, f *fleet.Fleet, opts ...Option) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(Serialize(f, opts...)), 0o644); err != nil {
		return fmt.Errorf("write vlb %s: %w", path, err)
	}
	return nil
}

// Records splits serialized text into its piece records, skipping the header
// and chat lines. Text with its line breaks stripped, as a decoded log is, works too.
func Records(text string) []string {
	body := strings.TrimPrefix(text, Header[:2])
	var out []string
	for _, rec := range strings.Split(body, RecordSeparator) {
		rec = strings.TrimLeft(rec, "\r\n")
		if rec == "" || rec == "begin_save" || rec == "end_save" || strings.HasPrefix(rec, "LOG\t") {
			continue
		}
		out = append(out, rec)
	}
	return out
}
