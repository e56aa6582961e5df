package textutil

import (
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "ship:a\nupgrade:b", "ship:a\nupgrade:b"},
		{"crlf", "ship:a\r\nupgrade:b\r\n", "ship:a\nupgrade:b\n"},
		{"lone cr", "ship:a\rupgrade:b", "ship:a\nupgrade:b"},
		{"bom", "\ufeffship:a", "ship:a"},
		{"bom and crlf", "\ufeffa\r\nb", "a\nb"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// garble reproduces a UTF-8 string being read as Windows-1252
func garble(t *testing.T, s string) string {
	t.Helper()
	out, err := charmap.Windows1252.NewDecoder().String(s)
	if err != nil {
		t.Fatalf("garble %q: %v", s, err)
	}
	return out
}

func TestRepairMojibake(t *testing.T) {
	clean := "1 • Assault Frigate Mark II A (81)\n• Gunnery Team (7)"
	garbled := garble(t, clean)
	if garbled == clean {
		t.Fatalf("expected garbled text to differ")
	}
	if got := RepairMojibake(garbled); got != clean {
		t.Errorf("RepairMojibake() = %q, want %q", got, clean)
	}
}

func TestRepairMojibakeLeavesCleanText(t *testing.T) {
	for _, s := range []string{"", "plain ascii", "• Gunnery Team (7)", "Nebulon-B · Escort"} {
		if got := RepairMojibake(s); got != s {
			t.Errorf("RepairMojibake(%q) = %q, want unchanged", s, got)
		}
	}
}

func TestRepairMojibakeFallback(t *testing.T) {
	// The snowman cannot be encoded to Windows-1252, so only the bullet is replaced.
	in := "â€¢ Gunnery Team ☃"
	want := "• Gunnery Team ☃"
	if got := RepairMojibake(in); got != want {
		t.Errorf("RepairMojibake(%q) = %q, want %q", in, got, want)
	}
}

func TestLines(t *testing.T) {
	lines := Lines("\ufeffa\r\n• b\rc")
	if len(lines) != 3 || lines[0] != "a" || lines[1] != "• b" || lines[2] != "c" {
		t.Fatalf("Lines() = %q", lines)
	}
	if got := Lines(""); len(got) != 1 || got[0] != "" {
		t.Errorf("Lines(\"\") = %q, want one empty line", got)
	}
}
