package vlog

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeKnownVector(t *testing.T) {
	got, err := Encode("a1ab\r\n")
	require.NoError(t, err)
	// 'a' ^ 0xa1 = 0xc0, 'b' ^ 0xa1 = 0xc3
	assert.Equal(t, "!VCSKa1c0c3", got)
}

func TestEncodePadsSmallValues(t *testing.T) {
	// 'a' ^ 0x61 = 0x00 must still take two hex digits.
	got, err := Encode("61a")
	require.NoError(t, err)
	assert.Equal(t, "!VCSK6100", got)
}

func TestRoundTripPrintableASCII(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		n := rng.IntN(300)
		var b strings.Builder
		b.WriteString("a1")
		for j := 0; j < n; j++ {
			b.WriteByte(byte(0x20 + rng.IntN(0x7f-0x20)))
		}
		if rng.IntN(2) == 0 {
			b.WriteString("\t\x1b")
		}
		clear := b.String()

		enc, err := Encode(clear)
		require.NoError(t, err)
		dec, err := Decode(enc)
		require.NoError(t, err)
		require.Equal(t, clear, dec)
	}
}

func TestRoundTripThroughFormat(t *testing.T) {
	clear := "a1begin_save\x1bend_save\x1bLOG\tCHAT<Listbuilder> - hi\x1b+/1/\tpiece;;;x.png;X/\x1b"
	enc, err := Encode(clear)
	require.NoError(t, err)
	dec, err := Decode(enc)
	require.NoError(t, err)

	formatted := Format(dec)
	assert.True(t, strings.HasPrefix(formatted, "a1\r\nbegin_save\x1b\r\n\r\n"))
	assert.Contains(t, formatted, "LOG\t\r\nCHAT")

	again, err := Encode(formatted)
	require.NoError(t, err)
	assert.Equal(t, enc, again)
}

func TestRoundTripUTF8(t *testing.T) {
	clear := "a1piece;;;Nebulon-B · Escort • Frigate"
	enc, err := Encode(clear)
	require.NoError(t, err)
	dec, err := Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, clear, dec)
}

func TestCodecErrors(t *testing.T) {
	tests := []struct {
		name   string
		run    func() error
		offset int
	}{
		{"decode non-hex key", func() error { _, err := Decode("!VCSKzz0102"); return err }, 5},
		{"decode short key", func() error { _, err := Decode("!VCSK1"); return err }, 5},
		{"decode missing magic", func() error { _, err := Decode("VCSKa1c0"); return err }, 0},
		{"decode odd body", func() error { _, err := Decode("!VCSKa1c0c"); return err }, 10},
		{"decode bad pair", func() error { _, err := Decode("!VCSKa1c0xg"); return err }, 9},
		{"encode non-hex key", func() error { _, err := Encode("LOG\tbegin_save"); return err }, 0},
		{"encode empty", func() error { _, err := Encode("\r\n"); return err }, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			var ce *CodecError
			require.True(t, errors.As(err, &ce), "want CodecError, got %v", err)
			assert.Equal(t, tt.offset, ce.Offset)
		})
	}
}

func TestFormatShortInput(t *testing.T) {
	assert.Equal(t, "a", Format("a"))
	assert.Equal(t, "a1\r\n", Format("a1"))
}
