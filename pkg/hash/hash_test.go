package hash

import (
	"strings"
	"testing"
)

func TestSHA256Hex(t *testing.T) {
	// Known SHA256 of "hello"
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	got := SHA256Hex("hello")
	if got != want {
		t.Errorf("SHA256Hex(\"hello\") = %s, want %s", got, want)
	}
}

func TestSHA256Hex_Empty(t *testing.T) {
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	got := SHA256HexBytes(nil)
	if got != want {
		t.Errorf("SHA256HexBytes(nil) = %s, want %s", got, want)
	}
}

func TestContentPrefix(t *testing.T) {
	data := []byte("\x89PNG fake image")
	full := SHA256HexBytes(data)

	tests := []struct {
		name      string
		prefixLen int
		want      string
	}{
		{"16 char prefix", 16, full[:16]},
		{"8 char prefix", 8, full[:8]},
		{"full hash if prefix too long", 100, full},
		{"full hash if prefix zero", 0, full},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContentPrefix(data, tt.prefixLen)
			if got != tt.want {
				t.Errorf("ContentPrefix(%d) = %s, want %s", tt.prefixLen, got, tt.want)
			}
		})
	}
}

func TestShort(t *testing.T) {
	got := Short("192.168.1.1")
	if len(got) != 12 {
		t.Errorf("Short length = %d, want 12", len(got))
	}
	if got != Short("192.168.1.1") {
		t.Error("Short should be deterministic")
	}
	if got == Short("10.0.0.1") {
		t.Error("different inputs should produce different hashes")
	}
}

func TestNormalizeTxHash(t *testing.T) {
	valid := "0x" + strings.Repeat("a1", 32)

	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"valid lower", valid, valid, true},
		{"missing 0x prefix", valid[2:], valid[2:], false},
		{"mixed case with 0X", "0X" + strings.Repeat("A1", 32), valid, true},
		{"whitespace trimmed", "  " + valid + "\n", valid, true},
		{"too short", "0x1234", "0x1234", false},
		{"non hex", "0x" + strings.Repeat("zz", 32), "0x" + strings.Repeat("zz", 32), false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeTxHash(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("NormalizeTxHash(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
