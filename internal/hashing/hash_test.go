package hashing_test

import (
	"strings"
	"testing"

	"github.com/agritrace/provchain/internal/hashing"
)

func TestKeccak256_knownVectors(t *testing.T) {
	tests := []struct {
		in   string
		want hashing.Digest
	}{
		{"", "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{"abc", "0x4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"},
	}
	for _, tt := range tests {
		if got := hashing.Keccak256([]byte(tt.in)); got != tt.want {
			t.Errorf("Keccak256(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestSHA256_knownVectors(t *testing.T) {
	tests := []struct {
		in   string
		want hashing.Digest
	}{
		{"", "0xe3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", "0xba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}
	for _, tt := range tests {
		if got := hashing.SHA256([]byte(tt.in)); got != tt.want {
			t.Errorf("SHA256(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDigests_deterministic(t *testing.T) {
	input := []byte("did:farmer:1234-rice-2026-01-15T00:00:00Z")
	for i := 0; i < 3; i++ {
		if got := hashing.Keccak256(input); got != hashing.Keccak256(input) {
			t.Fatalf("Keccak256 not deterministic: %s", got)
		}
		if got := hashing.SHA256(input); got != hashing.SHA256(input) {
			t.Fatalf("SHA256 not deterministic: %s", got)
		}
	}
}

func TestDigest_format(t *testing.T) {
	d := hashing.Keccak256([]byte("x"))
	if !strings.HasPrefix(string(d), "0x") {
		t.Errorf("digest missing 0x prefix: %s", d)
	}
	if len(d) != 66 { // "0x" + 64 hex chars
		t.Errorf("digest length = %d, want 66", len(d))
	}
	if string(d) != strings.ToLower(string(d)) {
		t.Errorf("digest not lowercase: %s", d)
	}
}

func TestJoin_fieldOrderMatters(t *testing.T) {
	a := hashing.Keccak256(hashing.Join("batch1", "processor", "100"))
	b := hashing.Keccak256(hashing.Join("processor", "batch1", "100"))
	if a == b {
		t.Error("reordered fields produced the same digest")
	}
	if got, want := string(hashing.Join("a", "b", "c")), "a-b-c"; got != want {
		t.Errorf("Join = %q, want %q", got, want)
	}
}

func TestFloat_rendering(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{100, "100"},
		{2.5, "2.5"},
		{0, "0"},
		{98.76, "98.76"},
	}
	for _, tt := range tests {
		if got := hashing.Float(tt.in); got != tt.want {
			t.Errorf("Float(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOptFloat_nilRendersNone(t *testing.T) {
	if got := hashing.OptFloat(nil); got != "none" {
		t.Errorf("OptFloat(nil) = %q, want \"none\"", got)
	}
	v := 4.2
	if got := hashing.OptFloat(&v); got != "4.2" {
		t.Errorf("OptFloat(&4.2) = %q, want \"4.2\"", got)
	}
}
