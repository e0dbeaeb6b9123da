package invite

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateCodeSafe(t *testing.T) {
	for range 100 {
		code, err := GenerateCode(CodeKindNew)
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		if len(code) != CodeLength {
			t.Fatalf("generated code %q has length %d, want %d", code, len(code), CodeLength)
		}
		for _, c := range code {
			if !strings.ContainsRune(SafeAlphabet, c) {
				t.Fatalf("generated code %q contains %q, outside the safe alphabet", code, c)
			}
		}

		// A fresh safe code must survive normalization untouched and
		// classify as new format.
		if got := Normalize(code); got != code {
			t.Errorf("Normalize(%q) = %q, generated codes must already be canonical", code, got)
		}
		format, ok := Classify(code)
		if !ok || format.Kind != CodeKindNew {
			t.Errorf("Classify(%q) = %+v, %v; want new format", code, format, ok)
		}
	}
}

func TestGenerateCodeLegacy(t *testing.T) {
	for range 100 {
		code, err := GenerateCode(CodeKindLegacy)
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		format, ok := Classify(code)
		if !ok || format.Kind != CodeKindLegacy {
			t.Errorf("Classify(%q) = %+v, %v; want legacy format", code, format, ok)
		}
	}
}

func TestGenerateCodeExcludesConfusables(t *testing.T) {
	for _, c := range "OIL01" {
		if strings.ContainsRune(SafeAlphabet, c) {
			t.Errorf("safe alphabet must not contain %q", c)
		}
	}
	if len(SafeAlphabet) != 31 {
		t.Errorf("safe alphabet has %d symbols, want 31", len(SafeAlphabet))
	}
}

func TestGenerateCodeVaries(t *testing.T) {
	seen := make(map[string]bool)
	deadline := time.Now().Add(5 * time.Second)
	for range 50 {
		if time.Now().After(deadline) {
			t.Fatal("generation too slow")
		}
		code, err := GenerateCode(CodeKindNew)
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		seen[code] = true
	}
	// 31^6 possibilities; 50 draws colliding down to a handful would
	// mean the source is broken.
	if len(seen) < 45 {
		t.Errorf("only %d distinct codes in 50 draws", len(seen))
	}
}
