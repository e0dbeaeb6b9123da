package invite

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantKind CodeKind
		wantOK   bool
	}{
		{name: "all digits is legacy", in: "123456", wantKind: CodeKindLegacy, wantOK: true},
		{name: "all zeros is legacy", in: "000000", wantKind: CodeKindLegacy, wantOK: true},
		{name: "alphanumeric is new", in: "V7DBKV", wantKind: CodeKindNew, wantOK: true},
		{name: "single letter is new", in: "12345A", wantKind: CodeKindNew, wantOK: true},
		{name: "too short", in: "12345", wantOK: false},
		{name: "too long", in: "1234567", wantOK: false},
		{name: "empty", in: "", wantOK: false},
		{name: "lowercase rejected", in: "v7dbkv", wantOK: false},
		{name: "punctuation rejected", in: "12345!", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, ok := Classify(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("Classify(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if format.Kind != tt.wantKind {
				t.Errorf("Classify(%q) kind = %v, want %v", tt.in, format.Kind, tt.wantKind)
			}
			if format.Code != tt.in {
				t.Errorf("Classify(%q) code = %q, want %q", tt.in, format.Code, tt.in)
			}
		})
	}
}

func TestClassifyLegacyTieBreak(t *testing.T) {
	// A pure-digit string matches both patterns; legacy must win.
	format, ok := Classify("123456")
	if !ok {
		t.Fatal("Classify(123456) failed")
	}
	if format.Kind != CodeKindLegacy {
		t.Errorf("Classify(123456) kind = %v, want legacy", format.Kind)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantKind   CodeKind
		wantReason ValidationReason
		wantErr    bool
	}{
		{name: "legacy code", in: "123456", wantKind: CodeKindLegacy},
		{name: "new code", in: "V7DBKV", wantKind: CodeKindNew},
		{name: "empty", in: "", wantErr: true, wantReason: ReasonEmpty},
		{name: "five characters", in: "12345", wantErr: true, wantReason: ReasonInvalidLength},
		{name: "seven characters", in: "1234567", wantErr: true, wantReason: ReasonInvalidLength},
		{name: "bad characters", in: "12@456", wantErr: true, wantReason: ReasonInvalidCharacters},
		{name: "lowercase", in: "v7dbkv", wantErr: true, wantReason: ReasonInvalidCharacters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, err := Validate(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Validate(%q) expected error", tt.in)
				}
				if err.Reason != tt.wantReason {
					t.Errorf("Validate(%q) reason = %v, want %v", tt.in, err.Reason, tt.wantReason)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate(%q) unexpected error: %v", tt.in, err)
			}
			if format.Kind != tt.wantKind {
				t.Errorf("Validate(%q) kind = %v, want %v", tt.in, format.Kind, tt.wantKind)
			}
		})
	}
}

func TestValidateLengthMessages(t *testing.T) {
	tests := []struct {
		in         string
		wantLength int
	}{
		{in: "12345", wantLength: 5},
		{in: "1234567", wantLength: 7},
	}

	for _, tt := range tests {
		_, err := Validate(tt.in)
		if err == nil {
			t.Fatalf("Validate(%q) expected error", tt.in)
		}
		if err.Length != tt.wantLength {
			t.Errorf("Validate(%q) reported length %d, want %d", tt.in, err.Length, tt.wantLength)
		}
		if !strings.Contains(err.Error(), "6") {
			t.Errorf("Validate(%q) message %q does not state the required length", tt.in, err.Error())
		}
	}
}

func TestDisplayFormat(t *testing.T) {
	newFormat := CodeFormat{Kind: CodeKindNew, Code: "V7DBKV"}
	if got := newFormat.DisplayFormat(); got != "INV-V7DBKV" {
		t.Errorf("new DisplayFormat = %q, want INV-V7DBKV", got)
	}

	legacy := CodeFormat{Kind: CodeKindLegacy, Code: "123456"}
	if got := legacy.DisplayFormat(); got != "123456" {
		t.Errorf("legacy DisplayFormat = %q, want 123456", got)
	}
}
