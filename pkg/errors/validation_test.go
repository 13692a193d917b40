package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidatePositive(t *testing.T) {
	tests := []struct {
		name    string
		v       float64
		wantErr bool
	}{
		{"positive", 1e-4, false},
		{"zero", 0, true},
		{"negative", -1, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositive("A", tt.v)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePositive(%v) error = %v, wantErr %v", tt.v, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateRange(t *testing.T) {
	if err := ValidateRange("load", 200, 2000); err != nil {
		t.Errorf("valid range rejected: %v", err)
	}
	if err := ValidateRange("load", 2000, 200); err == nil {
		t.Error("inverted range should fail")
	}
	if err := ValidateRange("load", 1, 1); err == nil {
		t.Error("empty range should fail")
	}
	if err := ValidateRange("load", math.NaN(), 1); err == nil {
		t.Error("NaN bound should fail")
	}
}

func TestValidateCount(t *testing.T) {
	tests := []struct {
		n, max int
		code   Code
	}{
		{1, 0, ""},
		{500, 500, ""},
		{0, 10, ErrCodeInvalidInput},
		{11, 10, ErrCodeTooLarge},
	}
	for _, tt := range tests {
		err := ValidateCount("nodes", tt.n, tt.max)
		if got := GetCode(err); got != tt.code {
			t.Errorf("ValidateCount(%d, %d) code = %q, want %q", tt.n, tt.max, got, tt.code)
		}
	}
}

func TestValidateRecordID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"uuid", "3f2b6c1e-8d7a-4a59-9a43-0c4f2a1b9e77", false},
		{"underscore", "result_20250101", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 65), true},
		{"path traversal", "../etc", true},
		{"slash", "a/b", true},
		{"non-ascii", "résultat", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecordID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRecordID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "outputs/dataset.csv", false},
		{"absolute", "/tmp/model.json", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"null byte", "out\x00.csv", true},
		{"newline", "out\n.csv", true},
		{"too long", strings.Repeat("a", 2000), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
