package render

import (
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		forces []float64
		want   []MemberState
	}{
		{"empty", nil, []MemberState{}},
		{"all zero", []float64{0, 0}, []MemberState{Unloaded, Unloaded}},
		{"mixed", []float64{-1000, 1000, 1e-10, 0}, []MemberState{Compression, Tension, Unloaded, Unloaded}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.forces); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	if err := ValidateFormat("svg", FormatSVG, FormatPNG); err != nil {
		t.Errorf("svg should be valid: %v", err)
	}
	if err := ValidateFormat("SVG", FormatSVG, FormatPNG); err == nil {
		t.Error("format names are case-sensitive")
	}
	if err := ValidateFormat("svg"); err == nil {
		t.Error("empty allow-list accepts nothing")
	}
}
