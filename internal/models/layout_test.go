package models

import "testing"

func TestParseLayout(t *testing.T) {
	tests := []struct {
		in      string
		want    Layout
		wantErr bool
	}{
		{"", LayoutHorizontal, false},
		{"Horizontal", LayoutHorizontal, false},
		{" v ", LayoutVertical, false},
		{"vertical", LayoutVertical, false},
		{"diagonal", "", true},
	}
	for _, tt := range tests {
		got, err := ParseLayout(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLayout(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLayout(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
