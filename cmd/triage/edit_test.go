package main

import "testing"

func TestParsePriorityFlag(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "URGENT", want: "URGENT"},
		{in: "high", want: "HIGH"},
		{in: " medium ", want: "MEDIUM"},
		{in: "Low", want: "LOW"},
		{in: "critical", wantErr: true},
		{in: "P1", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		p, err := parsePriorityFlag(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parsePriorityFlag(%q) = %q, want error", tt.in, p)
			}
			continue
		}
		if err != nil {
			t.Errorf("parsePriorityFlag(%q): %v", tt.in, err)
			continue
		}
		if string(p) != tt.want {
			t.Errorf("parsePriorityFlag(%q) = %q, want %q", tt.in, p, tt.want)
		}
	}
}
