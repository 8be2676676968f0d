package main

import (
	"testing"
)

func TestParseAssign(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		value   float64
		wantErr bool
	}{
		{"j1.phase=0.25", "j1.phase", 0.25, false},
		{" thrust = 8 ", "thrust", 8, false},
		{"thrust", "", 0, true},
		{"=1", "", 0, true},
		{"gain=abc", "", 0, true},
	}

	for _, tt := range tests {
		name, v, err := parseAssign(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseAssign(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && (name != tt.name || v != tt.value) {
			t.Errorf("parseAssign(%q) = %q, %v; want %q, %v", tt.in, name, v, tt.name, tt.value)
		}
	}
}

func TestParseChannel(t *testing.T) {
	tests := []struct {
		in      string
		channel string
		index   int
		wantErr bool
	}{
		{"x0", "x", 0, false},
		{"u12", "u", 12, false},
		{"y1", "", 0, true},
		{"x", "", 0, true},
		{"u-1", "", 0, true},
	}

	for _, tt := range tests {
		c, i, err := parseChannel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseChannel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && (c != tt.channel || i != tt.index) {
			t.Errorf("parseChannel(%q) = %q, %d", tt.in, c, i)
		}
	}
}

func TestCaption(t *testing.T) {
	if got := caption("cartpole", "x", 2); got != "pole angle" {
		t.Errorf("caption = %q", got)
	}
	if got := caption("cartpole", "u", 0); got != "u0" {
		t.Errorf("caption = %q", got)
	}
	if got := caption("crawler", "x", 5); got != "x5" {
		t.Errorf("caption = %q", got)
	}
}
