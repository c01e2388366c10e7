package types

import (
	"errors"
	"testing"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr error
	}{
		{name: "plain bytes", input: "1024", want: 1024},
		{name: "zero", input: "0", want: 0},
		{name: "kilobytes short", input: "100K", want: 100 * KiB},
		{name: "megabytes lower", input: "10m", want: 10 * MiB},
		{name: "megabytes MB", input: "10MB", want: 10 * MiB},
		{name: "megabytes MiB", input: "10MiB", want: 10 * MiB},
		{name: "fractional gigabytes", input: "1.5G", want: GiB + GiB/2},
		{name: "whitespace", input: "  5 M ", want: 5 * MiB},
		{name: "empty", input: "", wantErr: ErrInvalidSize},
		{name: "negative", input: "-5M", wantErr: ErrNegativeSize},
		{name: "garbage", input: "lots", wantErr: ErrInvalidSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseSize(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSize(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMegabytesToBytes(t *testing.T) {
	if got := MegabytesToBytes(10); got != 10*MiB {
		t.Errorf("MegabytesToBytes(10) = %d, want %d", got, 10*MiB)
	}
	if got := MegabytesToBytes(-3); got != 0 {
		t.Errorf("MegabytesToBytes(-3) = %d, want 0", got)
	}
	if got := MegabytesToBytes(0.5); got != MiB/2 {
		t.Errorf("MegabytesToBytes(0.5) = %d, want %d", got, MiB/2)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1024, "1.0 KiB"},
		{1536 * 1024, "1.5 MiB"},
		{-1, "0 B"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.in); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
