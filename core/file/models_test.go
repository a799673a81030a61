package file

import "testing"

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{in: -5, want: "0 B"},
		{in: 0, want: "0 B"},
		{in: 1, want: "1 B"},
		{in: 1023, want: "1023 B"},
		{in: 1024, want: "1 KB"},
		{in: 1536, want: "1.5 KB"},
		{in: 1234567, want: "1.18 MB"},
		{in: 1 << 20, want: "1 MB"},
		{in: 1<<30 - 1, want: "1024 MB"},
		{in: 1 << 30, want: "1 GB"},
		{in: 5*(1<<30) + 1<<29, want: "5.5 GB"},
		{in: 1 << 40, want: "1024 GB"}, // GB is the largest unit
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("failed! FormatBytes(%d) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
