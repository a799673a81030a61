package core

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	march1 := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{name: "iso", in: "2021-03-01", want: march1},
		{name: "slashes", in: "2021/03/01", want: march1},
		{name: "padded", in: "  2021-03-01 ", want: march1},
		{name: "with time", in: "2021-03-01 15:04", want: march1},
		{name: "with seconds", in: "2021-03-01 23:59:59", want: march1},
		{name: "rfc3339 keeps the calendar day", in: "2021-03-01T23:30:00-05:00", want: march1},
		{name: "day first", in: "01/03/2021", wantErr: true},
		{name: "month first", in: "03/01/2021", wantErr: true},
		{name: "garbage", in: "tomorrow", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "impossible day", in: "2021-02-30", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("failed! ParseDate(%q) err = %v; wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("failed! ParseDate(%q) = %v; want %v", tt.in, got, tt.want)
			}
		})
	}
}
